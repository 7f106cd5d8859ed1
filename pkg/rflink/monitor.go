package rflink

import (
	"github.com/womat/debug"

	"ptrx/pkg/pulsecode"
)

// debugMonitor forwards decoder diagnostics to the global debug loggers.
type debugMonitor struct{}

func (debugMonitor) Synced(period int) {
	debug.InfoLog.Printf("clock locked, bit period %d ticks", period)
}

func (debugMonitor) Byte(state pulsecode.State, b byte) {
	debug.TraceLog.Printf("%s byte 0x%02X", state, b)
}

func (debugMonitor) Frame(payload []byte, checksum byte, valid bool) {
	if valid {
		debug.DebugLog.Printf("frame % X, checksum 0x%02X ok", payload, checksum)
		return
	}
	debug.WarningLog.Printf("frame % X, checksum 0x%02X mismatch", payload, checksum)
}

func (debugMonitor) Desync(state pulsecode.State) {
	debug.DebugLog.Printf("lost sync in %s state, waiting for preamble", state)
}
