package pulsecode

// Monitor receives diagnostic events from a Decoder. Implementations must
// not block; the decoder calls them synchronously from Feed. All events
// are informational, the decoder never depends on a Monitor for
// correctness.
type Monitor interface {
	// Synced is called when the clock locks onto a preamble, with the
	// recovered bit period in ticks.
	Synced(period int)
	// Byte is called for every completed byte with the state it was
	// received in.
	Byte(state State, b byte)
	// Frame is called when a frame completes, with the received payload,
	// the transmitted checksum and the verification outcome.
	Frame(payload []byte, checksum byte, valid bool)
	// Desync is called when a timing violation or an invalid length byte
	// forces the decoder back to header synchronization.
	Desync(state State)
}

// nopMonitor discards all events.
type nopMonitor struct{}

func (nopMonitor) Synced(int)               {}
func (nopMonitor) Byte(State, byte)         {}
func (nopMonitor) Frame([]byte, byte, bool) {}
func (nopMonitor) Desync(State)             {}
