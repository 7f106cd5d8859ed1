// Package pulsecode decodes a self-clocking two-level pulse-timing line
// code into framed messages. The line carries no clock; the bit period is
// recovered from a training preamble of eight short pulses followed by
// long pulses at double duration. Each data bit is carried by a pair of
// timed transitions: an optional setup transition one bit period after the
// previous boundary and the actual transition at two bit periods, whose
// level is the bit value. A frame is a length byte, a checksum byte and
// the declared number of payload bytes.
//
// The decoder reasons only in ticks. The caller samples the line at a
// fixed cadence of its choosing and hands the level to Feed once per tick;
// real time never enters the picture.
package pulsecode

import (
	"ptrx/pkg/port"
)

// State identifies the framing phase the decoder is in.
type State int

const (
	// StateHeaderSync is the search for the training preamble.
	StateHeaderSync State = iota
	// StateLength receives the payload length byte.
	StateLength
	// StateChecksum receives the expected checksum byte.
	StateChecksum
	// StatePayload receives the declared number of payload bytes.
	StatePayload
)

func (s State) String() string {
	switch s {
	case StateHeaderSync:
		return "headersync"
	case StateLength:
		return "length"
	case StateChecksum:
		return "checksum"
	case StatePayload:
		return "payload"
	}
	return "unknown"
}

// Outcome classifies the result of a single Feed call.
type Outcome int

const (
	// OutcomeNone means nothing noteworthy happened this tick.
	OutcomeNone Outcome = iota
	// OutcomeFrame means a frame completed; Payload and Valid are set.
	OutcomeFrame
	// OutcomeDesync means a timing violation forced a reset to header
	// synchronization.
	OutcomeDesync
	// OutcomeBadLength means a frame declared a zero payload length and
	// was discarded.
	OutcomeBadLength
)

// Result is what a single Feed call produced. Payload is only set for
// OutcomeFrame and aliases the decoder's output buffer; it is valid until
// ClearPayload is called.
type Result struct {
	Outcome Outcome
	Payload []byte
	Valid   bool
}

// Decoder is the framing state machine. One instance handles one signal
// stream and is not safe for concurrent use; create it once and reuse it
// across arbitrarily many frames.
type Decoder struct {
	state State
	ring  ring

	// period is the recovered bit period P in ticks, fixed per frame.
	period int
	// ticks counts Feed calls since the last recognized transition
	// (bit boundary in the data states).
	ticks int
	// setupTicks is the tick count at which the pending setup transition
	// was seen, 0 if none is pending.
	setupTicks int
	setupSeen  bool

	lastLevel port.Level
	// seenEdge tracks whether any transition was ever observed; the first
	// one has no baseline and is recorded as the sentinel.
	seenEdge bool

	// register and mask accumulate the byte in progress, MSB first.
	register byte
	mask     byte

	// length is the declared payload length, expect the checksum byte
	// the transmitter announced, count the payload bytes of this frame.
	length int
	expect byte
	count  int

	// payload accumulates output bytes across frames until the caller
	// clears it; each frame occupies the last length bytes.
	payload []byte

	monitor Monitor
}

// New returns a decoder searching for a preamble.
func New() *Decoder {
	return &Decoder{
		ring:    newRing(),
		mask:    0x80,
		monitor: nopMonitor{},
	}
}

// SetMonitor installs a diagnostics sink. A nil monitor restores the
// default discard-all sink.
func (d *Decoder) SetMonitor(m Monitor) {
	if m == nil {
		m = nopMonitor{}
	}
	d.monitor = m
}

// Feed consumes one level sample and advances the state machine by one
// tick. It never blocks and does no I/O. Call it once per fixed-cadence
// sample; the cadence must be fine enough that several samples fall into
// one bit period.
func (d *Decoder) Feed(level port.Level) Result {
	d.ticks++

	changed := level != d.lastLevel
	d.lastLevel = level

	if d.state == StateHeaderSync {
		if changed {
			d.syncEdge()
		}
		return Result{}
	}

	if !changed {
		// a pending bit must complete within two bit periods of its
		// setup transition, otherwise the line has stalled mid-bit
		if tooLong(d.ticks-d.setupTicks, 2*d.period) {
			d.desync()
			return Result{Outcome: OutcomeDesync}
		}
		return Result{}
	}

	return d.dataEdge(level)
}

// syncEdge records the interval since the previous transition and checks
// the window for the training pattern.
func (d *Decoder) syncEdge() {
	if !d.seenEdge {
		d.seenEdge = true
		d.ring.push(sentinel)
	} else {
		d.ring.push(clampInterval(d.ticks))
	}
	d.ticks = 0

	if p, ok := d.ring.scan(); ok {
		d.period = p
		d.state = StateLength
		d.setupSeen = false
		d.setupTicks = 0
		d.register = 0
		d.mask = 0x80
		d.monitor.Synced(p)
	}
}

// dataEdge handles a transition while a frame is being received. A
// transition one bit period after the boundary is the setup half of a
// bit, one at two bit periods is the bit boundary carrying the value.
// Anything else is inter-symbol noise and is ignored; the running tick
// counter will trip the stall check eventually.
func (d *Decoder) dataEdge(level port.Level) Result {
	switch {
	case !d.setupSeen && approxEqual(d.ticks, d.period):
		d.setupSeen = true
		d.setupTicks = d.ticks

	case approxEqual(d.ticks, 2*d.period):
		if level == port.High {
			d.register |= d.mask
		}
		d.mask >>= 1
		d.setupSeen = false
		d.setupTicks = 0
		d.ticks = 0

		if d.mask == 0 {
			b := d.register
			d.register = 0
			d.mask = 0x80
			return d.byteComplete(b)
		}
	}

	return Result{}
}

// byteComplete dispatches a finished byte to the handler of the current
// state.
func (d *Decoder) byteComplete(b byte) Result {
	d.monitor.Byte(d.state, b)

	switch d.state {
	case StateLength:
		if b == 0 {
			d.desync()
			return Result{Outcome: OutcomeBadLength}
		}
		d.length = int(b)
		d.state = StateChecksum

	case StateChecksum:
		d.expect = b
		d.count = 0
		d.state = StatePayload

	case StatePayload:
		d.payload = append(d.payload, b)
		d.count++

		if d.count == d.length {
			frame := d.payload[len(d.payload)-d.length:]
			valid := Checksum(frame) == d.expect
			d.monitor.Frame(frame, d.expect, valid)
			d.Reset()
			return Result{Outcome: OutcomeFrame, Payload: frame, Valid: valid}
		}
	}

	return Result{}
}

// desync abandons the frame in progress and reports the reset.
func (d *Decoder) desync() {
	state := d.state
	d.Reset()
	d.monitor.Desync(state)
}

// Reset returns the decoder to header synchronization, discarding all
// partial frame state. The interval window and the transition history are
// kept so the decoder can re-lock onto the next preamble without starting
// from an empty window. The output buffer is left alone; use ClearPayload
// to drop delivered frames.
func (d *Decoder) Reset() {
	d.state = StateHeaderSync
	d.ticks = 0
	d.setupSeen = false
	d.setupTicks = 0
	d.register = 0
	d.mask = 0x80
	d.length = 0
	d.count = 0
}

// State returns the current framing phase.
func (d *Decoder) State() State {
	return d.state
}

// BitPeriod returns the recovered bit period in ticks, 0 before the first
// sync.
func (d *Decoder) BitPeriod() int {
	return d.period
}

// Ticks returns the tick count since the last recognized transition.
func (d *Decoder) Ticks() int {
	return d.ticks
}

// Window returns a copy of the interval window and its write position.
func (d *Decoder) Window() ([16]uint8, int) {
	return d.ring.window()
}

// Payload returns the accumulated output buffer. Completed frames are
// appended to it in order of arrival.
func (d *Decoder) Payload() []byte {
	return d.payload
}

// ClearPayload drops the accumulated output buffer. Frame payloads handed
// out by Feed alias this buffer and must be copied before clearing.
func (d *Decoder) ClearPayload() {
	d.payload = d.payload[:0]
}
