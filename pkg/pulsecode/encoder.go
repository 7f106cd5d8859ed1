package pulsecode

import (
	"ptrx/pkg/port"
)

const (
	// shortPulses is the number of training pulses at the bit period.
	shortPulses = 8
	// longPulses is the number of training pulses at double duration.
	// Every pulse contributes two transitions, so these yield the eight
	// long intervals the decoder requires.
	longPulses = 4
)

// Encoder renders frames into the transition timing the Decoder expects:
// a training preamble of eight short and four long pulses, then the length
// byte, the checksum byte and the payload, MSB first. It is the synthetic
// counterpart of a real transmitter and drives the round-trip tests and
// the emulated input pin.
type Encoder struct {
	// Period is the bit period P in ticks.
	Period int
	// Idle is the line level before the first transition.
	Idle port.Level
}

// Intervals returns the inter-transition tick counts for a complete frame
// around payload. The first transition itself is not represented; the
// first entry is the time from the first to the second transition.
func (e *Encoder) Intervals(payload []byte) []int {
	return e.frame(byte(len(payload)), Checksum(payload), payload)
}

// frame renders an explicit header. Kept separate from Intervals so a
// deliberately broken length or checksum byte can be produced.
func (e *Encoder) frame(length, checksum byte, payload []byte) []int {
	iv := make([]int, 0, 2*shortPulses+2*longPulses+16*(2+len(payload)))

	// level tracks the line level after the most recently rendered
	// transition; the first transition leaves the idle level.
	level := e.Idle.Invert()

	for i := 0; i < 2*shortPulses; i++ {
		iv = append(iv, e.Period)
		level = level.Invert()
	}
	for i := 0; i < 2*longPulses; i++ {
		iv = append(iv, 2*e.Period)
		level = level.Invert()
	}

	iv, level = e.appendByte(iv, level, length)
	iv, level = e.appendByte(iv, level, checksum)
	for _, b := range payload {
		iv, level = e.appendByte(iv, level, b)
	}

	return iv
}

// appendByte renders one byte, MSB first. A bit whose level equals the
// current line level needs a setup transition halfway, a differing bit is
// a single transition at the boundary.
func (e *Encoder) appendByte(iv []int, level port.Level, b byte) ([]int, port.Level) {
	for mask := byte(0x80); mask != 0; mask >>= 1 {
		bit := port.Low
		if b&mask != 0 {
			bit = port.High
		}

		if level == bit {
			iv = append(iv, e.Period, e.Period)
		} else {
			iv = append(iv, 2*e.Period)
		}
		level = bit
	}
	return iv, level
}

// Levels renders a frame into one level per tick, with three bit periods
// of idle lead-in and one of trailing hold. The long lead keeps the gap
// between consecutive frames from measuring like a training interval
// against the previous frame's window.
func (e *Encoder) Levels(payload []byte) []port.Level {
	return Expand(e.Intervals(payload), e.Idle, 3*e.Period, e.Period)
}

// Expand converts transition intervals into a per-tick level sequence:
// lead ticks of idle, the first transition, then each interval's worth of
// samples, then tail ticks holding the level after the last transition.
func Expand(intervals []int, idle port.Level, lead, tail int) []port.Level {
	total := lead + tail
	for _, n := range intervals {
		total += n
	}

	out := make([]port.Level, 0, total)
	level := idle

	for i := 0; i < lead; i++ {
		out = append(out, level)
	}
	level = level.Invert()

	for _, n := range intervals {
		for i := 0; i < n; i++ {
			out = append(out, level)
		}
		level = level.Invert()
	}

	for i := 0; i < tail; i++ {
		out = append(out, level)
	}
	return out
}
