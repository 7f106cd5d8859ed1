//go:build windows
// +build windows

package raspberry

import (
	"sync"

	"ptrx/pkg/port"
	"ptrx/pkg/pulsecode"
)

// MemGPIO has no memory-mapped GPIO to back it on windows; pins are
// emulated so the receiver stack can be developed without hardware.
type MemGPIO struct{}

// OpenMem returns the emulated GPIO access.
func OpenMem() (*MemGPIO, error) {
	return &MemGPIO{}, nil
}

// Close releases nothing on windows.
func (g *MemGPIO) Close() error {
	return nil
}

// NewPin returns an emulated pin replaying an encoded demo frame.
func (g *MemGPIO) NewPin(p int, terminator string) (Pin, error) {
	switch terminator {
	case "pullup", "pulldown", "none":
	default:
		return nil, ErrInvalidParam
	}
	return NewEmuPin(p), nil
}

// EmuPin replays the level sequence of an encoded frame, one sample per
// Read call, so a polling sampler sees a valid signal. The replay loops
// with a long idle gap so the decoder never mistakes the wrap-around for a
// training interval.
type EmuPin struct {
	mu     sync.Mutex
	pin    int
	levels []port.Level
	idx    int
}

// NewEmuPin builds an emulated pin carrying a "HELLO" frame.
func NewEmuPin(pin int) *EmuPin {
	enc := pulsecode.Encoder{Period: 40, Idle: port.Low}
	return &EmuPin{pin: pin, levels: enc.Levels([]byte("HELLO"))}
}

// Read returns the next replay sample.
func (p *EmuPin) Read() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	l := p.levels[p.idx]
	p.idx = (p.idx + 1) % len(p.levels)
	return l == port.High
}

// Pin returns the emulated BCM GPIO number.
func (p *EmuPin) Pin() int {
	return p.pin
}

// Close releases nothing.
func (p *EmuPin) Close() error {
	return nil
}
