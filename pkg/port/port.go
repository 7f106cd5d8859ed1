// Package port holds the definition of a physical port
package port

import "time"

// EventType indicates the type of change to the line active state.
//
// Note that for active low lines a low line level results in a high active
// state.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates an inactive to active event (low to high).
	RisingEdge
	// FallingEdge indicates an active to inactive event (high to low).
	FallingEdge
)

// Event is a single edge observed on the line.
type Event struct {
	// Timestamp indicates the time the event was detected.
	Timestamp time.Duration
	// The type of state change event this structure represents.
	Type EventType
}

// Level is the binary state of the line at one sample tick.
type Level int

const (
	// Low indicates a logical 0.
	Low Level = 0
	// High indicates a logical 1.
	High Level = 1
	// Invalid indicates an unknown or invalid state.
	Invalid Level = -1
)

// Invert returns the opposite line level.
func (l Level) Invert() Level {
	if l == High {
		return Low
	}
	return High
}

// LineReader reads the instantaneous level of a line.
type LineReader interface {
	// Read returns the current line level (true = high).
	Read() bool
}
