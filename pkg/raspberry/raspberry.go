// Package raspberry is the gpio access layer for the receiver line. It
// offers two ways in: a character-device line watcher that reports edge
// events (for the event-driven sampler) and a memory-mapped pin for
// high-rate polling (see linux.go / windows.go).
package raspberry

import (
	"fmt"
	"time"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"

	"ptrx/pkg/port"
)

var ErrInvalidParam = fmt.Errorf("invalid parameters")

// Pin reads the instantaneous level of a receiver line.
type Pin interface {
	// Read returns the current line level (true = high).
	Read() bool
	// Pin returns the BCM GPIO number this pin represents.
	Pin() int
	// Close releases the pin.
	Close() error
}

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line is a single requested line watched for edge changes. Events are
// sent to C after the bounce timeout.
type Line struct {
	gpiodLine  *gpiod.Line
	gpio       int
	lastValue  int
	debouncing bool
	// C receives the debounced edge events
	C chan port.Event
}

// Open opens the GPIO character device.
func Open() (*Chip, error) {
	c, err := gpiod.NewChip("gpiochip0")
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c}, nil
}

// Close releases the chip. It does not release requested lines; they must
// be closed independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// NewLine requests control of a single line and watches it for edge
// changes. An edge is reported on C once it survives the bounce timeout
// with the level still changed. There can only be one watcher on the line
// at a time. Terminator selects the pull resistor: pullup, pulldown or
// none.
func (c *Chip) NewLine(gpio int, terminator string, bounce time.Duration) (*Line, error) {
	line := &Line{
		gpio: gpio,
		C:    make(chan port.Event),
	}

	opts := []gpiod.LineReqOption{
		gpiod.WithEventHandler(line.handleEvent(bounce)),
		gpiod.WithBothEdges,
		gpiod.AsInput,
	}
	switch terminator {
	case "pullup":
		opts = append(opts, gpiod.WithPullUp)
	case "pulldown":
		opts = append(opts, gpiod.WithPullDown)
	case "none":
	default:
		return nil, ErrInvalidParam
	}

	var err error
	line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, opts...)
	return line, err
}

// handleEvent builds the gpiod event handler: wait out the bounce timeout,
// re-read the line and report the edge only if the level really changed.
func (l *Line) handleEvent(bounce time.Duration) func(gpiod.LineEvent) {
	return func(evt gpiod.LineEvent) {
		if l.debouncing {
			debug.TraceLog.Println("bounce signal detected")
			return
		}
		l.debouncing = true

		go func(t time.Duration) {
			defer func() { l.debouncing = false }()

			time.Sleep(bounce)

			v, err := l.gpiodLine.Value()
			if err != nil {
				debug.ErrorLog.Println(err)
				return
			}
			if v == l.lastValue {
				debug.TraceLog.Println("no changed value after bounce delay")
				return
			}
			l.lastValue = v

			switch v {
			case 0:
				l.C <- port.Event{Type: port.FallingEdge, Timestamp: t + bounce}
			case 1:
				l.C <- port.Event{Type: port.RisingEdge, Timestamp: t + bounce}
			default:
				debug.ErrorLog.Printf("invalid line value: %v", v)
			}
		}(evt.Timestamp)
	}
}

// Read returns the current line level. A character-device read is slow;
// use a memory-mapped pin where the sample clock is fast.
func (l *Line) Read() bool {
	v, err := l.gpiodLine.Value()
	if err != nil {
		debug.ErrorLog.Println(err)
		return false
	}
	return v != 0
}

// Pin returns the BCM GPIO number of the line.
func (l *Line) Pin() int {
	return l.gpio
}

// Close releases all resources held by the requested line.
//
// Close waits for any running event handler to return, so it must not be
// called from the handler's goroutine.
func (l *Line) Close() error {
	if err := l.gpiodLine.Close(); err != nil {
		return err
	}
	close(l.C)
	return nil
}
