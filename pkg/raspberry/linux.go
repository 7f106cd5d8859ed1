//go:build !windows
// +build !windows

package raspberry

import (
	"fmt"

	"github.com/warthog618/gpio"
)

// MemGPIO maps the GPIO memory range from /dev/gpiomem. Reads through it
// are fast enough to poll a pin at the sample clock.
type MemGPIO struct {
	pins map[int]*MemPin
}

// MemPin is a memory-mapped input pin.
type MemPin struct {
	gpioPin *gpio.Pin
}

// OpenMem maps the GPIO memory range.
func OpenMem() (*MemGPIO, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &MemGPIO{pins: map[int]*MemPin{}}, nil
}

// Close unmaps the GPIO memory.
func (g *MemGPIO) Close() error {
	return gpio.Close()
}

// NewPin configures the pin with the given BCM GPIO number as an input.
// Terminator selects the pull resistor: pullup, pulldown or none.
func (g *MemGPIO) NewPin(p int, terminator string) (Pin, error) {
	if _, ok := g.pins[p]; ok {
		return nil, fmt.Errorf("pin %v already used", p)
	}

	pin := &MemPin{gpioPin: gpio.NewPin(p)}
	pin.gpioPin.Input()

	switch terminator {
	case "pullup":
		pin.gpioPin.PullUp()
	case "pulldown":
		pin.gpioPin.PullDown()
	case "none":
	default:
		return nil, ErrInvalidParam
	}

	g.pins[p] = pin
	return pin, nil
}

// Read returns the current pin level.
func (p *MemPin) Read() bool {
	return bool(p.gpioPin.Read())
}

// Pin returns the BCM GPIO number this pin represents.
func (p *MemPin) Pin() int {
	return p.gpioPin.Pin()
}

// Close releases the pin. The memory mapping is released by MemGPIO.Close.
func (p *MemPin) Close() error {
	return nil
}
