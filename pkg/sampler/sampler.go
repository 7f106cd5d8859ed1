// Package sampler turns a physical line into a fixed-cadence level stream.
// The decoder reasons in ticks only; the sampler is what defines a tick,
// either by polling a pin or by holding the level reported by edge events.
package sampler

import (
	"time"

	"ptrx/pkg/port"
)

// Sampler emits one level per tick on C at the configured clock rate.
type Sampler struct {
	// C is the channel to send the sampled level stream
	C chan port.Level

	interval time.Duration

	// quit is the channel to stop the sampler
	quit chan struct{}
	// done signals that the sample loop is stopped
	done chan struct{}
}

func newSampler(clock int) *Sampler {
	return &Sampler{
		C:        make(chan port.Level, 64),
		interval: time.Second / time.Duration(clock),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Poll starts a sampler that reads the line on every tick. Use this with a
// memory-mapped pin; the clock must be fine enough that several samples
// fall into one bit period of the signal.
func Poll(line port.LineReader, clock int) *Sampler {
	s := newSampler(clock)
	go s.poll(line)
	return s
}

// Events starts a sampler that holds the level reported by the last edge
// event and emits it on every tick. Use this with a character-device line
// watcher, where reading the pin on every tick would be too slow.
func Events(rx chan port.Event, clock int) *Sampler {
	s := newSampler(clock)
	go s.events(rx)
	return s
}

// Close stops sampling and closes C, which in turn stops the consumer.
func (s *Sampler) Close() error {
	close(s.quit)
	<-s.done
	close(s.C)
	return nil
}

func (s *Sampler) poll(line port.LineReader) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			level := port.Low
			if line.Read() {
				level = port.High
			}
			if !s.send(level) {
				return
			}
		}
	}
}

func (s *Sampler) events(rx chan port.Event) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	level := port.Low
	for {
		select {
		case <-s.quit:
			return
		case evt, open := <-rx:
			if !open {
				return
			}
			switch evt.Type {
			case port.RisingEdge:
				level = port.High
			case port.FallingEdge:
				level = port.Low
			}
		case <-ticker.C:
			if !s.send(level) {
				return
			}
		}
	}
}

// send delivers one sample, giving up when the sampler is closed while the
// consumer is not keeping up.
func (s *Sampler) send(level port.Level) bool {
	select {
	case s.C <- level:
		return true
	case <-s.quit:
		return false
	}
}
