// Package rflink runs a pulsecode decoder over a sampled level stream and
// hands out the frames it recovers.
package rflink

import (
	"io"
	"sync"
	"time"

	"github.com/womat/debug"

	"ptrx/pkg/port"
	"ptrx/pkg/pulsecode"
)

// Frame is one received message.
type Frame struct {
	// TimeStamp is the receive time of the final payload byte.
	TimeStamp time.Time
	// Payload is the frame content; its length is the declared length byte.
	Payload []byte
	// Valid reports whether the recomputed checksum matched the
	// transmitted one. Invalid frames are delivered anyway.
	Valid bool
}

// Handler feeds level samples into a decoder and buffers the most recent
// frame. It implements io.ReadCloser over the last frame's payload, the
// same way a serial device would be read.
type Handler struct {
	decoder *pulsecode.Decoder

	// rx is the per-tick level stream from the sampler.
	rx chan port.Level
	// C receives every completed frame. The channel is buffered; frames
	// are dropped with a log entry if the consumer falls behind.
	C chan Frame

	// rl guards the decoder and the frame buffer below.
	rl       sync.Mutex
	last     Frame
	hasFrame bool
	frames   uint64
	desyncs  uint64

	quit chan struct{}
	done chan struct{}
}

// Diagnostics is a snapshot of the decoder internals.
type Diagnostics struct {
	State       string    `json:"state"`
	BitPeriod   int       `json:"bitPeriod"`
	Ticks       int       `json:"ticks"`
	Window      [16]uint8 `json:"window"`
	WindowIndex int       `json:"windowIndex"`
	Frames      uint64    `json:"frames"`
	Desyncs     uint64    `json:"desyncs"`
}

// New starts a handler consuming the given level stream. One handler owns
// one decoder and therefore one signal stream.
func New(rx chan port.Level) *Handler {
	h := &Handler{
		decoder: pulsecode.New(),
		rx:      rx,
		C:       make(chan Frame, 8),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	h.decoder.SetMonitor(debugMonitor{})

	go h.run()
	return h
}

// run consumes level samples until the stream is closed or the handler is.
func (h *Handler) run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			return
		case l, open := <-h.rx:
			if !open {
				return
			}
			h.feed(l)
		}
	}
}

// feed pushes one sample through the decoder and publishes a completed
// frame.
func (h *Handler) feed(l port.Level) {
	h.rl.Lock()

	r := h.decoder.Feed(l)
	switch r.Outcome {
	case pulsecode.OutcomeFrame:
		f := Frame{
			TimeStamp: time.Now(),
			Payload:   append([]byte(nil), r.Payload...),
			Valid:     r.Valid,
		}
		h.decoder.ClearPayload()
		h.last = f
		h.hasFrame = true
		h.frames++
		h.rl.Unlock()

		select {
		case h.C <- f:
		default:
			debug.WarningLog.Printf("frame channel full, dropping frame of %d bytes", len(f.Payload))
		}
		return

	case pulsecode.OutcomeDesync, pulsecode.OutcomeBadLength:
		h.desyncs++
	}

	h.rl.Unlock()
}

// Get returns the most recent frame and clears it. It returns io.EOF while
// no new frame has arrived.
func (h *Handler) Get() (Frame, error) {
	h.rl.Lock()
	defer h.rl.Unlock()

	if !h.hasFrame {
		return Frame{}, io.EOF
	}
	h.hasFrame = false
	return h.last, nil
}

// Read copies the payload of the most recent frame into b and clears it.
// It returns io.EOF while no new frame has arrived. The validity flag is
// not visible through this interface; use Get where it matters.
func (h *Handler) Read(b []byte) (int, error) {
	h.rl.Lock()
	defer h.rl.Unlock()

	if !h.hasFrame {
		return 0, io.EOF
	}
	h.hasFrame = false
	return copy(b, h.last.Payload), nil
}

// Diagnostics returns a snapshot of the decoder state for the web API.
func (h *Handler) Diagnostics() Diagnostics {
	h.rl.Lock()
	defer h.rl.Unlock()

	window, idx := h.decoder.Window()
	return Diagnostics{
		State:       h.decoder.State().String(),
		BitPeriod:   h.decoder.BitPeriod(),
		Ticks:       h.decoder.Ticks(),
		Window:      window,
		WindowIndex: idx,
		Frames:      h.frames,
		Desyncs:     h.desyncs,
	}
}

// Close stops the handler. The frame channel stays open but receives no
// further frames.
func (h *Handler) Close() error {
	close(h.quit)
	<-h.done
	return nil
}
