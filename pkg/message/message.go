// Package message is the device layer on top of the frame link: it treats
// frame payloads as short text messages and checks them for plausibility
// before handing them on.
package message

import (
	"errors"
	"time"
	"unicode"
	"unicode/utf8"

	"ptrx/pkg/rflink"
)

var (
	ErrInvalidText = errors.New("payload is not printable text")
	ErrTooLong     = errors.New("payload exceeds maximum message size")
)

const (
	// maxSize is the longest accepted message; the length byte caps a
	// frame at 255 payload bytes anyway.
	maxSize = 255
)

// Record is one received message.
type Record struct {
	Time  time.Time
	Text  string
	Valid bool
}

// FrameSource yields received frames, io.EOF while none is pending.
type FrameSource interface {
	Get() (rflink.Frame, error)
	Close() error
}

// Handler reads frames from a source and converts them to records.
type Handler struct {
	source FrameSource
}

// New generates a new message handler.
func New() *Handler {
	return &Handler{}
}

// Connect defines the frame source.
func (h *Handler) Connect(source FrameSource) error {
	h.source = source
	return nil
}

// Get reads the next frame, checks the payload and converts it to a
// record. The checksum outcome is passed through in Valid; only payloads
// that cannot be a message at all are rejected.
func (h *Handler) Get() (Record, error) {
	f, err := h.source.Get()
	if err != nil {
		return Record{}, err
	}

	if len(f.Payload) > maxSize {
		return Record{}, ErrTooLong
	}
	if !printableText(f.Payload) {
		return Record{}, ErrInvalidText
	}

	return Record{
		Time:  f.TimeStamp,
		Text:  string(f.Payload),
		Valid: f.Valid,
	}, nil
}

// Close the frame source.
func (h *Handler) Close() error {
	if h.source == nil {
		return nil
	}
	return h.source.Close()
}

// printableText reports whether b is valid UTF-8 consisting of printable
// runes and simple whitespace.
func printableText(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && r != '\n' && r != '\r' && r != '\t' {
			return false
		}
	}
	return true
}
