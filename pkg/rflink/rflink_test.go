package rflink

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptrx/pkg/port"
	"ptrx/pkg/pulsecode"
)

func TestHandlerDeliversFrames(t *testing.T) {
	rx := make(chan port.Level)
	h := New(rx)
	defer h.Close()

	enc := pulsecode.Encoder{Period: 20, Idle: port.Low}
	go func() {
		for _, l := range enc.Levels([]byte("HELLO")) {
			rx <- l
		}
	}()

	select {
	case f := <-h.C:
		assert.Equal(t, []byte("HELLO"), f.Payload)
		assert.True(t, f.Valid)
		assert.False(t, f.TimeStamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
	}

	f, err := h.Get()
	require.NoError(t, err)
	assert.Equal(t, []byte("HELLO"), f.Payload)

	// the buffered frame is cleared on read
	_, err = h.Get()
	assert.Equal(t, io.EOF, err)

	d := h.Diagnostics()
	assert.Equal(t, uint64(1), d.Frames)
	assert.Equal(t, 20, d.BitPeriod)
	assert.Equal(t, "headersync", d.State)
}

func TestHandlerRead(t *testing.T) {
	rx := make(chan port.Level)
	h := New(rx)
	defer h.Close()

	enc := pulsecode.Encoder{Period: 16, Idle: port.Low}
	go func() {
		for _, l := range enc.Levels([]byte{0x42, 0x43}) {
			rx <- l
		}
	}()

	select {
	case <-h.C:
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
	}

	b := make([]byte, 64)
	n, err := h.Read(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x42, 0x43}, b[:n])

	_, err = h.Read(b)
	assert.Equal(t, io.EOF, err)
}

func TestHandlerCloseStopsConsuming(t *testing.T) {
	rx := make(chan port.Level, 16)
	h := New(rx)

	require.NoError(t, h.Close())

	// a closed handler must not deadlock senders with a buffered stream
	for i := 0; i < 16; i++ {
		rx <- port.Low
	}
}
