package sampler

import (
	"sync/atomic"
	"testing"
	"time"

	"ptrx/pkg/port"
)

// fakeLine is a LineReader backed by an atomic flag.
type fakeLine struct {
	high int32
}

func (f *fakeLine) Read() bool {
	return atomic.LoadInt32(&f.high) != 0
}

func (f *fakeLine) set(high bool) {
	var v int32
	if high {
		v = 1
	}
	atomic.StoreInt32(&f.high, v)
}

func collect(c chan port.Level, n int, timeout time.Duration) []port.Level {
	deadline := time.After(timeout)
	out := make([]port.Level, 0, n)
	for len(out) < n {
		select {
		case l := <-c:
			out = append(out, l)
		case <-deadline:
			return out
		}
	}
	return out
}

func TestPollFollowsLine(t *testing.T) {
	line := &fakeLine{}
	s := Poll(line, 2000)
	defer s.Close()

	low := collect(s.C, 20, 2*time.Second)
	if len(low) < 20 {
		t.Fatalf("got %d samples, want 20", len(low))
	}
	for i, l := range low {
		if l != port.Low {
			t.Fatalf("sample %d = %v, want low", i, l)
		}
	}

	line.set(true)
	// drain until the flip becomes visible
	deadline := time.After(2 * time.Second)
	for {
		select {
		case l := <-s.C:
			if l == port.High {
				return
			}
		case <-deadline:
			t.Fatal("level flip never sampled")
		}
	}
}

func TestEventsHoldsLastEdge(t *testing.T) {
	rx := make(chan port.Event)
	s := Events(rx, 2000)
	defer s.Close()

	if got := collect(s.C, 5, 2*time.Second); len(got) < 5 {
		t.Fatalf("got %d samples, want 5", len(got))
	}

	// send from a goroutine, the sample loop may be busy delivering
	go func() {
		rx <- port.Event{Type: port.RisingEdge, Timestamp: time.Millisecond}
	}()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case l := <-s.C:
			if l == port.High {
				return
			}
		case <-deadline:
			t.Fatal("edge never reflected in the sample stream")
		}
	}
}

func TestCloseEndsStream(t *testing.T) {
	line := &fakeLine{}
	s := Poll(line, 2000)

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// the channel must drain and close
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-s.C:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("sample channel never closed")
		}
	}
}
