package pulsecode

const (
	// ringSize is the capacity of the interval window.
	ringSize = 16
	// sentinel marks a slot that holds no measurement yet.
	sentinel = 255
	// shortIntervals is the number of short training intervals averaged
	// into the bit period candidate.
	shortIntervals = 8
	// longIntervals is the number of double-length intervals that must
	// follow the short group before the clock counts as locked.
	longIntervals = 8
)

// ring is a fixed window of the most recent inter-transition tick counts.
// head is the next write position; a scan starting at head therefore walks
// the window oldest entry first.
type ring struct {
	buf  [ringSize]uint8
	head int
}

// newRing returns a window with every slot marked unmeasured.
func newRing() ring {
	var r ring
	for i := range r.buf {
		r.buf[i] = sentinel
	}
	return r
}

// push stores an interval measurement and advances the write position.
func (r *ring) push(v uint8) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % ringSize
}

// clampInterval narrows a tick count to the slot width, keeping the
// sentinel unmistakable for a real measurement.
func clampInterval(ticks int) uint8 {
	if ticks >= sentinel {
		return sentinel - 1
	}
	return uint8(ticks)
}

// scan looks for the training pattern in the window: eight short intervals
// followed by eight intervals at double their average. It returns the
// short-interval average as the bit period candidate.
//
// The branch boundary is kept as-is from the reference receiver: offsets
// below 7 only accumulate, offset 7 accumulates and derives the average,
// offsets 8..15 are the long candidates. An unmeasured slot anywhere in
// the window means there is not enough history yet.
func (r *ring) scan() (period int, ok bool) {
	var sum, avg, long int

	for i := 0; i < ringSize; i++ {
		v := int(r.buf[(r.head+i)%ringSize])
		if v == sentinel {
			return 0, false
		}

		switch {
		case i < shortIntervals-1:
			sum += v
		case i == shortIntervals-1:
			sum += v
			avg = sum / shortIntervals
		default:
			if approxEqual(v, 2*avg) {
				long++
			}
		}
	}

	if long != longIntervals {
		return 0, false
	}
	return avg, true
}

// window returns a copy of the interval buffer and the current write
// position, for diagnostics.
func (r *ring) window() ([ringSize]uint8, int) {
	return r.buf, r.head
}
