package pulsecode

import "testing"

func TestApproxEqualQuarterWindow(t *testing.T) {
	const p = 20

	if !approxEqual(p, p) {
		t.Error("exact interval must match")
	}
	if !approxEqual(p+p/4-1, p) {
		t.Errorf("interval %d must still match expected %d", p+p/4-1, p)
	}
	if approxEqual(p+p/4, p) {
		t.Errorf("interval %d must not match expected %d", p+p/4, p)
	}
	if !approxEqual(p-p/4+1, p) {
		t.Errorf("interval %d must still match expected %d", p-p/4+1, p)
	}
	if approxEqual(p-p/4, p) {
		t.Errorf("interval %d must not match expected %d", p-p/4, p)
	}
}

func TestApproxEqualShortExpected(t *testing.T) {
	// below four ticks the window is one tick wide, not expected/4
	for expected := 1; expected < 4; expected++ {
		if !approxEqual(expected, expected) {
			t.Errorf("exact interval %d must match", expected)
		}
		if approxEqual(expected+1, expected) {
			t.Errorf("interval %d must not match expected %d", expected+1, expected)
		}
	}
}

func TestTooLong(t *testing.T) {
	const ref = 40

	if tooLong(ref, ref) {
		t.Error("reference interval itself is not too long")
	}
	if tooLong(ref+ref/4, ref) {
		t.Errorf("%d ticks against reference %d is still in tolerance", ref+ref/4, ref)
	}
	if !tooLong(ref+ref/4+1, ref) {
		t.Errorf("%d ticks against reference %d must be too long", ref+ref/4+1, ref)
	}
}
