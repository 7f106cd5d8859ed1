package pulsecode

// approxEqual reports whether an observed tick interval is close enough to
// the expected one. The tolerance window is a quarter of the expected
// interval; very short intervals get a fixed window of one tick, otherwise
// integer division would make them impossible to match.
func approxEqual(observed, expected int) bool {
	tolerance := expected / 4
	if expected < 4 {
		tolerance = 1
	}

	diff := observed - expected
	if diff < 0 {
		diff = -diff
	}
	return diff < tolerance
}

// tooLong reports whether elapsed exceeds the reference interval by more
// than a quarter. Used to detect a stalled line while a bit is in flight.
func tooLong(elapsed, reference int) bool {
	return elapsed > reference+reference/4
}
