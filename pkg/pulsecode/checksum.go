package pulsecode

// Checksum returns the inverted modular checksum over data: the byte sum
// modulo 255, bit-inverted. The transmitter places this value in front of
// the payload; the receiver recomputes it over the received payload bytes
// in order.
func Checksum(data []byte) byte {
	sum := 0
	for _, b := range data {
		sum += int(b)
	}
	return byte(sum%255) ^ 0xFF
}
