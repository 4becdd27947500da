package bits

// Int16 interprets x as a two's complement signed 16-bit value, wrapping
// modulo 2^16 before sign extension. It accepts values wider than 16 bits and
// truncates them first, which is what the XLI reconstruction arithmetic
// (addition/subtraction that must wrap at 16 bits) requires.
func Int16(x int32) int16 {
	return int16(uint16(x))
}
