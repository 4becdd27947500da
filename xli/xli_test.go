package xli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packCodes is a reference bit-writer, the mirror image of bitReader.next:
// it packs fixed-width codes MSB-first into a byte slice using the same
// 32-bit shift register shape as the reader, so property tests can write a
// known sequence of code points and assert the reader recovers it exactly.
func packCodes(codes []uint16, bits uint) []byte {
	var out []byte
	var bitBuffer uint32
	var bitCount uint
	for _, code := range codes {
		bitBuffer |= uint32(code) << (32 - bits - bitCount)
		bitCount += bits
		for bitCount >= 8 {
			out = append(out, byte(bitBuffer>>24))
			bitBuffer <<= 8
			bitCount -= 8
		}
	}
	if bitCount > 0 {
		out = append(out, byte(bitBuffer>>24))
	}
	// bitReader's refill loop always tries to keep more than 24 bits
	// buffered before extracting a code, so it needs two more zero bytes of
	// lookahead past the last code's final byte before it will hand that
	// code back. More than two can let the extra zero bits themselves form
	// a spurious trailing code-0 once buffered, so this is exact, not a
	// safety margin.
	out = append(out, 0, 0)
	return out
}

func TestBitReaderRoundTrip(t *testing.T) {
	codes := make([]uint16, 64)
	for i := range codes {
		codes[i] = uint16((i * 37) % 1024)
	}

	buf := packCodes(codes, 10)
	br := newBitReader(buf, 10)
	for i, want := range codes {
		got := br.next()
		require.NotEqual(t, int32(noCode), got, "code %d: unexpected end of input", i)
		assert.Equal(t, int32(want), got, "code %d mismatch", i)
	}
}

func TestBitReaderEndOfInput(t *testing.T) {
	br := newBitReader(nil, 10)
	assert.Equal(t, int32(noCode), br.next())

	// A single byte is not enough to form a 10-bit code once the refill
	// loop's "need more than 24 buffered bits" condition is accounted for.
	br = newBitReader([]byte{0xFF}, 10)
	assert.Equal(t, int32(noCode), br.next())
}

// encodeLiteralBytes produces an LZW code stream that decodes back to data
// unchanged by encoding every byte as its own single-byte dictionary code
// (codes 0-255 are always present in the initial dictionary). It never
// exercises dictionary growth, but it is a valid input to dictDecoder and
// lets tests build synthetic XLI chunk bodies without a full LZW encoder.
func encodeLiteralBytes(data []byte) []byte {
	codes := make([]uint16, len(data))
	for i, b := range data {
		codes[i] = uint16(b)
	}
	return packCodes(codes, 10)
}

func TestDictDecoderLiteralRoundTrip(t *testing.T) {
	want := []byte{0x00, 0x7F, 0x80, 0xFF, 0x01, 0x02, 0x03, 0xAB, 0xCD}
	body := encodeLiteralBytes(want)

	dec := newDictDecoder(body)
	var got []byte
	for {
		b, ok := dec.readByte()
		if !ok {
			break
		}
		got = append(got, b)
	}
	assert.Equal(t, want, got)
}

func TestDictDecoderRespectsDictionaryCeiling(t *testing.T) {
	// Literal codes (all below 256) never reach the self-reference branch,
	// but the dictionary still inserts strings[next_code] = previous +
	// data[0] after every step past the first. Decode a run of 2000 literal
	// codes, more steps than the dictionary has room for, and check the
	// dictionary ceiling is respected and never exceeded.
	data := make([]byte, 2000)
	for i := range data {
		data[i] = byte(i % 3)
	}
	body := encodeLiteralBytes(data)

	dec := newDictDecoder(body)
	for {
		_, ok := dec.readByte()
		if !ok {
			break
		}
	}
	assert.LessOrEqual(t, dec.nextCode, int32(maxCode+1))
	for code, entry := range dec.strings {
		if code < 256 {
			continue
		}
		require.NotEmpty(t, entry)
	}
}

func TestUnpackSplitPlaneLossless(t *testing.T) {
	want := []int16{0, 1, -1, 32767, -32768, 12345, -12345, 7}
	m := len(want)
	buf := make([]byte, 2*m)
	for i, v := range want {
		buf[i] = byte(uint16(v) >> 8)
		buf[m+i] = byte(uint16(v))
	}

	got := unpack(buf)
	assert.Equal(t, want, got)
}

func TestUnpackZeroPaddedOddLengthBuffer(t *testing.T) {
	// decodeChunk pads an odd-length decompressed buffer with a trailing
	// zero byte before unpacking; verify the unpack step alone tolerates an
	// already-even buffer built that way.
	buf := []byte{0x00, 0x01, 0x02}
	buf = append(buf, 0)
	got := unpack(buf)
	assert.Len(t, got, 2)
}

func TestReconstructLeavesFirstTwoSamplesRaw(t *testing.T) {
	deltas := []int16{100, 200, 10, 20, 30}
	before := append([]int16(nil), deltas...)
	reconstruct(deltas, 0)
	assert.Equal(t, before[0], deltas[0])
	assert.Equal(t, before[1], deltas[1])
}

func TestReconstructSecondOrderPredictor(t *testing.T) {
	// Manually compute the expected second-order prediction for a short
	// sequence, mirroring the reference algorithm step by step.
	deltas := []int16{5, 10, 64 + 3, 64 + 1}
	start := int16(2)

	x, y, last := int32(deltas[0]), int32(deltas[1]), int32(start)
	want := make([]int16, len(deltas))
	want[0], want[1] = deltas[0], deltas[1]
	for i := 2; i < len(deltas); i++ {
		z := int16(y + y - x - last)
		last = int32(deltas[i]) - 64
		want[i] = z
		x = y
		y = int32(z)
	}

	reconstruct(deltas, start)
	assert.Equal(t, want, deltas)
}

func TestReconstructShortChunkUnchanged(t *testing.T) {
	deltas := []int16{7}
	reconstruct(deltas, 42)
	assert.Equal(t, []int16{7}, deltas)

	empty := []int16{}
	reconstruct(empty, 0)
	assert.Equal(t, []int16{}, empty)
}

func TestDecodeChunkMatchesUnpackAndReconstruct(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xFE, 0x02, 0x03, 0x04, 0x05, 0x06}
	body := encodeLiteralBytes(raw)

	got, err := decodeChunk(body, 5)
	require.NoError(t, err)

	want := unpack(append([]byte(nil), raw...))
	reconstruct(want, 5)
	assert.Equal(t, want, got)
}

func TestDecodeMultipleChunks(t *testing.T) {
	chunk1 := []byte{0x00, 0x01, 0x02, 0x03}
	chunk2 := []byte{0x10, 0x11, 0x12, 0x13, 0x14, 0x15}

	payload := buildPayload(t, chunk1, 3, chunk2, -2)

	leads, err := Decode(payload)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	want1 := unpack(append([]byte(nil), chunk1...))
	reconstruct(want1, 3)
	assert.Equal(t, want1, leads[0])

	want2 := unpack(append([]byte(nil), chunk2...))
	reconstruct(want2, -2)
	assert.Equal(t, want2, leads[1])
}

func TestDecodeTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
	var tErr *TruncatedError
	require.ErrorAs(t, err, &tErr)
}

func TestDecodeTruncatedBody(t *testing.T) {
	header := make([]byte, headerSize)
	header[0] = 100 // declares a 100-byte body that never follows
	_, err := Decode(header)
	require.Error(t, err)
}

// buildPayload assembles a synthetic XLI payload from raw (pre-LZW) chunk
// bodies, encoding each body as literal LZW codes and framing it with the
// 8-byte chunk header described in §4.3.
func buildPayload(t *testing.T, raw1 []byte, start1 int16, raw2 []byte, start2 int16) []byte {
	t.Helper()
	var out []byte
	out = append(out, frameChunk(raw1, start1)...)
	out = append(out, frameChunk(raw2, start2)...)
	return out
}

func frameChunk(raw []byte, start int16) []byte {
	body := encodeLiteralBytes(raw)
	header := make([]byte, headerSize)
	size := uint32(len(body))
	header[0] = byte(size)
	header[1] = byte(size >> 8)
	header[2] = byte(size >> 16)
	header[3] = byte(size >> 24)
	header[6] = byte(uint16(start))
	header[7] = byte(uint16(start) >> 8)
	return append(header, body...)
}
