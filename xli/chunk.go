package xli

import (
	"encoding/binary"
	"fmt"

	ibits "github.com/sierraecg/sierraecg/internal/bits"
)

// headerSize is the byte length of a chunk header: a 4-byte size, 2 reserved
// bytes, and a 2-byte predictor seed.
const headerSize = 8

// Decode decompresses an XLI-compressed waveform payload into one sample
// slice per chunk, in chunk order. Chunk order matches the order leads were
// declared in the XML container.
func Decode(data []byte) ([][]int16, error) {
	var leads [][]int16
	offset := 0
	for offset < len(data) {
		if offset+headerSize > len(data) {
			return nil, &TruncatedError{Offset: offset, Need: headerSize, Have: len(data) - offset}
		}
		header := data[offset : offset+headerSize]
		size := int32(binary.LittleEndian.Uint32(header[0:4]))
		start := int16(binary.LittleEndian.Uint16(header[6:8]))
		offset += headerSize

		if size < 0 || offset+int(size) > len(data) {
			return nil, &TruncatedError{Offset: offset, Need: int(size), Have: len(data) - offset}
		}
		body := data[offset : offset+int(size)]
		offset += int(size)

		samples, err := decodeChunk(body, start)
		if err != nil {
			return nil, err
		}
		leads = append(leads, samples)
	}
	return leads, nil
}

// TruncatedError reports an XLI payload that ends mid-chunk: either the
// 8-byte header itself is cut short, or the declared chunk body size
// reaches past the end of the remaining payload.
type TruncatedError struct {
	Offset int
	Need   int
	Have   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("xli: truncated chunk at offset %d: need %d bytes, have %d", e.Offset, e.Need, e.Have)
}

// decodeChunk drains body through the LZW dictionary decoder, then unpacks
// and reconstructs its samples.
func decodeChunk(body []byte, start int16) ([]int16, error) {
	dec := newDictDecoder(body)
	buf := make([]byte, 0, len(body)*2)
	for {
		b, ok := dec.readByte()
		if !ok {
			break
		}
		buf = append(buf, b)
	}
	if len(buf)%2 == 1 {
		buf = append(buf, 0)
	}

	deltas := unpack(buf)
	reconstruct(deltas, start)
	return deltas, nil
}

// unpack reads a split-plane byte buffer — the high byte of sample i at
// buf[i], the low byte at buf[M+i], for M = len(buf)/2 — into M signed
// 16-bit samples.
func unpack(buf []byte) []int16 {
	m := len(buf) / 2
	out := make([]int16, m)
	for i := 0; i < m; i++ {
		hi := uint16(buf[i]) << 8
		lo := uint16(buf[m+i])
		out[i] = int16(hi | lo)
	}
	return out
}

// reconstruct applies the XLI second-order predictor in place. deltas[0] and
// deltas[1] are left as raw unpacked values; every later index is replaced
// by the predicted value computed one step behind the residual stored there:
// the value assigned to index i uses the residual stored at index i-1 (or
// start, for i == 2), and the residual stored at index i seeds the
// prediction assigned to index i+1, which is why last is read from
// deltas[i] before deltas[i] is overwritten.
func reconstruct(deltas []int16, start int16) {
	if len(deltas) < 2 {
		return
	}

	x := deltas[0]
	y := deltas[1]
	last := start
	for i := 2; i < len(deltas); i++ {
		z := ibits.Int16(int32(y) + int32(y) - int32(x) - int32(last))
		last = ibits.Int16(int32(deltas[i]) - 64)
		deltas[i] = z
		x = y
		y = z
	}
}
