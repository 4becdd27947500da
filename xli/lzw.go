package xli

// maxCode is the highest dictionary code allowed before the decoder stops
// growing the dictionary. The format reserves the codes above this ceiling;
// none of the fixtures in this pack ever emit one, but an encoder that did
// would signal end-of-stream, not a reset.
const maxCode = 1<<10 - 2

// dictDecoder is a standard LZW dictionary decoder tailored to this format's
// fixed 10-bit code width and self-referencing ("code == next_code") growth
// rule. It has no relation to compress/lzw: that package's order and
// litWidth semantics don't match this format, and its io.Reader-based API
// can't express the tolerant stop-on-invalid-code behavior required here.
type dictDecoder struct {
	br       *bitReader
	strings  map[int32][]byte
	nextCode int32
	previous []byte

	current  []byte
	position int
	done     bool
}

// newDictDecoder returns a decoder draining buf as a sequence of 10-bit LZW
// codes.
func newDictDecoder(buf []byte) *dictDecoder {
	strings := make(map[int32][]byte, 256)
	for code := int32(0); code < 256; code++ {
		strings[code] = []byte{byte(code)}
	}
	return &dictDecoder{
		br:       newBitReader(buf, 10),
		strings:  strings,
		nextCode: 256,
	}
}

// readByte returns the next decompressed byte, or (0, false) once the
// dictionary stream is exhausted.
func (d *dictDecoder) readByte() (byte, bool) {
	if d.current == nil || d.position == len(d.current) {
		d.current = d.readNextString()
		d.position = 0
	}
	if len(d.current) == 0 {
		return 0, false
	}
	b := d.current[d.position]
	d.position++
	return b, true
}

// readNextString decodes one dictionary entry from the code stream,
// updating the dictionary and previous-entry state per the canonical LZW
// decoding algorithm with self-reference support.
func (d *dictDecoder) readNextString() []byte {
	if d.done {
		return nil
	}

	code := d.br.next()
	if code == noCode || code > maxCode {
		d.done = true
		return nil
	}

	var data []byte
	if entry, ok := d.strings[code]; ok {
		data = entry
	} else {
		// Self-reference: the code being read is exactly the next code this
		// decoder is about to assign, which only happens when the encoder
		// emitted a string built from the previous entry extended by its own
		// first byte. Any other unassigned code, or a first code above 255,
		// breaks the LZW invariants and ends the stream.
		if code != d.nextCode || len(d.previous) == 0 {
			d.done = true
			return nil
		}
		data = append(append([]byte(nil), d.previous...), d.previous[0])
		d.strings[code] = data
	}

	if len(d.previous) > 0 && d.nextCode <= maxCode {
		entry := append(append([]byte(nil), d.previous...), data[0])
		d.strings[d.nextCode] = entry
		d.nextCode++
	}

	d.previous = data
	return data
}
