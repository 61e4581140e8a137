package wire

import (
	"encoding/binary"
	"fmt"
)

// ChunkHeaderSize is the size of the DataChunk header on the wire:
// size (u32), prev (u64), next (u64). The payload follows inline.
const ChunkHeaderSize = 20

// ChunkReader walks a forward-linked chain of data chunks, translating
// every link through the session delta. A reader is consumed by a single
// decode and is not safe for concurrent use.
type ChunkReader struct {
	t    *Translator
	next Address

	// consumed guards against reference cycles: a well-formed chain can
	// never deliver more payload than the buffer holds.
	consumed int
}

// Chunks returns a reader over the chunk chain starting at addr.
func (t *Translator) Chunks(addr Address) *ChunkReader {
	return &ChunkReader{t: t, next: addr}
}

// Next returns the payload of the next chunk in the chain, or (nil, nil)
// at the end of the list. Payloads alias the translator's buffer.
func (r *ChunkReader) Next() ([]byte, error) {
	if r.next == 0 {
		return nil, nil
	}
	hdr, err := r.t.Resolve(r.next, ChunkHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk header at %#x: %v", ErrBadChunk, uint64(r.next), err)
	}
	size := binary.LittleEndian.Uint32(hdr[0:4])
	next := Address(binary.LittleEndian.Uint64(hdr[12:20]))

	data, err := r.t.Resolve(r.next+ChunkHeaderSize, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: chunk payload at %#x: %v", ErrBadChunk, uint64(r.next), err)
	}
	r.consumed += ChunkHeaderSize + int(size)
	if r.consumed > r.t.BufLen() {
		return nil, fmt.Errorf("%w: chain exceeds buffer, cycle suspected", ErrBadChunk)
	}
	r.next = next
	return data, nil
}

// ReadAll gathers the remaining chain into one contiguous slice.
// sizeHint, when positive, pre-sizes the result. A single-chunk chain
// returns the chunk payload without copying.
func (r *ChunkReader) ReadAll(sizeHint int) ([]byte, error) {
	first, err := r.Next()
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}
	second, err := r.Next()
	if err != nil {
		return nil, err
	}
	if second == nil {
		return first, nil
	}

	// The hint comes off the wire; no chain can outgrow the buffer.
	if sizeHint > r.t.BufLen() {
		sizeHint = r.t.BufLen()
	}
	if sizeHint < len(first)+len(second) {
		sizeHint = len(first) + len(second)
	}
	out := make([]byte, 0, sizeHint)
	out = append(out, first...)
	out = append(out, second...)
	for {
		data, err := r.Next()
		if err != nil {
			return nil, err
		}
		if data == nil {
			return out, nil
		}
		out = append(out, data...)
	}
}
