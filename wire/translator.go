// Package wire parses the remote-display protocol's image structures and
// resolves their relative addresses against a locally mapped buffer.
//
// All multi-byte fields are little-endian. Addresses are relative to the
// protocol session and are mapped onto the local buffer through a
// per-session delta; payloads may be split across a forward-linked chain
// of data chunks.
package wire

import (
	"errors"
	"fmt"
)

// Common errors for wire parsing and address translation.
var (
	// ErrTruncated is returned when a structure extends past the end of
	// its buffer.
	ErrTruncated = errors.New("wire: truncated structure")

	// ErrAccessViolation is returned when a resolved range falls outside
	// the translator's registered access window.
	ErrAccessViolation = errors.New("wire: access violation")

	// ErrBadChunk is returned when a chunk list is malformed.
	ErrBadChunk = errors.New("wire: malformed chunk list")
)

// Address is a protocol-relative byte address. The zero address is the
// protocol's null reference.
type Address uint64

// Translator maps protocol-relative addresses onto a local buffer.
//
// The delta is fixed per decode session; it is threaded explicitly
// through every resolution rather than patched into shared state, so a
// single buffer can serve concurrent sessions with distinct deltas.
type Translator struct {
	buf   []byte
	delta Address

	// Optional access window. When enabled, every resolved range must
	// lie inside [base, max).
	windowed bool
	base     int
	max      int
}

// NewTranslator creates a translator over buf applying delta to every
// resolved address.
func NewTranslator(buf []byte, delta Address) *Translator {
	return &Translator{buf: buf, delta: delta}
}

// Restrict enables access-window checking: any resolved range outside
// [base, max) fails with ErrAccessViolation. This is a hardening feature
// for untrusted sessions; translation is correct without it.
func (t *Translator) Restrict(base, max int) {
	t.windowed = true
	t.base = base
	t.max = max
}

// BufLen returns the length of the underlying buffer.
func (t *Translator) BufLen() int { return len(t.buf) }

// Resolve maps addr through the session delta and returns size bytes of
// the local buffer. Ranges outside the buffer return ErrTruncated;
// ranges outside an enabled access window return ErrAccessViolation.
func (t *Translator) Resolve(addr Address, size int) ([]byte, error) {
	off := int64(addr) + int64(t.delta)
	if size < 0 || off < 0 || off+int64(size) > int64(len(t.buf)) {
		return nil, fmt.Errorf("%w: address %#x size %d (buffer %d)",
			ErrTruncated, uint64(addr), size, len(t.buf))
	}
	if t.windowed && (off < int64(t.base) || off+int64(size) > int64(t.max)) {
		return nil, fmt.Errorf("%w: address %#x size %d outside [%#x, %#x)",
			ErrAccessViolation, uint64(addr), size, t.base, t.max)
	}
	return t.buf[off : off+int64(size)], nil
}

// ResolveRest maps addr and returns everything from it to the end of
// the buffer (or of the access window, when restricted). Variable
// length records whose total size is only known after sequential
// parsing, such as glyph strings, resolve this way and bound themselves
// while decoding.
func (t *Translator) ResolveRest(addr Address) ([]byte, error) {
	end := len(t.buf)
	if t.windowed && t.max < end {
		end = t.max
	}
	off := int64(addr) + int64(t.delta)
	if off < 0 || off > int64(end) {
		return nil, fmt.Errorf("%w: address %#x (buffer %d)", ErrTruncated, uint64(addr), len(t.buf))
	}
	if t.windowed && off < int64(t.base) {
		return nil, fmt.Errorf("%w: address %#x below window base %#x", ErrAccessViolation, uint64(addr), t.base)
	}
	return t.buf[off:end], nil
}
