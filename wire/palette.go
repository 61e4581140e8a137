package wire

import (
	"encoding/binary"
	"fmt"
)

// Palette is an ordered list of 32-bit color entries.
//
// A parsed palette owns its entries: the wire buffer is never aliased,
// so color-depth localization can rewrite entries without mutating wire
// data another decode may revisit.
type Palette struct {
	// ID identifies the palette in the palette cache. Inline palettes
	// are keyed by the address they were parsed from.
	ID uint64

	// Ents holds the color entries; NumEnts returns its length.
	Ents []uint32
}

// NumEnts returns the number of palette entries.
func (p *Palette) NumEnts() int { return len(p.Ents) }

// paletteHeaderSize is the wire size of the entry count field.
const paletteHeaderSize = 4

// maxPaletteEnts bounds the entry count read from the wire. Palette
// indices are at most 8 bits wide, so no valid palette exceeds 256.
const maxPaletteEnts = 256

// ParsePalette decodes a palette from the front of b, copying the
// entries into owned memory. The given id keys the palette in caches.
func ParsePalette(b []byte, id uint64) (*Palette, error) {
	if len(b) < paletteHeaderSize {
		return nil, fmt.Errorf("%w: palette needs %d bytes, have %d",
			ErrTruncated, paletteHeaderSize, len(b))
	}
	n := binary.LittleEndian.Uint32(b[0:4])
	if n > maxPaletteEnts {
		return nil, fmt.Errorf("%w: palette claims %d entries", ErrTruncated, n)
	}
	need := paletteHeaderSize + int(n)*4
	if len(b) < need {
		return nil, fmt.Errorf("%w: palette needs %d bytes, have %d",
			ErrTruncated, need, len(b))
	}
	ents := make([]uint32, n)
	for i := range ents {
		ents[i] = binary.LittleEndian.Uint32(b[paletteHeaderSize+i*4:])
	}
	return &Palette{ID: id, Ents: ents}, nil
}

// PaletteAt resolves and parses a palette at addr. The resolved address
// becomes the palette's cache id.
func (t *Translator) PaletteAt(addr Address) (*Palette, error) {
	hdr, err := t.Resolve(addr, paletteHeaderSize)
	if err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[0:4])
	if n > maxPaletteEnts {
		return nil, fmt.Errorf("%w: palette claims %d entries", ErrTruncated, n)
	}
	b, err := t.Resolve(addr, paletteHeaderSize+int(n)*4)
	if err != nil {
		return nil, err
	}
	return ParsePalette(b, uint64(addr))
}
