package wire

import (
	"encoding/binary"
	"fmt"
)

// Point is a signed 2D coordinate.
type Point struct {
	X int32
	Y int32
}

// StringHeaderSize is the wire size of a glyph string header.
const StringHeaderSize = 4

// String is an ordered sequence of raster glyph records.
type String struct {
	Length uint16
	Flags  uint16

	// data holds the packed glyph records following the header.
	data []byte
}

// ParseString decodes a glyph string from the front of b. The glyph
// records themselves are decoded lazily through Glyphs, since record N's
// position depends on the sizes of records 0..N-1.
func ParseString(b []byte) (*String, error) {
	if len(b) < StringHeaderSize {
		return nil, fmt.Errorf("%w: string needs %d bytes, have %d",
			ErrTruncated, StringHeaderSize, len(b))
	}
	return &String{
		Length: binary.LittleEndian.Uint16(b[0:2]),
		Flags:  binary.LittleEndian.Uint16(b[2:4]),
		data:   b[StringHeaderSize:],
	}, nil
}

// glyphHeaderSize is the wire size of a RasterGlyph header.
const glyphHeaderSize = 20

// RasterGlyph is one glyph record: placement, dimensions, and packed
// bitmap data whose length is implied by the dimensions and the string's
// bits per pixel.
type RasterGlyph struct {
	RenderPos   Point
	GlyphOrigin Point
	Width       uint16
	Height      uint16

	// Data holds the packed rows, bottom-up, each row padded to a whole
	// byte: ((Width*bpp+7)/8) bytes per row.
	Data []byte
}

// RowBytes returns the packed source row size for the given bpp.
func (g *RasterGlyph) RowBytes(bpp int) int {
	return (int(g.Width)*bpp + 7) / 8
}

// GlyphReader decodes a string's glyph records in order. Records are
// variable length, so decoding glyph N requires having decoded glyph
// N-1; there is no random access.
type GlyphReader struct {
	data []byte
	bpp  int
	left int
}

// Glyphs returns a reader over the string's records interpreted at bpp
// bits per glyph sample.
func (s *String) Glyphs(bpp int) *GlyphReader {
	return &GlyphReader{data: s.data, bpp: bpp, left: int(s.Length)}
}

// Next decodes the next glyph record. It returns (nil, nil) after the
// last record.
func (r *GlyphReader) Next() (*RasterGlyph, error) {
	if r.left == 0 {
		return nil, nil
	}
	if len(r.data) < glyphHeaderSize {
		return nil, fmt.Errorf("%w: glyph header needs %d bytes, have %d",
			ErrTruncated, glyphHeaderSize, len(r.data))
	}
	b := r.data
	g := &RasterGlyph{
		RenderPos: Point{
			X: int32(binary.LittleEndian.Uint32(b[0:4])),
			Y: int32(binary.LittleEndian.Uint32(b[4:8])),
		},
		GlyphOrigin: Point{
			X: int32(binary.LittleEndian.Uint32(b[8:12])),
			Y: int32(binary.LittleEndian.Uint32(b[12:16])),
		},
		Width:  binary.LittleEndian.Uint16(b[16:18]),
		Height: binary.LittleEndian.Uint16(b[18:20]),
	}
	size := g.RowBytes(r.bpp) * int(g.Height)
	if len(b) < glyphHeaderSize+size {
		return nil, fmt.Errorf("%w: glyph data needs %d bytes, have %d",
			ErrTruncated, size, len(b)-glyphHeaderSize)
	}
	g.Data = b[glyphHeaderSize : glyphHeaderSize+size]
	r.data = b[glyphHeaderSize+size:]
	r.left--
	return g, nil
}
