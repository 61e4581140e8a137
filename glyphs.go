package redcanvas

import (
	"fmt"

	"github.com/gogpu/redcanvas/internal/pixconv"
	"github.com/gogpu/redcanvas/surface"
	"github.com/gogpu/redcanvas/wire"
)

// glyphBox is a glyph's placement rectangle in string coordinates.
type glyphBox struct {
	left, top, right, bottom int
}

func boxOf(g *wire.RasterGlyph) glyphBox {
	left := int(g.RenderPos.X) + int(g.GlyphOrigin.X)
	top := int(g.RenderPos.Y) + int(g.GlyphOrigin.Y)
	return glyphBox{
		left:   left,
		top:    top,
		right:  left + int(g.Width),
		bottom: top + int(g.Height),
	}
}

func (b *glyphBox) union(o glyphBox) {
	b.left = min(b.left, o.left)
	b.top = min(b.top, o.top)
	b.right = max(b.right, o.right)
	b.bottom = max(b.bottom, o.bottom)
}

// GetStringMask composes a raster glyph string into one alpha mask
// sized to the union of the glyph placement boxes, and returns the
// mask's render origin (the union's top-left in string coordinates).
//
// bpp selects the glyph sample depth: 1 produces an A1 mask, 4 and 8
// produce A8. Overlapping glyphs compose by per-sample maximum.
func (c *Canvas) GetStringMask(t *wire.Translator, addr wire.Address, bpp int) (*surface.Surface, wire.Point, error) {
	var pos wire.Point

	if bpp != 1 && bpp != 4 && bpp != 8 {
		return nil, pos, fmt.Errorf("%w: invalid glyph bpp %d", ErrFormat, bpp)
	}

	raw, err := t.ResolveRest(addr)
	if err != nil {
		return nil, pos, fmt.Errorf("%w: glyph string: %v", ErrCorruptData, err)
	}
	str, err := wire.ParseString(raw)
	if err != nil {
		return nil, pos, fmt.Errorf("%w: glyph string: %v", ErrCorruptData, err)
	}
	if str.Length == 0 {
		return nil, pos, fmt.Errorf("%w: empty glyph string", ErrFormat)
	}

	// Records are variable length, so the bounds pass must decode them
	// all; keep them for the composition pass.
	glyphs := make([]*wire.RasterGlyph, 0, str.Length)
	var bounds glyphBox
	reader := str.Glyphs(bpp)
	for {
		g, err := reader.Next()
		if err != nil {
			return nil, pos, fmt.Errorf("%w: glyph %d: %v", ErrCorruptData, len(glyphs), err)
		}
		if g == nil {
			break
		}
		if len(glyphs) == 0 {
			bounds = boxOf(g)
		} else {
			bounds.union(boxOf(g))
		}
		glyphs = append(glyphs, g)
	}

	width := bounds.right - bounds.left
	height := bounds.bottom - bounds.top
	format := surface.FormatA8
	if bpp == 1 {
		format = surface.FormatA1
	}
	mask, err := surface.New(format, width, height)
	if err != nil {
		return nil, pos, fmt.Errorf("%w: %dx%d string mask: %v", ErrResource, width, height, err)
	}

	for _, g := range glyphs {
		putGlyph(mask, g, bpp, bounds)
	}

	pos.X = int32(bounds.left)
	pos.Y = int32(bounds.top)
	return mask, pos, nil
}

// putGlyph blits one glyph into the shared mask at its offset within
// bounds. Glyph source rows are stored bottom-up and are copied in
// reverse into the top-down destination. Samples compose by maximum,
// so overlapping glyphs keep their brightest coverage.
func putGlyph(dst *surface.Surface, g *wire.RasterGlyph, bpp int, bounds glyphBox) {
	box := boxOf(g)
	left := box.left - bounds.left
	top := box.top - bounds.top
	width := int(g.Width)
	height := int(g.Height)
	srcStride := g.RowBytes(bpp)

	for line := 0; line < height; line++ {
		src := g.Data[(height-1-line)*srcStride:]
		row := dst.Row(top + line)

		switch bpp {
		case 1:
			// OR is max for single bits; source rows are MSB-first,
			// the mask is LSB-first.
			pixconv.PutRowLSB(row, left, src, width)
		case 4:
			// Two samples per source byte, high nibble first; each
			// expands into the high bits of a destination byte.
			i := 0
			for ; i+1 < width; i += 2 {
				b := src[i/2]
				row[left+i] = max(row[left+i], b&0xf0)
				row[left+i+1] = max(row[left+i+1], b<<4)
			}
			if i < width {
				row[left+i] = max(row[left+i], src[i/2]&0xf0)
			}
		case 8:
			for i := 0; i < width; i++ {
				row[left+i] = max(row[left+i], src[i])
			}
		}
	}
}
