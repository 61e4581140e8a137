package redcanvas

import (
	"errors"
	"fmt"

	"github.com/gogpu/redcanvas/internal/pixconv"
	"github.com/gogpu/redcanvas/surface"
	"github.com/gogpu/redcanvas/wire"
)

// bitmapBPP maps wire bitmap formats to their source bits per pixel.
var bitmapBPP = map[wire.BitmapFormat]int{
	wire.BitmapFmt1BitLE: 1,
	wire.BitmapFmt1BitBE: 1,
	wire.BitmapFmt4BitBE: 4,
	wire.BitmapFmt8Bit:   8,
	wire.BitmapFmt16Bit:  16,
	wire.BitmapFmt24Bit:  24,
	wire.BitmapFmt32Bit:  32,
	wire.BitmapFmtRGBA:   32,
}

// getBitmap decodes an uncompressed bitmap image body.
func (c *Canvas) getBitmap(t *wire.Translator, addr wire.Address) (*surface.Surface, error) {
	bb, err := t.Resolve(addr, wire.BitmapSize)
	if err != nil {
		return nil, fmt.Errorf("%w: bitmap header: %v", ErrCorruptData, err)
	}
	bm, err := wire.ParseBitmap(bb)
	if err != nil {
		return nil, fmt.Errorf("%w: bitmap header: %v", ErrCorruptData, err)
	}

	pal, borrowed, err := c.resolvePalette(t, bm.Palette, bm.Flags)
	if err != nil {
		return nil, err
	}
	defer c.releasePalette(pal, borrowed)

	return c.bitmapToSurface(t, &bm, pal)
}

// bitmapToSurface converts bitmap pixel data into a canonical top-down
// 32-bit surface. When the source is stored bottom-up, destination rows
// are written in reverse so the output orientation is uniform.
func (c *Canvas) bitmapToSurface(t *wire.Translator, bm *wire.Bitmap, pal *wire.Palette) (*surface.Surface, error) {
	bpp, ok := bitmapBPP[bm.Format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported bitmap format %d", ErrFormat, uint8(bm.Format))
	}
	width, height := int(bm.X), int(bm.Y)
	srcStride := int(bm.Stride)
	if need := (width*bpp + 7) / 8; srcStride < need {
		return nil, fmt.Errorf("%w: bitmap stride %d below row size %d", ErrCorruptData, srcStride, need)
	}

	src, err := t.Resolve(bm.Data, srcStride*height)
	if err != nil {
		return nil, fmt.Errorf("%w: bitmap data: %v", ErrCorruptData, err)
	}

	format := surface.FormatRGB32
	if bm.Format == wire.BitmapFmtRGBA {
		format = surface.FormatARGB32
	}
	surf, err := surface.New(format, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d surface: %v", ErrResource, width, height, err)
	}

	var ents []uint32
	if pal != nil {
		ents = pal.Ents
	}

	for y := 0; y < height; y++ {
		dy := y
		if !bm.TopDown() {
			dy = height - 1 - y
		}
		dst := surf.Row(dy)
		row := src[y*srcStride:]

		var rowErr error
		switch bm.Format {
		case wire.BitmapFmt32Bit, wire.BitmapFmtRGBA:
			pixconv.Row32(dst, row, width)
		case wire.BitmapFmt24Bit:
			pixconv.Row24(dst, row, width)
		case wire.BitmapFmt16Bit:
			pixconv.Row16(dst, row, width)
		case wire.BitmapFmt8Bit:
			rowErr = pixconv.Row8(dst, row, width, ents)
		case wire.BitmapFmt4BitBE:
			rowErr = pixconv.Row4BE(dst, row, width, ents)
		case wire.BitmapFmt1BitBE:
			rowErr = pixconv.Row1(dst, row, width, ents, true)
		case wire.BitmapFmt1BitLE:
			rowErr = pixconv.Row1(dst, row, width, ents, false)
		}
		if rowErr != nil {
			if errors.Is(rowErr, pixconv.ErrNoPalette) {
				return nil, fmt.Errorf("%w: %v", ErrFormat, rowErr)
			}
			return nil, fmt.Errorf("%w: row %d: %v", ErrCorruptData, y, rowErr)
		}
	}
	return surf, nil
}
