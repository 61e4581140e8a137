package redcanvas

import (
	"fmt"

	"github.com/gogpu/redcanvas/internal/pixconv"
	"github.com/gogpu/redcanvas/surface"
	"github.com/gogpu/redcanvas/wire"
)

// LzImageType identifies an Lz stream's pixel layout.
type LzImageType uint8

const (
	LzTypeInvalid LzImageType = iota
	LzTypeRGB16
	LzTypeRGB24
	LzTypeRGB32
	LzTypeRGBA
	LzTypePlt1LE
	LzTypePlt1BE
	LzTypePlt4LE
	LzTypePlt4BE
	LzTypePlt8
)

// Indexed reports whether the type is palette-indexed.
func (t LzImageType) Indexed() bool {
	return t >= LzTypePlt1LE && t <= LzTypePlt8
}

// LzImageInfo is the stream header reported by DecodeBegin. Unlike
// bitmaps, an Lz stream carries its own orientation.
type LzImageInfo struct {
	Type    LzImageType
	Width   int
	Height  int
	NPixels int
	TopDown bool
}

// LzEngine is the external Lz decompressor. Engines keep mutable state
// between DecodeBegin and Decode, so an instance serves one decode at a
// time. Indexed streams resolve indices against the palette given to
// DecodeBegin.
type LzEngine interface {
	DecodeBegin(src CodecSource, palette *wire.Palette) (LzImageInfo, error)

	// Decode fills dst, which holds Height rows of stride bytes, with
	// the image decoded to the requested output type (LzTypeRGB32 or
	// LzTypeRGBA). Rows are written top-down; the adapter flips the
	// result when the stream reports bottom-up.
	Decode(out LzImageType, dst []byte, stride int) error
}

// getLz decodes an LzRgb or LzPlt image body.
func (c *Canvas) getLz(t *wire.Translator, desc *wire.ImageDescriptor, addr wire.Address, invers bool) (*surface.Surface, error) {
	if c.lz == nil {
		return nil, fmt.Errorf("%w: lz image without an lz engine", ErrFormat)
	}

	var dataAddr wire.Address
	var pal *wire.Palette
	var borrowed bool
	switch desc.Type {
	case wire.ImageTypeLzRgb:
		bb, err := t.Resolve(addr, wire.LzRgbBodySize)
		if err != nil {
			return nil, fmt.Errorf("%w: lz rgb body: %v", ErrCorruptData, err)
		}
		body, err := wire.ParseLzRgbBody(bb)
		if err != nil {
			return nil, fmt.Errorf("%w: lz rgb body: %v", ErrCorruptData, err)
		}
		dataAddr = body.Data
	case wire.ImageTypeLzPlt:
		bb, err := t.Resolve(addr, wire.LzPltBodySize)
		if err != nil {
			return nil, fmt.Errorf("%w: lz plt body: %v", ErrCorruptData, err)
		}
		body, err := wire.ParseLzPltBody(bb)
		if err != nil {
			return nil, fmt.Errorf("%w: lz plt body: %v", ErrCorruptData, err)
		}
		dataAddr = body.Data
		pal, borrowed, err = c.resolvePalette(t, body.Palette, body.Flags)
		if err != nil {
			return nil, err
		}
		if pal == nil {
			return nil, fmt.Errorf("%w: lz plt image without a palette", ErrFormat)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected lz image type %s", ErrFormat, desc.Type)
	}
	defer c.releasePalette(pal, borrowed)

	src := newChunkSource(t, dataAddr, 1, "lz")

	info, err := c.lz.DecodeBegin(src, pal)
	if err != nil {
		return nil, fmt.Errorf("%w: lz decode begin: %v", ErrCorruptData, err)
	}

	var alpha bool
	switch info.Type {
	case LzTypeRGBA:
		alpha = true
	case LzTypeRGB32, LzTypeRGB24, LzTypeRGB16,
		LzTypePlt1LE, LzTypePlt1BE, LzTypePlt4LE, LzTypePlt4BE, LzTypePlt8:
		alpha = false
	default:
		return nil, fmt.Errorf("%w: unexpected lz image type %d", ErrFormat, uint8(info.Type))
	}

	if info.Type.Indexed() && desc.Type != wire.ImageTypeLzPlt {
		return nil, fmt.Errorf("%w: indexed lz stream in an rgb image", ErrFormat)
	}
	if info.Width != int(desc.Width) || info.Height != int(desc.Height) {
		return nil, fmt.Errorf("%w: lz reports %dx%d, descriptor declares %dx%d",
			ErrFormat, info.Width, info.Height, desc.Width, desc.Height)
	}
	if !info.Type.Indexed() && info.NPixels != info.Width*info.Height {
		return nil, fmt.Errorf("%w: lz pixel count %d for %dx%d image",
			ErrCorruptData, info.NPixels, info.Width, info.Height)
	}

	format := surface.FormatRGB32
	out := LzTypeRGB32
	if alpha {
		format = surface.FormatARGB32
		out = LzTypeRGBA
	}
	surf, err := surface.New(format, info.Width, info.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d surface: %v", ErrResource, info.Width, info.Height, err)
	}

	if err := c.lz.Decode(out, surf.Data(), surf.Stride()); err != nil {
		return nil, fmt.Errorf("%w: lz decode: %v", ErrCorruptData, err)
	}

	if !info.TopDown {
		flipRows(surf)
	}
	if invers {
		pixconv.InvertRGB(surf.Data(), surf.Width(), surf.Height(), surf.Stride())
	}
	return surf, nil
}

// flipRows reverses the surface's row order in place, converting a
// bottom-up decode to the canonical top-down orientation.
func flipRows(s *surface.Surface) {
	stride := s.Stride()
	tmp := make([]byte, stride)
	for top, bot := 0, s.Height()-1; top < bot; top, bot = top+1, bot-1 {
		a, b := s.Row(top), s.Row(bot)
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
