package redcanvas

import (
	"fmt"

	"github.com/gogpu/redcanvas/internal/pixconv"
	"github.com/gogpu/redcanvas/surface"
	"github.com/gogpu/redcanvas/wire"
)

// QuicImageType identifies a Quic stream's pixel layout.
type QuicImageType uint8

const (
	QuicTypeInvalid QuicImageType = iota
	QuicTypeGray
	QuicTypeRGB16
	QuicTypeRGB24
	QuicTypeRGB32
	QuicTypeRGBA
)

// QuicImageInfo is the header reported by DecodeBegin.
type QuicImageInfo struct {
	Type   QuicImageType
	Width  int
	Height int
}

// QuicEngine is the external Quic decompressor. Engines keep mutable
// position and error state between DecodeBegin and Decode, so an
// instance serves one decode at a time.
type QuicEngine interface {
	// DecodeBegin parses the stream header from the source and reports
	// the image's type and dimensions. The engine pulls its first input
	// run via src.MoreSpace(0) and keeps pulling as needed.
	DecodeBegin(src CodecSource) (QuicImageInfo, error)

	// Decode fills dst, which holds Height rows of stride bytes, with
	// the image decoded to the requested output type (QuicTypeRGB32 or
	// QuicTypeRGBA). Rows are written top-down.
	Decode(out QuicImageType, dst []byte, stride int) error
}

// getQuic decodes a Quic image body. When invers is set, every pixel's
// RGB channels are complemented after decode, preserving alpha; the
// cursor and mask paths use this.
func (c *Canvas) getQuic(t *wire.Translator, desc *wire.ImageDescriptor, addr wire.Address, invers bool) (*surface.Surface, error) {
	if c.quic == nil {
		return nil, fmt.Errorf("%w: quic image without a quic engine", ErrFormat)
	}
	bb, err := t.Resolve(addr, wire.QuicBodySize)
	if err != nil {
		return nil, fmt.Errorf("%w: quic body: %v", ErrCorruptData, err)
	}
	body, err := wire.ParseQuicBody(bb)
	if err != nil {
		return nil, fmt.Errorf("%w: quic body: %v", ErrCorruptData, err)
	}

	// Quic consumes 32-bit words, so chunk payloads must be word-sized.
	src := newChunkSource(t, body.Data, 4, "quic")

	info, err := c.quic.DecodeBegin(src)
	if err != nil {
		return nil, fmt.Errorf("%w: quic decode begin: %v", ErrCorruptData, err)
	}

	var alpha bool
	switch info.Type {
	case QuicTypeRGBA:
		alpha = true
	case QuicTypeRGB32, QuicTypeRGB24, QuicTypeRGB16:
		alpha = false
	default:
		return nil, fmt.Errorf("%w: unexpected quic image type %d", ErrFormat, uint8(info.Type))
	}

	if info.Width != int(desc.Width) || info.Height != int(desc.Height) {
		return nil, fmt.Errorf("%w: quic reports %dx%d, descriptor declares %dx%d",
			ErrFormat, info.Width, info.Height, desc.Width, desc.Height)
	}

	format := surface.FormatRGB32
	out := QuicTypeRGB32
	if alpha {
		format = surface.FormatARGB32
		out = QuicTypeRGBA
	}
	surf, err := surface.New(format, info.Width, info.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d surface: %v", ErrResource, info.Width, info.Height, err)
	}

	if err := c.quic.Decode(out, surf.Data(), surf.Stride()); err != nil {
		return nil, fmt.Errorf("%w: quic decode: %v", ErrCorruptData, err)
	}

	if invers {
		pixconv.InvertRGB(surf.Data(), surf.Width(), surf.Height(), surf.Stride())
	}
	return surf, nil
}
