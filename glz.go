package redcanvas

import (
	"fmt"

	"github.com/gogpu/redcanvas/surface"
	"github.com/gogpu/redcanvas/wire"
)

// GlzSink is the decode-context slot a GlzDecoder populates: the
// decoder parses its own header, then calls Alloc to create the output
// surface and fills the returned buffer.
type GlzSink struct {
	surf *surface.Surface
}

// Alloc creates the canonical output surface for the decoded stream and
// returns its pixel buffer and stride. Palette-indexed types fail:
// dictionary-compressed pixels cannot be resolved against an arbitrary
// palette outside their original context, so only RGB variants are
// valid for Glz.
func (k *GlzSink) Alloc(info LzImageInfo) ([]byte, int, error) {
	if info.Type.Indexed() {
		return nil, 0, fmt.Errorf("%w: indexed glz images are unsupported", ErrFormat)
	}
	format := surface.FormatRGB32
	switch info.Type {
	case LzTypeRGBA:
		format = surface.FormatARGB32
	case LzTypeRGB32, LzTypeRGB24, LzTypeRGB16:
	default:
		return nil, 0, fmt.Errorf("%w: unexpected glz image type %d", ErrFormat, uint8(info.Type))
	}
	s, err := surface.New(format, info.Width, info.Height)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %dx%d surface: %v", ErrResource, info.Width, info.Height, err)
	}
	k.surf = s
	return s.Data(), s.Stride(), nil
}

// Surface returns the surface created by Alloc, or nil if the decoder
// never allocated one.
func (k *GlzSink) Surface() *surface.Surface { return k.surf }

// GlzDecoder is the external dictionary-reference decoder. Unlike the
// Quic and Lz engines it decodes in a single call: the dictionary state
// lives in the decoder, and the output surface is delivered through the
// sink.
type GlzDecoder interface {
	Decode(data []byte, sink *GlzSink) error
}

// getGlz decodes a GlzRgb image body.
func (c *Canvas) getGlz(t *wire.Translator, desc *wire.ImageDescriptor, addr wire.Address) (*surface.Surface, error) {
	if c.glz == nil {
		return nil, fmt.Errorf("%w: glz image without a glz decoder", ErrFormat)
	}
	bb, err := t.Resolve(addr, wire.LzRgbBodySize)
	if err != nil {
		return nil, fmt.Errorf("%w: glz body: %v", ErrCorruptData, err)
	}
	body, err := wire.ParseLzRgbBody(bb)
	if err != nil {
		return nil, fmt.Errorf("%w: glz body: %v", ErrCorruptData, err)
	}

	data, err := t.Chunks(body.Data).ReadAll(int(body.DataSize))
	if err != nil {
		return nil, fmt.Errorf("%w: glz input: %v", ErrCorruptData, err)
	}

	var sink GlzSink
	if err := c.glz.Decode(data, &sink); err != nil {
		return nil, fmt.Errorf("%w: glz decode: %v", ErrCorruptData, err)
	}
	surf := sink.Surface()
	if surf == nil {
		return nil, fmt.Errorf("%w: glz decoder produced no surface", ErrCorruptData)
	}
	if surf.Width() != int(desc.Width) || surf.Height() != int(desc.Height) {
		return nil, fmt.Errorf("%w: glz produced %dx%d, descriptor declares %dx%d",
			ErrFormat, surf.Width(), surf.Height(), desc.Width, desc.Height)
	}
	return surf, nil
}
