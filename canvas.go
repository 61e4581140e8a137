package redcanvas

import (
	"fmt"

	"github.com/gogpu/redcanvas/surface"
	"github.com/gogpu/redcanvas/wire"
)

// ImageCache stores decoded surfaces under their wire image id for the
// lifetime of a session. Implementations must be safe for concurrent
// use when the session is shared between rendering threads.
type ImageCache interface {
	Put(id uint64, s *surface.Surface)
	Get(id uint64) (*surface.Surface, bool)
}

// PaletteCache stores color palettes under their wire id with borrow
// semantics: Get pins the palette until the matching Release.
type PaletteCache interface {
	Put(p *wire.Palette)
	Get(id uint64) (*wire.Palette, bool)
	Release(p *wire.Palette)
}

// evictNotifier is implemented by image caches that report evictions.
// The canvas uses it to drop cached inverse surfaces when their
// original leaves the cache.
type evictNotifier interface {
	OnEvict(func(id uint64, s *surface.Surface))
}

// Options configures a Canvas. Capabilities that were build-time
// variants in older deployments (caches, GLZ support) are plain
// optional fields here; a nil engine or cache disables the paths that
// need it.
type Options struct {
	// Depth is the session color depth, 16 or 32. Zero means 32. At
	// depth 16, palette entries arrive as packed 5-5-5 values and are
	// localized to 32-bit on resolution.
	Depth int

	// Images is the session surface cache consulted by from-cache
	// references and filled by cache-me descriptors. Optional.
	Images ImageCache

	// Palettes is the session palette cache. Optional.
	Palettes PaletteCache

	// Quic, Lz and Glz are the codec engines. Each engine instance is
	// stateful between DecodeBegin and Decode, so a Canvas must not run
	// concurrent decodes; give each rendering thread its own Canvas
	// over the shared caches and a shared Inverses table.
	Quic QuicEngine
	Lz   LzEngine
	Glz  GlzDecoder

	// Inverses is the inverse-surface table. Canvases over the same
	// image cache must share one table, since the cached surfaces they
	// derive inverses from are shared too; construct it once with
	// NewInverseTable over that cache. When nil, the Canvas gets a
	// private table over Images.
	Inverses *InverseTable
}

// Canvas turns wire image references into canonical surfaces.
//
// All decode methods are synchronous and must be externally serialized
// per Canvas (the codec engines keep per-call state). The inverse table
// is the one internally locked structure, since cached surfaces are
// reachable from every Canvas sharing the image cache.
type Canvas struct {
	depth16  bool
	images   ImageCache
	palettes PaletteCache
	quic     QuicEngine
	lz       LzEngine
	glz      GlzDecoder

	inverses *InverseTable
}

// New creates a Canvas with the given options.
func New(opts Options) (*Canvas, error) {
	switch opts.Depth {
	case 0, 32:
	case 16:
	default:
		return nil, fmt.Errorf("%w: unsupported depth %d", ErrFormat, opts.Depth)
	}
	inverses := opts.Inverses
	if inverses == nil {
		inverses = NewInverseTable(opts.Images)
	}
	return &Canvas{
		depth16:  opts.Depth == 16,
		images:   opts.Images,
		palettes: opts.Palettes,
		quic:     opts.Quic,
		lz:       opts.Lz,
		glz:      opts.Glz,
		inverses: inverses,
	}, nil
}

// GetImage decodes the image reference at addr and returns its
// canonical surface. FromCache references return the previously stored
// surface; all other types decode fresh, and descriptors flagged
// cache-me store the result into the image cache under their id.
func (c *Canvas) GetImage(t *wire.Translator, addr wire.Address) (*surface.Surface, error) {
	db, err := t.Resolve(addr, wire.DescriptorSize)
	if err != nil {
		return nil, fmt.Errorf("%w: image descriptor: %v", ErrCorruptData, err)
	}
	desc, err := wire.ParseDescriptor(db)
	if err != nil {
		return nil, fmt.Errorf("%w: image descriptor: %v", ErrCorruptData, err)
	}
	body := addr + wire.DescriptorSize

	var surf *surface.Surface
	switch desc.Type {
	case wire.ImageTypeQuic:
		surf, err = c.getQuic(t, &desc, body, false)
	case wire.ImageTypeLzRgb, wire.ImageTypeLzPlt:
		surf, err = c.getLz(t, &desc, body, false)
	case wire.ImageTypeGlzRgb:
		surf, err = c.getGlz(t, &desc, body)
	case wire.ImageTypeBitmap:
		surf, err = c.getBitmap(t, body)
	case wire.ImageTypeFromCache:
		return c.cachedImage(desc.ID)
	default:
		return nil, fmt.Errorf("%w: invalid image type %d", ErrFormat, uint8(desc.Type))
	}
	if err != nil {
		return nil, err
	}

	if desc.Flags&wire.ImageCacheMe != 0 && c.images != nil {
		c.images.Put(desc.ID, surf)
	}
	return surf, nil
}

// GetInvertedImage decodes a Quic or Lz image with its RGB channels
// complemented during decode, preserving alpha; monochrome cursor
// rendering uses it. Cache flags are ignored here: an inverted decode
// never enters the image cache.
func (c *Canvas) GetInvertedImage(t *wire.Translator, addr wire.Address) (*surface.Surface, error) {
	db, err := t.Resolve(addr, wire.DescriptorSize)
	if err != nil {
		return nil, fmt.Errorf("%w: image descriptor: %v", ErrCorruptData, err)
	}
	desc, err := wire.ParseDescriptor(db)
	if err != nil {
		return nil, fmt.Errorf("%w: image descriptor: %v", ErrCorruptData, err)
	}
	body := addr + wire.DescriptorSize

	switch desc.Type {
	case wire.ImageTypeQuic:
		return c.getQuic(t, &desc, body, true)
	case wire.ImageTypeLzRgb, wire.ImageTypeLzPlt:
		return c.getLz(t, &desc, body, true)
	default:
		return nil, fmt.Errorf("%w: cannot invert image type %s", ErrFormat, desc.Type)
	}
}

// cachedImage fetches a from-cache reference. A miss is a protocol
// violation, not a decode failure.
func (c *Canvas) cachedImage(id uint64) (*surface.Surface, error) {
	if c.images == nil {
		return nil, fmt.Errorf("%w: from-cache image %d without an image cache", ErrCacheCoherency, id)
	}
	s, ok := c.images.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: image %d not in cache", ErrCacheCoherency, id)
	}
	return s, nil
}
