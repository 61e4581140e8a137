package redcanvas

import (
	"fmt"
	"sync"

	"github.com/gogpu/redcanvas/internal/pixconv"
	"github.com/gogpu/redcanvas/surface"
	"github.com/gogpu/redcanvas/wire"
)

// InverseTable caches the derived inverse of a surface, keyed by the
// original's identity. Cached surfaces are shared across every canvas
// over the same image cache, so the table must be shared just as wide:
// give all canvases over one image cache the same table, and every
// first access to a surface's inverse observes one instance.
type InverseTable struct {
	mu sync.Mutex
	m  map[*surface.Surface]*surface.Surface
}

// NewInverseTable creates an inverse table for surfaces held in images.
// When the cache reports evictions, the table drops the evicted
// surface's attachment, so an inverse never outlives its original.
func NewInverseTable(images ImageCache) *InverseTable {
	t := &InverseTable{}
	if n, ok := images.(evictNotifier); ok {
		n.OnEvict(func(_ uint64, s *surface.Surface) {
			t.Release(s)
		})
	}
	return t
}

// GetMask decodes the mask reference and returns its A1 surface, or nil
// when the mask has no bitmap. An inverted mask that is also flagged
// cache-me is stored uninverted and the inversion served from the
// inverse cache, so cache hits and the original observe the same bits;
// direct uncached masks invert during conversion instead, saving a
// second pass.
func (c *Canvas) GetMask(t *wire.Translator, m *wire.QMask) (*surface.Surface, error) {
	if m.Bitmap == 0 {
		return nil, nil
	}

	db, err := t.Resolve(m.Bitmap, wire.DescriptorSize)
	if err != nil {
		return nil, fmt.Errorf("%w: mask descriptor: %v", ErrCorruptData, err)
	}
	desc, err := wire.ParseDescriptor(db)
	if err != nil {
		return nil, fmt.Errorf("%w: mask descriptor: %v", ErrCorruptData, err)
	}

	needInvers := m.Flags&wire.MaskInvers != 0
	cacheMe := desc.Flags&wire.ImageCacheMe != 0 && c.images != nil

	var surf *surface.Surface
	var inverted bool
	switch desc.Type {
	case wire.ImageTypeBitmap:
		bb, err := t.Resolve(m.Bitmap+wire.DescriptorSize, wire.BitmapSize)
		if err != nil {
			return nil, fmt.Errorf("%w: mask bitmap: %v", ErrCorruptData, err)
		}
		bm, err := wire.ParseBitmap(bb)
		if err != nil {
			return nil, fmt.Errorf("%w: mask bitmap: %v", ErrCorruptData, err)
		}
		inverted = needInvers && !cacheMe
		surf, err = c.bitmapToMask(t, &bm, inverted)
		if err != nil {
			return nil, err
		}
	case wire.ImageTypeFromCache:
		surf, err = c.cachedImage(desc.ID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: invalid mask image type %s", ErrFormat, desc.Type)
	}

	if cacheMe {
		c.images.Put(desc.ID, surf)
	}
	if needInvers && !inverted {
		return c.Inverse(surf)
	}
	return surf, nil
}

// bitmapToMask converts a 1bpp bitmap into a canonical A1 surface.
// Canonical bits are LSB-first, so big-endian source rows are
// bit-reversed on the way in; when inversion is also requested the two
// transforms fuse into a single pass over the scanlines.
func (c *Canvas) bitmapToMask(t *wire.Translator, bm *wire.Bitmap, invert bool) (*surface.Surface, error) {
	if bm.Format != wire.BitmapFmt1BitBE && bm.Format != wire.BitmapFmt1BitLE {
		return nil, fmt.Errorf("%w: mask bitmap format %d is not 1bpp", ErrFormat, uint8(bm.Format))
	}
	width, height := int(bm.X), int(bm.Y)
	lineSize := (width + 7) / 8
	srcStride := int(bm.Stride)
	if srcStride < lineSize {
		return nil, fmt.Errorf("%w: mask stride %d below row size %d", ErrCorruptData, srcStride, lineSize)
	}

	src, err := t.Resolve(bm.Data, srcStride*height)
	if err != nil {
		return nil, fmt.Errorf("%w: mask data: %v", ErrCorruptData, err)
	}

	surf, err := surface.New(surface.FormatA1, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d mask: %v", ErrResource, width, height, err)
	}

	reverse := bm.Format == wire.BitmapFmt1BitBE
	for y := 0; y < height; y++ {
		dy := y
		if !bm.TopDown() {
			dy = height - 1 - y
		}
		row := src[y*srcStride:]
		dst := surf.Row(dy)
		switch {
		case !reverse && !invert:
			copy(dst[:lineSize], row[:lineSize])
		case !reverse && invert:
			for i := 0; i < lineSize; i++ {
				dst[i] = ^row[i]
			}
		case reverse && !invert:
			for i := 0; i < lineSize; i++ {
				dst[i] = pixconv.ReverseBits(row[i])
			}
		default:
			for i := 0; i < lineSize; i++ {
				dst[i] = ^pixconv.ReverseBits(row[i])
			}
		}
	}
	return surf, nil
}

// Inverse returns the cached inverse of s, computing it on first use.
//
// The race window is deliberate: the table lock covers only the lookup
// and the attach, never the pixel work. A caller that computes an
// inverse but finds another already attached on re-acquire discards its
// own and returns the winner's, so all concurrent first-accesses
// observe one instance.
func (t *InverseTable) Inverse(s *surface.Surface) (*surface.Surface, error) {
	t.mu.Lock()
	if inv, ok := t.m[s]; ok {
		t.mu.Unlock()
		return inv, nil
	}
	t.mu.Unlock()

	inv, err := invertSurface(s)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if winner, ok := t.m[s]; ok {
		return winner, nil
	}
	if t.m == nil {
		t.m = make(map[*surface.Surface]*surface.Surface)
	}
	t.m[s] = inv
	return inv, nil
}

// Release drops the cached inverse of s.
func (t *InverseTable) Release(s *surface.Surface) {
	t.mu.Lock()
	delete(t.m, s)
	t.mu.Unlock()
}

// Inverse returns the cached inverse of s through the session's shared
// inverse table.
func (c *Canvas) Inverse(s *surface.Surface) (*surface.Surface, error) {
	return c.inverses.Inverse(s)
}

// ReleaseInverse drops the cached inverse of s from the session's
// shared inverse table.
func (c *Canvas) ReleaseInverse(s *surface.Surface) {
	c.inverses.Release(s)
}

// invertSurface computes the format-specific inverse: bit complement
// for A1 masks, channel complement preserving alpha for 32-bit color.
// Inversion is an involution; invert twice and the pixels are equal.
func invertSurface(s *surface.Surface) (*surface.Surface, error) {
	switch s.Format() {
	case surface.FormatA1:
		inv, err := surface.New(surface.FormatA1, s.Width(), s.Height())
		if err != nil {
			return nil, fmt.Errorf("%w: inverse mask: %v", ErrResource, err)
		}
		lineSize := (s.Width() + 7) / 8
		for y := 0; y < s.Height(); y++ {
			src, dst := s.Row(y), inv.Row(y)
			for i := 0; i < lineSize; i++ {
				dst[i] = ^src[i]
			}
		}
		return inv, nil
	case surface.FormatRGB32:
		inv, err := surface.New(surface.FormatRGB32, s.Width(), s.Height())
		if err != nil {
			return nil, fmt.Errorf("%w: inverse surface: %v", ErrResource, err)
		}
		copy(inv.Data(), s.Data())
		pixconv.InvertRGB(inv.Data(), inv.Width(), inv.Height(), inv.Stride())
		return inv, nil
	default:
		return nil, fmt.Errorf("%w: cannot invert %s surface", ErrFormat, s.Format())
	}
}
