package redcanvas

import (
	"fmt"

	"github.com/gogpu/redcanvas/internal/pixconv"
	"github.com/gogpu/redcanvas/wire"
)

// resolvePalette returns the palette referenced by addr under the given
// bitmap flags, and whether the caller must Release it after use.
//
// Inline palettes are parsed into owned memory and localized there, so
// the wire buffer is never mutated; a second decode revisiting the same
// bytes sees the original 16-bit entries, not a double-converted copy.
func (c *Canvas) resolvePalette(t *wire.Translator, addr wire.Address, flags uint8) (*wire.Palette, bool, error) {
	if addr == 0 {
		return nil, false, nil
	}

	if flags&wire.BitmapPalFromCache != 0 {
		if c.palettes == nil {
			return nil, false, fmt.Errorf("%w: from-cache palette %#x without a palette cache",
				ErrCacheCoherency, uint64(addr))
		}
		p, ok := c.palettes.Get(uint64(addr))
		if !ok {
			return nil, false, fmt.Errorf("%w: palette %#x not in cache", ErrCacheCoherency, uint64(addr))
		}
		return p, true, nil
	}

	p, err := t.PaletteAt(addr)
	if err != nil {
		return nil, false, fmt.Errorf("%w: palette: %v", ErrCorruptData, err)
	}
	c.localizePalette(p)
	if flags&wire.BitmapPalCacheMe != 0 && c.palettes != nil {
		c.palettes.Put(p)
	}
	return p, false, nil
}

// releasePalette returns a borrowed palette to the cache.
func (c *Canvas) releasePalette(p *wire.Palette, borrowed bool) {
	if borrowed && p != nil {
		c.palettes.Release(p)
	}
}

// localizePalette expands 5-5-5 entries to 8-8-8 when the session runs
// at 16-bit depth. The expansion is one-way, so it is only ever applied
// to a freshly parsed private copy.
func (c *Canvas) localizePalette(p *wire.Palette) {
	if !c.depth16 {
		return
	}
	for i, e := range p.Ents {
		p.Ents[i] = pixconv.Expand555(e)
	}
}
