package cache

import (
	"sync"

	"github.com/gogpu/redcanvas/wire"
)

// DefaultPaletteCapacity is the default maximum cached palettes.
const DefaultPaletteCapacity = 256

// Palettes is a thread-safe palette cache with borrow semantics: Get
// pins an entry until the matching Release, so a palette cannot be
// evicted while a decode is reading it.
type Palettes struct {
	mu       sync.Mutex
	capacity int
	entries  map[uint64]*paletteEntry
	order    []uint64 // insertion order, oldest first; eviction scan skips pinned entries
}

type paletteEntry struct {
	palette *wire.Palette
	pins    int
}

// NewPalettes creates a palette cache holding up to capacity palettes.
// If capacity <= 0, DefaultPaletteCapacity is used.
func NewPalettes(capacity int) *Palettes {
	if capacity <= 0 {
		capacity = DefaultPaletteCapacity
	}
	return &Palettes{
		capacity: capacity,
		entries:  make(map[uint64]*paletteEntry, capacity),
	}
}

// Put stores the palette under its id, evicting the oldest unpinned
// entry if the cache is full.
func (c *Palettes) Put(p *wire.Palette) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[p.ID]; ok {
		e.palette = p
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries[p.ID] = &paletteEntry{palette: p}
	c.order = append(c.order, p.ID)
}

// Get returns the palette stored under id and pins it until Release.
func (c *Palettes) Get(id uint64) (*wire.Palette, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	e.pins++
	return e.palette, true
}

// Release unpins a palette previously returned by Get. Releasing a
// palette that is not cached or not pinned is a no-op.
func (c *Palettes) Release(p *wire.Palette) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[p.ID]; ok && e.pins > 0 {
		e.pins--
	}
}

// Len returns the number of cached palettes.
func (c *Palettes) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes the oldest unpinned entry. Called with mu held.
func (c *Palettes) evictOldest() {
	for i, id := range c.order {
		e, ok := c.entries[id]
		if !ok {
			continue
		}
		if e.pins > 0 {
			continue
		}
		delete(c.entries, id)
		c.order = append(c.order[:i], c.order[i+1:]...)
		return
	}
}
