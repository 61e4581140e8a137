// Package cache provides default session caches for decoded surfaces
// and palettes. Both are safe for concurrent use and satisfy the
// redcanvas cache interfaces; deployments with their own cache layers
// can substitute them.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/redcanvas/surface"
)

// Default configuration constants.
const (
	// numShards is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	numShards = 16

	// shardMask is used for fast shard selection (numShards - 1).
	shardMask = numShards - 1

	// DefaultImageCapacity is the default maximum surfaces per shard.
	DefaultImageCapacity = 64
)

// Images is a thread-safe, sharded LRU cache of decoded surfaces keyed
// by wire image id. Ids are already well distributed, so the id itself
// selects the shard.
type Images struct {
	shards   [numShards]*imageShard
	capacity int

	// onEvict callbacks run outside the shard lock with each evicted
	// entry, in registration order. The inverse table registers here to
	// drop cached inverse surfaces when their original leaves the cache.
	onEvict []func(id uint64, s *surface.Surface)

	// Statistics (atomic for zero-allocation reads)
	hits   atomic.Uint64
	misses atomic.Uint64
}

type imageEntry struct {
	id      uint64
	surface *surface.Surface
	prev    *imageEntry
	next    *imageEntry
}

// imageShard is a single shard with its own mutex and LRU list.
type imageShard struct {
	mu      sync.Mutex
	entries map[uint64]*imageEntry
	head    *imageEntry // most recently used
	tail    *imageEntry // least recently used
}

// NewImages creates an image cache holding up to capacity surfaces per
// shard. If capacity <= 0, DefaultImageCapacity is used.
func NewImages(capacity int) *Images {
	if capacity <= 0 {
		capacity = DefaultImageCapacity
	}
	c := &Images{capacity: capacity}
	for i := range c.shards {
		c.shards[i] = &imageShard{entries: make(map[uint64]*imageEntry, capacity)}
	}
	return c
}

// OnEvict registers a callback invoked for every evicted surface.
// Callbacks accumulate; each registration is notified. Must be called
// before the cache is shared between goroutines.
func (c *Images) OnEvict(fn func(id uint64, s *surface.Surface)) {
	c.onEvict = append(c.onEvict, fn)
}

// Put stores a surface under id, evicting the least recently used entry
// if the shard is full. Storing an id again replaces the surface.
func (c *Images) Put(id uint64, s *surface.Surface) {
	shard := c.shards[id&shardMask]

	var evicted *imageEntry
	shard.mu.Lock()
	if e, ok := shard.entries[id]; ok {
		e.surface = s
		shard.moveToFront(e)
	} else {
		if len(shard.entries) >= c.capacity {
			evicted = shard.tail
			shard.remove(evicted)
			delete(shard.entries, evicted.id)
		}
		e := &imageEntry{id: id, surface: s}
		shard.entries[id] = e
		shard.pushFront(e)
	}
	shard.mu.Unlock()

	if evicted != nil {
		for _, fn := range c.onEvict {
			fn(evicted.id, evicted.surface)
		}
	}
}

// Get returns the surface stored under id, if any.
func (c *Images) Get(id uint64) (*surface.Surface, bool) {
	shard := c.shards[id&shardMask]

	shard.mu.Lock()
	e, ok := shard.entries[id]
	if ok {
		shard.moveToFront(e)
	}
	shard.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.surface, true
}

// Len returns the number of cached surfaces.
func (c *Images) Len() int {
	n := 0
	for _, shard := range c.shards {
		shard.mu.Lock()
		n += len(shard.entries)
		shard.mu.Unlock()
	}
	return n
}

// Stats returns the hit and miss counts.
func (c *Images) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func (s *imageShard) pushFront(e *imageEntry) {
	e.prev = nil
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *imageShard) remove(e *imageEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (s *imageShard) moveToFront(e *imageEntry) {
	if s.head == e {
		return
	}
	s.remove(e)
	s.pushFront(e)
}
