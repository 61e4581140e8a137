package cache

import (
	"sync"
	"testing"

	"github.com/gogpu/redcanvas/surface"
)

func newSurf(t *testing.T) *surface.Surface {
	t.Helper()
	s, err := surface.New(surface.FormatARGB32, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestImagesPutGet(t *testing.T) {
	c := NewImages(4)
	s := newSurf(t)

	if _, ok := c.Get(1); ok {
		t.Fatal("hit on empty cache")
	}
	c.Put(1, s)
	got, ok := c.Get(1)
	if !ok || got != s {
		t.Fatalf("Get(1) = %v, %v", got, ok)
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses", hits, misses)
	}
}

func TestImagesLRUEviction(t *testing.T) {
	c := NewImages(2)
	var evicted []uint64
	c.OnEvict(func(id uint64, s *surface.Surface) {
		evicted = append(evicted, id)
	})

	// Ids in one shard so they contend for the same capacity.
	a, b, d := uint64(16), uint64(32), uint64(48)
	c.Put(a, newSurf(t))
	c.Put(b, newSurf(t))
	c.Get(a) // a becomes most recently used
	c.Put(d, newSurf(t))

	if len(evicted) != 1 || evicted[0] != b {
		t.Fatalf("evicted = %v, want [%d]", evicted, b)
	}
	if _, ok := c.Get(a); !ok {
		t.Error("recently used entry evicted")
	}
	if _, ok := c.Get(d); !ok {
		t.Error("new entry missing")
	}
}

func TestImagesEvictionSubscribers(t *testing.T) {
	// Every registered callback sees the eviction, not just the last.
	c := NewImages(1)
	var first, second []uint64
	c.OnEvict(func(id uint64, s *surface.Surface) { first = append(first, id) })
	c.OnEvict(func(id uint64, s *surface.Surface) { second = append(second, id) })

	c.Put(16, newSurf(t))
	c.Put(32, newSurf(t)) // same shard, evicts 16

	if len(first) != 1 || first[0] != 16 {
		t.Errorf("first subscriber saw %v, want [16]", first)
	}
	if len(second) != 1 || second[0] != 16 {
		t.Errorf("second subscriber saw %v, want [16]", second)
	}
}

func TestImagesReplace(t *testing.T) {
	c := NewImages(4)
	s1, s2 := newSurf(t), newSurf(t)
	c.Put(5, s1)
	c.Put(5, s2)
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if got, _ := c.Get(5); got != s2 {
		t.Error("replace did not take")
	}
}

func TestImagesConcurrent(t *testing.T) {
	c := NewImages(8)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			s, _ := surface.New(surface.FormatRGB32, 1, 1)
			for i := 0; i < 200; i++ {
				id := uint64(g*200 + i)
				c.Put(id, s)
				c.Get(id)
			}
		}(g)
	}
	wg.Wait()
}
