package redcanvas

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gogpu/redcanvas/cache"
	"github.com/gogpu/redcanvas/surface"
	"github.com/gogpu/redcanvas/wire"
)

// wireBuf assembles test wire buffers. Addresses are byte offsets; the
// first 16 bytes are reserved so no record lands on the null address.
type wireBuf struct {
	b []byte
}

func newWireBuf() *wireBuf {
	return &wireBuf{b: make([]byte, 16)}
}

func (w *wireBuf) addr() wire.Address { return wire.Address(len(w.b)) }

func (w *wireBuf) u8(v uint8) { w.b = append(w.b, v) }

func (w *wireBuf) u16(v uint16) {
	w.b = binary.LittleEndian.AppendUint16(w.b, v)
}

func (w *wireBuf) u32(v uint32) {
	w.b = binary.LittleEndian.AppendUint32(w.b, v)
}

func (w *wireBuf) u64(v uint64) {
	w.b = binary.LittleEndian.AppendUint64(w.b, v)
}

func (w *wireBuf) raw(p []byte) wire.Address {
	a := w.addr()
	w.b = append(w.b, p...)
	return a
}

func (w *wireBuf) translator() *wire.Translator {
	return wire.NewTranslator(w.b, 0)
}

// descriptor appends an ImageDescriptor and returns its address.
func (w *wireBuf) descriptor(typ wire.ImageType, flags uint8, id uint64, width, height uint32) wire.Address {
	a := w.addr()
	w.u8(uint8(typ))
	w.u8(flags)
	w.u64(id)
	w.u32(width)
	w.u32(height)
	return a
}

// bitmapBody appends a Bitmap header.
func (w *wireBuf) bitmapBody(format wire.BitmapFormat, width, height, stride uint32, flags uint8, data, palette wire.Address) {
	w.u8(uint8(format))
	w.u32(width)
	w.u32(height)
	w.u32(stride)
	w.u8(flags)
	w.u64(uint64(data))
	w.u64(uint64(palette))
}

// palette appends an inline palette and returns its address.
func (w *wireBuf) palette(ents ...uint32) wire.Address {
	a := w.addr()
	w.u32(uint32(len(ents)))
	for _, e := range ents {
		w.u32(e)
	}
	return a
}

// chunk appends one data chunk and returns its address. Chains are
// built back to front so the next links are known up front.
func (w *wireBuf) chunk(next wire.Address, payload []byte) wire.Address {
	a := w.addr()
	w.u32(uint32(len(payload)))
	w.u64(0)
	w.u64(uint64(next))
	w.raw(payload)
	return a
}

func mustCanvas(t *testing.T, opts Options) *Canvas {
	t.Helper()
	c, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewBadDepth(t *testing.T) {
	if _, err := New(Options{Depth: 24}); !errors.Is(err, ErrFormat) {
		t.Errorf("depth 24: error = %v, want ErrFormat", err)
	}
	for _, d := range []int{0, 16, 32} {
		if _, err := New(Options{Depth: d}); err != nil {
			t.Errorf("depth %d: %v", d, err)
		}
	}
}

func TestGetImageBitmap8(t *testing.T) {
	// 2x2 bottom-up 8-bit bitmap with a 4-entry inline palette. The
	// source's first row lands on the output's last row.
	w := newWireBuf()
	pal := w.palette(0x0000aa, 0x0000bb, 0x0000cc, 0x0000dd)
	data := w.raw([]byte{0, 1, 2, 3})
	img := w.descriptor(wire.ImageTypeBitmap, 0, 1, 2, 2)
	w.bitmapBody(wire.BitmapFmt8Bit, 2, 2, 2, 0, data, pal)

	c := mustCanvas(t, Options{})
	s, err := c.GetImage(w.translator(), img)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if s.Format() != surface.FormatRGB32 || s.Width() != 2 || s.Height() != 2 {
		t.Fatalf("surface = %s %dx%d", s.Format(), s.Width(), s.Height())
	}
	if s.Pix32(0, 0) != 0x0000cc || s.Pix32(1, 0) != 0x0000dd {
		t.Errorf("top row = %#x, %#x", s.Pix32(0, 0), s.Pix32(1, 0))
	}
	if s.Pix32(0, 1) != 0x0000aa || s.Pix32(1, 1) != 0x0000bb {
		t.Errorf("bottom row = %#x, %#x", s.Pix32(0, 1), s.Pix32(1, 1))
	}
}

func TestGetImageBitmap32TopDown(t *testing.T) {
	w := newWireBuf()
	row := make([]byte, 8)
	binary.LittleEndian.PutUint32(row[0:], 0x11223344)
	binary.LittleEndian.PutUint32(row[4:], 0x55667788)
	data := w.raw(row)
	img := w.descriptor(wire.ImageTypeBitmap, 0, 1, 2, 1)
	w.bitmapBody(wire.BitmapFmt32Bit, 2, 1, 8, wire.BitmapTopDown, data, 0)

	c := mustCanvas(t, Options{})
	s, err := c.GetImage(w.translator(), img)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if s.Pix32(0, 0) != 0x11223344 || s.Pix32(1, 0) != 0x55667788 {
		t.Errorf("pixels = %#x, %#x", s.Pix32(0, 0), s.Pix32(1, 0))
	}
}

func TestGetImageBitmapRGBA(t *testing.T) {
	w := newWireBuf()
	data := w.raw([]byte{1, 2, 3, 4})
	img := w.descriptor(wire.ImageTypeBitmap, 0, 1, 1, 1)
	w.bitmapBody(wire.BitmapFmtRGBA, 1, 1, 4, wire.BitmapTopDown, data, 0)

	c := mustCanvas(t, Options{})
	s, err := c.GetImage(w.translator(), img)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if s.Format() != surface.FormatARGB32 {
		t.Errorf("format = %s, want ARGB32", s.Format())
	}
}

func TestGetImageBitmap16(t *testing.T) {
	w := newWireBuf()
	row := make([]byte, 4)
	binary.LittleEndian.PutUint16(row[0:], 0x7fff)
	binary.LittleEndian.PutUint16(row[2:], 0x001f)
	data := w.raw(row)
	img := w.descriptor(wire.ImageTypeBitmap, 0, 1, 2, 1)
	w.bitmapBody(wire.BitmapFmt16Bit, 2, 1, 4, wire.BitmapTopDown, data, 0)

	c := mustCanvas(t, Options{})
	s, err := c.GetImage(w.translator(), img)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if s.Pix32(0, 0) != 0xffffff || s.Pix32(1, 0) != 0x0000ff {
		t.Errorf("pixels = %#06x, %#06x", s.Pix32(0, 0), s.Pix32(1, 0))
	}
}

func TestGetImageBitmapErrors(t *testing.T) {
	t.Run("stride below row size", func(t *testing.T) {
		w := newWireBuf()
		data := w.raw(make([]byte, 8))
		img := w.descriptor(wire.ImageTypeBitmap, 0, 1, 4, 1)
		w.bitmapBody(wire.BitmapFmt32Bit, 4, 1, 8, wire.BitmapTopDown, data, 0)

		c := mustCanvas(t, Options{})
		if _, err := c.GetImage(w.translator(), img); !errors.Is(err, ErrCorruptData) {
			t.Errorf("error = %v, want ErrCorruptData", err)
		}
	})

	t.Run("indexed without palette", func(t *testing.T) {
		w := newWireBuf()
		data := w.raw([]byte{0, 0})
		img := w.descriptor(wire.ImageTypeBitmap, 0, 1, 2, 1)
		w.bitmapBody(wire.BitmapFmt8Bit, 2, 1, 2, wire.BitmapTopDown, data, 0)

		c := mustCanvas(t, Options{})
		if _, err := c.GetImage(w.translator(), img); !errors.Is(err, ErrFormat) {
			t.Errorf("error = %v, want ErrFormat", err)
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		w := newWireBuf()
		pal := w.palette(0x1)
		data := w.raw([]byte{5, 0})
		img := w.descriptor(wire.ImageTypeBitmap, 0, 1, 2, 1)
		w.bitmapBody(wire.BitmapFmt8Bit, 2, 1, 2, wire.BitmapTopDown, data, pal)

		c := mustCanvas(t, Options{})
		if _, err := c.GetImage(w.translator(), img); !errors.Is(err, ErrCorruptData) {
			t.Errorf("error = %v, want ErrCorruptData", err)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		w := newWireBuf()
		data := w.raw([]byte{0})
		img := w.descriptor(wire.ImageTypeBitmap, 0, 1, 1, 1)
		w.bitmapBody(wire.BitmapFmt4BitLE, 1, 1, 1, wire.BitmapTopDown, data, 0)

		c := mustCanvas(t, Options{})
		if _, err := c.GetImage(w.translator(), img); !errors.Is(err, ErrFormat) {
			t.Errorf("error = %v, want ErrFormat", err)
		}
	})
}

func TestGetImageUnknownType(t *testing.T) {
	w := newWireBuf()
	img := w.descriptor(wire.ImageType(99), 0, 1, 1, 1)

	c := mustCanvas(t, Options{})
	if _, err := c.GetImage(w.translator(), img); !errors.Is(err, ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

func TestGetImageTruncatedDescriptor(t *testing.T) {
	c := mustCanvas(t, Options{})
	tr := wire.NewTranslator(make([]byte, 8), 0)
	if _, err := c.GetImage(tr, 0); !errors.Is(err, ErrCorruptData) {
		t.Errorf("error = %v, want ErrCorruptData", err)
	}
}

func TestGetImageFromCache(t *testing.T) {
	images := cache.NewImages(0)
	c := mustCanvas(t, Options{Images: images})

	stored, err := surface.New(surface.FormatRGB32, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	images.Put(42, stored)

	w := newWireBuf()
	img := w.descriptor(wire.ImageTypeFromCache, 0, 42, 3, 3)

	got, err := c.GetImage(w.translator(), img)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if got != stored {
		t.Error("from-cache did not return the stored surface")
	}

	w2 := newWireBuf()
	missing := w2.descriptor(wire.ImageTypeFromCache, 0, 7, 3, 3)
	if _, err := c.GetImage(w2.translator(), missing); !errors.Is(err, ErrCacheCoherency) {
		t.Errorf("miss: error = %v, want ErrCacheCoherency", err)
	}

	noCache := mustCanvas(t, Options{})
	if _, err := noCache.GetImage(w.translator(), img); !errors.Is(err, ErrCacheCoherency) {
		t.Errorf("no cache: error = %v, want ErrCacheCoherency", err)
	}
}

func TestGetImageCacheMe(t *testing.T) {
	images := cache.NewImages(0)
	c := mustCanvas(t, Options{Images: images})

	w := newWireBuf()
	data := w.raw([]byte{1, 2, 3, 4})
	img := w.descriptor(wire.ImageTypeBitmap, wire.ImageCacheMe, 9, 1, 1)
	w.bitmapBody(wire.BitmapFmt32Bit, 1, 1, 4, wire.BitmapTopDown, data, 0)

	s, err := c.GetImage(w.translator(), img)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	cached, ok := images.Get(9)
	if !ok || cached != s {
		t.Error("cache-me surface not stored under its id")
	}
}

func TestPaletteLocalization(t *testing.T) {
	// At 16-bit depth inline palette entries arrive packed 5-5-5 and
	// are widened before indexing.
	w := newWireBuf()
	pal := w.palette(0x7fff)
	data := w.raw([]byte{0, 0})
	img := w.descriptor(wire.ImageTypeBitmap, 0, 1, 1, 1)
	w.bitmapBody(wire.BitmapFmt8Bit, 1, 1, 2, wire.BitmapTopDown, data, pal)

	c := mustCanvas(t, Options{Depth: 16})
	s, err := c.GetImage(w.translator(), img)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if s.Pix32(0, 0) != 0xffffff {
		t.Errorf("pixel = %#06x, want 0xffffff", s.Pix32(0, 0))
	}

	// At 32-bit depth the entries pass through untouched.
	c32 := mustCanvas(t, Options{})
	s32, err := c32.GetImage(w.translator(), img)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if s32.Pix32(0, 0) != 0x7fff {
		t.Errorf("pixel = %#06x, want 0x7fff", s32.Pix32(0, 0))
	}
}

func TestPaletteCache(t *testing.T) {
	palettes := cache.NewPalettes(0)
	c := mustCanvas(t, Options{Palettes: palettes})

	// First image carries the palette inline and asks for it to be
	// cached; the second references it by the same address as an id.
	w := newWireBuf()
	pal := w.palette(0x0000aa, 0x0000bb)
	data := w.raw([]byte{1, 0})
	first := w.descriptor(wire.ImageTypeBitmap, 0, 1, 2, 1)
	w.bitmapBody(wire.BitmapFmt8Bit, 2, 1, 2, wire.BitmapTopDown|wire.BitmapPalCacheMe, data, pal)
	second := w.descriptor(wire.ImageTypeBitmap, 0, 2, 2, 1)
	w.bitmapBody(wire.BitmapFmt8Bit, 2, 1, 2, wire.BitmapTopDown|wire.BitmapPalFromCache, data, pal)

	if _, err := c.GetImage(w.translator(), first); err != nil {
		t.Fatalf("first decode: %v", err)
	}
	if palettes.Len() != 1 {
		t.Fatalf("palette cache Len = %d, want 1", palettes.Len())
	}

	s, err := c.GetImage(w.translator(), second)
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if s.Pix32(0, 0) != 0x0000bb {
		t.Errorf("pixel = %#x, want 0xbb", s.Pix32(0, 0))
	}

	// A from-cache reference to an id never stored is a protocol error.
	w2 := newWireBuf()
	data2 := w2.raw([]byte{0, 0})
	img := w2.descriptor(wire.ImageTypeBitmap, 0, 3, 2, 1)
	w2.bitmapBody(wire.BitmapFmt8Bit, 2, 1, 2, wire.BitmapTopDown|wire.BitmapPalFromCache, data2, 0x9999)
	if _, err := c.GetImage(w2.translator(), img); !errors.Is(err, ErrCacheCoherency) {
		t.Errorf("error = %v, want ErrCacheCoherency", err)
	}
}

func TestPaletteReleasedOnDecodeError(t *testing.T) {
	// A borrowed palette must be unpinned even when the decode fails
	// afterwards; otherwise it could never be evicted again.
	palettes := cache.NewPalettes(1)
	palettes.Put(&wire.Palette{ID: 0x50, Ents: []uint32{0x1}})
	c := mustCanvas(t, Options{Palettes: palettes})

	// Index 5 is out of range for the single-entry palette.
	w := newWireBuf()
	data := w.raw([]byte{5})
	img := w.descriptor(wire.ImageTypeBitmap, 0, 1, 1, 1)
	w.bitmapBody(wire.BitmapFmt8Bit, 1, 1, 1, wire.BitmapTopDown|wire.BitmapPalFromCache, data, 0x50)

	if _, err := c.GetImage(w.translator(), img); !errors.Is(err, ErrCorruptData) {
		t.Fatalf("error = %v, want ErrCorruptData", err)
	}

	// With the pin gone the entry is evictable, so inserting into the
	// full cache replaces it instead of growing past capacity.
	palettes.Put(&wire.Palette{ID: 0x60})
	if palettes.Len() != 1 {
		t.Errorf("palette cache Len = %d, want 1", palettes.Len())
	}
}
