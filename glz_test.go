package redcanvas

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gogpu/redcanvas/surface"
	"github.com/gogpu/redcanvas/wire"
)

// fakeGlz allocates through the sink with the configured header and
// copies the input bytes in as pixels.
type fakeGlz struct {
	info    LzImageInfo
	noAlloc bool
}

func (f *fakeGlz) Decode(data []byte, sink *GlzSink) error {
	if f.noAlloc {
		return nil
	}
	dst, stride, err := sink.Alloc(f.info)
	if err != nil {
		return err
	}
	rowBytes := f.info.Width * 4
	for y := 0; y < f.info.Height && (y+1)*rowBytes <= len(data); y++ {
		copy(dst[y*stride:y*stride+rowBytes], data[y*rowBytes:])
	}
	return nil
}

func glzImage(w *wireBuf, id uint64, width, height uint32, payload []byte) wire.Address {
	data := w.chunk(0, payload)
	img := w.descriptor(wire.ImageTypeGlzRgb, 0, id, width, height)
	w.u32(uint32(len(payload)))
	w.u64(uint64(data))
	return img
}

func TestGetImageGlz(t *testing.T) {
	pixels := make([]byte, 8)
	binary.LittleEndian.PutUint32(pixels[0:], 0x00aa00aa)
	binary.LittleEndian.PutUint32(pixels[4:], 0x00bb00bb)

	engine := &fakeGlz{info: LzImageInfo{Type: LzTypeRGB32, Width: 2, Height: 1}}
	c := mustCanvas(t, Options{Glz: engine})

	w := newWireBuf()
	img := glzImage(w, 1, 2, 1, pixels)

	s, err := c.GetImage(w.translator(), img)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if s.Format() != surface.FormatRGB32 {
		t.Errorf("format = %s", s.Format())
	}
	if s.Pix32(0, 0) != 0x00aa00aa || s.Pix32(1, 0) != 0x00bb00bb {
		t.Errorf("pixels = %#x, %#x", s.Pix32(0, 0), s.Pix32(1, 0))
	}
}

func TestGetImageGlzErrors(t *testing.T) {
	t.Run("no decoder", func(t *testing.T) {
		c := mustCanvas(t, Options{})
		w := newWireBuf()
		img := glzImage(w, 1, 1, 1, make([]byte, 4))
		if _, err := c.GetImage(w.translator(), img); !errors.Is(err, ErrFormat) {
			t.Errorf("error = %v, want ErrFormat", err)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		engine := &fakeGlz{info: LzImageInfo{Type: LzTypeRGB32, Width: 4, Height: 4}}
		c := mustCanvas(t, Options{Glz: engine})
		w := newWireBuf()
		img := glzImage(w, 1, 2, 2, make([]byte, 64))
		if _, err := c.GetImage(w.translator(), img); !errors.Is(err, ErrFormat) {
			t.Errorf("error = %v, want ErrFormat", err)
		}
	})

	t.Run("no surface produced", func(t *testing.T) {
		engine := &fakeGlz{noAlloc: true}
		c := mustCanvas(t, Options{Glz: engine})
		w := newWireBuf()
		img := glzImage(w, 1, 1, 1, make([]byte, 4))
		if _, err := c.GetImage(w.translator(), img); !errors.Is(err, ErrCorruptData) {
			t.Errorf("error = %v, want ErrCorruptData", err)
		}
	})

	t.Run("indexed stream", func(t *testing.T) {
		engine := &fakeGlz{info: LzImageInfo{Type: LzTypePlt8, Width: 1, Height: 1}}
		c := mustCanvas(t, Options{Glz: engine})
		w := newWireBuf()
		img := glzImage(w, 1, 1, 1, make([]byte, 4))
		if _, err := c.GetImage(w.translator(), img); !errors.Is(err, ErrCorruptData) {
			t.Errorf("error = %v, want ErrCorruptData", err)
		}
	})
}
