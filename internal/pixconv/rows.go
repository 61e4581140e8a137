package pixconv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Row kernel errors.
var (
	// ErrPaletteIndex is returned when pixel data references an entry at
	// or beyond the palette's entry count.
	ErrPaletteIndex = errors.New("pixconv: palette index out of range")

	// ErrNoPalette is returned when an indexed format is decoded without
	// a palette.
	ErrNoPalette = errors.New("pixconv: indexed format without palette")
)

// Row32 copies one row of 4-byte pixels unchanged.
func Row32(dst, src []byte, width int) {
	copy(dst[:width*4], src[:width*4])
}

// Row24 unpacks one row of 3-byte pixels into 4-byte pixels. The high
// byte of each destination pixel is left zero.
func Row24(dst, src []byte, width int) {
	for x := 0; x < width; x++ {
		dst[x*4+0] = src[x*3+0]
		dst[x*4+1] = src[x*3+1]
		dst[x*4+2] = src[x*3+2]
	}
}

// Row16 expands one row of packed 5-5-5 pixels into 32-bit pixels.
func Row16(dst, src []byte, width int) {
	for x := 0; x < width; x++ {
		c := uint32(binary.LittleEndian.Uint16(src[x*2:]))
		binary.LittleEndian.PutUint32(dst[x*4:], Expand555(c))
	}
}

// Row8 maps one row of 8-bit palette indices to 32-bit pixels.
func Row8(dst, src []byte, width int, ents []uint32) error {
	if ents == nil {
		return ErrNoPalette
	}
	for x := 0; x < width; x++ {
		idx := int(src[x])
		if idx >= len(ents) {
			return fmt.Errorf("%w: index %d, %d entries", ErrPaletteIndex, idx, len(ents))
		}
		binary.LittleEndian.PutUint32(dst[x*4:], ents[idx])
	}
	return nil
}

// Row4BE maps one row of packed 4-bit palette indices, high nibble
// first, to 32-bit pixels. A trailing half byte on odd widths uses only
// the high nibble.
func Row4BE(dst, src []byte, width int, ents []uint32) error {
	if ents == nil {
		return ErrNoPalette
	}
	for x := 0; x < width; x++ {
		b := src[x>>1]
		idx := int(b >> 4)
		if x&1 != 0 {
			idx = int(b & 0x0f)
		}
		if idx >= len(ents) {
			return fmt.Errorf("%w: index %d, %d entries", ErrPaletteIndex, idx, len(ents))
		}
		binary.LittleEndian.PutUint32(dst[x*4:], ents[idx])
	}
	return nil
}

// Row1 maps one row of packed 1-bit pixels to 32-bit pixels: set bits
// take ents[1] (foreground), clear bits ents[0] (background). The bit
// order within each byte follows bigEndian.
func Row1(dst, src []byte, width int, ents []uint32, bigEndian bool) error {
	if ents == nil {
		return ErrNoPalette
	}
	if len(ents) < 2 {
		return fmt.Errorf("%w: 1bpp needs 2 entries, have %d", ErrPaletteIndex, len(ents))
	}
	for x := 0; x < width; x++ {
		var set bool
		if bigEndian {
			set = TestBitBE(src, x)
		} else {
			set = TestBitLE(src, x)
		}
		c := ents[0]
		if set {
			c = ents[1]
		}
		binary.LittleEndian.PutUint32(dst[x*4:], c)
	}
	return nil
}

// InvertRGB XORs the low three channel bytes of every 32-bit pixel in
// the buffer, preserving the high (alpha) byte.
func InvertRGB(data []byte, width, height, stride int) {
	for y := 0; y < height; y++ {
		row := data[y*stride:]
		for x := 0; x < width; x++ {
			row[x*4+0] ^= 0xff
			row[x*4+1] ^= 0xff
			row[x*4+2] ^= 0xff
		}
	}
}
