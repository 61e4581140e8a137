// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface provides the canonical raster surfaces that all wire
// decode paths converge on.
//
// A Surface is a contiguous byte buffer with width, height, stride and
// format. 32-bit surfaces hold little-endian ARGB words; A1 surfaces
// hold LSB-first packed alpha bits. Surfaces are plain memory: they are
// safe for concurrent reads, and writes require external serialization.
package surface

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Common errors for surface operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("surface: invalid format")

	// ErrTooLarge is returned when the requested buffer exceeds the
	// allocation limit.
	ErrTooLarge = errors.New("surface: dimensions too large")
)

// maxBytes bounds a single surface allocation. Wire dimensions are
// attacker-controlled, so the limit is enforced before allocating.
const maxBytes = 1 << 30

// Surface is a canonical decoded raster.
type Surface struct {
	data   []byte
	width  int
	height int
	stride int
	format Format
}

// New creates a zero-filled surface with the given format and dimensions.
func New(format Format, width, height int) (*Surface, error) {
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	stride := format.StrideFor(width)
	if int64(stride)*int64(height) > maxBytes {
		return nil, fmt.Errorf("%w: %dx%d %s", ErrTooLarge, width, height, format)
	}
	return &Surface{
		data:   make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Stride returns the number of bytes per row, including padding.
func (s *Surface) Stride() int { return s.stride }

// Format returns the surface's pixel format.
func (s *Surface) Format() Format { return s.format }

// Data returns the raw pixel buffer of length Stride()*Height().
func (s *Surface) Data() []byte { return s.data }

// Row returns the bytes of row y, including stride padding.
func (s *Surface) Row(y int) []byte {
	return s.data[y*s.stride : (y+1)*s.stride]
}

// Pix32 returns the 32-bit pixel word at (x, y).
// Only meaningful for 32-bit formats.
func (s *Surface) Pix32(x, y int) uint32 {
	return binary.LittleEndian.Uint32(s.data[y*s.stride+x*4:])
}

// SetPix32 stores a 32-bit pixel word at (x, y).
// Only meaningful for 32-bit formats.
func (s *Surface) SetPix32(x, y int, v uint32) {
	binary.LittleEndian.PutUint32(s.data[y*s.stride+x*4:], v)
}

// A1Bit reports the alpha bit at (x, y) of an A1 surface.
func (s *Surface) A1Bit(x, y int) bool {
	return s.data[y*s.stride+(x>>3)]&(1<<(x&7)) != 0
}
