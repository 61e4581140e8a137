// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

// Format represents a canonical pixel storage format.
//
// Every wire decode path converges on one of these before the surface is
// handed to the drawing backend. 32-bit formats store little-endian ARGB
// words, so the in-memory byte order is B, G, R, A. FormatA1 packs eight
// alpha bits per byte, least significant bit first.
type Format uint8

const (
	// FormatA1 is a 1-bit alpha mask, LSB-first within each byte.
	FormatA1 Format = iota

	// FormatA8 is an 8-bit alpha mask, one byte per sample.
	FormatA8

	// FormatRGB32 is 32 bits per pixel with the high byte unused.
	FormatRGB32

	// FormatARGB32 is 32 bits per pixel including alpha.
	FormatARGB32

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// BitsPerPixel is the number of bits each pixel occupies.
	BitsPerPixel int

	// HasAlpha indicates if the format carries alpha information.
	HasAlpha bool

	// Name is the format's display name.
	Name string
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatA1:     {BitsPerPixel: 1, HasAlpha: true, Name: "A1"},
	FormatA8:     {BitsPerPixel: 8, HasAlpha: true, Name: "A8"},
	FormatRGB32:  {BitsPerPixel: 32, HasAlpha: false, Name: "RGB32"},
	FormatARGB32: {BitsPerPixel: 32, HasAlpha: true, Name: "ARGB32"},
}

// Info returns metadata about the format.
// Returns the zero FormatInfo for invalid formats.
func (f Format) Info() FormatInfo {
	if !f.IsValid() {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// IsValid reports whether the format is one of the defined constants.
func (f Format) IsValid() bool {
	return f < formatCount
}

// String returns the format's display name.
func (f Format) String() string {
	if !f.IsValid() {
		return "invalid"
	}
	return formatInfoTable[f].Name
}

// RowBytes returns the minimum number of bytes needed for one row of
// width pixels, without alignment padding.
func (f Format) RowBytes(width int) int {
	return (width*formatInfoTable[f].BitsPerPixel + 7) / 8
}

// StrideFor returns the stride used for a surface row of width pixels.
// Rows are padded to 32-bit boundaries, matching the drawing backend's
// layout expectations.
func (f Format) StrideFor(width int) int {
	return (width*formatInfoTable[f].BitsPerPixel + 31) / 32 * 4
}
