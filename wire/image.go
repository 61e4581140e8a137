package wire

import (
	"encoding/binary"
	"fmt"
)

// ImageType identifies the decode path for an image reference.
type ImageType uint8

const (
	ImageTypeBitmap ImageType = iota
	ImageTypeQuic
	ImageTypeLzPlt
	ImageTypeLzRgb
	ImageTypeGlzRgb
	ImageTypeFromCache
)

// String returns the image type's display name.
func (t ImageType) String() string {
	switch t {
	case ImageTypeBitmap:
		return "Bitmap"
	case ImageTypeQuic:
		return "Quic"
	case ImageTypeLzPlt:
		return "LzPlt"
	case ImageTypeLzRgb:
		return "LzRgb"
	case ImageTypeGlzRgb:
		return "GlzRgb"
	case ImageTypeFromCache:
		return "FromCache"
	}
	return fmt.Sprintf("ImageType(%d)", uint8(t))
}

// Image descriptor flags.
const (
	// ImageCacheMe requests that the decoded surface be stored into the
	// session image cache under the descriptor's id.
	ImageCacheMe uint8 = 1 << 0
)

// DescriptorSize is the wire size of an ImageDescriptor.
const DescriptorSize = 18

// ImageDescriptor heads every image reference on the wire.
type ImageDescriptor struct {
	Type   ImageType
	Flags  uint8
	ID     uint64
	Width  uint32
	Height uint32
}

// ParseDescriptor decodes an ImageDescriptor from the front of b.
func ParseDescriptor(b []byte) (ImageDescriptor, error) {
	if len(b) < DescriptorSize {
		return ImageDescriptor{}, fmt.Errorf("%w: image descriptor needs %d bytes, have %d",
			ErrTruncated, DescriptorSize, len(b))
	}
	return ImageDescriptor{
		Type:   ImageType(b[0]),
		Flags:  b[1],
		ID:     binary.LittleEndian.Uint64(b[2:10]),
		Width:  binary.LittleEndian.Uint32(b[10:14]),
		Height: binary.LittleEndian.Uint32(b[14:18]),
	}, nil
}

// Bitmap formats.
type BitmapFormat uint8

const (
	BitmapFmtInvalid BitmapFormat = iota
	BitmapFmt1BitLE
	BitmapFmt1BitBE
	BitmapFmt4BitLE
	BitmapFmt4BitBE
	BitmapFmt8Bit
	BitmapFmt16Bit
	BitmapFmt24Bit
	BitmapFmt32Bit
	BitmapFmtRGBA
)

// Bitmap flags.
const (
	// BitmapPalCacheMe requests the bitmap's inline palette be stored
	// into the palette cache.
	BitmapPalCacheMe uint8 = 1 << 0

	// BitmapPalFromCache marks the palette address as a palette-cache id
	// rather than an inline palette.
	BitmapPalFromCache uint8 = 1 << 1

	// BitmapTopDown marks the pixel rows as stored top-down. When clear,
	// rows are stored bottom-up.
	BitmapTopDown uint8 = 1 << 2
)

// BitmapSize is the wire size of a Bitmap header.
const BitmapSize = 30

// Bitmap describes an uncompressed pixel payload.
type Bitmap struct {
	Format  BitmapFormat
	X       uint32 // width in pixels
	Y       uint32 // height in pixels
	Stride  uint32 // source row stride in bytes
	Flags   uint8
	Data    Address
	Palette Address
}

// ParseBitmap decodes a Bitmap header from the front of b.
func ParseBitmap(b []byte) (Bitmap, error) {
	if len(b) < BitmapSize {
		return Bitmap{}, fmt.Errorf("%w: bitmap needs %d bytes, have %d",
			ErrTruncated, BitmapSize, len(b))
	}
	return Bitmap{
		Format:  BitmapFormat(b[0]),
		X:       binary.LittleEndian.Uint32(b[1:5]),
		Y:       binary.LittleEndian.Uint32(b[5:9]),
		Stride:  binary.LittleEndian.Uint32(b[9:13]),
		Flags:   b[13],
		Data:    Address(binary.LittleEndian.Uint64(b[14:22])),
		Palette: Address(binary.LittleEndian.Uint64(b[22:30])),
	}, nil
}

// TopDown reports whether the bitmap rows are stored top-down.
func (b *Bitmap) TopDown() bool { return b.Flags&BitmapTopDown != 0 }

// Mask flags.
const (
	// MaskInvers requests the logical inverse of the mask bits.
	MaskInvers uint8 = 1 << 0
)

// QMaskSize is the wire size of a QMask.
const QMaskSize = 9

// QMask references a 1bpp bitmap image used as an alpha mask.
type QMask struct {
	Bitmap Address // image reference; zero means no mask
	Flags  uint8
}

// ParseQMask decodes a QMask from the front of b.
func ParseQMask(b []byte) (QMask, error) {
	if len(b) < QMaskSize {
		return QMask{}, fmt.Errorf("%w: qmask needs %d bytes, have %d",
			ErrTruncated, QMaskSize, len(b))
	}
	return QMask{
		Bitmap: Address(binary.LittleEndian.Uint64(b[0:8])),
		Flags:  b[8],
	}, nil
}

// QuicBodySize is the wire size of a Quic image body.
const QuicBodySize = 12

// QuicBody follows the descriptor of a Quic image. Data addresses the
// first chunk of the compressed payload.
type QuicBody struct {
	DataSize uint32
	Data     Address
}

// ParseQuicBody decodes a QuicBody from the front of b.
func ParseQuicBody(b []byte) (QuicBody, error) {
	if len(b) < QuicBodySize {
		return QuicBody{}, fmt.Errorf("%w: quic body needs %d bytes, have %d",
			ErrTruncated, QuicBodySize, len(b))
	}
	return QuicBody{
		DataSize: binary.LittleEndian.Uint32(b[0:4]),
		Data:     Address(binary.LittleEndian.Uint64(b[4:12])),
	}, nil
}

// LzRgbBodySize is the wire size of an LzRgb or GlzRgb image body.
const LzRgbBodySize = 12

// LzRgbBody follows the descriptor of an LzRgb or GlzRgb image.
type LzRgbBody struct {
	DataSize uint32
	Data     Address
}

// ParseLzRgbBody decodes an LzRgbBody from the front of b.
func ParseLzRgbBody(b []byte) (LzRgbBody, error) {
	if len(b) < LzRgbBodySize {
		return LzRgbBody{}, fmt.Errorf("%w: lz rgb body needs %d bytes, have %d",
			ErrTruncated, LzRgbBodySize, len(b))
	}
	return LzRgbBody{
		DataSize: binary.LittleEndian.Uint32(b[0:4]),
		Data:     Address(binary.LittleEndian.Uint64(b[4:12])),
	}, nil
}

// LzPltBodySize is the wire size of an LzPlt image body.
const LzPltBodySize = 21

// LzPltBody follows the descriptor of an LzPlt image. Flags carries the
// palette cache bits (BitmapPalCacheMe, BitmapPalFromCache).
type LzPltBody struct {
	Flags    uint8
	DataSize uint32
	Palette  Address
	Data     Address
}

// ParseLzPltBody decodes an LzPltBody from the front of b.
func ParseLzPltBody(b []byte) (LzPltBody, error) {
	if len(b) < LzPltBodySize {
		return LzPltBody{}, fmt.Errorf("%w: lz plt body needs %d bytes, have %d",
			ErrTruncated, LzPltBodySize, len(b))
	}
	return LzPltBody{
		Flags:    b[0],
		DataSize: binary.LittleEndian.Uint32(b[1:5]),
		Palette:  Address(binary.LittleEndian.Uint64(b[5:13])),
		Data:     Address(binary.LittleEndian.Uint64(b[13:21])),
	}, nil
}
