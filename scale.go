package redcanvas

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/redcanvas/surface"
)

// ScaleMode selects the resampling filter.
type ScaleMode uint8

const (
	// ScaleNearest picks the nearest source pixel.
	ScaleNearest ScaleMode = iota

	// ScaleInterpolated blends neighboring source pixels.
	ScaleInterpolated
)

// Scale resamples a region of src onto a new width x height surface of
// the same format. The affine transform translates the region origin to
// (0, 0) and scales region size to destination size; the resampling
// itself is delegated to the drawing backend's kernels.
//
// Resampling filters channels independently, so the canonical BGRA byte
// order passes through the backend's RGBA image view unchanged.
func Scale(src *surface.Surface, region image.Rectangle, width, height int, mode ScaleMode) (*surface.Surface, error) {
	if src.Format() != surface.FormatRGB32 && src.Format() != surface.FormatARGB32 {
		return nil, fmt.Errorf("%w: cannot scale %s surface", ErrFormat, src.Format())
	}
	if region.Dx() <= 0 || region.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty scale region %v", ErrFormat, region)
	}

	var kernel xdraw.Interpolator
	switch mode {
	case ScaleNearest:
		kernel = xdraw.NearestNeighbor
	case ScaleInterpolated:
		kernel = xdraw.ApproxBiLinear
	default:
		return nil, fmt.Errorf("%w: invalid scale mode %d", ErrFormat, uint8(mode))
	}

	dst, err := surface.New(src.Format(), width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d surface: %v", ErrResource, width, height, err)
	}

	srcImg := &image.RGBA{
		Pix:    src.Data(),
		Stride: src.Stride(),
		Rect:   image.Rect(0, 0, src.Width(), src.Height()),
	}
	dstImg := &image.RGBA{
		Pix:    dst.Data(),
		Stride: dst.Stride(),
		Rect:   image.Rect(0, 0, width, height),
	}

	sx := float64(width) / float64(region.Dx())
	sy := float64(height) / float64(region.Dy())
	m := f64.Aff3{
		sx, 0, -float64(region.Min.X) * sx,
		0, sy, -float64(region.Min.Y) * sy,
	}
	kernel.Transform(dstImg, m, srcImg, region, xdraw.Src, nil)
	return dst, nil
}
