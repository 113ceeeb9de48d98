package lic

import (
	"math"

	"github.com/pthm-cable/lic/raster"
)

// VectorField reads (ux, uy) from two component buffers. Only the first
// channel of each buffer is used.
type VectorField struct {
	X, Y *raster.Image
}

// NewVectorField pairs the X and Y component buffers.
func NewVectorField(x, y *raster.Image) VectorField {
	return VectorField{X: x, Y: y}
}

// Sample returns the raw vector at the pixel nearest (x, y), edge-clamped
// independently in each buffer's bounds.
func (f VectorField) Sample(x, y float32) (ux, uy float32) {
	return SampleClamped(f.X, x, y), SampleClamped(f.Y, x, y)
}

// SampleClamped returns the first channel of img at the pixel nearest (x, y),
// clamping both coordinates into img's bounds.
func SampleClamped(img *raster.Image, x, y float32) float32 {
	r := img.Rect
	ix := clampInt(nearest(x), r.Min.X, r.Max.X-1)
	iy := clampInt(nearest(y), r.Min.Y, r.Max.Y-1)
	return img.Pix[img.PixOffset(ix, iy)]
}

// nearest rounds half up. Non-finite coordinates saturate so clamping picks an edge.
func nearest(v float32) int {
	f := math.Floor(float64(v) + 0.5)
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	case math.IsNaN(f):
		return 0
	}
	return int(f)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
