// Package raster provides float32 pixel buffers with explicit bounds, the
// shared currency between the LIC kernel, the field generators and the
// encoders.
package raster

import (
	"fmt"
	"image"
	"image/color"
)

// Depth is the per-component storage depth of a buffer's source.
// The kernel only operates on DepthFloat buffers.
type Depth uint8

const (
	DepthNone Depth = iota
	DepthByte
	DepthShort
	DepthHalf
	DepthFloat
)

func (d Depth) String() string {
	switch d {
	case DepthByte:
		return "byte"
	case DepthShort:
		return "short"
	case DepthHalf:
		return "half"
	case DepthFloat:
		return "float"
	default:
		return "none"
	}
}

// Components is the pixel component layout. The value is the channel count.
type Components uint8

const (
	ComponentsNone  Components = 0
	ComponentsAlpha Components = 1
	ComponentsRGB   Components = 3
	ComponentsRGBA  Components = 4
)

func (c Components) String() string {
	switch c {
	case ComponentsAlpha:
		return "alpha"
	case ComponentsRGB:
		return "rgb"
	case ComponentsRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("components(%d)", uint8(c))
	}
}

// Image is a float32 buffer over an integer rectangle. Pixel (x, y) starts at
// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*Components].
type Image struct {
	Pix        []float32
	Stride     int
	Rect       image.Rectangle
	Components Components
	Depth      Depth
}

// New allocates a zeroed float image.
func New(r image.Rectangle, c Components) *Image {
	n := int(c)
	return &Image{
		Pix:        make([]float32, r.Dx()*r.Dy()*n),
		Stride:     r.Dx() * n,
		Rect:       r,
		Components: c,
		Depth:      DepthFloat,
	}
}

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return m.Rect }

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return color.NRGBA64Model }

// At implements image.Image. Single-channel buffers read as gray, RGB as opaque.
func (m *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Rect)) {
		return color.NRGBA64{}
	}
	i := m.PixOffset(x, y)
	switch m.Components {
	case ComponentsAlpha:
		v := toUint16(m.Pix[i])
		return color.NRGBA64{R: v, G: v, B: v, A: 0xffff}
	case ComponentsRGB:
		return color.NRGBA64{R: toUint16(m.Pix[i]), G: toUint16(m.Pix[i+1]), B: toUint16(m.Pix[i+2]), A: 0xffff}
	default:
		return color.NRGBA64{R: toUint16(m.Pix[i]), G: toUint16(m.Pix[i+1]), B: toUint16(m.Pix[i+2]), A: toUint16(m.Pix[i+3])}
	}
}

// PixOffset returns the index of the first component of pixel (x, y).
func (m *Image) PixOffset(x, y int) int {
	return (y-m.Rect.Min.Y)*m.Stride + (x-m.Rect.Min.X)*int(m.Components)
}

// Value returns the first component of pixel (x, y), which must lie in Rect.
func (m *Image) Value(x, y int) float32 {
	return m.Pix[m.PixOffset(x, y)]
}

// Row returns the components of row y spanning [x0, x1).
func (m *Image) Row(y, x0, x1 int) []float32 {
	n := int(m.Components)
	i := m.PixOffset(x0, y)
	return m.Pix[i : i+(x1-x0)*n]
}

// Fill sets every component of every pixel to v.
func (m *Image) Fill(v float32) {
	for i := range m.Pix {
		m.Pix[i] = v
	}
}

// SubImage returns a view sharing pixels with m.
func (m *Image) SubImage(r image.Rectangle) *Image {
	r = r.Intersect(m.Rect)
	if r.Empty() {
		return &Image{Components: m.Components, Depth: m.Depth}
	}
	i := m.PixOffset(r.Min.X, r.Min.Y)
	return &Image{
		Pix:        m.Pix[i:],
		Stride:     m.Stride,
		Rect:       r,
		Components: m.Components,
		Depth:      m.Depth,
	}
}

func toUint16(v float32) uint16 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*65535 + 0.5)
}
