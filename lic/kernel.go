package lic

import (
	"errors"
	"fmt"
	"image"

	"github.com/pthm-cable/lic/raster"
)

// Kernel convolves noise along streamlines of a vector field. It is
// immutable after construction; concurrent ProcessTile calls are safe as long
// as their windows do not overlap.
type Kernel struct {
	noise     NoiseSampler
	field     VectorField
	params    Params
	weights   []float32
	minWeight float32
}

// NewKernel validates p and precomputes the step weights.
func NewKernel(noise NoiseSampler, field VectorField, p Params) (*Kernel, error) {
	if noise == nil {
		return nil, errors.New("lic: nil noise sampler")
	}
	if field.X == nil || field.Y == nil {
		return nil, errors.New("lic: vector field needs both X and Y buffers")
	}
	if field.X.Rect.Empty() || field.Y.Rect.Empty() {
		return nil, errors.New("lic: empty vector field")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("lic: %w", err)
	}
	return &Kernel{
		noise:     noise,
		field:     field,
		params:    p,
		weights:   NewWeightWindow(p).Table(),
		minWeight: p.MinWeight(),
	}, nil
}

// Params returns the parameters the kernel was built with.
func (k *Kernel) Params() Params { return k.params }

// weight returns the weight of signed step i.
func (k *Kernel) weight(i int) float32 {
	return k.weights[i+k.params.NumSteps]
}

// Accumulate returns the weighted noise sum and weight sum for pixel (x, y).
// Both are zero when the seed vector is degenerate.
func (k *Kernel) Accumulate(x, y int) (acc, wsum float32) {
	px0, py0 := float32(x), float32(y)

	ux, uy := k.field.Sample(px0, py0)
	if ux == 0 && uy == 0 {
		return 0, 0
	}
	nx, ny, ok := Normalize(ux, uy)
	if !ok {
		return 0, 0
	}

	w := k.weight(0)
	acc = w * k.noise.Sample(px0, py0)
	wsum = w

	n := k.params.NumSteps

	fwd := NewTracer(k.field, px0, py0, nx, ny, Forward)
	for i := 1; i <= n; i++ {
		px, py := fwd.Next()
		w := k.weight(i)
		if w == 0 {
			continue
		}
		acc += w * k.noise.Sample(px, py)
		wsum += w
	}

	bwd := NewTracer(k.field, px0, py0, nx, ny, Backward)
	for i := 1; i <= n; i++ {
		px, py := bwd.Next()
		w := k.weight(-i)
		if w == 0 {
			continue
		}
		acc += w * k.noise.Sample(px, py)
		wsum += w
	}

	return acc, wsum
}

// Pixel returns the output value and alpha for (x, y). alpha is exactly 0 or 1.
func (k *Kernel) Pixel(x, y int) (value, alpha float32) {
	acc, wsum := k.Accumulate(x, y)
	if wsum < k.minWeight {
		return 0, 0
	}
	return acc / wsum, 1
}

// ProcessTile fills window (clipped to dst) row by row, polling abort once per
// row. It returns the number of rows completed. dst must be single-channel
// or RGBA (other layouts are left untouched); a single-channel destination
// receives the value only.
func (k *Kernel) ProcessTile(dst *raster.Image, window image.Rectangle, abort func() bool) int {
	window = window.Intersect(dst.Rect)
	if window.Empty() {
		return 0
	}
	if dst.Components != raster.ComponentsAlpha && dst.Components != raster.ComponentsRGBA {
		return 0
	}

	rows := 0
	for y := window.Min.Y; y < window.Max.Y; y++ {
		if abort != nil && abort() {
			break
		}

		row := dst.Row(y, window.Min.X, window.Max.X)
		switch dst.Components {
		case raster.ComponentsAlpha:
			for x := window.Min.X; x < window.Max.X; x++ {
				v, _ := k.Pixel(x, y)
				row[x-window.Min.X] = v
			}
		case raster.ComponentsRGBA:
			for x := window.Min.X; x < window.Max.X; x++ {
				v, a := k.Pixel(x, y)
				i := (x - window.Min.X) * 4
				row[i] = v
				row[i+1] = v
				row[i+2] = v
				row[i+3] = a
			}
		}
		rows++
	}
	return rows
}
