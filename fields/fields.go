// Package fields builds vector fields for the renderer: procedural
// generators plus loaders for component image pairs and CSV samples.
package fields

import (
	"fmt"
	"image"
	"math"

	"github.com/pthm-cable/lic/config"
	"github.com/pthm-cable/lic/lic"
	"github.com/pthm-cable/lic/raster"
)

// Generator returns the vector at pixel center (x, y).
type Generator func(x, y float64) (ux, uy float64)

// Uniform points every vector along angle (radians).
func Uniform(angle, strength float64) Generator {
	ux := math.Cos(angle) * strength
	uy := math.Sin(angle) * strength
	return func(x, y float64) (float64, float64) {
		return ux, uy
	}
}

// Vortex circles counter-clockwise around (cx, cy). The center itself is the
// zero vector.
func Vortex(cx, cy, strength float64) Generator {
	return func(x, y float64) (float64, float64) {
		return -(y - cy) * strength, (x - cx) * strength
	}
}

// Saddle flows in along y and out along x around (cx, cy).
func Saddle(cx, cy, strength float64) Generator {
	return func(x, y float64) (float64, float64) {
		return (x - cx) * strength, -(y - cy) * strength
	}
}

// Flow derives direction and magnitude from two decorrelated Perlin lookups.
func Flow(seed int64, scale, strength float64) Generator {
	noise := lic.NewPerlinNoise(seed, 1)
	return func(x, y float64) (float64, float64) {
		angle := noise.Noise2D(x*scale, y*scale) * math.Pi * 2
		magnitude := math.Min(1, (noise.Noise2D(x*scale+100, y*scale+100)+1)*0.5)
		return math.Cos(angle) * magnitude * strength, math.Sin(angle) * magnitude * strength
	}
}

// Rasterize samples g at every pixel of r into single-channel X and Y buffers.
func Rasterize(r image.Rectangle, g Generator) (vx, vy *raster.Image) {
	vx = raster.New(r, raster.ComponentsAlpha)
	vy = raster.New(r, raster.ComponentsAlpha)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		rowX := vx.Row(y, r.Min.X, r.Max.X)
		rowY := vy.Row(y, r.Min.X, r.Max.X)
		for x := r.Min.X; x < r.Max.X; x++ {
			ux, uy := g(float64(x), float64(y))
			rowX[x-r.Min.X] = float32(ux)
			rowY[x-r.Min.X] = float32(uy)
		}
	}
	return vx, vy
}

// MaskCircle zeroes every vector farther than radius from (cx, cy), leaving
// the field undefined outside the disc.
func MaskCircle(vx, vy *raster.Image, cx, cy, radius float64) {
	r := vx.Rect.Intersect(vy.Rect)
	r2 := radius * radius
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy <= r2 {
				continue
			}
			vx.Pix[vx.PixOffset(x, y)] = 0
			vy.Pix[vy.PixOffset(x, y)] = 0
		}
	}
}

// FromConfig builds the field described by cfg over bounds.
func FromConfig(cfg config.FieldConfig, bounds image.Rectangle) (vx, vy *raster.Image, err error) {
	cx, cy := center(bounds)
	strength := cfg.Strength
	if strength == 0 {
		strength = 1
	}

	switch cfg.Kind {
	case "uniform":
		vx, vy = Rasterize(bounds, Uniform(cfg.Angle, strength))
	case "vortex":
		vx, vy = Rasterize(bounds, Vortex(cx, cy, strength))
	case "saddle":
		vx, vy = Rasterize(bounds, Saddle(cx, cy, strength))
	case "flow":
		vx, vy = Rasterize(bounds, Flow(cfg.Seed, cfg.Scale, strength))
	case "image":
		vx, vy, err = LoadImages(cfg.PathX, cfg.PathY)
	case "csv":
		vx, vy, err = LoadCSV(cfg.CSVPath, bounds)
	default:
		return nil, nil, fmt.Errorf("unknown field kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, nil, err
	}

	if cfg.MaskRadius > 0 {
		// Loaded fields carry their own bounds
		cx, cy := center(vx.Rect)
		MaskCircle(vx, vy, cx, cy, cfg.MaskRadius)
	}
	return vx, vy, nil
}

// center returns the middle pixel coordinate of r.
func center(r image.Rectangle) (cx, cy float64) {
	return float64(r.Min.X+r.Max.X-1) / 2, float64(r.Min.Y+r.Max.Y-1) / 2
}
