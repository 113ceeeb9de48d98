package lic

import (
	"image"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tiny := math.Float32frombits(1) // smallest positive subnormal
	inf := float32(math.Inf(1))
	nan := float32(math.NaN())

	tests := []struct {
		name   string
		ux, uy float32
		ok     bool
		nx, ny float32
	}{
		{"unit", 1, 0, true, 1, 0},
		{"scaled", 3, 4, true, 0.6, 0.8},
		{"negative", 0, -7, true, 0, -1},
		{"zero", 0, 0, false, 0, 0},
		{"nan", nan, 1, false, 0, 0},
		{"inf", inf, 1, false, 0, 0},
		{"subnormal", tiny, 0, true, 1, 0},
		{"subnormal diagonal", tiny, tiny, true, float32(math.Sqrt2 / 2), float32(math.Sqrt2 / 2)},
		{"huge", math.MaxFloat32, math.MaxFloat32, true, float32(math.Sqrt2 / 2), float32(math.Sqrt2 / 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nx, ny, ok := Normalize(tt.ux, tt.uy)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if math.Abs(float64(nx-tt.nx)) > 1e-6 || math.Abs(float64(ny-tt.ny)) > 1e-6 {
				t.Errorf("Normalize = (%v,%v), want (%v,%v)", nx, ny, tt.nx, tt.ny)
			}
			mag := math.Hypot(float64(nx), float64(ny))
			if math.Abs(mag-1) > 1e-6 {
				t.Errorf("magnitude = %v, want 1", mag)
			}
		})
	}
}

func TestNormalizeSmallVectorsAlwaysUnit(t *testing.T) {
	// Walk down to the float32 precision floor; every nonzero finite vector
	// must normalize to a finite unit vector.
	for v := float32(1); v > 0; v /= 3 {
		nx, ny, ok := Normalize(v, -v/2)
		if !ok {
			t.Fatalf("Normalize(%g) reported degenerate", v)
		}
		if mag := math.Hypot(float64(nx), float64(ny)); math.Abs(mag-1) > 1e-6 {
			t.Fatalf("Normalize(%g) magnitude = %v", v, mag)
		}
	}
}

func TestTracerFollowsUniformField(t *testing.T) {
	f := uniformField(image.Rect(0, 0, 32, 32), 2, 0)
	tr := NewTracer(f, 10, 10, 1, 0, Backward)
	for i := 1; i <= 5; i++ {
		x, y := tr.Next()
		if x != float32(10-i) || y != 10 {
			t.Fatalf("step %d at (%v,%v), want (%d,10)", i, x, y, 10-i)
		}
	}
	if tr.Frozen {
		t.Error("tracer froze in a defined field")
	}
}

func TestTracerScaleInvariant(t *testing.T) {
	r := image.Rect(0, 0, 24, 24)
	base := uniformField(r, 0, 0)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := base.X.PixOffset(x, y)
			base.X.Pix[i] = float32(y - 12)
			base.Y.Pix[i] = float32(12 - x)
		}
	}

	for _, scale := range []float32{0.25, 4, 1024, 3.7} {
		scaled := uniformField(r, 0, 0)
		for i := range base.X.Pix {
			scaled.X.Pix[i] = base.X.Pix[i] * scale
			scaled.Y.Pix[i] = base.Y.Pix[i] * scale
		}

		a := NewTracer(base, 5, 7, 0, 1, Forward)
		b := NewTracer(scaled, 5, 7, 0, 1, Forward)
		for i := 0; i < 20; i++ {
			ax, ay := a.Next()
			bx, by := b.Next()
			if math.Abs(float64(ax-bx)) > 1e-4 || math.Abs(float64(ay-by)) > 1e-4 {
				t.Fatalf("scale %v: step %d diverged: (%v,%v) vs (%v,%v)", scale, i, ax, ay, bx, by)
			}
		}
	}
}

func TestTracerFreezesOutsideDefinedRegion(t *testing.T) {
	for _, undefined := range []float32{0, float32(math.NaN())} {
		r := image.Rect(0, 0, 40, 40)
		f := uniformField(r, undefined, undefined)
		defined := image.Rect(0, 0, 8, 8)
		for y := defined.Min.Y; y < defined.Max.Y; y++ {
			for x := defined.Min.X; x < defined.Max.X; x++ {
				i := f.X.PixOffset(x, y)
				f.X.Pix[i] = 3
				f.Y.Pix[i] = 4
			}
		}

		tr := NewTracer(f, 2, 2, 0.6, 0.8, Forward)
		for i := 1; i <= 30; i++ {
			x, y := tr.Next()
			wx := 2 + 0.6*float64(i)
			wy := 2 + 0.8*float64(i)
			if math.Abs(float64(x)-wx) > 1e-4 || math.Abs(float64(y)-wy) > 1e-4 {
				t.Fatalf("undefined=%v step %d at (%v,%v), want (%v,%v)", undefined, i, x, y, wx, wy)
			}
		}
		if !tr.Frozen {
			t.Errorf("undefined=%v: tracer never froze after leaving the defined region", undefined)
		}
		if tr.LastX != 0.6 || tr.LastY != 0.8 {
			t.Errorf("last direction = (%v,%v), want (0.6,0.8)", tr.LastX, tr.LastY)
		}
	}
}

func TestTracerStaysFrozen(t *testing.T) {
	// Field is undefined in a band x in [3,5] and defined again beyond it;
	// once frozen the pass must not pick the field back up.
	r := image.Rect(0, 0, 20, 5)
	f := uniformField(r, 1, 0)
	for y := 0; y < 5; y++ {
		for x := 3; x <= 5; x++ {
			f.X.Pix[f.X.PixOffset(x, y)] = 0
		}
		for x := 6; x < 20; x++ {
			i := f.X.PixOffset(x, y)
			f.X.Pix[i] = 0
			f.Y.Pix[i] = 1
		}
	}

	tr := NewTracer(f, 0, 2, 1, 0, Forward)
	for i := 1; i <= 10; i++ {
		x, y := tr.Next()
		if x != float32(i) || y != 2 {
			t.Fatalf("step %d at (%v,%v), want (%d,2)", i, x, y, i)
		}
	}
}
