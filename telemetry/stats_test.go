package telemetry

import (
	"image"
	"math"
	"testing"

	"github.com/pthm-cable/lic/raster"
)

func TestComputeFrameStatsRGBA(t *testing.T) {
	r := image.Rect(0, 0, 4, 1)
	img := raster.New(r, raster.ComponentsRGBA)
	copy(img.Pix, []float32{
		0.2, 0.2, 0.2, 1,
		0.4, 0.4, 0.4, 1,
		0, 0, 0, 0,
		0.6, 0.6, 0.6, 1,
	})

	s := ComputeFrameStats(img, r)
	if s.Pixels != 4 || s.Opaque != 3 || s.Transparent != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/3/1", s.Pixels, s.Opaque, s.Transparent)
	}
	if math.Abs(s.Coverage-0.75) > 1e-9 {
		t.Errorf("coverage = %v, want 0.75", s.Coverage)
	}
	if math.Abs(s.Mean-0.4) > 1e-6 {
		t.Errorf("mean = %v, want 0.4", s.Mean)
	}
	if math.Abs(s.Std-0.2) > 1e-6 {
		t.Errorf("std = %v, want 0.2", s.Std)
	}
	if math.Abs(s.Min-0.2) > 1e-6 || math.Abs(s.Max-0.6) > 1e-6 {
		t.Errorf("min/max = %v/%v, want 0.2/0.6", s.Min, s.Max)
	}
	if !(s.Min <= s.P10 && s.P10 <= s.P50 && s.P50 <= s.P90 && s.P90 <= s.Max) {
		t.Errorf("quantiles out of order: %+v", s)
	}
}

func TestComputeFrameStatsGray(t *testing.T) {
	r := image.Rect(0, 0, 3, 3)
	img := raster.New(r, raster.ComponentsAlpha)
	img.Fill(0.5)

	s := ComputeFrameStats(img, image.Rect(1, 1, 10, 10))
	if s.Pixels != 4 || s.Opaque != 4 {
		t.Errorf("counts = %d/%d, want 4/4", s.Pixels, s.Opaque)
	}
	if s.Mean != 0.5 || s.P50 != 0.5 || s.Std != 0 {
		t.Errorf("stats = %+v, want constant 0.5", s)
	}
}

func TestComputeFrameStatsAllTransparent(t *testing.T) {
	r := image.Rect(0, 0, 2, 2)
	s := ComputeFrameStats(raster.New(r, raster.ComponentsRGBA), r)
	if s.Opaque != 0 || s.Coverage != 0 || s.Mean != 0 {
		t.Errorf("stats = %+v, want empty", s)
	}
}

func TestComputeFrameStatsSingleOpaque(t *testing.T) {
	r := image.Rect(0, 0, 1, 1)
	img := raster.New(r, raster.ComponentsAlpha)
	img.Fill(0.3)
	s := ComputeFrameStats(img, r)
	if s.Std != 0 || math.IsNaN(s.Std) {
		t.Errorf("std = %v, want 0 for a single sample", s.Std)
	}
}
