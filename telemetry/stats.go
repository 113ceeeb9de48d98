package telemetry

import (
	"image"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/lic/raster"
)

// FrameStats summarizes one rendered frame.
type FrameStats struct {
	Frame        int `csv:"frame"`
	WindowOffset int `csv:"window_offset"`

	// Coverage: opaque pixels carry a traced streamline
	Pixels      int     `csv:"pixels"`
	Opaque      int     `csv:"opaque"`
	Transparent int     `csv:"transparent"`
	Coverage    float64 `csv:"coverage"`

	// Value distribution over opaque pixels
	Mean float64 `csv:"mean"`
	Std  float64 `csv:"std"`
	Min  float64 `csv:"min"`
	P10  float64 `csv:"p10"`
	P50  float64 `csv:"p50"`
	P90  float64 `csv:"p90"`
	Max  float64 `csv:"max"`

	RenderMS float64 `csv:"render_ms"`
}

// ComputeFrameStats gathers coverage and value statistics over window of img.
// RGBA pixels count as opaque when alpha is 1; single-channel pixels always do.
func ComputeFrameStats(img *raster.Image, window image.Rectangle) FrameStats {
	window = window.Intersect(img.Rect)
	var s FrameStats
	s.Pixels = window.Dx() * window.Dy()
	if s.Pixels == 0 {
		return s
	}

	values := make([]float64, 0, s.Pixels)
	for y := window.Min.Y; y < window.Max.Y; y++ {
		for x := window.Min.X; x < window.Max.X; x++ {
			i := img.PixOffset(x, y)
			if img.Components == raster.ComponentsRGBA && img.Pix[i+3] != 1 {
				continue
			}
			values = append(values, float64(img.Pix[i]))
		}
	}

	s.Opaque = len(values)
	s.Transparent = s.Pixels - s.Opaque
	s.Coverage = float64(s.Opaque) / float64(s.Pixels)
	if len(values) == 0 {
		return s
	}

	sort.Float64s(values)
	s.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.P10 = stat.Quantile(0.10, stat.LinInterp, values, nil)
	s.P50 = stat.Quantile(0.50, stat.LinInterp, values, nil)
	s.P90 = stat.Quantile(0.90, stat.LinInterp, values, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.Frame),
		slog.Int("window_offset", s.WindowOffset),
		slog.Int("pixels", s.Pixels),
		slog.Int("transparent", s.Transparent),
		slog.Float64("coverage", s.Coverage),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("render_ms", s.RenderMS),
	)
}

// LogStats logs the frame stats using slog.
func (s FrameStats) LogStats() {
	slog.Info("frame",
		"frame", s.Frame,
		"window_offset", s.WindowOffset,
		"coverage", s.Coverage,
		"mean", s.Mean,
		"std", s.Std,
		"render_ms", s.RenderMS,
	)
}
