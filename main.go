package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/lic/config"
	"github.com/pthm-cable/lic/fields"
	"github.com/pthm-cable/lic/lic"
	"github.com/pthm-cable/lic/raster"
	"github.com/pthm-cable/lic/render"
	"github.com/pthm-cable/lic/telemetry"
)

// maxPendingEncodes bounds how many finished frames may wait for encoding.
const maxPendingEncodes = 2

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for frames, CSV logs and config snapshot (empty = use config)")
	seed := flag.Int64("seed", 0, "Noise seed (0 = use config, then time-based)")
	frames := flag.Int("frames", 0, "Number of frames to render (0 = use config)")
	workers := flag.Int("workers", -1, "Render workers (-1 = use config, 0 = GOMAXPROCS)")
	saveField := flag.String("save-field", "", "Also write the vector field as x,y,ux,uy CSV to this path")
	verbose := flag.Bool("v", false, "Log render details")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *frames > 0 {
		cfg.Animation.Frames = *frames
	}
	if *workers >= 0 {
		cfg.Workers.Count = *workers
	}
	if *seed != 0 {
		cfg.Noise.Seed = *seed
	}
	if cfg.Noise.Seed == 0 {
		cfg.Noise.Seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *saveField); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("interrupted")
			os.Exit(130)
		}
		slog.Error("render failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, saveField string) error {
	om, err := telemetry.NewOutputManager(cfg.Output.Dir)
	if err != nil {
		return err
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	bounds := cfg.Derived.Bounds

	// Field construction is charged to the first frame
	perf.StartFrame()
	perf.StartPhase(telemetry.PhaseField)
	fieldStart := time.Now()
	vx, vy, err := fields.FromConfig(cfg.Field, bounds)
	if err != nil {
		return fmt.Errorf("building field: %w", err)
	}
	// Loaded fields carry their own bounds
	bounds = vx.Rect
	slog.Info("field ready",
		"kind", cfg.Field.Kind,
		"bounds", bounds.String(),
		"elapsed_ms", time.Since(fieldStart).Milliseconds(),
	)

	if saveField != "" {
		if err := fields.SaveCSV(saveField, vx, vy); err != nil {
			return err
		}
	}

	noise, err := lic.NewNoise(cfg.Noise.Kind, cfg.Noise.Seed, cfg.Derived.Params.Frequency, cfg.Noise.TileSize)
	if err != nil {
		return err
	}

	r := render.New(render.Options{
		Workers:  cfg.Workers.Count,
		TileSize: cfg.Workers.TileSize,
		Logger:   logger,
	})
	defer r.Close()

	components := raster.ComponentsRGBA
	if cfg.Output.Format == "gray" {
		components = raster.ComponentsAlpha
	}
	ext := raster.Encoding(cfg.Output.Encoding).Ext()

	slog.Info("starting render",
		"seed", cfg.Noise.Seed,
		"noise", cfg.Noise.Kind,
		"frames", cfg.Animation.Frames,
		"workers", r.Workers(),
		"params", cfg.Derived.Params,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPendingEncodes)

	for i := 0; i < cfg.Animation.Frames; i++ {
		if err := gctx.Err(); err != nil {
			break
		}

		if i > 0 {
			perf.StartFrame()
		}
		params := cfg.FrameParams(i)

		perf.StartPhase(telemetry.PhaseRender)
		dst := raster.New(bounds, components)
		res, err := r.Render(gctx, render.Request{
			Dst:     dst,
			VectorX: vx,
			VectorY: vy,
			Noise:   noise,
			Params:  params,
		})
		if err != nil {
			if werr := g.Wait(); werr != nil {
				return werr
			}
			return fmt.Errorf("frame %d: %w", i, err)
		}

		perf.StartPhase(telemetry.PhaseStats)
		stats := telemetry.ComputeFrameStats(dst, res.Window)
		stats.Frame = i
		stats.WindowOffset = params.WeightWindowOffset
		stats.RenderMS = float64(res.Duration) / float64(time.Millisecond)
		if cfg.Telemetry.LogFrames {
			stats.LogStats()
		}
		if err := om.WriteFrame(stats); err != nil {
			return errors.Join(err, g.Wait())
		}

		// Blocks while maxPendingEncodes frames are still being written
		perf.StartPhase(telemetry.PhaseEncode)
		path := om.FramePath(cfg.Output.Prefix, i, ext)
		g.Go(func() error {
			if err := raster.Save(path, dst); err != nil {
				return fmt.Errorf("encoding frame: %w", err)
			}
			return nil
		})
		perf.EndFrame()

		if err := om.WritePerf(perf.Stats(), i); err != nil {
			return errors.Join(err, g.Wait())
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	slog.Info("render complete", "frames", cfg.Animation.Frames, "perf", perf.Stats(), "dir", om.Dir())
	return nil
}
