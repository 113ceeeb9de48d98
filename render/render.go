// Package render is the host boundary of the LIC kernel: it validates input
// buffers, splits the render window into tiles and fans them out over a
// worker pool with cooperative cancellation.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/pthm-cable/lic/lic"
	"github.com/pthm-cable/lic/raster"
)

// Boundary errors. They are reported before the kernel runs.
var (
	ErrMissingInput          = errors.New("missing input image")
	ErrUnsupportedDepth      = errors.New("unsupported pixel depth")
	ErrUnsupportedComponents = errors.New("unsupported pixel components")
	ErrMalformedBuffer       = errors.New("malformed pixel buffer")
)

// DefaultTileSize is the side of a dispatched tile in pixels.
const DefaultTileSize = 64

// Request is everything one render call needs.
type Request struct {
	Dst     *raster.Image
	VectorX *raster.Image
	VectorY *raster.Image
	Noise   lic.NoiseSampler
	Params  lic.Params

	// Window is the part of Dst to fill. The zero Rectangle means all of Dst;
	// any other empty window fills nothing.
	Window image.Rectangle
}

// Result summarizes a render call.
type Result struct {
	Window    image.Rectangle
	Tiles     int
	TilesDone int
	Rows      int
	Canceled  bool
	Duration  time.Duration
}

// LogValue implements slog.LogValuer for structured logging.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("window", r.Window.String()),
		slog.Int("tiles", r.Tiles),
		slog.Int("tiles_done", r.TilesDone),
		slog.Int("rows", r.Rows),
		slog.Bool("canceled", r.Canceled),
		slog.Int64("duration_us", r.Duration.Microseconds()),
	)
}

// Options configures a Renderer.
type Options struct {
	Workers  int // 0 = GOMAXPROCS
	TileSize int // 0 = DefaultTileSize
	Logger   *slog.Logger
}

// Renderer owns a worker pool. Render calls on one Renderer are serialized.
type Renderer struct {
	mu       sync.Mutex
	pool     *pool
	tileSize int
	logger   *slog.Logger
}

// New creates a renderer. Workers start on the first parallel render.
func New(opts Options) *Renderer {
	tileSize := opts.TileSize
	if tileSize < 1 {
		tileSize = DefaultTileSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		pool:     newPool(opts.Workers),
		tileSize: tileSize,
		logger:   logger,
	}
}

// Close stops the worker pool.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool.stop()
}

// Workers returns the size of the worker pool.
func (r *Renderer) Workers() int { return r.pool.numWorkers }

// Render validates req and fills its window. When ctx is canceled mid-render
// the partially filled result is returned together with ctx.Err(); rows that
// were not reached keep their previous contents.
func (r *Renderer) Render(ctx context.Context, req Request) (Result, error) {
	if err := Validate(req); err != nil {
		return Result{}, err
	}

	kernel, err := lic.NewKernel(req.Noise, lic.NewVectorField(req.VectorX, req.VectorY), req.Params)
	if err != nil {
		return Result{}, fmt.Errorf("building kernel: %w", err)
	}

	window := req.Window
	if window == (image.Rectangle{}) {
		window = req.Dst.Rect
	}
	window = window.Intersect(req.Dst.Rect)

	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	tiles := Tiles(window, r.tileSize)
	abort := func() bool { return ctx.Err() != nil }

	res := Result{Window: window, Tiles: len(tiles)}

	var done []tileDone
	if len(tiles) <= 1 || r.pool.numWorkers == 1 {
		// Not worth the channel round trips
		done = make([]tileDone, 0, len(tiles))
		for _, t := range tiles {
			done = append(done, tileDone{rect: t, rows: kernel.ProcessTile(req.Dst, t, abort)})
		}
	} else {
		done = r.pool.run(kernel, req.Dst, tiles, abort)
	}

	for _, d := range done {
		res.Rows += d.rows
		if d.rows == d.rect.Dy() {
			res.TilesDone++
		}
	}
	res.Duration = time.Since(start)
	res.Canceled = res.TilesDone < res.Tiles

	if res.Canceled {
		r.logger.Warn("render canceled", "result", res)
		if err := ctx.Err(); err != nil {
			return res, err
		}
		return res, context.Canceled
	}
	r.logger.Debug("render complete", "result", res)
	return res, nil
}

// Tiles splits window into size×size rectangles in row-major order. Edge
// tiles are clipped to the window.
func Tiles(window image.Rectangle, size int) []image.Rectangle {
	if window.Empty() {
		return nil
	}
	if size < 1 {
		size = DefaultTileSize
	}
	var tiles []image.Rectangle
	for y := window.Min.Y; y < window.Max.Y; y += size {
		for x := window.Min.X; x < window.Max.X; x += size {
			tiles = append(tiles, image.Rect(x, y, x+size, y+size).Intersect(window))
		}
	}
	return tiles
}

// Validate performs the boundary checks: all three buffers present, float
// depth, supported component layouts and consistent buffer sizes.
func Validate(req Request) error {
	inputs := []struct {
		name string
		img  *raster.Image
		ok   func(raster.Components) bool
	}{
		{"destination", req.Dst, dstComponents},
		{"vector x", req.VectorX, vectorComponents},
		{"vector y", req.VectorY, vectorComponents},
	}

	for _, in := range inputs {
		if in.img == nil {
			return fmt.Errorf("%w: %s is nil", ErrMissingInput, in.name)
		}
	}
	for _, in := range inputs {
		if in.img.Depth != raster.DepthFloat {
			return fmt.Errorf("%w: %s has depth %s", ErrUnsupportedDepth, in.name, in.img.Depth)
		}
	}
	for _, in := range inputs {
		if !in.ok(in.img.Components) {
			return fmt.Errorf("%w: %s has %s", ErrUnsupportedComponents, in.name, in.img.Components)
		}
	}
	for _, in := range inputs {
		if err := checkBuffer(in.img); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedBuffer, in.name, err)
		}
	}
	if err := req.Params.Validate(); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func vectorComponents(c raster.Components) bool {
	return c == raster.ComponentsAlpha || c == raster.ComponentsRGB || c == raster.ComponentsRGBA
}

func dstComponents(c raster.Components) bool {
	return c == raster.ComponentsAlpha || c == raster.ComponentsRGBA
}

func checkBuffer(m *raster.Image) error {
	if m.Rect.Empty() {
		return errors.New("empty bounds")
	}
	rowLen := m.Rect.Dx() * int(m.Components)
	if m.Stride < rowLen {
		return fmt.Errorf("stride %d shorter than row length %d", m.Stride, rowLen)
	}
	if need := (m.Rect.Dy()-1)*m.Stride + rowLen; len(m.Pix) < need {
		return fmt.Errorf("have %d samples, need %d", len(m.Pix), need)
	}
	return nil
}
