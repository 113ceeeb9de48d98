// Package config provides configuration loading and access for the renderer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/lic/lic"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all renderer configuration parameters.
type Config struct {
	Render    RenderConfig    `yaml:"render"`
	Noise     NoiseConfig     `yaml:"noise"`
	Field     FieldConfig     `yaml:"field"`
	Output    OutputConfig    `yaml:"output"`
	Workers   WorkersConfig   `yaml:"workers"`
	Animation AnimationConfig `yaml:"animation"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// RenderConfig holds the kernel parameters.
type RenderConfig struct {
	Frequency          float64 `yaml:"frequency"`            // Noise coordinate scale, [0,2]
	NumSteps           int     `yaml:"num_steps"`            // Steps per direction, [1,50]
	UseWeightWindow    bool    `yaml:"use_weight_window"`    // Triangular step window instead of plain average
	WeightWindowWidth  int     `yaml:"weight_window_width"`  // Window half-width in steps, [3,50]
	WeightWindowOffset int     `yaml:"weight_window_offset"` // Window center step, [-10000,10000]
}

// NoiseConfig selects the noise texture.
type NoiseConfig struct {
	Kind     string `yaml:"kind"`      // simplex, perlin or tile
	Seed     int64  `yaml:"seed"`      // 0 = time-based (resolved by the caller)
	TileSize int    `yaml:"tile_size"` // Side of the tile for kind=tile
}

// FieldConfig describes the vector field to visualize.
type FieldConfig struct {
	Kind       string  `yaml:"kind"`        // uniform, vortex, saddle, flow, image or csv
	Width      int     `yaml:"width"`       // Field (and output) width in pixels
	Height     int     `yaml:"height"`      // Field (and output) height in pixels
	Angle      float64 `yaml:"angle"`       // Direction in radians for kind=uniform
	Strength   float64 `yaml:"strength"`    // Vector magnitude multiplier
	Scale      float64 `yaml:"scale"`       // Noise frequency for kind=flow
	Seed       int64   `yaml:"seed"`        // Seed for kind=flow
	MaskRadius float64 `yaml:"mask_radius"` // Zero vectors farther than this from the center (0 = off)
	PathX      string  `yaml:"path_x"`      // X component image for kind=image
	PathY      string  `yaml:"path_y"`      // Y component image for kind=image
	CSVPath    string  `yaml:"csv_path"`    // x,y,ux,uy rows for kind=csv
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Format   string `yaml:"format"`   // rgba or gray
	Encoding string `yaml:"encoding"` // png or tiff
	Dir      string `yaml:"dir"`
	Prefix   string `yaml:"prefix"`
}

// WorkersConfig holds tile dispatch settings.
type WorkersConfig struct {
	Count    int `yaml:"count"`     // 0 = GOMAXPROCS
	TileSize int `yaml:"tile_size"` // Tile side in pixels
}

// AnimationConfig controls multi-frame renders.
type AnimationConfig struct {
	Frames     int `yaml:"frames"`      // Number of frames to render
	OffsetStep int `yaml:"offset_step"` // Weight window offset advance per frame
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int  `yaml:"perf_window"` // Frames averaged by the perf collector
	LogFrames  bool `yaml:"log_frames"`  // Log per-frame stats
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Params lic.Params      // Render section as kernel parameters
	Bounds image.Rectangle // Output rectangle
}

// Parameter ranges exposed to users.
const (
	MinFrequency    = 0.0
	MaxFrequency    = 2.0
	MinNumSteps     = 1
	MaxNumSteps     = 50
	MinWindowWidth  = 3
	MaxWindowWidth  = 50
	MinWindowOffset = -10000
	MaxWindowOffset = 10000
)

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.ComputeDerived()
	return cfg, nil
}

// Validate checks every value against its allowed range.
func (c *Config) Validate() error {
	var errs []error
	r := c.Render
	if r.Frequency < MinFrequency || r.Frequency > MaxFrequency {
		errs = append(errs, fmt.Errorf("render.frequency %v outside [%v,%v]", r.Frequency, MinFrequency, MaxFrequency))
	}
	if r.NumSteps < MinNumSteps || r.NumSteps > MaxNumSteps {
		errs = append(errs, fmt.Errorf("render.num_steps %d outside [%d,%d]", r.NumSteps, MinNumSteps, MaxNumSteps))
	}
	if r.WeightWindowWidth < MinWindowWidth || r.WeightWindowWidth > MaxWindowWidth {
		errs = append(errs, fmt.Errorf("render.weight_window_width %d outside [%d,%d]", r.WeightWindowWidth, MinWindowWidth, MaxWindowWidth))
	}
	if r.WeightWindowOffset < MinWindowOffset || r.WeightWindowOffset > MaxWindowOffset {
		errs = append(errs, fmt.Errorf("render.weight_window_offset %d outside [%d,%d]", r.WeightWindowOffset, MinWindowOffset, MaxWindowOffset))
	}

	switch c.Noise.Kind {
	case lic.NoiseSimplex, lic.NoisePerlin, lic.NoiseTile:
	default:
		errs = append(errs, fmt.Errorf("noise.kind %q must be simplex, perlin or tile", c.Noise.Kind))
	}

	if c.Field.Width < 1 || c.Field.Height < 1 {
		errs = append(errs, fmt.Errorf("field size %dx%d must be positive", c.Field.Width, c.Field.Height))
	}
	switch c.Field.Kind {
	case "uniform", "vortex", "saddle", "flow":
	case "image":
		if c.Field.PathX == "" || c.Field.PathY == "" {
			errs = append(errs, errors.New("field.kind image needs path_x and path_y"))
		}
	case "csv":
		if c.Field.CSVPath == "" {
			errs = append(errs, errors.New("field.kind csv needs csv_path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown field.kind %q", c.Field.Kind))
	}

	if c.Output.Format != "rgba" && c.Output.Format != "gray" {
		errs = append(errs, fmt.Errorf("output.format %q must be rgba or gray", c.Output.Format))
	}
	if c.Output.Encoding != "png" && c.Output.Encoding != "tiff" {
		errs = append(errs, fmt.Errorf("output.encoding %q must be png or tiff", c.Output.Encoding))
	}
	if c.Animation.Frames < 1 {
		errs = append(errs, fmt.Errorf("animation.frames %d must be at least 1", c.Animation.Frames))
	}
	if c.Workers.Count < 0 {
		errs = append(errs, fmt.Errorf("workers.count %d must not be negative", c.Workers.Count))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
func (c *Config) ComputeDerived() {
	c.Derived.Params = lic.Params{
		Frequency:          float32(c.Render.Frequency),
		NumSteps:           c.Render.NumSteps,
		UseWeightWindow:    c.Render.UseWeightWindow,
		WeightWindowWidth:  c.Render.WeightWindowWidth,
		WeightWindowOffset: c.Render.WeightWindowOffset,
	}
	c.Derived.Bounds = image.Rect(0, 0, c.Field.Width, c.Field.Height)
}

// FrameParams returns the kernel parameters for animation frame i, with the
// window offset advanced by OffsetStep per frame and kept inside its range.
func (c *Config) FrameParams(i int) lic.Params {
	p := c.Derived.Params
	off := c.Render.WeightWindowOffset + i*c.Animation.OffsetStep
	if span := 2 * p.NumSteps; span > 0 {
		// The window is periodic in 2*num_steps, so folding keeps the same frame
		off %= span
	}
	p.WeightWindowOffset = off
	return p
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
