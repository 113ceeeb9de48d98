package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Render.NumSteps != 15 {
		t.Errorf("num_steps = %d, want 15", cfg.Render.NumSteps)
	}
	if cfg.Derived.Params.Frequency != float32(cfg.Render.Frequency) {
		t.Errorf("derived frequency = %v", cfg.Derived.Params.Frequency)
	}
	if cfg.Derived.Bounds.Dx() != cfg.Field.Width || cfg.Derived.Bounds.Dy() != cfg.Field.Height {
		t.Errorf("derived bounds = %v", cfg.Derived.Bounds)
	}
}

func TestLoadOverlaysUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "render:\n  num_steps: 30\n  use_weight_window: true\nnoise:\n  kind: tile\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.NumSteps != 30 || !cfg.Render.UseWeightWindow {
		t.Errorf("render = %+v, want overrides applied", cfg.Render)
	}
	if cfg.Noise.Kind != "tile" {
		t.Errorf("noise.kind = %q, want tile", cfg.Noise.Kind)
	}
	// Untouched keys keep defaults
	if cfg.Render.Frequency != 0.2 {
		t.Errorf("frequency = %v, want default 0.2", cfg.Render.Frequency)
	}
	if !cfg.Derived.Params.UseWeightWindow || cfg.Derived.Params.NumSteps != 30 {
		t.Errorf("derived params not recomputed: %+v", cfg.Derived.Params)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"frequency high", func(c *Config) { c.Render.Frequency = 2.5 }, "render.frequency"},
		{"frequency negative", func(c *Config) { c.Render.Frequency = -0.1 }, "render.frequency"},
		{"steps zero", func(c *Config) { c.Render.NumSteps = 0 }, "render.num_steps"},
		{"steps high", func(c *Config) { c.Render.NumSteps = 51 }, "render.num_steps"},
		{"width low", func(c *Config) { c.Render.WeightWindowWidth = 2 }, "weight_window_width"},
		{"offset high", func(c *Config) { c.Render.WeightWindowOffset = 10001 }, "weight_window_offset"},
		{"noise kind", func(c *Config) { c.Noise.Kind = "value" }, "noise.kind"},
		{"field kind", func(c *Config) { c.Field.Kind = "spiral" }, "field.kind"},
		{"image paths", func(c *Config) { c.Field.Kind = "image" }, "path_x"},
		{"csv path", func(c *Config) { c.Field.Kind = "csv" }, "csv_path"},
		{"field size", func(c *Config) { c.Field.Width = 0 }, "field size"},
		{"format", func(c *Config) { c.Output.Format = "cmyk" }, "output.format"},
		{"encoding", func(c *Config) { c.Output.Encoding = "jpeg" }, "output.encoding"},
		{"frames", func(c *Config) { c.Animation.Frames = 0 }, "animation.frames"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Defaults()
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error %q does not mention %q", err, tt.substr)
			}
		})
	}
}

func TestFrameParamsAdvancesOffset(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Render.NumSteps = 5
	cfg.Render.WeightWindowOffset = 2
	cfg.Animation.OffsetStep = 3
	cfg.ComputeDerived()

	want := []int{2, 5, 8 % 10, 11 % 10, 14 % 10}
	for i, w := range want {
		if got := cfg.FrameParams(i).WeightWindowOffset; got != w {
			t.Errorf("frame %d offset = %d, want %d", i, got, w)
		}
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Render.NumSteps = 9
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Render.NumSteps != 9 {
		t.Errorf("num_steps = %d, want 9", got.Render.NumSteps)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}
