// LIC preview tool - interactive render with sliders for the kernel parameters.
//
// Usage: go run ./cmd/licpreview
package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"golang.org/x/image/draw"

	"github.com/pthm-cable/lic/config"
	"github.com/pthm-cable/lic/fields"
	"github.com/pthm-cable/lic/lic"
	"github.com/pthm-cable/lic/raster"
	"github.com/pthm-cable/lic/render"
	"github.com/pthm-cable/lic/telemetry"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30

	// Render below texture resolution and scale up to keep sliders responsive
	renderSize  = 256
	textureSize = 512
)

var (
	fieldKinds = []string{"vortex", "saddle", "uniform", "flow"}
	noiseKinds = []string{lic.NoiseSimplex, lic.NoisePerlin, lic.NoiseTile}
)

// previewState holds everything the sliders can change.
type previewState struct {
	Params    lic.Params
	FieldKind int
	NoiseKind int
	Seed      int64
}

func defaultState(cfg *config.Config) previewState {
	s := previewState{
		Params: cfg.Derived.Params,
		Seed:   1,
	}
	s.Params.UseWeightWindow = true
	return s
}

func main() {
	cfg, err := config.Defaults()
	if err != nil {
		panic(err)
	}

	rl.InitWindow(windowWidth, windowHeight, "LIC Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	state := defaultState(cfg)

	r := render.New(render.Options{Logger: slog.Default()})
	defer r.Close()

	bounds := image.Rect(0, 0, renderSize, renderSize)
	dst := raster.New(bounds, raster.ComponentsRGBA)
	scaled := image.NewRGBA(image.Rect(0, 0, textureSize, textureSize))
	pixels := make([]color.RGBA, textureSize*textureSize)

	img := rl.GenImageColor(textureSize, textureSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var vx, vy *raster.Image
	var noise lic.NoiseSampler
	var stats telemetry.FrameStats
	var lastRender render.Result

	animating := false
	needsField := true
	needsRegen := true

	for !rl.WindowShouldClose() {
		if animating {
			state.Params.WeightWindowOffset = (state.Params.WeightWindowOffset + 1) % (2 * state.Params.NumSteps)
			needsRegen = true
		}

		if needsField {
			fc := cfg.Field
			fc.Kind = fieldKinds[state.FieldKind]
			fc.Seed = state.Seed
			fc.Scale = cfg.Field.Scale * float64(cfg.Field.Width) / renderSize
			vx, vy, err = fields.FromConfig(fc, bounds)
			if err != nil {
				panic(err)
			}
			needsField = false
			needsRegen = true
		}

		if needsRegen {
			noise, err = lic.NewNoise(noiseKinds[state.NoiseKind], state.Seed, state.Params.Frequency, cfg.Noise.TileSize)
			if err != nil {
				panic(err)
			}
			lastRender, err = r.Render(context.Background(), render.Request{
				Dst:     dst,
				VectorX: vx,
				VectorY: vy,
				Noise:   noise,
				Params:  state.Params,
			})
			if err != nil {
				slog.Error("render failed", "error", err)
			}
			stats = telemetry.ComputeFrameStats(dst, bounds)
			updateTexture(texture, dst, scaled, pixels)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: textureSize, Height: textureSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Coverage: %.3f  Mean: %.3f  Std: %.3f", stats.Coverage, stats.Mean, stats.Std), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Render: %.1f ms on %d workers", float64(lastRender.Duration.Microseconds())/1000, r.Workers()), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Window offset: %d", state.Params.WeightWindowOffset), 15, statsY+40, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("LIC Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Frequency (noise coordinate scale)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newFreq := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "2",
			state.Params.Frequency, config.MinFrequency, config.MaxFrequency,
		)
		rl.DrawText(fmt.Sprintf("%.3f", state.Params.Frequency), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newFreq != state.Params.Frequency {
			state.Params.Frequency = newFreq
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Steps (per direction)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSteps := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "50",
			float32(state.Params.NumSteps), config.MinNumSteps, config.MaxNumSteps,
		)
		rl.DrawText(fmt.Sprintf("%d", state.Params.NumSteps), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newSteps) != state.Params.NumSteps {
			state.Params.NumSteps = int(newSteps)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Window width (steps)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newWidth := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"3", "50",
			float32(state.Params.WeightWindowWidth), config.MinWindowWidth, config.MaxWindowWidth,
		)
		rl.DrawText(fmt.Sprintf("%d", state.Params.WeightWindowWidth), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newWidth) != state.Params.WeightWindowWidth {
			state.Params.WeightWindowWidth = int(newWidth)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Seed", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSeed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "99999",
			float32(state.Seed), 0, 99999,
		)
		rl.DrawText(fmt.Sprintf("%d", state.Seed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int64(newSeed) != state.Seed {
			state.Seed = int64(newSeed)
			needsField = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(state.Params.UseWeightWindow, "Window: on", "Window: off")) {
			state.Params.UseWeightWindow = !state.Params.UseWeightWindow
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Field: "+fieldKinds[state.FieldKind]) {
			state.FieldKind = (state.FieldKind + 1) % len(fieldKinds)
			needsField = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Noise: "+noiseKinds[state.NoiseKind]) {
			state.NoiseKind = (state.NoiseKind + 1) % len(noiseKinds)
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			state.Seed = int64(rl.GetRandomValue(0, 99999))
			needsField = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			state = defaultState(cfg)
			animating = false
			needsField = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := yamlSnippet(state)
		for _, line := range strings.Split(yaml, "\n") {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func yamlSnippet(s previewState) string {
	return fmt.Sprintf(`render:
  frequency: %.3f
  num_steps: %d
  use_weight_window: %t
  weight_window_width: %d
  weight_window_offset: %d
noise:
  kind: %s
  seed: %d
field:
  kind: %s`,
		s.Params.Frequency, s.Params.NumSteps, s.Params.UseWeightWindow,
		s.Params.WeightWindowWidth, s.Params.WeightWindowOffset,
		noiseKinds[s.NoiseKind], s.Seed, fieldKinds[s.FieldKind])
}

// updateTexture scales the render onto the texture. Transparent pixels,
// where the field was undefined, show as a dark blue background.
func updateTexture(texture rl.Texture2D, src *raster.Image, scaled *image.RGBA, pixels []color.RGBA) {
	draw.Draw(scaled, scaled.Bounds(), &image.Uniform{C: color.RGBA{R: 10, G: 20, B: 60, A: 255}}, image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Over, nil)
	for i := range pixels {
		p := scaled.Pix[i*4 : i*4+4 : i*4+4]
		pixels[i] = color.RGBA{R: p[0], G: p[1], B: p[2], A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
