package lic

import (
	"errors"
	"fmt"
	"math"
)

// Params are the per-render scalar parameters. They are fixed for one render
// call but may change between frames.
type Params struct {
	Frequency          float32
	NumSteps           int
	UseWeightWindow    bool
	WeightWindowWidth  int
	WeightWindowOffset int
}

// DefaultParams mirrors the defaults of the shipped configuration.
func DefaultParams() Params {
	return Params{
		Frequency:         0.2,
		NumSteps:          15,
		WeightWindowWidth: 10,
	}
}

var errNumSteps = errors.New("num_steps must be at least 1")

// Validate checks the invariants the kernel relies on.
func (p Params) Validate() error {
	if p.NumSteps < 1 {
		return fmt.Errorf("%w, got %d", errNumSteps, p.NumSteps)
	}
	if math.IsNaN(float64(p.Frequency)) || math.IsInf(float64(p.Frequency), 0) {
		return fmt.Errorf("frequency must be finite, got %v", p.Frequency)
	}
	if p.UseWeightWindow && p.WeightWindowWidth < 1 {
		return fmt.Errorf("weight_window_width must be at least 1, got %d", p.WeightWindowWidth)
	}
	return nil
}

// MinWeight is the weight sum a pixel needs before it is emitted. Without a
// window every sample weighs 1, so this asks for the seed plus one step.
func (p Params) MinWeight() float32 {
	if p.UseWeightWindow {
		return 0.5
	}
	return 2
}
