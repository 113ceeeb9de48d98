package lic

// WeightWindow weights integration steps by their circular distance from a
// center step. Step 0 is the seed, positive steps run forward and negative
// steps backward. The cycle length is 2*NumSteps so the window wraps, which
// lets an animated offset sweep along the streamline without popping.
type WeightWindow struct {
	Enabled  bool
	NumSteps int
	Width    int
	Offset   int
}

// NewWeightWindow builds the window described by p.
func NewWeightWindow(p Params) WeightWindow {
	return WeightWindow{
		Enabled:  p.UseWeightWindow,
		NumSteps: p.NumSteps,
		Width:    p.WeightWindowWidth,
		Offset:   p.WeightWindowOffset,
	}
}

// Distance returns the minimal circular distance from step i to the center.
func (w WeightWindow) Distance(i int) int {
	cycle := 2 * w.NumSteps
	if cycle <= 0 {
		return 0
	}
	d := ((i-w.Offset)%cycle + cycle) % cycle
	if cycle-d < d {
		return cycle - d
	}
	return d
}

// Weight returns the triangular falloff weight of step i, or 1 when disabled.
func (w WeightWindow) Weight(i int) float32 {
	if !w.Enabled {
		return 1
	}
	if w.Width < 1 {
		if w.Distance(i) == 0 {
			return 1
		}
		return 0
	}
	v := 1 - float32(w.Distance(i))/float32(w.Width)
	if v < 0 {
		return 0
	}
	return v
}

// Table precomputes weights for steps -NumSteps..+NumSteps.
// Index the result with i+NumSteps.
func (w WeightWindow) Table() []float32 {
	t := make([]float32, 2*w.NumSteps+1)
	for i := range t {
		t[i] = w.Weight(i - w.NumSteps)
	}
	return t
}
