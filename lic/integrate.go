package lic

import "math"

// Direction of a streamline pass.
const (
	Forward  float32 = 1
	Backward float32 = -1
)

// Tracer walks one direction of a streamline with unit Euler steps.
//
// Once the field becomes undefined (zero, NaN or infinite vector) the tracer
// freezes: it keeps stepping along the last valid direction for the rest of
// the pass instead of stopping.
type Tracer struct {
	field  VectorField
	X, Y   float32
	LastX  float32
	LastY  float32
	sign   float32
	Frozen bool
}

// NewTracer starts a pass at (x, y). (ux, uy) must be the seed's unit vector.
func NewTracer(field VectorField, x, y, ux, uy, sign float32) Tracer {
	return Tracer{
		field: field,
		X:     x,
		Y:     y,
		LastX: ux,
		LastY: uy,
		sign:  sign,
	}
}

// Next advances one step and returns the new position.
func (t *Tracer) Next() (x, y float32) {
	ux, uy := t.LastX, t.LastY
	if !t.Frozen {
		sx, sy := t.field.Sample(t.X, t.Y)
		if nx, ny, ok := Normalize(sx, sy); ok {
			ux, uy = nx, ny
		} else {
			t.Frozen = true
		}
	}

	t.X += t.sign * ux
	t.Y += t.sign * uy
	t.LastX, t.LastY = ux, uy
	return t.X, t.Y
}

// Normalize scales (ux, uy) to unit length. ok is false when the result is
// not a finite unit vector, which happens for zero, NaN and infinite input.
// The magnitude is taken in float64 so float32 subnormals do not underflow.
func Normalize(ux, uy float32) (nx, ny float32, ok bool) {
	x, y := float64(ux), float64(uy)
	mag := math.Sqrt(x*x + y*y)
	x /= mag
	y /= mag
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, false
	}
	return float32(x), float32(y), true
}
