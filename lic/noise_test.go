package lic

import (
	"math"
	"testing"
)

func TestNoiseRangeAndDeterminism(t *testing.T) {
	for _, kind := range []string{NoiseSimplex, NoisePerlin, NoiseTile} {
		t.Run(kind, func(t *testing.T) {
			a, err := NewNoise(kind, 7, 0.37, 16)
			if err != nil {
				t.Fatalf("NewNoise: %v", err)
			}
			b, _ := NewNoise(kind, 7, 0.37, 16)

			for i := 0; i < 500; i++ {
				x := float32(i)*1.37 - 250
				y := float32(i)*0.91 - 120
				v := a.Sample(x, y)
				if v < 0 || v > 1 || math.IsNaN(float64(v)) {
					t.Fatalf("Sample(%v,%v) = %v, want value in [0,1]", x, y, v)
				}
				if w := b.Sample(x, y); math.Float32bits(v) != math.Float32bits(w) {
					t.Fatalf("Sample(%v,%v) differs between equal seeds: %v vs %v", x, y, v, w)
				}
			}
		})
	}
}

func TestNewNoiseUnknownKind(t *testing.T) {
	if _, err := NewNoise("worley", 1, 1, 0); err == nil {
		t.Error("expected error for unknown noise kind")
	}
}

func TestSimplexNoiseContinuous(t *testing.T) {
	n := NewSimplexNoise(3, 0.2)
	for i := 0; i < 100; i++ {
		x := float32(i) * 0.7
		d := n.Sample(x, 5) - n.Sample(x+0.001, 5)
		if d > 0.01 || d < -0.01 {
			t.Errorf("jump of %v between x=%v and x+0.001", d, x)
		}
	}
}

func TestSimplexNoiseSeedMatters(t *testing.T) {
	a := NewSimplexNoise(1, 0.5)
	b := NewSimplexNoise(2, 0.5)
	same := 0
	for i := 0; i < 50; i++ {
		x, y := float32(i)*1.3, float32(i)*0.7
		if a.Sample(x, y) == b.Sample(x, y) {
			same++
		}
	}
	if same == 50 {
		t.Error("different seeds produced identical noise")
	}
}

func TestTileNoiseWraps(t *testing.T) {
	n := NewTileNoise(11, 1, 8)
	for y := -10; y < 10; y++ {
		for x := -10; x < 10; x++ {
			v := n.Sample(float32(x), float32(y))
			if w := n.Sample(float32(x+8), float32(y-16)); v != w {
				t.Fatalf("tile does not wrap at (%d,%d): %v vs %v", x, y, v, w)
			}
		}
	}
}

func TestTileNoiseNearestRounding(t *testing.T) {
	n := NewTileNoise(5, 1, 8)
	if n.Sample(2.4, 3.4) != n.Sample(2, 3) {
		t.Error("2.4,3.4 should round to 2,3")
	}
	if n.Sample(2.5, 3.6) != n.Sample(3, 4) {
		t.Error("2.5,3.6 should round to 3,4")
	}
}

func TestTileNoiseDefaultSize(t *testing.T) {
	n := NewTileNoise(1, 1, 0)
	if n.size != DefaultTileSize {
		t.Errorf("size = %d, want %d", n.size, DefaultTileSize)
	}
}

func TestNoiseNonFiniteInputs(t *testing.T) {
	n := NewTileNoise(1, 1, 4)
	inf := float32(math.Inf(1))
	if v := n.Sample(inf, float32(math.NaN())); v < 0 || v > 1 {
		t.Errorf("Sample(inf, NaN) = %v", v)
	}
}
