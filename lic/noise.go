package lic

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

// NoiseSampler is a deterministic scalar field with values in [0,1].
// Implementations are read-only after construction and safe for concurrent use.
type NoiseSampler interface {
	Sample(x, y float32) float32
}

// Noise kinds accepted by NewNoise.
const (
	NoiseSimplex = "simplex"
	NoisePerlin  = "perlin"
	NoiseTile    = "tile"
)

// DefaultTileSize is the side of the precomputed tile used by TileNoise.
const DefaultTileSize = 64

// NewNoise builds a sampler of the given kind. tileSize only applies to NoiseTile.
func NewNoise(kind string, seed int64, frequency float32, tileSize int) (NoiseSampler, error) {
	switch kind {
	case NoiseSimplex, "":
		return NewSimplexNoise(seed, frequency), nil
	case NoisePerlin:
		return NewPerlinNoise(seed, frequency), nil
	case NoiseTile:
		return NewTileNoise(seed, frequency, tileSize), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

// SimplexNoise samples OpenSimplex noise at frequency-scaled coordinates.
type SimplexNoise struct {
	noise     opensimplex.Noise
	frequency float64
}

// NewSimplexNoise creates a simplex sampler seeded once.
func NewSimplexNoise(seed int64, frequency float32) *SimplexNoise {
	return &SimplexNoise{
		noise:     opensimplex.New(seed),
		frequency: float64(frequency),
	}
}

// Sample implements NoiseSampler.
func (s *SimplexNoise) Sample(x, y float32) float32 {
	raw := s.noise.Eval2(s.frequency*float64(x), s.frequency*float64(y))
	return unit(raw)
}

// PerlinNoise samples classic gradient noise from a seeded permutation table.
type PerlinNoise struct {
	perm      [512]int
	frequency float64
}

// NewPerlinNoise creates a Perlin sampler.
func NewPerlinNoise(seed int64, frequency float32) *PerlinNoise {
	p := &PerlinNoise{frequency: float64(frequency)}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	// Duplicate so corner hashes never need wrapping
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}
	return p
}

// Sample implements NoiseSampler.
func (p *PerlinNoise) Sample(x, y float32) float32 {
	return unit(p.Noise2D(p.frequency*float64(x), p.frequency*float64(y)))
}

// Noise2D returns raw noise in roughly [-1,1] at unscaled coordinates.
func (p *PerlinNoise) Noise2D(x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	X := int(fx) & 255
	Y := int(fy) & 255
	x -= fx
	y -= fy

	u := fade(x)
	v := fade(y)

	A := p.perm[X] + Y
	B := p.perm[X+1] + Y

	return lerp(v,
		lerp(u, grad2D(p.perm[A], x, y), grad2D(p.perm[B], x-1, y)),
		lerp(u, grad2D(p.perm[A+1], x, y-1), grad2D(p.perm[B+1], x-1, y-1)))
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad2D(hash int, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}

// TileNoise is the degraded sampler: a small tile of independent uniforms,
// nearest-neighbour rounded and wrapped. It has no spatial coherence.
type TileNoise struct {
	values    []float32
	size      int
	frequency float32
}

// NewTileNoise precomputes a size×size tile. Sizes below 1 use DefaultTileSize.
func NewTileNoise(seed int64, frequency float32, size int) *TileNoise {
	if size < 1 {
		size = DefaultTileSize
	}
	rng := rand.New(rand.NewSource(seed))
	values := make([]float32, size*size)
	for i := range values {
		values[i] = rng.Float32()
	}
	return &TileNoise{values: values, size: size, frequency: frequency}
}

// Sample implements NoiseSampler.
func (t *TileNoise) Sample(x, y float32) float32 {
	ix := wrap(roundIndex(t.frequency*x), t.size)
	iy := wrap(roundIndex(t.frequency*y), t.size)
	return t.values[iy*t.size+ix]
}

// roundIndex rounds to the nearest integer, mapping non-finite input to 0.
func roundIndex(v float32) int {
	f := math.Floor(float64(v) + 0.5)
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<30 {
		return 0
	}
	return int(f)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// unit rescales [-1,1] noise to [0,1].
func unit(raw float64) float32 {
	v := 0.5 + 0.5*raw
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return float32(v)
}
