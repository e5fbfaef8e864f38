// Package sweep explores many initial states at once: a smooth noise field
// picks the starting points and a worker pool runs the damping comparison at
// each one.
package sweep

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/ljpw-harmony/internal/entropy"
	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// GridConfig controls initial-state generation.
type GridConfig struct {
	Size        int     // Number of states
	Seed        int64   // Noise seed (0 = random)
	Frequency   float64 // Base noise frequency per lattice cell
	Octaves     int     // Noise layers per component
	Persistence float64 // Amplitude falloff per octave
}

// DefaultGridConfig returns a 64-point grid with random seed.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		Size:        64,
		Seed:        0,
		Frequency:   0.15,
		Octaves:     3,
		Persistence: 0.5,
	}
}

// Grid generates cfg.Size initial states. Neighbouring lattice points get
// similar states, so the sweep covers the unit hypercube in smooth patches
// rather than uniform scatter. It returns the states and the seed used.
func Grid(cfg GridConfig) ([]ljpw.State, int64) {
	seed := entropy.SeedOr(cfg.Seed)
	if cfg.Size < 1 {
		return nil, seed
	}
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}

	// One generator per component keeps the dimensions independent.
	var noise [ljpw.NumComponents]opensimplex.Noise
	for i := range noise {
		noise[i] = opensimplex.NewNormalized(seed + int64(i))
	}

	side := int(math.Ceil(math.Sqrt(float64(cfg.Size))))
	states := make([]ljpw.State, cfg.Size)
	for k := range states {
		// Cell centres: simplex noise is zero at the origin for every seed.
		x := float64(k%side) + 0.5
		y := float64(k/side) + 0.5
		var s ljpw.State
		for i := range s {
			s[i] = cfg.layered(noise[i], x, y)
		}
		states[k] = s.Clamp()
	}
	return states, seed
}

// layered sums cfg.Octaves samples of normalized noise, doubling the frequency
// and scaling the weight by cfg.Persistence each time, then divides by the
// total weight. Normalized noise is in [0, 1), so the result is too.
func (cfg GridConfig) layered(noise opensimplex.Noise, x, y float64) float64 {
	var sum, weight float64
	freq, amp := cfg.Frequency, 1.0
	for range cfg.Octaves {
		sum += amp * noise.Eval2(x*freq, y*freq)
		weight += amp
		freq *= 2
		amp *= cfg.Persistence
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}
