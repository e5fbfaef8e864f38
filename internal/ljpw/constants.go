package ljpw

import (
	"github.com/talgya/ljpw-harmony/internal/phi"
)

// Constants is the immutable reference frame shared by every component.
// Build it once with NewConstants at process start and pass the pointer down;
// no package reads the reference points from a global.
type Constants struct {
	anchor      State
	equilibrium State

	// Phase thresholds.
	EntropicBelow    float64 // H below this is Entropic (0.5)
	AutopoieticAbove float64 // H above this may be Autopoietic (0.6)
	LoveGate         float64 // Love must exceed this for Autopoietic (0.7)
}

// NewConstants builds the reference frame: anchor (1,1,1,1), equilibrium
// (Φ⁻¹, √2−1, e−2, ln 2) and the 0.5 / 0.6 / 0.7 phase thresholds.
func NewConstants() *Constants {
	return &Constants{
		anchor:           State{1, 1, 1, 1},
		equilibrium:      State(phi.Equilibrium()),
		EntropicBelow:    0.5,
		AutopoieticAbove: 0.6,
		LoveGate:         0.7,
	}
}

// Anchor returns the all-ones target used by the distance strategy.
func (c *Constants) Anchor() State { return c.anchor }

// Equilibrium returns the natural equilibrium point used as the default ratio baseline.
func (c *Constants) Equilibrium() State { return c.equilibrium }
