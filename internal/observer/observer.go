// Package observer derives a bounded bias scalar from an observer's LJPW state.
// The bias is meant for an outside step that nudges a binary outcome
// probability; this package only produces the number.
package observer

import (
	"fmt"
	"math"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// Bias weights and bound.
const (
	HarmonyWeight   = 0.15
	CrossTermWeight = 0.10
	MaxBias         = 0.25
)

// Observer is constructed once per trial and never mutated.
type Observer struct {
	name      string
	state     ljpw.State
	harmony   ljpw.DistanceHarmony
	crossTerm float64
}

// New builds an observer. The state must be finite; it is clamped into [0,1].
func New(c *ljpw.Constants, name string, s ljpw.State) (Observer, error) {
	if err := s.Validate("observer"); err != nil {
		return Observer{}, fmt.Errorf("observer %q: %w", name, err)
	}
	s = s.Clamp()
	return Observer{
		name:      name,
		state:     s,
		harmony:   c.DistanceHarmony(s),
		crossTerm: CrossTerm(s),
	}, nil
}

// CrossTerm is L·W: intent weighted by understanding.
func CrossTerm(s ljpw.State) float64 {
	return s.L() * s.W()
}

func (o Observer) Name() string                  { return o.name }
func (o Observer) State() ljpw.State             { return o.state }
func (o Observer) Harmony() ljpw.DistanceHarmony { return o.harmony }
func (o Observer) CrossTerm() float64            { return o.crossTerm }

// Neutral is the reference pair an observer is compared against.
type Neutral struct {
	Harmony   ljpw.DistanceHarmony
	CrossTerm float64
}

// NeutralBaseline derives the neutral pair from the equilibrium point.
func NeutralBaseline(c *ljpw.Constants) Neutral {
	eq := c.Equilibrium()
	return Neutral{
		Harmony:   c.DistanceHarmony(eq),
		CrossTerm: CrossTerm(eq),
	}
}

// Bias returns 0.15·ΔH + 0.10·ΔX clamped to [−0.25, 0.25].
func Bias(o Observer, n Neutral) (float64, error) {
	return RawBias(float64(o.harmony), o.crossTerm, float64(n.Harmony), n.CrossTerm)
}

// RawBias is Bias over bare numbers, for callers that hold the pair directly.
func RawBias(h, x, neutralH, neutralX float64) (float64, error) {
	for _, v := range []float64{h, x, neutralH, neutralX} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, ljpw.Invalid("bias", "non-finite input")
		}
	}
	b := HarmonyWeight*(h-neutralH) + CrossTermWeight*(x-neutralX)
	if math.IsNaN(b) {
		return 0, ljpw.Invalid("bias", "undefined for opposing infinite terms")
	}
	return math.Max(-MaxBias, math.Min(MaxBias, b)), nil
}
