package ljpw

import (
	"fmt"
)

// DistanceHarmony is H = 1/(1+d) against the anchor. Always in (0,1].
type DistanceHarmony float64

// RatioHarmony is H = ΠS/ΠB against a baseline. Unbounded above; can exceed 1.
// It is deliberately a different type from DistanceHarmony: the two scales are
// not comparable and are never converted into each other.
type RatioHarmony float64

// Kind selects a harmony strategy explicitly.
type Kind uint8

const (
	// KindDistance measures alignment with the anchor point.
	KindDistance Kind = iota
	// KindRatio is for self-referential measurement against a baseline state.
	KindRatio
)

func (k Kind) String() string {
	switch k {
	case KindDistance:
		return "distance"
	case KindRatio:
		return "ratio"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Calculator computes a harmony value for a state.
type Calculator interface {
	Kind() Kind
	Harmony(s State) (float64, error)
}

// Distance is the anchor-distance strategy.
type Distance struct {
	Anchor State
}

// Kind returns KindDistance.
func (Distance) Kind() Kind { return KindDistance }

// Harmony returns 1/(1+‖s − anchor‖). Never fails for finite input.
func (d Distance) Harmony(s State) (float64, error) {
	if err := s.Validate("state"); err != nil {
		return 0, err
	}
	return 1 / (1 + s.Distance(d.Anchor)), nil
}

// Ratio is the self-referential strategy.
type Ratio struct {
	Baseline State
}

// Kind returns KindRatio.
func (Ratio) Kind() Kind { return KindRatio }

// Harmony returns ΠS/ΠB. Fails with a DivisionError if any baseline component is zero.
// A zero state component is a valid degenerate state and yields 0.
func (r Ratio) Harmony(s State) (float64, error) {
	if err := s.Validate("state"); err != nil {
		return 0, err
	}
	if err := r.Baseline.Validate("baseline"); err != nil {
		return 0, err
	}
	for _, b := range r.Baseline {
		if b == 0 {
			return 0, &DivisionError{Op: "ratio harmony", Inputs: r.Baseline[:]}
		}
	}
	return s.Product() / r.Baseline.Product(), nil
}

// NewCalculator returns the strategy named by kind. The ratio strategy uses
// baseline when non-nil, otherwise the equilibrium point.
func NewCalculator(kind Kind, c *Constants, baseline *State) (Calculator, error) {
	switch kind {
	case KindDistance:
		return Distance{Anchor: c.anchor}, nil
	case KindRatio:
		b := c.equilibrium
		if baseline != nil {
			b = *baseline
		}
		return Ratio{Baseline: b}, nil
	default:
		return nil, Invalid("kind", fmt.Sprintf("unknown harmony strategy %d", kind))
	}
}

// DistanceHarmony measures s against the anchor. s must be finite.
func (c *Constants) DistanceHarmony(s State) DistanceHarmony {
	return DistanceHarmony(1 / (1 + s.Distance(c.anchor)))
}

// RatioHarmony measures s against the equilibrium point.
func (c *Constants) RatioHarmony(s State) (RatioHarmony, error) {
	return c.RatioHarmonyFrom(s, c.equilibrium)
}

// RatioHarmonyFrom measures s against a caller-supplied session-zero baseline.
func (c *Constants) RatioHarmonyFrom(s, baseline State) (RatioHarmony, error) {
	h, err := Ratio{Baseline: baseline}.Harmony(s)
	if err != nil {
		return 0, err
	}
	return RatioHarmony(h), nil
}

// Phase classifies this harmony value together with the Love component.
func (h DistanceHarmony) Phase(c *Constants, love float64) Phase {
	return c.Classify(float64(h), love)
}

// Phase classifies a ratio value on the same threshold table. Values above 1
// are classified as they are; no normalization is applied.
func (h RatioHarmony) Phase(c *Constants, love float64) Phase {
	return c.Classify(float64(h), love)
}
