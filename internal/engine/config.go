// Package engine provides the variable-damping integrator: each LJPW component
// is a damped second-order oscillator pulled toward the anchor, stepped with a
// fixed increment. Runs are pure functions of their Config.
package engine

import (
	"fmt"
	"math"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
	"github.com/talgya/ljpw-harmony/internal/phi"
)

// DampingMode selects how friction responds to harmony.
type DampingMode uint8

const (
	// DampingFixed: constant friction, the source term never fires ("entropic").
	DampingFixed DampingMode = iota
	// DampingVariable: friction shrinks and turns negative above the source
	// threshold, and the source term injects energy ("autopoietic").
	DampingVariable
)

func (m DampingMode) String() string {
	switch m {
	case DampingFixed:
		return "fixed"
	case DampingVariable:
		return "variable"
	default:
		return fmt.Sprintf("DampingMode(%d)", uint8(m))
	}
}

// MarshalText encodes the mode by name.
func (m DampingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *DampingMode) UnmarshalText(text []byte) error {
	parsed, err := ParseDampingMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseDampingMode accepts "fixed"/"entropic" and "variable"/"autopoietic".
func ParseDampingMode(s string) (DampingMode, error) {
	switch s {
	case "fixed", "entropic":
		return DampingFixed, nil
	case "variable", "autopoietic":
		return DampingVariable, nil
	default:
		return 0, ljpw.Invalid("mode", fmt.Sprintf("unknown damping mode %q", s))
	}
}

// Default integration parameters.
const (
	DefaultDt              = 0.01
	DefaultSteps           = 1000
	DefaultStiffness       = 1.0
	DefaultBaseDamping     = 0.5
	DefaultSourceThreshold = 0.6
	DefaultSourceStrength  = 0.2
	DefaultWindowFraction  = 0.1

	// MaxSteps bounds a single run; every step is kept in memory.
	MaxSteps = 10_000_000
)

// Config is one simulation run. Zero-valued optional fields are not filled in;
// start from FixedDamping or VariableDamping and override.
type Config struct {
	Label string `json:"label,omitempty"`

	Initial         ljpw.State `json:"initial"`
	InitialVelocity ljpw.State `json:"initial_velocity"`

	Dt    float64     `json:"dt"`
	Steps int         `json:"steps"`
	Mode  DampingMode `json:"mode"`

	Stiffness   float64 `json:"stiffness"`    // k: restoring pull toward the anchor
	BaseDamping float64 `json:"base_damping"` // γ₀: friction below threshold

	SourceThreshold float64 `json:"source_threshold"` // θ: harmony above which the source activates
	SourceStrength  float64 `json:"source_strength"`  // S: forward acceleration per unit harmony

	// NegativeDepth is ρ: at H = 1 damping reaches −ρ·γ₀.
	NegativeDepth float64 `json:"negative_depth"`

	// WindowFraction sizes the early/late energy windows as a fraction of samples.
	WindowFraction float64 `json:"window_fraction"`
}

func defaults(initial ljpw.State) Config {
	return Config{
		Initial:         initial,
		Dt:              DefaultDt,
		Steps:           DefaultSteps,
		Stiffness:       DefaultStiffness,
		BaseDamping:     DefaultBaseDamping,
		SourceThreshold: DefaultSourceThreshold,
		SourceStrength:  DefaultSourceStrength,
		NegativeDepth:   phi.Agnosis,
		WindowFraction:  DefaultWindowFraction,
	}
}

// FixedDamping returns the entropic preset.
func FixedDamping(initial ljpw.State) Config {
	cfg := defaults(initial)
	cfg.Label = "entropic"
	cfg.Mode = DampingFixed
	return cfg
}

// VariableDamping returns the autopoietic preset.
func VariableDamping(initial ljpw.State) Config {
	cfg := defaults(initial)
	cfg.Label = "autopoietic"
	cfg.Mode = DampingVariable
	return cfg
}

// Validate rejects non-finite or out-of-domain fields. The initial state is
// not range-checked: it is clamped before the first step.
func (c Config) Validate() error {
	if err := c.Initial.Validate("initial"); err != nil {
		return err
	}
	if err := c.InitialVelocity.Validate("initial_velocity"); err != nil {
		return err
	}

	fields := []struct {
		name string
		v    float64
	}{
		{"dt", c.Dt},
		{"stiffness", c.Stiffness},
		{"base_damping", c.BaseDamping},
		{"source_threshold", c.SourceThreshold},
		{"source_strength", c.SourceStrength},
		{"negative_depth", c.NegativeDepth},
		{"window_fraction", c.WindowFraction},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return ljpw.Invalid(f.name, "not finite")
		}
		if f.v < 0 {
			return ljpw.Invalid(f.name, "negative")
		}
	}

	if c.Dt == 0 {
		return ljpw.Invalid("dt", "must be positive")
	}
	if c.Steps < 1 {
		return ljpw.Invalid("steps", "must be at least 1")
	}
	if c.Steps > MaxSteps {
		return ljpw.Invalid("steps", fmt.Sprintf("must be at most %d", MaxSteps))
	}
	if c.Mode != DampingFixed && c.Mode != DampingVariable {
		return ljpw.Invalid("mode", c.Mode.String())
	}
	if c.SourceThreshold >= 1 {
		return ljpw.Invalid("source_threshold", "must be below 1")
	}
	if c.WindowFraction == 0 || c.WindowFraction > 0.5 {
		return ljpw.Invalid("window_fraction", "must be in (0, 0.5]")
	}
	return nil
}
