// Package trajectory runs the integrator under several parameterizations from
// the same initial condition and lines the results up for comparison.
// Rendering is left to the caller.
package trajectory

import (
	"fmt"

	"github.com/talgya/ljpw-harmony/internal/engine"
	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// Report is one arm of a comparison.
type Report struct {
	Label   string         `json:"label"`
	Mode    string         `json:"mode"`
	Result  *engine.Result `json:"-"`
	Summary engine.Summary `json:"summary"`

	// Transitions are sample indexes where the phase changed.
	Transitions []int `json:"transitions"`
	// FirstIndex holds, per phase, the first sample index in that phase or -1.
	FirstIndex [ljpw.NumPhases]int `json:"first_index"`
}

// FirstAutopoietic returns the first sample index in the autopoietic phase, or -1.
func (r Report) FirstAutopoietic() int {
	return r.FirstIndex[ljpw.Autopoietic]
}

// TransitionCount is the number of phase changes.
func (r Report) TransitionCount() int {
	return len(r.Transitions)
}

// Comparison is the side-by-side record of the fixed and variable arms.
type Comparison struct {
	Initial  ljpw.State `json:"initial"`
	Steps    int        `json:"steps"`
	Fixed    Report     `json:"fixed"`
	Variable Report     `json:"variable"`
}

// RetentionGain is variable retention over fixed retention.
func (c Comparison) RetentionGain() float64 {
	return c.Variable.Summary.EnergyRetentionRatio / c.Fixed.Summary.EnergyRetentionRatio
}

// VariableRetainsMore reports whether the variable arm kept strictly more energy.
func (c Comparison) VariableRetainsMore() bool {
	return c.Variable.Summary.EnergyRetentionRatio > c.Fixed.Summary.EnergyRetentionRatio
}

// Harness runs comparisons with a shared integrator.
type Harness struct {
	integrator *engine.Integrator
}

// New creates a harness bound to the shared reference frame.
func New(c *ljpw.Constants) *Harness {
	return &Harness{integrator: engine.NewIntegrator(c)}
}

// Compare runs the fixed-damping and variable-damping presets from the same
// initial state for the same number of steps.
func (h *Harness) Compare(initial ljpw.State, steps int) (Comparison, error) {
	fixed := engine.FixedDamping(initial)
	variable := engine.VariableDamping(initial)
	fixed.Steps, variable.Steps = steps, steps
	return h.Pair(fixed, variable)
}

// Pair compares an explicit fixed arm against an explicit variable arm.
func (h *Harness) Pair(fixed, variable engine.Config) (Comparison, error) {
	if fixed.Mode != engine.DampingFixed || variable.Mode != engine.DampingVariable {
		return Comparison{}, ljpw.Invalid("arms", "want one fixed and one variable arm")
	}
	reports, err := h.CompareConfigs(fixed, variable)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		Initial:  fixed.Initial.Clamp(),
		Steps:    fixed.Steps,
		Fixed:    reports[0],
		Variable: reports[1],
	}, nil
}

// CompareConfigs runs any number of arms. All arms must share the initial
// state, initial velocity and step count so the series line up.
func (h *Harness) CompareConfigs(cfgs ...engine.Config) ([]Report, error) {
	if len(cfgs) < 2 {
		return nil, ljpw.Invalid("arms", fmt.Sprintf("need at least 2 configurations, got %d", len(cfgs)))
	}
	for i, cfg := range cfgs[1:] {
		if cfg.Initial != cfgs[0].Initial || cfg.InitialVelocity != cfgs[0].InitialVelocity || cfg.Steps != cfgs[0].Steps {
			return nil, ljpw.Invalid(fmt.Sprintf("arms[%d]", i+1), "initial condition or step count differs from arm 0")
		}
	}

	reports := make([]Report, 0, len(cfgs))
	for _, cfg := range cfgs {
		r, err := h.Run(cfg)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Run executes one arm and builds its report.
func (h *Harness) Run(cfg engine.Config) (Report, error) {
	res, err := h.integrator.Run(cfg)
	if err != nil {
		return Report{}, fmt.Errorf("arm %s: %w", cfg.Label, err)
	}
	sum, err := res.Summary()
	if err != nil {
		return Report{}, fmt.Errorf("arm %s: %w", cfg.Label, err)
	}
	r := Report{
		Label:       cfg.Label,
		Mode:        cfg.Mode.String(),
		Result:      res,
		Summary:     sum,
		Transitions: res.PhaseTransitions(),
	}
	for p := ljpw.Phase(0); p < ljpw.NumPhases; p++ {
		r.FirstIndex[p] = res.FirstPhase(p)
	}
	return r, nil
}
