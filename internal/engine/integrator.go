package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// Integrator advances LJPW states under the variable-damping law.
// It holds no per-run state, so one Integrator can serve concurrent runs
// as long as OnSample is safe to call concurrently (or nil).
type Integrator struct {
	consts *ljpw.Constants

	// OnSample, if set, is called for every recorded sample in step order.
	OnSample func(s Sample)
}

// NewIntegrator creates an integrator bound to the shared reference frame.
func NewIntegrator(c *ljpw.Constants) *Integrator {
	return &Integrator{consts: c}
}

// Damping returns γ for the given harmony under cfg. In variable mode damping
// falls linearly from γ₀ at the threshold to −ρ·γ₀ at H = 1.
func Damping(cfg Config, h ljpw.DistanceHarmony) float64 {
	if cfg.Mode != DampingVariable || float64(h) <= cfg.SourceThreshold {
		return cfg.BaseDamping
	}
	t := (float64(h) - cfg.SourceThreshold) / (1 - cfg.SourceThreshold)
	return cfg.BaseDamping * (1 - t*(1+cfg.NegativeDepth))
}

// SourceActive reports whether the source term fires at harmony h.
func SourceActive(cfg Config, h ljpw.DistanceHarmony) bool {
	return cfg.Mode == DampingVariable && float64(h) > cfg.SourceThreshold
}

// Run integrates cfg.Steps steps. Sample 0 is the clamped initial condition.
// On divergence the partial result is returned together with a *DivergenceError.
func (in *Integrator) Run(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	x := cfg.Initial.Clamp()
	v := cfg.InitialVelocity

	res := &Result{
		Config:  cfg,
		Samples: make([]Sample, 0, cfg.Steps+1),
	}
	res.record(in, in.sample(0, x, v))

	slog.Debug("integrator run",
		"label", cfg.Label,
		"mode", cfg.Mode,
		"steps", cfg.Steps,
		"initial", x.String(),
	)

	for step := 1; step <= cfg.Steps; step++ {
		h := in.consts.DistanceHarmony(x)
		gamma := Damping(cfg, h)
		if math.IsNaN(gamma) || math.IsInf(gamma, 0) {
			return res, in.diverged(res, step, "damping")
		}

		var a ljpw.State
		for i := range a {
			a[i] = cfg.Stiffness*(1-x[i]) - gamma*v[i]
		}

		if SourceActive(cfg, h) {
			hf := float64(h)
			// Love gets the full push plus half the friction it is losing.
			a[ljpw.Love] += cfg.SourceStrength*hf + 0.5*math.Max(gamma, 0)*math.Abs(v[ljpw.Love])
			for i := ljpw.Justice; i < ljpw.NumComponents; i++ {
				a[i] += 0.5 * cfg.SourceStrength * hf * (1 - x[i])
			}
		}

		for i := range x {
			v[i] += a[i] * cfg.Dt
			x[i] += v[i] * cfg.Dt
		}
		if !x.Finite() || !v.Finite() {
			return res, in.diverged(res, step, "state")
		}
		x = x.Clamp()

		res.record(in, in.sample(step, x, v))
	}

	return res, nil
}

func (in *Integrator) sample(step int, x, v ljpw.State) Sample {
	h := in.consts.DistanceHarmony(x)
	return Sample{
		Step:     step,
		State:    x,
		Velocity: v,
		Harmony:  h,
		Phase:    h.Phase(in.consts, x.L()),
		Energy:   kinetic(v),
	}
}

func (in *Integrator) diverged(res *Result, step int, what string) error {
	last := res.Samples[len(res.Samples)-1]
	slog.Debug("integrator diverged", "label", res.Config.Label, "step", step, "what", what)
	return &DivergenceError{Step: step, What: what, LastValid: last}
}

// kinetic is Σv², the energy proxy.
func kinetic(v ljpw.State) float64 {
	e := 0.0
	for _, c := range v {
		e += c * c
	}
	return e
}
