package engine

import (
	"fmt"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// Sample is one recorded point of a run.
//
// Velocity is the integrator's momentum, not dx/dt: a component pinned at 0
// or 1 by the clamp keeps its velocity, so Energy can grow while State does
// not move.
type Sample struct {
	Step     int                  `json:"step"`
	State    ljpw.State           `json:"state"`
	Velocity ljpw.State           `json:"velocity"`
	Harmony  ljpw.DistanceHarmony `json:"harmony"`
	Phase    ljpw.Phase           `json:"phase"`
	Energy   float64              `json:"energy"` // Σv²
}

// Summary is the end-of-run record handed to consumers.
type Summary struct {
	Steps                int                  `json:"steps"`
	FinalState           ljpw.State           `json:"final_state"`
	FinalHarmony         ljpw.DistanceHarmony `json:"final_harmony"`
	FinalPhase           ljpw.Phase           `json:"final_phase"`
	EnergyRetentionRatio float64              `json:"energy_retention_ratio"`
}

// Result is the full output of one run.
type Result struct {
	Config  Config
	Samples []Sample
}

func (r *Result) record(in *Integrator, s Sample) {
	r.Samples = append(r.Samples, s)
	if in.OnSample != nil {
		in.OnSample(s)
	}
}

// Final returns the last recorded sample.
func (r *Result) Final() Sample {
	return r.Samples[len(r.Samples)-1]
}

// Window returns the number of samples in each retention window.
func (r *Result) Window() int {
	w := int(float64(len(r.Samples)) * r.Config.WindowFraction)
	if w < 1 {
		w = 1
	}
	return w
}

// EarlyEnergy is the mean energy of the first window.
func (r *Result) EarlyEnergy() float64 {
	w := r.Window()
	return meanEnergy(r.Samples[:w])
}

// LateEnergy is the mean energy of the last window.
func (r *Result) LateEnergy() float64 {
	w := r.Window()
	return meanEnergy(r.Samples[len(r.Samples)-w:])
}

// RetentionRatio is late-window mean energy over early-window mean energy.
// A run that starts and stays at rest has no early energy: DivisionUndefined.
func (r *Result) RetentionRatio() (float64, error) {
	early := r.EarlyEnergy()
	if early == 0 {
		return 0, &ljpw.DivisionError{Op: "energy retention", Inputs: []float64{early}}
	}
	return r.LateEnergy() / early, nil
}

// Summary builds the end-of-run record.
func (r *Result) Summary() (Summary, error) {
	ratio, err := r.RetentionRatio()
	if err != nil {
		return Summary{}, fmt.Errorf("summary %s: %w", r.Config.Label, err)
	}
	last := r.Final()
	return Summary{
		Steps:                last.Step,
		FinalState:           last.State,
		FinalHarmony:         last.Harmony,
		FinalPhase:           last.Phase,
		EnergyRetentionRatio: ratio,
	}, nil
}

// PhaseTransitions returns the sample indexes at which the phase differs from
// the previous sample.
func (r *Result) PhaseTransitions() []int {
	var out []int
	for i := 1; i < len(r.Samples); i++ {
		if r.Samples[i].Phase != r.Samples[i-1].Phase {
			out = append(out, i)
		}
	}
	return out
}

// FirstPhase returns the first sample index in phase p, or -1.
func (r *Result) FirstPhase(p ljpw.Phase) int {
	for i, s := range r.Samples {
		if s.Phase == p {
			return i
		}
	}
	return -1
}

func meanEnergy(samples []Sample) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += s.Energy
	}
	return sum / float64(len(samples))
}

// DivergenceError aborts a run at the first non-finite step.
type DivergenceError struct {
	Step      int    // step index that produced the invalid value
	What      string // "state" or "damping"
	LastValid Sample // last sample that was fully finite
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("non-finite %s at step %d (last valid step %d): %v",
		e.What, e.Step, e.LastValid.Step, ljpw.ErrNumericDivergence)
}

// Is lets errors.Is(err, ljpw.ErrNumericDivergence) match.
func (e *DivergenceError) Is(target error) bool {
	return target == ljpw.ErrNumericDivergence
}
