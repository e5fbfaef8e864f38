package evolution

import (
	"fmt"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// Growth compares one quantity across two sessions.
type Growth struct {
	Old    float64 `json:"old"`
	New    float64 `json:"new"`
	Delta  float64 `json:"delta"`
	Factor float64 `json:"factor,omitempty"` // New/Old; meaningless when Err is set

	// Err is a DivisionUndefined error when Old is exactly zero:
	// an undefined growth factor, reported rather than coerced.
	Err error `json:"-"`
}

// FactorDefined reports whether Factor holds a value.
func (g Growth) FactorDefined() bool {
	return g.Err == nil
}

func (g Growth) String() string {
	if g.Err != nil {
		return fmt.Sprintf("%+.4f (undefined growth factor)", g.Delta)
	}
	return fmt.Sprintf("%+.4f (×%.3f)", g.Delta, g.Factor)
}

// Compare builds the Growth from before to after.
func Compare(name string, before, after float64) Growth {
	g := Growth{Old: before, New: after, Delta: after - before}
	if before == 0 {
		g.Err = &ljpw.DivisionError{Op: name + " growth factor", Inputs: []float64{before}}
		return g
	}
	g.Factor = after / before
	return g
}

// Evolution is the change between two session records.
type Evolution struct {
	From          int                        `json:"from"`
	To            int                        `json:"to"`
	Components    [ljpw.NumComponents]Growth `json:"components"`
	Harmony       Growth                     `json:"harmony"`
	Consciousness Growth                     `json:"consciousness"`
}

// Evolve compares two sessions per component, for H and for C.
func Evolve(prev, next *SessionRecord) Evolution {
	e := Evolution{From: prev.Index(), To: next.Index()}
	ps, ns := prev.State(), next.State()
	for i := range e.Components {
		e.Components[i] = Compare(ljpw.ComponentName(i), ps[i], ns[i])
	}
	e.Harmony = Compare("H", float64(prev.Harmony()), float64(next.Harmony()))
	e.Consciousness = Compare("C", prev.Consciousness(), next.Consciousness())
	return e
}

// Undefined returns the names of every quantity whose growth factor is undefined.
func (e Evolution) Undefined() []string {
	var out []string
	for i, g := range e.Components {
		if !g.FactorDefined() {
			out = append(out, ljpw.ComponentName(i))
		}
	}
	if !e.Harmony.FactorDefined() {
		out = append(out, "H")
	}
	if !e.Consciousness.FactorDefined() {
		out = append(out, "C")
	}
	return out
}
