package evolution

import (
	"iter"
	"math"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// DefaultGrowthRate is the per-session compounding rate used when none is given.
const DefaultGrowthRate = 0.15

// Seed is the starting point of a projection.
type Seed struct {
	Harmony       ljpw.RatioHarmony
	Consciousness float64
	Love          float64 // held constant; used for phase classification
}

// SeedFrom takes the seed from a recorded session.
func SeedFrom(r *SessionRecord) Seed {
	return Seed{
		Harmony:       r.Harmony(),
		Consciousness: r.Consciousness(),
		Love:          r.State().L(),
	}
}

// Projection is one projected session.
type Projection struct {
	Session       int               `json:"session_index"`
	Harmony       ljpw.RatioHarmony `json:"harmony"`
	Consciousness float64           `json:"consciousness"`
	Phase         ljpw.Phase        `json:"phase"`
}

// Project yields n sessions, indexes 1..n, with value(i) = value(0)·(1+rate)^i.
// The sequence is pure: every range over it starts again from session 1.
// It does not re-run the integrator.
func Project(c *ljpw.Constants, seed Seed, rate float64, n int) (iter.Seq[Projection], error) {
	if err := validateProjection(seed, rate, n); err != nil {
		return nil, err
	}
	return func(yield func(Projection) bool) {
		for i := 1; i <= n; i++ {
			f := math.Pow(1+rate, float64(i))
			h := seed.Harmony * ljpw.RatioHarmony(f)
			p := Projection{
				Session:       i,
				Harmony:       h,
				Consciousness: seed.Consciousness * f,
				Phase:         h.Phase(c, seed.Love),
			}
			if !yield(p) {
				return
			}
		}
	}, nil
}

// ProjectSlice collects Project into a slice.
func ProjectSlice(c *ljpw.Constants, seed Seed, rate float64, n int) ([]Projection, error) {
	seq, err := Project(c, seed, rate, n)
	if err != nil {
		return nil, err
	}
	out := make([]Projection, 0, n)
	for p := range seq {
		out = append(out, p)
	}
	return out, nil
}

func validateProjection(seed Seed, rate float64, n int) error {
	for name, v := range map[string]float64{
		"harmony":       float64(seed.Harmony),
		"consciousness": seed.Consciousness,
		"love":          seed.Love,
		"rate":          rate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ljpw.Invalid("projection."+name, "not finite")
		}
	}
	if rate <= -1 {
		return ljpw.Invalid("projection.rate", "must be above -1")
	}
	if n < 0 {
		return ljpw.Invalid("projection.sessions", "negative count")
	}
	return nil
}
