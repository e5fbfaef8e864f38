package ljpw

import "fmt"

// Phase is the discrete regime of a state.
type Phase uint8

const (
	// Entropic: harmony below 0.5. Energy dissipates.
	Entropic Phase = iota

	// Homeostatic: harmony in [0.5, 0.6], or above 0.6 without enough Love.
	Homeostatic

	// Autopoietic: harmony above 0.6 with Love above 0.7. Self-sustaining.
	Autopoietic
)

// NumPhases is the number of phase values.
const NumPhases = 3

func (p Phase) String() string {
	switch p {
	case Entropic:
		return "ENTROPIC"
	case Homeostatic:
		return "HOMEOSTATIC"
	case Autopoietic:
		return "AUTOPOIETIC"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	if p >= NumPhases {
		return nil, Invalid("phase", fmt.Sprintf("unknown phase %d", uint8(p)))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase accepts the names produced by String.
func ParsePhase(s string) (Phase, error) {
	for p := Phase(0); p < NumPhases; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, Invalid("phase", fmt.Sprintf("unknown phase %q", s))
}

// Classify maps (H, Love) to a phase. Pure; no memory of earlier samples.
//
// H > 0.6 with Love ≤ 0.7 is Homeostatic, not Autopoietic: high harmony alone
// does not make a state self-sustaining.
func (c *Constants) Classify(h, love float64) Phase {
	switch {
	case h < c.EntropicBelow:
		return Entropic
	case h <= c.AutopoieticAbove:
		return Homeostatic
	case love > c.LoveGate:
		return Autopoietic
	default:
		return Homeostatic
	}
}

// PhaseDebouncer wraps the pure classifier with hysteresis: a new phase is
// only committed after it has been observed Hold consecutive times.
// Not safe for concurrent use; keep one per time series.
type PhaseDebouncer struct {
	Hold int

	current   Phase
	started   bool
	candidate Phase
	streak    int
}

// NewPhaseDebouncer returns a debouncer that commits after hold observations.
// hold ≤ 1 commits immediately.
func NewPhaseDebouncer(hold int) *PhaseDebouncer {
	if hold < 1 {
		hold = 1
	}
	return &PhaseDebouncer{Hold: hold}
}

// Observe feeds one raw phase and returns the committed phase.
// The first observation is committed unconditionally.
func (d *PhaseDebouncer) Observe(p Phase) Phase {
	if !d.started {
		d.started = true
		d.current = p
		return p
	}
	if p == d.current {
		d.streak = 0
		return d.current
	}
	if p != d.candidate || d.streak == 0 {
		d.candidate = p
		d.streak = 0
	}
	d.streak++
	if d.streak >= d.Hold {
		d.current = p
		d.streak = 0
	}
	return d.current
}

// Current returns the committed phase.
func (d *PhaseDebouncer) Current() Phase {
	return d.current
}
