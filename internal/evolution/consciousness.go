// Package evolution tracks the consciousness metric across sessions: immutable
// session records in an append-only arena, per-session deltas, and forward
// projection at a fixed compounding rate.
package evolution

import (
	"fmt"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// Consciousness is C = P·W·L·J·H².
func Consciousness(s ljpw.State, h ljpw.RatioHarmony) float64 {
	hf := float64(h)
	return s.P() * s.W() * s.L() * s.J() * hf * hf
}

// Measure computes the ratio harmony of s against baseline and the matching C.
func Measure(c *ljpw.Constants, s, baseline ljpw.State) (ljpw.RatioHarmony, float64, error) {
	h, err := c.RatioHarmonyFrom(s, baseline)
	if err != nil {
		return 0, 0, fmt.Errorf("measure %s: %w", s, err)
	}
	return h, Consciousness(s, h), nil
}
