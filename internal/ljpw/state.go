// Package ljpw models the four-component Love/Justice/Power/Wisdom state, the
// reference points it is measured against, the two harmony strategies and the
// phase classifier. Everything here is pure and safe for concurrent use.
package ljpw

import (
	"fmt"
	"math"
)

// Component indexes. The order L, J, P, W is fixed across the repository:
// state arrays, velocities, persisted JSON and reports all use it.
const (
	Love = iota
	Justice
	Power
	Wisdom

	NumComponents = 4
)

// componentNames maps a component index to its short letter.
var componentNames = [NumComponents]string{"L", "J", "P", "W"}

// ComponentName returns the letter for index i ("L", "J", "P", "W").
func ComponentName(i int) string {
	if i < 0 || i >= NumComponents {
		return "?"
	}
	return componentNames[i]
}

// State is one point in LJPW space. Components are conceptually bounded to [0,1].
type State [NumComponents]float64

// NewState builds a state from named components without clamping.
func NewState(love, justice, power, wisdom float64) State {
	return State{love, justice, power, wisdom}
}

// L returns the Love component.
func (s State) L() float64 { return s[Love] }

// J returns the Justice component.
func (s State) J() float64 { return s[Justice] }

// P returns the Power component.
func (s State) P() float64 { return s[Power] }

// W returns the Wisdom component.
func (s State) W() float64 { return s[Wisdom] }

// Clamp returns a copy with every component forced into [0,1].
// Hard clamp, not reflective.
func (s State) Clamp() State {
	for i, v := range s {
		s[i] = clamp01(v)
	}
	return s
}

// Finite reports whether every component is a finite number.
func (s State) Finite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate rejects non-finite components. Range is not checked; callers clamp.
func (s State) Validate(field string) error {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Invalid(fmt.Sprintf("%s.%s", field, componentNames[i]), "not finite")
		}
	}
	return nil
}

// Distance returns the Euclidean distance between two states.
func (s State) Distance(o State) float64 {
	sum := 0.0
	for i := range s {
		d := s[i] - o[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Product returns L·J·P·W.
func (s State) Product() float64 {
	return s[Love] * s[Justice] * s[Power] * s[Wisdom]
}

// String formats the state as "(L=0.300 J=0.650 P=0.400 W=0.350)".
func (s State) String() string {
	return fmt.Sprintf("(L=%.3f J=%.3f P=%.3f W=%.3f)", s[Love], s[Justice], s[Power], s[Wisdom])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
