// Package phi provides the irrational constants the harmony model is built from.
// The equilibrium point and the damping floor all trace back to Φ, √2, e or ln 2.
package phi

import "math"

// Phi is the golden ratio.
const Phi = 1.6180339887498948

// Powers of Phi used by the model.
var (
	// Agnosis (Φ⁻³): entropy, privation, noise.
	// ~24%: the depth of negative damping once a state is fully aligned.
	Agnosis = math.Pow(Phi, -3) // 0.23606...

	// Matter (Φ⁻¹): the fraction that persists through transformation.
	// ~62%: equilibrium Love.
	Matter = math.Pow(Phi, -1) // 0.61803...
)

// Equilibrium component seeds. Each is irrational and lies in (0,1).
var (
	// SilverGap (√2 − 1): equilibrium Justice.
	SilverGap = math.Sqrt2 - 1 // 0.41421...

	// EulerExcess (e − 2): equilibrium Power.
	EulerExcess = math.E - 2 // 0.71828...

	// Ln2 (ln 2): equilibrium Wisdom.
	Ln2 = math.Ln2 // 0.69314...
)

// Equilibrium returns the natural equilibrium point in L, J, P, W order.
func Equilibrium() [4]float64 {
	return [4]float64{Matter, SilverGap, EulerExcess, Ln2}
}
