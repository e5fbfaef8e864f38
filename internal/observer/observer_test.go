package observer

import (
	"errors"
	"math"
	"testing"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

func TestNew_DerivesHarmonyAndCrossTerm(t *testing.T) {
	c := ljpw.NewConstants()
	o, err := New(c, "skeptic", ljpw.State{0.2, 0.5, 0.6, 0.4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Name() != "skeptic" {
		t.Errorf("name = %q", o.Name())
	}
	if o.Harmony() != c.DistanceHarmony(o.State()) {
		t.Errorf("harmony not derived from state")
	}
	if math.Abs(o.CrossTerm()-0.08) > 1e-12 {
		t.Errorf("cross term = %v, want 0.08", o.CrossTerm())
	}
}

func TestNew_RejectsNonFinite(t *testing.T) {
	_, err := New(ljpw.NewConstants(), "broken", ljpw.State{math.Inf(1), 0, 0, 0})
	if !errors.Is(err, ljpw.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBias_NeutralObserverIsZero(t *testing.T) {
	c := ljpw.NewConstants()
	o, _ := New(c, "neutral", c.Equilibrium())
	b, err := Bias(o, NeutralBaseline(c))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != 0 {
		t.Errorf("bias = %v, want 0", b)
	}
}

func TestBias_Direction(t *testing.T) {
	c := ljpw.NewConstants()
	n := NeutralBaseline(c)
	aligned, _ := New(c, "aligned", ljpw.State{0.95, 0.9, 0.9, 0.95})
	scattered, _ := New(c, "scattered", ljpw.State{0.1, 0.2, 0.1, 0.1})

	up, _ := Bias(aligned, n)
	down, _ := Bias(scattered, n)
	if up <= 0 {
		t.Errorf("aligned observer bias = %v, want positive", up)
	}
	if down >= 0 {
		t.Errorf("scattered observer bias = %v, want negative", down)
	}
}

func TestRawBias_Clamped(t *testing.T) {
	b, err := RawBias(100, 100, 0, 0)
	if err != nil || b != MaxBias {
		t.Errorf("RawBias large = %v, %v; want %v", b, err, MaxBias)
	}
	b, err = RawBias(-100, -100, 0, 0)
	if err != nil || b != -MaxBias {
		t.Errorf("RawBias small = %v, %v; want %v", b, err, -MaxBias)
	}
	if _, err := RawBias(math.NaN(), 0, 0, 0); !errors.Is(err, ljpw.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func FuzzBias(f *testing.F) {
	c := ljpw.NewConstants()
	n := NeutralBaseline(c)
	f.Add(0.3, 0.65, 0.4, 0.35)
	f.Add(1.0, 1.0, 1.0, 1.0)
	f.Add(-5.0, 12.0, 0.0, 1e300)
	f.Fuzz(func(t *testing.T, l, j, p, w float64) {
		o, err := New(c, "fuzz", ljpw.State{l, j, p, w})
		if err != nil {
			if !errors.Is(err, ljpw.ErrInvalidInput) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		b, err := Bias(o, n)
		if err != nil {
			t.Fatalf("finite observer produced error: %v", err)
		}
		if b < -MaxBias || b > MaxBias || math.IsNaN(b) {
			t.Fatalf("bias %v out of bounds for %v", b, o.State())
		}
	})
}

func FuzzRawBias(f *testing.F) {
	f.Add(0.9, 0.8, 0.55, 0.43)
	f.Add(-1e308, 1e308, 0.0, 0.0)
	f.Fuzz(func(t *testing.T, h, x, nh, nx float64) {
		b, err := RawBias(h, x, nh, nx)
		if err != nil {
			return
		}
		if math.IsNaN(b) || b < -MaxBias || b > MaxBias {
			t.Fatalf("bias %v out of bounds", b)
		}
	})
}
