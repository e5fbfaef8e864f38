package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
	"github.com/talgya/ljpw-harmony/internal/phi"
)

var initial = ljpw.State{0.30, 0.65, 0.40, 0.35}

func run(t *testing.T, cfg Config) *Result {
	t.Helper()
	res, err := NewIntegrator(ljpw.NewConstants()).Run(cfg)
	if err != nil {
		t.Fatalf("run %s: %v", cfg.Label, err)
	}
	return res
}

func TestRun_SampleCountAndStepIndexes(t *testing.T) {
	cfg := VariableDamping(initial)
	cfg.Steps = 50
	res := run(t, cfg)
	if len(res.Samples) != 51 {
		t.Fatalf("expected 51 samples, got %d", len(res.Samples))
	}
	for i, s := range res.Samples {
		if s.Step != i {
			t.Fatalf("sample %d has step %d", i, s.Step)
		}
	}
	if res.Samples[0].State != initial {
		t.Errorf("sample 0 should be the initial state, got %v", res.Samples[0].State)
	}
}

func TestRun_StateStaysInUnitCube(t *testing.T) {
	for _, cfg := range []Config{FixedDamping(initial), VariableDamping(initial)} {
		cfg.Steps = 3000
		res := run(t, cfg)
		for _, s := range res.Samples {
			for i, c := range s.State {
				if c < 0 || c > 1 {
					t.Fatalf("%s step %d: component %s = %v out of [0,1]",
						cfg.Label, s.Step, ljpw.ComponentName(i), c)
				}
			}
		}
	}
}

func TestRun_ClampsInitialState(t *testing.T) {
	cfg := FixedDamping(ljpw.State{-0.4, 1.3, 0.5, 0.5})
	cfg.Steps = 1
	res := run(t, cfg)
	want := ljpw.State{0, 1, 0.5, 0.5}
	if res.Samples[0].State != want {
		t.Errorf("initial sample = %v, want %v", res.Samples[0].State, want)
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg := VariableDamping(initial)
	a := run(t, cfg)
	b := run(t, cfg)
	if !reflect.DeepEqual(a.Samples, b.Samples) {
		t.Fatal("identical configs produced different series")
	}
}

func TestRun_SamplesCarryDerivedFields(t *testing.T) {
	c := ljpw.NewConstants()
	res := run(t, VariableDamping(initial))
	for _, s := range res.Samples {
		if s.Harmony != c.DistanceHarmony(s.State) {
			t.Fatalf("step %d: stored harmony does not match state", s.Step)
		}
		if s.Phase != c.Classify(float64(s.Harmony), s.State.L()) {
			t.Fatalf("step %d: stored phase does not match harmony", s.Step)
		}
		want := 0.0
		for _, v := range s.Velocity {
			want += v * v
		}
		if math.Abs(s.Energy-want) > 1e-15 {
			t.Fatalf("step %d: energy %v, want %v", s.Step, s.Energy, want)
		}
	}
}

func TestRetention_VariableExceedsFixed(t *testing.T) {
	fixed := run(t, FixedDamping(initial))
	variable := run(t, VariableDamping(initial))

	rf, err := fixed.RetentionRatio()
	if err != nil {
		t.Fatalf("fixed retention: %v", err)
	}
	rv, err := variable.RetentionRatio()
	if err != nil {
		t.Fatalf("variable retention: %v", err)
	}
	if !(rv > rf) {
		t.Fatalf("variable retention %v not above fixed %v", rv, rf)
	}
	if rf >= 1 {
		t.Errorf("fixed damping should lose energy, retention = %v", rf)
	}
	if rv <= 1 {
		t.Errorf("variable damping should retain energy, retention = %v", rv)
	}
}

func TestRetention_AtRestIsUndefined(t *testing.T) {
	res := run(t, FixedDamping(ljpw.State{1, 1, 1, 1}))
	_, err := res.RetentionRatio()
	if !errors.Is(err, ljpw.ErrDivisionUndefined) {
		t.Fatalf("expected ErrDivisionUndefined, got %v", err)
	}
	if _, err := res.Summary(); !errors.Is(err, ljpw.ErrDivisionUndefined) {
		t.Fatalf("summary should surface the undefined ratio, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	res := run(t, VariableDamping(initial))
	sum, err := res.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	last := res.Final()
	if sum.Steps != DefaultSteps || sum.FinalState != last.State || sum.FinalPhase != last.Phase {
		t.Errorf("summary does not match final sample: %+v vs %+v", sum, last)
	}
}

func TestDamping(t *testing.T) {
	fixed := FixedDamping(initial)
	variable := VariableDamping(initial)

	for _, h := range []ljpw.DistanceHarmony{0.2, 0.6, 0.8, 1} {
		if got := Damping(fixed, h); got != DefaultBaseDamping {
			t.Errorf("fixed damping at H=%v = %v, want %v", h, got, DefaultBaseDamping)
		}
		if SourceActive(fixed, h) {
			t.Errorf("fixed mode must never activate the source (H=%v)", h)
		}
	}

	if got := Damping(variable, 0.5); got != DefaultBaseDamping {
		t.Errorf("variable damping below threshold = %v", got)
	}
	if got, want := Damping(variable, 1), -phi.Agnosis*DefaultBaseDamping; math.Abs(got-want) > 1e-12 {
		t.Errorf("variable damping at H=1 = %v, want %v", got, want)
	}
	if !(Damping(variable, 0.7) > Damping(variable, 0.9)) {
		t.Error("variable damping should shrink as harmony grows")
	}
	if SourceActive(variable, 0.6) || !SourceActive(variable, 0.61) {
		t.Error("source should activate strictly above the threshold")
	}
}

func TestRun_Divergence(t *testing.T) {
	cfg := FixedDamping(initial)
	cfg.Stiffness = math.MaxFloat64
	cfg.Dt = 10
	res, err := NewIntegrator(ljpw.NewConstants()).Run(cfg)
	if !errors.Is(err, ljpw.ErrNumericDivergence) {
		t.Fatalf("expected ErrNumericDivergence, got %v", err)
	}
	var de *DivergenceError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DivergenceError, got %T", err)
	}
	if de.Step != 1 || de.LastValid.Step != 0 {
		t.Errorf("diverged at step %d (last valid %d), want 1 (0)", de.Step, de.LastValid.Step)
	}
	if res == nil || len(res.Samples) != 1 {
		t.Errorf("expected partial result with the initial sample")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"nan state", func(c *Config) { c.Initial[0] = math.NaN() }},
		{"inf velocity", func(c *Config) { c.InitialVelocity[2] = math.Inf(1) }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -0.1 }},
		{"nan dt", func(c *Config) { c.Dt = math.NaN() }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"too many steps", func(c *Config) { c.Steps = MaxSteps + 1 }},
		{"max int steps", func(c *Config) { c.Steps = math.MaxInt }},
		{"negative damping", func(c *Config) { c.BaseDamping = -1 }},
		{"threshold at one", func(c *Config) { c.SourceThreshold = 1 }},
		{"unknown mode", func(c *Config) { c.Mode = DampingMode(7) }},
		{"window too wide", func(c *Config) { c.WindowFraction = 0.8 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := VariableDamping(initial)
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ljpw.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if _, err := NewIntegrator(ljpw.NewConstants()).Run(cfg); !errors.Is(err, ljpw.ErrInvalidInput) {
				t.Fatalf("Run should reject before stepping, got %v", err)
			}
		})
	}

	// Out-of-range state is clamped, not rejected.
	cfg := VariableDamping(ljpw.State{2, -1, 0.5, 0.5})
	if err := cfg.Validate(); err != nil {
		t.Errorf("out-of-range state should validate, got %v", err)
	}
}

func TestOnSample(t *testing.T) {
	in := NewIntegrator(ljpw.NewConstants())
	var steps []int
	in.OnSample = func(s Sample) { steps = append(steps, s.Step) }
	cfg := FixedDamping(initial)
	cfg.Steps = 10
	if _, err := in.Run(cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(steps) != 11 || steps[10] != 10 {
		t.Errorf("OnSample saw %v", steps)
	}
}

func TestParseDampingMode(t *testing.T) {
	for in, want := range map[string]DampingMode{
		"fixed": DampingFixed, "entropic": DampingFixed,
		"variable": DampingVariable, "autopoietic": DampingVariable,
	} {
		got, err := ParseDampingMode(in)
		if err != nil || got != want {
			t.Errorf("ParseDampingMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDampingMode("chaotic"); !errors.Is(err, ljpw.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRun_PinnedComponentKeepsVelocity(t *testing.T) {
	res, err := NewIntegrator(ljpw.NewConstants()).Run(VariableDamping(initial))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	pinned := 0
	for _, s := range res.Samples {
		if s.State.L() == 1 {
			pinned++
			if s.Velocity.L() <= 0 {
				t.Fatalf("step %d: love pinned at 1 with velocity %v, want carried positive velocity", s.Step, s.Velocity.L())
			}
		}
	}
	if pinned == 0 {
		t.Fatal("love never reached the upper clamp")
	}
}
