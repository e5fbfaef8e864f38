package sweep

import (
	"context"
	"errors"
	"testing"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

func TestGrid_DeterministicForSeed(t *testing.T) {
	cfg := DefaultGridConfig()
	cfg.Seed = 42
	a, seedA := Grid(cfg)
	b, seedB := Grid(cfg)
	if seedA != 42 || seedB != 42 {
		t.Fatalf("seeds = %d/%d, want 42", seedA, seedB)
	}
	if len(a) != cfg.Size {
		t.Fatalf("len = %d, want %d", len(a), cfg.Size)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("state %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestGrid_InUnitCube(t *testing.T) {
	cfg := DefaultGridConfig()
	cfg.Seed = 7
	cfg.Size = 200
	states, _ := Grid(cfg)
	for i, s := range states {
		for c, v := range s {
			if v < 0 || v > 1 {
				t.Errorf("state %d component %s = %v outside [0, 1]", i, ljpw.ComponentName(c), v)
			}
		}
	}
}

func TestLayered_HalfOpenUnitRange(t *testing.T) {
	noise := opensimplex.NewNormalized(11)
	for _, cfg := range []GridConfig{
		DefaultGridConfig(),
		{Frequency: 1.7, Octaves: 6, Persistence: 0.9},
		{Frequency: 0.01, Octaves: 1, Persistence: 0},
	} {
		for i := 0; i < 2000; i++ {
			x, y := float64(i%50)*0.37, float64(i/50)*1.13
			if v := cfg.layered(noise, x, y); v < 0 || v >= 1 {
				t.Fatalf("%+v at (%v, %v): %v outside [0, 1)", cfg, x, y, v)
			}
		}
	}
}

func TestGrid_SeedsDiffer(t *testing.T) {
	cfg := DefaultGridConfig()
	cfg.Seed = 1
	a, _ := Grid(cfg)
	cfg.Seed = 2
	b, _ := Grid(cfg)
	same := 0
	for i := range a {
		if a[i] == b[i] {
			same++
		}
	}
	if same == len(a) {
		t.Error("different seeds produced identical grids")
	}
}

func TestGrid_RandomSeed(t *testing.T) {
	cfg := DefaultGridConfig()
	cfg.Size = 4
	if _, seed := Grid(cfg); seed == 0 {
		t.Error("expected a drawn seed")
	}
}

func TestRun_VariableWinsEverywhere(t *testing.T) {
	cfg := DefaultGridConfig()
	cfg.Seed = 99
	cfg.Size = 16
	states, _ := Grid(cfg)

	points, err := Run(context.Background(), ljpw.NewConstants(), states, 600, 4)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(points) != len(states) {
		t.Fatalf("got %d points, want %d", len(points), len(states))
	}
	for i, p := range points {
		if p.Index != i || p.Initial != states[i] {
			t.Errorf("point %d out of order: index %d initial %v", i, p.Index, p.Initial)
		}
		if p.Err != nil {
			t.Errorf("point %d: %v", i, p.Err)
			continue
		}
		if !p.VariableWins {
			t.Errorf("point %d %v: variable %v <= fixed %v", i, p.Initial, p.VariableRetention, p.FixedRetention)
		}
	}

	st := Tally(points)
	if st.Total != 16 || st.Failed != 0 || st.VariableWins != 16 {
		t.Errorf("stats = %+v", st)
	}
	if st.MinGain <= 1 || st.MinGain > st.MedianGain || st.MedianGain > st.MaxGain {
		t.Errorf("gain ordering broken: %+v", st)
	}
}

func TestRun_MatchesSerial(t *testing.T) {
	c := ljpw.NewConstants()
	states := []ljpw.State{{0.30, 0.65, 0.40, 0.35}, {0.1, 0.2, 0.3, 0.4}, {0.9, 0.5, 0.2, 0.7}}
	serial, err := Run(context.Background(), c, states, 300, 1)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := Run(context.Background(), c, states, 300, 8)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	for i := range serial {
		if serial[i].FixedRetention != parallel[i].FixedRetention ||
			serial[i].VariableRetention != parallel[i].VariableRetention {
			t.Errorf("point %d differs between serial and parallel runs", i)
		}
	}
}

func TestRun_RecordsPointFailure(t *testing.T) {
	states := []ljpw.State{{1, 1, 1, 1}, {0.30, 0.65, 0.40, 0.35}}
	points, err := Run(context.Background(), ljpw.NewConstants(), states, 200, 2)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !errors.Is(points[0].Err, ljpw.ErrDivisionUndefined) {
		t.Errorf("anchor point error = %v, want ErrDivisionUndefined", points[0].Err)
	}
	if points[1].Err != nil {
		t.Errorf("second point: %v", points[1].Err)
	}
	if st := Tally(points); st.Failed != 1 {
		t.Errorf("failed = %d, want 1", st.Failed)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	states := make([]ljpw.State, 8)
	if _, err := Run(ctx, ljpw.NewConstants(), states, 100, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_InvalidSteps(t *testing.T) {
	if _, err := Run(context.Background(), ljpw.NewConstants(), nil, 0, 1); !errors.Is(err, ljpw.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
