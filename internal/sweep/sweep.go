package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
	"github.com/talgya/ljpw-harmony/internal/trajectory"
)

// Point is the comparison outcome at one initial state.
type Point struct {
	Index              int        `json:"index"`
	Initial            ljpw.State `json:"initial"`
	FixedRetention     float64    `json:"fixed_retention"`
	VariableRetention  float64    `json:"variable_retention"`
	VariableWins       bool       `json:"variable_wins"`
	FixedFinalPhase    ljpw.Phase `json:"fixed_final_phase"`
	VariableFinalPhase ljpw.Phase `json:"variable_final_phase"`
	Err                error      `json:"-"`
}

// Gain is variable retention over fixed retention.
func (p Point) Gain() float64 {
	return p.VariableRetention / p.FixedRetention
}

// Run compares both damping presets at every state using up to workers
// goroutines. Points come back in input order. Per-point failures (such as
// undefined retention at a state that never moves) are recorded on the point;
// only cancellation aborts the sweep.
func Run(ctx context.Context, c *ljpw.Constants, states []ljpw.State, steps, workers int) ([]Point, error) {
	if steps < 1 {
		return nil, ljpw.Invalid("steps", "must be at least 1")
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(states) {
		workers = len(states)
	}

	h := trajectory.New(c)
	points := make([]Point, len(states))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				points[idx] = runPoint(h, idx, states[idx], steps)
			}
		}()
	}

	var cancelled error
feed:
	for i := range states {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, fmt.Errorf("sweep: %w", cancelled)
	}

	t := Tally(points)
	slog.Info("sweep complete",
		"points", t.Total,
		"variable_wins", t.VariableWins,
		"failed", t.Failed,
		"min_gain", fmt.Sprintf("%.3f", t.MinGain),
	)
	return points, nil
}

func runPoint(h *trajectory.Harness, idx int, s ljpw.State, steps int) Point {
	p := Point{Index: idx, Initial: s}
	cmp, err := h.Compare(s, steps)
	if err != nil {
		p.Err = err
		return p
	}
	p.FixedRetention = cmp.Fixed.Summary.EnergyRetentionRatio
	p.VariableRetention = cmp.Variable.Summary.EnergyRetentionRatio
	p.VariableWins = cmp.VariableRetainsMore()
	p.FixedFinalPhase = cmp.Fixed.Summary.FinalPhase
	p.VariableFinalPhase = cmp.Variable.Summary.FinalPhase
	return p
}

// Stats aggregates a sweep.
type Stats struct {
	Total        int
	VariableWins int
	Failed       int
	MinGain      float64
	MedianGain   float64
	MaxGain      float64
}

// Tally summarizes points. Gains cover only points that completed.
func Tally(points []Point) Stats {
	st := Stats{Total: len(points)}
	var gains []float64
	for _, p := range points {
		if p.Err != nil {
			st.Failed++
			continue
		}
		if p.VariableWins {
			st.VariableWins++
		}
		gains = append(gains, p.Gain())
	}
	if len(gains) == 0 {
		return st
	}
	slices.Sort(gains)
	st.MinGain = gains[0]
	st.MaxGain = gains[len(gains)-1]
	st.MedianGain = gains[len(gains)/2]
	return st
}
