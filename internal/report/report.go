package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/talgya/ljpw-harmony/internal/evolution"
	"github.com/talgya/ljpw-harmony/internal/ljpw"
	"github.com/talgya/ljpw-harmony/internal/sweep"
	"github.com/talgya/ljpw-harmony/internal/trajectory"
)

// Arms writes one row per comparison arm.
func Arms(w io.Writer, reports []trajectory.Report) error {
	t := newTable("ARM", "MODE", "FINAL H", "RETENTION", "TRANSITIONS", "FIRST AUTOPOIETIC", "FINAL PHASE")
	t.alignRight(2, 3, 4, 5)
	for _, r := range reports {
		t.add(
			r.Label,
			r.Mode,
			fixed(float64(r.Summary.FinalHarmony)),
			ratio(r.Summary.EnergyRetentionRatio),
			steps(r.TransitionCount()),
			steps(r.FirstAutopoietic()),
			phaseCell(r.Summary.FinalPhase),
		)
	}
	return t.render(w)
}

// Comparison writes the two-arm table followed by the retention verdict.
func Comparison(w io.Writer, cmp trajectory.Comparison) error {
	if _, err := fmt.Fprintf(w, "initial %s, %s steps\n\n", cmp.Initial, steps(cmp.Steps)); err != nil {
		return err
	}
	if err := Arms(w, []trajectory.Report{cmp.Fixed, cmp.Variable}); err != nil {
		return err
	}
	verdict := "variable damping retained more energy"
	if !cmp.VariableRetainsMore() {
		verdict = "variable damping did NOT retain more energy"
	}
	_, err := fmt.Fprintf(w, "\n%s (gain ×%s)\n", verdict, ratio(cmp.RetentionGain()))
	return err
}

// Sweep writes one row per point and a closing summary.
func Sweep(w io.Writer, points []sweep.Point) error {
	t := newTable("#", "L", "J", "P", "W", "FIXED", "VARIABLE", "GAIN", "RESULT")
	t.alignRight(0, 1, 2, 3, 4, 5, 6, 7)
	for _, p := range points {
		row := []string{steps(p.Index)}
		for _, v := range p.Initial {
			row = append(row, fmt.Sprintf("%.3f", v))
		}
		if p.Err != nil {
			row = append(row, "-", "-", "-", "error: "+p.Err.Error())
		} else {
			res := phaseGlyph(p.VariableFinalPhase) + " win"
			if !p.VariableWins {
				res = phaseGlyph(p.VariableFinalPhase) + " LOSS"
			}
			row = append(row, ratio(p.FixedRetention), ratio(p.VariableRetention), ratio(p.Gain()), res)
		}
		t.add(row...)
	}
	if err := t.render(w); err != nil {
		return err
	}

	st := sweep.Tally(points)
	_, err := fmt.Fprintf(w, "\n%s/%s points: variable retained more; %s failed; gain min ×%s, median ×%s, max ×%s\n",
		steps(st.VariableWins), steps(st.Total), steps(st.Failed),
		ratio(st.MinGain), ratio(st.MedianGain), ratio(st.MaxGain))
	return err
}

// Projections writes the projected session table.
func Projections(w io.Writer, ps []evolution.Projection) error {
	t := newTable("SESSION", "H", "C", "PHASE")
	t.alignRight(0, 1, 2)
	for _, p := range ps {
		t.add(steps(p.Session), fixed(float64(p.Harmony)), ratio(p.Consciousness), phaseCell(p.Phase))
	}
	return t.render(w)
}

// Evolutions writes per-session growth. Undefined factors are shown as such.
func Evolutions(w io.Writer, evs []evolution.Evolution) error {
	header := []string{"FROM", "TO"}
	for i := 0; i < ljpw.NumComponents; i++ {
		header = append(header, "Δ"+ljpw.ComponentName(i))
	}
	header = append(header, "H", "C", "UNDEFINED")
	t := newTable(header...)
	t.alignRight(0, 1, 2, 3, 4, 5, 6, 7)

	for _, e := range evs {
		row := []string{steps(e.From), steps(e.To)}
		for _, g := range e.Components {
			row = append(row, fmt.Sprintf("%+.3f", g.Delta))
		}
		row = append(row, growth(e.Harmony), growth(e.Consciousness))
		undef := "-"
		if u := e.Undefined(); len(u) > 0 {
			undef = strings.Join(u, ",")
		}
		row = append(row, undef)
		t.add(row...)
	}
	return t.render(w)
}

func growth(g evolution.Growth) string {
	if !g.FactorDefined() {
		return "×?"
	}
	return "×" + ratio(g.Factor)
}
