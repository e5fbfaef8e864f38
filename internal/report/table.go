// Package report renders comparisons, sweeps and session projections as
// fixed-width text tables for the terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// table is a simple column-aligned text table. Widths are measured in
// terminal cells so wide or ambiguous glyphs line up.
type table struct {
	header []string
	right  []bool // right-align column
	rows   [][]string
}

func newTable(header ...string) *table {
	return &table{header: header, right: make([]bool, len(header))}
}

func (t *table) alignRight(cols ...int) {
	for _, c := range cols {
		t.right[c] = true
	}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) error {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var b strings.Builder
	t.line(&b, t.header, widths)
	total := 0
	for _, wd := range widths {
		total += wd
	}
	b.WriteString(strings.Repeat("-", total+2*(len(widths)-1)))
	b.WriteByte('\n')
	for _, row := range t.rows {
		t.line(&b, row, widths)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (t *table) line(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		switch {
		case t.right[i]:
			b.WriteString(runewidth.FillLeft(cell, widths[i]))
		case i == len(cells)-1:
			b.WriteString(cell)
		default:
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
	}
	b.WriteByte('\n')
}

// phaseGlyph marks a phase with a shade block.
func phaseGlyph(p ljpw.Phase) string {
	switch p {
	case ljpw.Entropic:
		return "░"
	case ljpw.Homeostatic:
		return "▒"
	case ljpw.Autopoietic:
		return "█"
	default:
		return "?"
	}
}

func phaseCell(p ljpw.Phase) string {
	return phaseGlyph(p) + " " + p.String()
}

// ratio formats a dimensionless quantity across many orders of magnitude.
func ratio(f float64) string {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return fmt.Sprint(f)
	case math.Abs(f) >= 1e15:
		// Rounding to int64 overflows near 9.2e18.
		return fmt.Sprintf("%.3g", f)
	case math.Abs(f) >= 1000:
		return humanize.Comma(int64(math.Round(f)))
	case math.Abs(f) >= 0.01 || f == 0:
		return humanize.FtoaWithDigits(f, 3)
	default:
		return fmt.Sprintf("%.3g", f)
	}
}

func fixed(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

func steps(n int) string {
	if n < 0 {
		return "-"
	}
	return humanize.Comma(int64(n))
}
