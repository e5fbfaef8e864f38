package evolution

import (
	"fmt"
	"iter"
	"slices"
	"sort"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// SessionRecord is the state at a session boundary. Never mutated after creation;
// accessors return copies.
type SessionRecord struct {
	index         int
	state         ljpw.State
	harmony       ljpw.RatioHarmony
	consciousness float64
	insights      []string
	protocols     map[string]struct{}
}

// Index is the session number, starting at 0.
func (r *SessionRecord) Index() int { return r.index }

func (r *SessionRecord) State() ljpw.State          { return r.state }
func (r *SessionRecord) Harmony() ljpw.RatioHarmony { return r.harmony }
func (r *SessionRecord) Consciousness() float64     { return r.consciousness }

// Insights returns the retained insights in the order they were recorded.
func (r *SessionRecord) Insights() []string { return slices.Clone(r.insights) }

// HasProtocol reports whether name was active in this session.
func (r *SessionRecord) HasProtocol(name string) bool {
	_, ok := r.protocols[name]
	return ok
}

// Protocols returns the active protocol names, sorted.
func (r *SessionRecord) Protocols() []string {
	out := make([]string, 0, len(r.protocols))
	for p := range r.protocols {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Baseline selects what ratio harmony is measured against inside an arena.
type Baseline uint8

const (
	// BaselineEquilibrium measures every session against the equilibrium point.
	BaselineEquilibrium Baseline = iota
	// BaselineSessionZero measures every session against the first session's state.
	BaselineSessionZero
)

// Arena is the append-only session log. Records are indexed by session number.
type Arena struct {
	consts   *ljpw.Constants
	baseline Baseline
	records  []*SessionRecord
}

// NewArena creates an empty log.
func NewArena(c *ljpw.Constants, b Baseline) *Arena {
	return &Arena{consts: c, baseline: b}
}

// Append records the next session. The state is validated and clamped; H and C
// are derived from it. Insight order is preserved, protocols deduplicated.
func (a *Arena) Append(s ljpw.State, insights []string, protocols []string) (*SessionRecord, error) {
	idx := len(a.records)
	if err := s.Validate("session"); err != nil {
		return nil, fmt.Errorf("session %d: %w", idx, err)
	}
	s = s.Clamp()

	base := a.consts.Equilibrium()
	if a.baseline == BaselineSessionZero {
		base = s
		if idx > 0 {
			base = a.records[0].state
		}
	}

	h, c, err := Measure(a.consts, s, base)
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", idx, err)
	}

	rec := newRecord(idx, s, h, c, insights, protocols)
	a.records = append(a.records, rec)
	return rec, nil
}

func newRecord(idx int, s ljpw.State, h ljpw.RatioHarmony, c float64, insights, protocols []string) *SessionRecord {
	set := make(map[string]struct{}, len(protocols))
	for _, p := range protocols {
		set[p] = struct{}{}
	}
	return &SessionRecord{
		index:         idx,
		state:         s,
		harmony:       h,
		consciousness: c,
		insights:      slices.Clone(insights),
		protocols:     set,
	}
}

// Len returns the number of sessions recorded.
func (a *Arena) Len() int { return len(a.records) }

// Get returns session i.
func (a *Arena) Get(i int) (*SessionRecord, error) {
	if i < 0 || i >= len(a.records) {
		return nil, ljpw.Invalid("session", fmt.Sprintf("index %d out of range [0,%d)", i, len(a.records)))
	}
	return a.records[i], nil
}

// Latest returns the most recent session, or nil for an empty arena.
func (a *Arena) Latest() *SessionRecord {
	if len(a.records) == 0 {
		return nil
	}
	return a.records[len(a.records)-1]
}

// All yields sessions in order.
func (a *Arena) All() iter.Seq[*SessionRecord] {
	return func(yield func(*SessionRecord) bool) {
		for _, r := range a.records {
			if !yield(r) {
				return
			}
		}
	}
}

// Evolutions returns the evolution between each consecutive pair of sessions.
func (a *Arena) Evolutions() []Evolution {
	if len(a.records) < 2 {
		return nil
	}
	out := make([]Evolution, 0, len(a.records)-1)
	for i := 1; i < len(a.records); i++ {
		out = append(out, Evolve(a.records[i-1], a.records[i]))
	}
	return out
}
