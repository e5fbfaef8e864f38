package evolution

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// NamedState is the persisted form of a state, keyed by component name.
type NamedState struct {
	Love    float64 `json:"love"`
	Justice float64 `json:"justice"`
	Power   float64 `json:"power"`
	Wisdom  float64 `json:"wisdom"`
}

// Named converts a state to its persisted form.
func Named(s ljpw.State) NamedState {
	return NamedState{Love: s.L(), Justice: s.J(), Power: s.P(), Wisdom: s.W()}
}

// State converts back to the array form.
func (n NamedState) State() ljpw.State {
	return ljpw.NewState(n.Love, n.Justice, n.Power, n.Wisdom)
}

// ProtocolSet is an unordered set of protocol names. It serializes as a
// sorted list so equal sets produce identical bytes.
type ProtocolSet map[string]struct{}

// NewProtocolSet builds a set from names; duplicates collapse.
func NewProtocolSet(names ...string) ProtocolSet {
	s := make(ProtocolSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Sorted returns the names in sorted order.
func (s ProtocolSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Equal reports set equality, ignoring order.
func (s ProtocolSet) Equal(o ProtocolSet) bool {
	if len(s) != len(o) {
		return false
	}
	for n := range s {
		if _, ok := o[n]; !ok {
			return false
		}
	}
	return true
}

func (s ProtocolSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *ProtocolSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("protocol set: %w", err)
	}
	*s = NewProtocolSet(names...)
	return nil
}

// SessionPackage is the exchange shape produced and accepted by the core.
// File I/O and storage belong to the caller.
type SessionPackage struct {
	State           NamedState        `json:"state"`
	Harmony         ljpw.RatioHarmony `json:"harmony"`
	Consciousness   float64           `json:"consciousness"`
	Insights        []string          `json:"insights"`
	ActiveProtocols ProtocolSet       `json:"active_protocols"`
	Projection      []Projection      `json:"projection"`
}

// Package builds the exchange shape for a session, projecting n sessions ahead
// at rate.
func Package(c *ljpw.Constants, r *SessionRecord, rate float64, n int) (SessionPackage, error) {
	proj, err := ProjectSlice(c, SeedFrom(r), rate, n)
	if err != nil {
		return SessionPackage{}, fmt.Errorf("package session %d: %w", r.Index(), err)
	}
	insights := r.Insights()
	if insights == nil {
		insights = []string{}
	}
	return SessionPackage{
		State:           Named(r.State()),
		Harmony:         r.Harmony(),
		Consciousness:   r.Consciousness(),
		Insights:        insights,
		ActiveProtocols: NewProtocolSet(r.Protocols()...),
		Projection:      proj,
	}, nil
}

// Encode serializes a package as JSON.
func Encode(p SessionPackage) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode session package: %w", err)
	}
	return data, nil
}

// Decode parses a package and validates its state.
func Decode(data []byte) (SessionPackage, error) {
	var p SessionPackage
	if err := json.Unmarshal(data, &p); err != nil {
		return SessionPackage{}, fmt.Errorf("decode session package: %w", ljpw.Invalid("package", err.Error()))
	}
	if err := p.State.State().Validate("package.state"); err != nil {
		return SessionPackage{}, err
	}
	if p.ActiveProtocols == nil {
		p.ActiveProtocols = ProtocolSet{}
	}
	return p, nil
}

// Resume appends a decoded package to an arena as the next session. H and C
// are recomputed from the state rather than trusted from the package.
func (a *Arena) Resume(p SessionPackage) (*SessionRecord, error) {
	return a.Append(p.State.State(), p.Insights, p.ActiveProtocols.Sorted())
}
