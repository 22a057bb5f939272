package domain

import (
	"fmt"
	"strings"
)

// TargetKind classifies an EdgeTarget.
type TargetKind int

const (
	TargetAbsent TargetKind = iota
	TargetSingle
	TargetParallel
)

// String returns the kind name used in logs and reports.
func (k TargetKind) String() string {
	switch k {
	case TargetAbsent:
		return "absent"
	case TargetSingle:
		return "single"
	case TargetParallel:
		return "parallel"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

// EdgeTarget is the resolved destination of one condition of one node.
//
// The zero value is Absent. A target holding one name is Single and a target
// holding two or more distinct names is Parallel. NewEdgeTarget is the only
// constructor, so a one-element Parallel cannot exist.
type EdgeTarget struct {
	names []string
}

// NewEdgeTarget builds a target from already-trimmed, non-empty, distinct names.
// Zero names yield Absent, one yields Single, more yield Parallel in the given order.
func NewEdgeTarget(names ...string) (EdgeTarget, error) {
	if len(names) == 0 {
		return EdgeTarget{}, nil
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return EdgeTarget{}, fmt.Errorf("target %d is empty", i)
		}
		if name != strings.TrimSpace(name) {
			return EdgeTarget{}, fmt.Errorf("target %q has surrounding whitespace", name)
		}
		if _, dup := seen[name]; dup {
			return EdgeTarget{}, fmt.Errorf("target %q listed more than once", name)
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	return EdgeTarget{names: out}, nil
}

// Single returns a Single target. It panics on an empty name; callers build
// from parsed input through NewEdgeTarget.
func Single(name string) EdgeTarget {
	t, err := NewEdgeTarget(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Parallel returns a target for the given names, panicking on invalid input.
// With fewer than two names the result is not Parallel.
func Parallel(names ...string) EdgeTarget {
	t, err := NewEdgeTarget(names...)
	if err != nil {
		panic(err)
	}
	return t
}

// Kind reports which variant the target holds.
func (t EdgeTarget) Kind() TargetKind {
	switch len(t.names) {
	case 0:
		return TargetAbsent
	case 1:
		return TargetSingle
	default:
		return TargetParallel
	}
}

// IsAbsent reports whether the condition has no edge.
func (t EdgeTarget) IsAbsent() bool {
	return len(t.names) == 0
}

// Single returns the node name of a Single target.
func (t EdgeTarget) Single() (string, bool) {
	if len(t.names) != 1 {
		return "", false
	}
	return t.names[0], true
}

// Parallel returns a copy of the ordered names of a Parallel target.
func (t EdgeTarget) Parallel() ([]string, bool) {
	if len(t.names) < 2 {
		return nil, false
	}
	return t.Names(), true
}

// Names returns a copy of every referenced node name, in order.
func (t EdgeTarget) Names() []string {
	if len(t.names) == 0 {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of referenced nodes.
func (t EdgeTarget) Len() int {
	return len(t.names)
}

// Value renders the target for dynamically typed consumers: nil for Absent,
// a bare string for Single and a []string for Parallel.
func (t EdgeTarget) Value() any {
	return FoldEdge(t,
		func() any { return nil },
		func(name string) any { return name },
		func(names []string) any { return names },
	)
}

// Equal reports structural equality, including order for Parallel targets.
func (t EdgeTarget) Equal(other EdgeTarget) bool {
	if len(t.names) != len(other.names) {
		return false
	}
	for i := range t.names {
		if t.names[i] != other.names[i] {
			return false
		}
	}
	return true
}

// String renders the target in source syntax ("A", "A|B", or "").
func (t EdgeTarget) String() string {
	return strings.Join(t.names, "|")
}

// FoldEdge is the exhaustive match over EdgeTarget. Every caller supplies a
// handler for each variant; the parallel handler receives its own copy.
func FoldEdge[R any](t EdgeTarget, onAbsent func() R, onSingle func(string) R, onParallel func([]string) R) R {
	switch len(t.names) {
	case 0:
		return onAbsent()
	case 1:
		return onSingle(t.names[0])
	default:
		return onParallel(t.Names())
	}
}
