package assembler

import "github.com/aescanero/dagoc/pkg/domain"

// State is the executor state passed to routing closures.
type State = map[string]any

// SuccessFlag is the state key read by success/failure routing.
const SuccessFlag = "last_action_success"

// Route is the outcome of a routing closure: End, one node, or an ordered
// list of nodes to run in parallel.
type Route struct {
	target domain.EdgeTarget
}

// End returns the route that stops at the current node.
func End() Route {
	return Route{}
}

// To routes to target. An Absent target is End.
func To(target domain.EdgeTarget) Route {
	return Route{target: target}
}

// IsEnd reports whether the route stops execution on this branch.
func (r Route) IsEnd() bool {
	return r.target.IsAbsent()
}

// Target returns the edge target the route resolves to.
func (r Route) Target() domain.EdgeTarget {
	return r.target
}

// Value renders the route for executors with dynamically typed contracts:
// nil, a bare string, or a []string.
func (r Route) Value() any {
	return r.target.Value()
}

// RouterFunc is a routing closure.
type RouterFunc func(State) Route

// Route adapts f to the executor's Router contract.
func (f RouterFunc) Route(state map[string]any) any {
	return f(state).Value()
}

// succeeded reads the success flag. A missing or non-bool flag counts as
// success.
func succeeded(state State) bool {
	v, ok := state[SuccessFlag]
	if !ok {
		return true
	}
	b, ok := v.(bool)
	if !ok {
		return true
	}
	return b
}
