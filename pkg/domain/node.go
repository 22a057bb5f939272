package domain

import "sort"

// Condition names the routing condition an edge fires on.
type Condition string

const (
	ConditionDefault Condition = "default"
	ConditionSuccess Condition = "success"
	ConditionFailure Condition = "failure"
)

// Conditions lists every condition in canonical order.
var Conditions = []Condition{ConditionDefault, ConditionSuccess, ConditionFailure}

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	switch c {
	case ConditionDefault, ConditionSuccess, ConditionFailure:
		return true
	}
	return false
}

// Node is one row of a graph: an agent invocation plus its outgoing edges.
type Node struct {
	Name        string
	AgentType   string
	Context     string
	InputFields []string
	OutputField string
	Prompt      string
	Description string

	// Edges holds only populated conditions; Absent targets are never stored.
	Edges map[Condition]EdgeTarget
}

// NewNode creates a node with an empty edge map.
func NewNode(name string) *Node {
	return &Node{
		Name:  name,
		Edges: make(map[Condition]EdgeTarget),
	}
}

// SetEdge stores target for c, dropping the entry when the target is Absent.
func (n *Node) SetEdge(c Condition, target EdgeTarget) {
	if n.Edges == nil {
		n.Edges = make(map[Condition]EdgeTarget)
	}
	if target.IsAbsent() {
		delete(n.Edges, c)
		return
	}
	n.Edges[c] = target
}

// Edge returns the target for c; missing conditions are Absent.
func (n *Node) Edge(c Condition) EdgeTarget {
	return n.Edges[c]
}

// HasEdges reports whether any condition is populated.
func (n *Node) HasEdges() bool {
	return len(n.Edges) > 0
}

// EdgeConditions returns the populated conditions in canonical order.
func (n *Node) EdgeConditions() []Condition {
	out := make([]Condition, 0, len(n.Edges))
	for _, c := range Conditions {
		if _, ok := n.Edges[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Successors returns every distinct node name referenced by any edge, sorted.
func (n *Node) Successors() []string {
	set := make(map[string]struct{})
	for _, t := range n.Edges {
		for _, name := range t.names {
			set[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsParallel reports whether any edge of the node fans out.
func (n *Node) IsParallel() bool {
	for _, t := range n.Edges {
		if t.Kind() == TargetParallel {
			return true
		}
	}
	return false
}

// ValidateEdges checks that the node populates either "default" alone or any
// combination of "success"/"failure".
func (n *Node) ValidateEdges(graph string) error {
	_, hasDefault := n.Edges[ConditionDefault]
	_, hasSuccess := n.Edges[ConditionSuccess]
	_, hasFailure := n.Edges[ConditionFailure]

	if hasDefault && (hasSuccess || hasFailure) {
		return &ConfigurationError{
			Graph: graph,
			Node:  n.Name,
			Msg:   "defines both a default edge and success/failure edges",
		}
	}
	for c := range n.Edges {
		if !c.Valid() {
			return &ConfigurationError{
				Graph: graph,
				Node:  n.Name,
				Msg:   "unknown edge condition " + string(c),
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.InputFields != nil {
		c.InputFields = append([]string(nil), n.InputFields...)
	}
	c.Edges = make(map[Condition]EdgeTarget, len(n.Edges))
	for cond, t := range n.Edges {
		c.Edges[cond] = EdgeTarget{names: t.Names()}
	}
	return &c
}
