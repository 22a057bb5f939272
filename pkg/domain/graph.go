package domain

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// GraphSpec is a named collection of nodes plus an entry point.
type GraphSpec struct {
	Name       string
	EntryPoint string
	Nodes      map[string]*Node
}

// NewGraphSpec creates an empty graph.
func NewGraphSpec(name string) *GraphSpec {
	return &GraphSpec{
		Name:  name,
		Nodes: make(map[string]*Node),
	}
}

// AddNode registers n. The first node added becomes the entry point unless one
// was set explicitly. Duplicate names are a ConfigurationError.
func (g *GraphSpec) AddNode(n *Node) error {
	if _, exists := g.Nodes[n.Name]; exists {
		return &ConfigurationError{
			Graph: g.Name,
			Node:  n.Name,
			Msg:   "node defined more than once",
		}
	}
	g.Nodes[n.Name] = n
	if g.EntryPoint == "" {
		g.EntryPoint = n.Name
	}
	return nil
}

// Node looks up a node by name.
func (g *GraphSpec) Node(name string) (*Node, bool) {
	n, ok := g.Nodes[name]
	return n, ok
}

// NodeNames returns every node name, sorted.
func (g *GraphSpec) NodeNames() []string {
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReferentialErrors returns one ReferentialError per edge target that names a
// node missing from the graph, in deterministic order.
func (g *GraphSpec) ReferentialErrors() []*ReferentialError {
	var errs []*ReferentialError
	for _, name := range g.NodeNames() {
		n := g.Nodes[name]
		for _, c := range n.EdgeConditions() {
			for _, target := range n.Edges[c].names {
				if _, ok := g.Nodes[target]; !ok {
					errs = append(errs, &ReferentialError{
						Graph:     g.Name,
						Node:      name,
						Condition: c,
						Target:    target,
					})
				}
			}
		}
	}
	return errs
}

// Validate checks the structural invariants a bundle requires: a known entry
// point, edge exclusivity on every node and referential integrity.
func (g *GraphSpec) Validate() error {
	if len(g.Nodes) == 0 {
		return &ConfigurationError{Graph: g.Name, Msg: "graph has no nodes"}
	}
	if _, ok := g.Nodes[g.EntryPoint]; !ok {
		return &ConfigurationError{Graph: g.Name, Node: g.EntryPoint, Msg: "entry point not found in graph"}
	}

	var errs []error
	for _, name := range g.NodeNames() {
		if err := g.Nodes[name].ValidateEdges(g.Name); err != nil {
			errs = append(errs, err)
		}
	}
	for _, err := range g.ReferentialErrors() {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("graph %s is invalid: %w", g.Name, multierr.Combine(errs...))
	}
	return nil
}

// Clone returns a deep copy of the graph.
func (g *GraphSpec) Clone() *GraphSpec {
	if g == nil {
		return nil
	}
	c := &GraphSpec{
		Name:       g.Name,
		EntryPoint: g.EntryPoint,
		Nodes:      make(map[string]*Node, len(g.Nodes)),
	}
	for name, n := range g.Nodes {
		c.Nodes[name] = n.Clone()
	}
	return c
}

// Equal reports structural equality between two graphs.
func (g *GraphSpec) Equal(other *GraphSpec) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.Name != other.Name || g.EntryPoint != other.EntryPoint || len(g.Nodes) != len(other.Nodes) {
		return false
	}
	for name, a := range g.Nodes {
		b, ok := other.Nodes[name]
		if !ok || !nodesEqual(a, b) {
			return false
		}
	}
	return true
}

func nodesEqual(a, b *Node) bool {
	if a.Name != b.Name || a.AgentType != b.AgentType || a.Context != b.Context ||
		a.OutputField != b.OutputField || a.Prompt != b.Prompt || a.Description != b.Description {
		return false
	}
	if len(a.InputFields) != len(b.InputFields) {
		return false
	}
	for i := range a.InputFields {
		if a.InputFields[i] != b.InputFields[i] {
			return false
		}
	}
	if len(a.Edges) != len(b.Edges) {
		return false
	}
	for c, t := range a.Edges {
		if !t.Equal(b.Edges[c]) {
			return false
		}
	}
	return true
}
