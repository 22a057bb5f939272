// Package analyzer derives static shape facts from a GraphSpec: fan-out and
// fan-in points, maximum parallelism, cycles, depth and reachability.
package analyzer

import (
	"sort"

	"github.com/aescanero/dagoc/internal/application/cachekey"
	"github.com/aescanero/dagoc/pkg/domain"
)

// Analyze computes the pattern analysis of spec. It never fails: edges that
// name missing nodes are reported in MissingTargets and otherwise ignored.
func Analyze(spec *domain.GraphSpec) *domain.PatternAnalysis {
	a := &domain.PatternAnalysis{
		FanOuts:        []domain.FanOutGroup{},
		FanIns:         []domain.FanInNode{},
		MaxParallelism: 1,
		StructuralHash: cachekey.Compute(spec),
	}

	names := spec.NodeNames()
	inbound := make(map[string]map[string]struct{})
	missing := make(map[string]struct{})

	for _, name := range names {
		n := spec.Nodes[name]
		for _, c := range n.EdgeConditions() {
			t := n.Edges[c]
			if targets, ok := t.Parallel(); ok {
				a.FanOuts = append(a.FanOuts, domain.FanOutGroup{
					Source:      name,
					Condition:   c,
					Targets:     targets,
					Cardinality: len(targets),
				})
				if len(targets) > a.MaxParallelism {
					a.MaxParallelism = len(targets)
				}
			}
			for _, target := range t.Names() {
				if _, ok := spec.Nodes[target]; !ok {
					missing[target] = struct{}{}
					continue
				}
				if inbound[target] == nil {
					inbound[target] = make(map[string]struct{})
				}
				inbound[target][name] = struct{}{}
			}
		}
	}

	for _, target := range names {
		sources := inbound[target]
		if len(sources) < 2 {
			continue
		}
		a.FanIns = append(a.FanIns, domain.FanInNode{
			Target:  target,
			Inbound: len(sources),
			Sources: sortedKeys(sources),
		})
	}
	a.MissingTargets = sortedKeys(missing)

	w := newWalker(spec)
	if _, ok := spec.Nodes[spec.EntryPoint]; ok {
		w.visit(spec.EntryPoint)
	}
	a.Cycles = w.cycles
	a.IsDAG = len(w.cycles) == 0
	if a.IsDAG && len(w.done) > 0 {
		depth := w.depth(spec.EntryPoint)
		a.MaxDepth = &depth
	}
	for _, name := range names {
		if _, seen := w.done[name]; !seen {
			a.Unreachable = append(a.Unreachable, name)
		}
	}

	return a
}

// walker is a depth-first traversal from the entry point. active holds the
// nodes on the current path; a successor already on it closes a cycle.
type walker struct {
	spec   *domain.GraphSpec
	active map[string]int
	path   []string
	done   map[string]struct{}
	cycles [][]string
	memo   map[string]int
}

func newWalker(spec *domain.GraphSpec) *walker {
	return &walker{
		spec:   spec,
		active: make(map[string]int),
		done:   make(map[string]struct{}),
		memo:   make(map[string]int),
	}
}

func (w *walker) visit(name string) {
	w.active[name] = len(w.path)
	w.path = append(w.path, name)

	for _, next := range w.successors(name) {
		if start, onPath := w.active[next]; onPath {
			cycle := append([]string(nil), w.path[start:]...)
			w.cycles = append(w.cycles, append(cycle, next))
			continue
		}
		if _, seen := w.done[next]; seen {
			continue
		}
		w.visit(next)
	}

	w.path = w.path[:len(w.path)-1]
	delete(w.active, name)
	w.done[name] = struct{}{}
}

// depth is the longest node count from name to a terminal node. Only valid on
// an acyclic graph.
func (w *walker) depth(name string) int {
	if d, ok := w.memo[name]; ok {
		return d
	}
	longest := 0
	for _, next := range w.successors(name) {
		if d := w.depth(next); d > longest {
			longest = d
		}
	}
	w.memo[name] = longest + 1
	return longest + 1
}

func (w *walker) successors(name string) []string {
	var out []string
	for _, next := range w.spec.Nodes[name].Successors() {
		if _, ok := w.spec.Nodes[next]; ok {
			out = append(out, next)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
