package domain

import "time"

// BundleFormat is the format tag written into every bundle document.
const BundleFormat = "dagoc.bundle/v2"

// LegacyBundleFormat is the tag of documents written before parallel edges existed.
const LegacyBundleFormat = "dagoc.bundle/v1"

// Bundle is an immutable, versioned snapshot of a compiled graph.
// It is replaced wholesale when the structural hash of its source changes.
type Bundle struct {
	Format    string
	CreatedAt time.Time
	Graph     *GraphSpec
	Analysis  *PatternAnalysis
	Hash      string
}

// FanOutGroup records one Parallel edge.
type FanOutGroup struct {
	Source      string    `json:"source" yaml:"source"`
	Condition   Condition `json:"condition" yaml:"condition"`
	Targets     []string  `json:"targets" yaml:"targets"`
	Cardinality int       `json:"cardinality" yaml:"cardinality"`
}

// FanInNode records a node reached from more than one upstream node.
type FanInNode struct {
	Target  string   `json:"target" yaml:"target"`
	Inbound int      `json:"inbound" yaml:"inbound"`
	Sources []string `json:"sources" yaml:"sources"`
}

// PatternAnalysis holds graph-shape facts. It is always re-derivable from a
// GraphSpec and is cached in bundles only to avoid recomputation.
type PatternAnalysis struct {
	FanOuts        []FanOutGroup `json:"fan_outs" yaml:"fan_outs"`
	FanIns         []FanInNode   `json:"fan_ins" yaml:"fan_ins"`
	MaxParallelism int           `json:"max_parallelism" yaml:"max_parallelism"`
	IsDAG          bool          `json:"is_dag" yaml:"is_dag"`
	Cycles         [][]string    `json:"cycles,omitempty" yaml:"cycles,omitempty"`
	// MaxDepth is nil when the graph has cycles and depth is unbounded.
	MaxDepth       *int     `json:"max_depth" yaml:"max_depth"`
	Unreachable    []string `json:"unreachable,omitempty" yaml:"unreachable,omitempty"`
	MissingTargets []string `json:"missing_targets,omitempty" yaml:"missing_targets,omitempty"`
	StructuralHash string   `json:"structural_hash" yaml:"structural_hash"`
}

// HasParallelism reports whether any node fans out.
func (a *PatternAnalysis) HasParallelism() bool {
	return a != nil && len(a.FanOuts) > 0
}

// FanOutFor returns the fan-out groups whose source is node.
func (a *PatternAnalysis) FanOutFor(node string) []FanOutGroup {
	if a == nil {
		return nil
	}
	var out []FanOutGroup
	for _, g := range a.FanOuts {
		if g.Source == node {
			out = append(out, g)
		}
	}
	return out
}

// FanInFor returns the fan-in entry for node, if any.
func (a *PatternAnalysis) FanInFor(node string) (FanInNode, bool) {
	if a == nil {
		return FanInNode{}, false
	}
	for _, f := range a.FanIns {
		if f.Target == node {
			return f, true
		}
	}
	return FanInNode{}, false
}
