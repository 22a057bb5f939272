package codec

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aescanero/dagoc/pkg/domain"
)

// document is the persisted bundle layout shared by every encoding.
type document struct {
	Format     string                  `json:"format" yaml:"format"`
	CreatedAt  time.Time               `json:"created_at" yaml:"created_at"`
	GraphName  string                  `json:"graph_name" yaml:"graph_name"`
	EntryPoint string                  `json:"entry_point" yaml:"entry_point"`
	Nodes      map[string]nodeDocument `json:"nodes" yaml:"nodes"`
	Analysis   *domain.PatternAnalysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

type nodeDocument struct {
	AgentType   string   `json:"agent_type,omitempty" yaml:"agent_type,omitempty"`
	Context     string   `json:"context,omitempty" yaml:"context,omitempty"`
	InputFields []string `json:"input_fields,omitempty" yaml:"input_fields,omitempty"`
	OutputField string   `json:"output_field,omitempty" yaml:"output_field,omitempty"`
	Prompt      string   `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`

	// Edges values are a string (Single) or a list of strings (Parallel).
	Edges map[string]any `json:"edges,omitempty" yaml:"edges,omitempty"`
}

func toDocument(b *domain.Bundle) (*document, error) {
	if b == nil || b.Graph == nil {
		return nil, fmt.Errorf("bundle has no graph")
	}

	format := b.Format
	if format == "" {
		format = domain.BundleFormat
	}

	doc := &document{
		Format:     format,
		CreatedAt:  b.CreatedAt.UTC(),
		GraphName:  b.Graph.Name,
		EntryPoint: b.Graph.EntryPoint,
		Nodes:      make(map[string]nodeDocument, len(b.Graph.Nodes)),
		Analysis:   b.Analysis,
	}

	for name, n := range b.Graph.Nodes {
		nd := nodeDocument{
			AgentType:   n.AgentType,
			Context:     n.Context,
			InputFields: n.InputFields,
			OutputField: n.OutputField,
			Prompt:      n.Prompt,
			Description: n.Description,
		}
		if n.HasEdges() {
			nd.Edges = make(map[string]any, len(n.Edges))
			for c, t := range n.Edges {
				nd.Edges[string(c)] = t.Value()
			}
		}
		doc.Nodes[name] = nd
	}

	return doc, nil
}

// fromDocument converts a decoded document into a bundle. Every malformed
// value is a DecodeError; nothing is returned unless the whole document is
// valid.
func fromDocument(doc *document) (*domain.Bundle, error) {
	switch doc.Format {
	case domain.BundleFormat, domain.LegacyBundleFormat, "":
	default:
		return nil, &domain.DecodeError{Msg: fmt.Sprintf("unsupported format %q", doc.Format)}
	}
	if len(doc.Nodes) == 0 {
		return nil, &domain.DecodeError{Msg: "document has no nodes"}
	}

	spec := domain.NewGraphSpec(doc.GraphName)
	spec.EntryPoint = doc.EntryPoint

	names := make([]string, 0, len(doc.Nodes))
	for name := range doc.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		nd := doc.Nodes[name]
		if strings.TrimSpace(name) == "" {
			return nil, &domain.DecodeError{Msg: "node with empty name"}
		}

		n := domain.NewNode(name)
		n.AgentType = nd.AgentType
		n.Context = nd.Context
		n.InputFields = nd.InputFields
		n.OutputField = nd.OutputField
		n.Prompt = nd.Prompt
		n.Description = nd.Description

		for key, raw := range nd.Edges {
			cond := domain.Condition(key)
			if !cond.Valid() {
				return nil, &domain.DecodeError{Node: name, Condition: cond, Msg: "unknown edge condition"}
			}
			target, err := decodeEdge(raw)
			if err != nil {
				return nil, &domain.DecodeError{Node: name, Condition: cond, Msg: err.Error()}
			}
			n.SetEdge(cond, target)
		}

		if err := spec.AddNode(n); err != nil {
			return nil, &domain.DecodeError{Node: name, Msg: "invalid node", Err: err}
		}
	}

	if doc.EntryPoint == "" {
		return nil, &domain.DecodeError{Msg: "document has no entry point"}
	}
	if err := spec.Validate(); err != nil {
		return nil, &domain.DecodeError{Msg: "graph is invalid", Err: err}
	}

	bundle := &domain.Bundle{
		Format:    doc.Format,
		CreatedAt: doc.CreatedAt,
		Graph:     spec,
		Analysis:  doc.Analysis,
	}
	if doc.Analysis != nil {
		bundle.Hash = doc.Analysis.StructuralHash
	}
	return bundle, nil
}

// decodeEdge accepts the string | list union. An empty string, a list with
// fewer than two entries, or any empty or repeated entry is malformed.
func decodeEdge(raw any) (domain.EdgeTarget, error) {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return domain.EdgeTarget{}, fmt.Errorf("edge is an empty string")
		}
		if v != strings.TrimSpace(v) {
			return domain.EdgeTarget{}, fmt.Errorf("edge %q has surrounding whitespace", v)
		}
		return domain.NewEdgeTarget(v)

	case []any:
		if len(v) < 2 {
			return domain.EdgeTarget{}, fmt.Errorf("edge list has %d entries, need at least 2", len(v))
		}
		names := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return domain.EdgeTarget{}, fmt.Errorf("edge list entry %d is %T, not a string", i, item)
			}
			names = append(names, s)
		}
		return domain.NewEdgeTarget(names...)

	default:
		return domain.EdgeTarget{}, fmt.Errorf("edge value is %T, expected string or list", raw)
	}
}
