package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/aescanero/dagoc/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBundle(t *testing.T) *domain.Bundle {
	t.Helper()
	g := domain.NewGraphSpec("flow")

	start := domain.NewNode("Start")
	start.AgentType = "input"
	start.InputFields = []string{"question", "context"}
	start.OutputField = "answer"
	start.Prompt = "Ask: {question}"
	start.SetEdge(domain.ConditionSuccess, domain.Parallel("B", "A"))
	start.SetEdge(domain.ConditionFailure, domain.Single("End"))
	require.NoError(t, g.AddNode(start))

	for _, name := range []string{"A", "B"} {
		n := domain.NewNode(name)
		n.SetEdge(domain.ConditionDefault, domain.Single("End"))
		require.NoError(t, g.AddNode(n))
	}
	require.NoError(t, g.AddNode(domain.NewNode("End")))

	depth := 3
	return &domain.Bundle{
		Format:    domain.BundleFormat,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Graph:     g,
		Hash:      "abc123",
		Analysis: &domain.PatternAnalysis{
			FanOuts: []domain.FanOutGroup{{
				Source: "Start", Condition: domain.ConditionSuccess,
				Targets: []string{"B", "A"}, Cardinality: 2,
			}},
			FanIns:         []domain.FanInNode{{Target: "End", Inbound: 3, Sources: []string{"A", "B", "Start"}}},
			MaxParallelism: 2,
			IsDAG:          true,
			MaxDepth:       &depth,
			StructuralHash: "abc123",
		},
	}
}

func codecs() []ports.BundleCodec {
	return []ports.BundleCodec{NewJSONCodec(), NewYAMLCodec()}
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, c := range codecs() {
		t.Run(c.Name(), func(t *testing.T) {
			original := sampleBundle(t)

			data, err := c.Encode(original)
			require.NoError(t, err)

			decoded, err := c.Decode(data)
			require.NoError(t, err)

			assert.True(t, original.Graph.Equal(decoded.Graph), "graph must round-trip")
			assert.Equal(t, original.Hash, decoded.Hash)
			assert.True(t, original.CreatedAt.Equal(decoded.CreatedAt))
			assert.Equal(t, domain.TargetParallel, decoded.Graph.Nodes["Start"].Edge(domain.ConditionSuccess).Kind())
			assert.Equal(t, domain.TargetSingle, decoded.Graph.Nodes["Start"].Edge(domain.ConditionFailure).Kind())
			assert.Equal(t, []string{"B", "A"}, decoded.Graph.Nodes["Start"].Edge(domain.ConditionSuccess).Names())
			require.NotNil(t, decoded.Analysis.MaxDepth)
			assert.Equal(t, 3, *decoded.Analysis.MaxDepth)
		})
	}
}

func TestCodec_Idempotent(t *testing.T) {
	for _, c := range codecs() {
		t.Run(c.Name(), func(t *testing.T) {
			first, err := c.Encode(sampleBundle(t))
			require.NoError(t, err)

			decoded, err := c.Decode(first)
			require.NoError(t, err)

			second, err := c.Encode(decoded)
			require.NoError(t, err)
			assert.Equal(t, string(first), string(second))
		})
	}
}

func TestJSONCodec_SingleIsString(t *testing.T) {
	data, err := NewJSONCodec().Encode(sampleBundle(t))
	require.NoError(t, err)

	assert.Contains(t, string(data), `"failure": "End"`)
	assert.Contains(t, string(data), `"format": "dagoc.bundle/v2"`)
	assert.NotContains(t, string(data), `["End"]`)
}

func TestCodec_Legacy(t *testing.T) {
	testCases := []struct {
		codec ports.BundleCodec
		doc   string
	}{
		{
			codec: NewJSONCodec(),
			doc: `{
  "format": "dagoc.bundle/v1",
  "graph_name": "flow",
  "entry_point": "Start",
  "nodes": {
    "Start": {"agent_type": "input", "edges": {"success": "Next", "failure": "End"}},
    "Next": {"edges": {"default": "End"}},
    "End": {}
  }
}`,
		},
		{
			codec: NewYAMLCodec(),
			doc: `graph_name: flow
entry_point: Start
nodes:
  Start:
    agent_type: input
    edges:
      success: Next
      failure: End
  Next:
    edges:
      default: End
  End: {}
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.codec.Name(), func(t *testing.T) {
			bundle, err := tc.codec.Decode([]byte(tc.doc))
			require.NoError(t, err)

			assert.Nil(t, bundle.Analysis)
			assert.Empty(t, bundle.Hash)
			assert.Equal(t, "Start", bundle.Graph.EntryPoint)

			name, ok := bundle.Graph.Nodes["Start"].Edge(domain.ConditionSuccess).Single()
			require.True(t, ok)
			assert.Equal(t, "Next", name)
			assert.False(t, bundle.Graph.Nodes["Next"].IsParallel())
		})
	}
}

func TestJSONCodec_Malformed(t *testing.T) {
	wrap := func(edge string) string {
		return `{"format":"dagoc.bundle/v2","graph_name":"flow","entry_point":"A",` +
			`"nodes":{"A":{"edges":{"default":` + edge + `}},"B":{},"C":{}}}`
	}

	testCases := []struct {
		name      string
		doc       string
		node      string
		condition domain.Condition
	}{
		{name: "number", doc: wrap(`42`), node: "A", condition: domain.ConditionDefault},
		{name: "object", doc: wrap(`{"to":"B"}`), node: "A", condition: domain.ConditionDefault},
		{name: "null", doc: wrap(`null`), node: "A", condition: domain.ConditionDefault},
		{name: "empty string", doc: wrap(`""`), node: "A", condition: domain.ConditionDefault},
		{name: "one element list", doc: wrap(`["B"]`), node: "A", condition: domain.ConditionDefault},
		{name: "empty entry", doc: wrap(`["B",""]`), node: "A", condition: domain.ConditionDefault},
		{name: "duplicate entries", doc: wrap(`["B","B"]`), node: "A", condition: domain.ConditionDefault},
		{name: "non-string entry", doc: wrap(`["B",7]`), node: "A", condition: domain.ConditionDefault},
		{
			name:      "unknown condition",
			doc:       `{"graph_name":"flow","entry_point":"A","nodes":{"A":{"edges":{"maybe":"A"}}}}`,
			node:      "A",
			condition: "maybe",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bundle, err := NewJSONCodec().Decode([]byte(tc.doc))
			require.Error(t, err)
			assert.Nil(t, bundle)
			assert.True(t, errors.Is(err, domain.ErrDecode))

			var decodeErr *domain.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, tc.node, decodeErr.Node)
			assert.Equal(t, tc.condition, decodeErr.Condition)
		})
	}
}

func TestCodec_DocumentErrors(t *testing.T) {
	testCases := []struct {
		name   string
		codec  ports.BundleCodec
		doc    string
		errMsg string
	}{
		{name: "invalid json", codec: NewJSONCodec(), doc: `{"nodes":`, errMsg: "malformed json"},
		{name: "invalid yaml", codec: NewYAMLCodec(), doc: "nodes: [unclosed", errMsg: "malformed yaml"},
		{name: "unknown format", codec: NewJSONCodec(), doc: `{"format":"other/v9","nodes":{"A":{}},"entry_point":"A"}`, errMsg: "unsupported format"},
		{name: "no nodes", codec: NewJSONCodec(), doc: `{"graph_name":"flow"}`, errMsg: "no nodes"},
		{name: "no entry point", codec: NewJSONCodec(), doc: `{"nodes":{"A":{}}}`, errMsg: "no entry point"},
		{name: "dangling target", codec: NewYAMLCodec(), doc: "entry_point: A\nnodes:\n  A:\n    edges:\n      default: Ghost\n", errMsg: "Ghost"},
		{name: "yaml scalar edge", codec: NewYAMLCodec(), doc: "entry_point: A\nnodes:\n  A:\n    edges:\n      default: 12\n", errMsg: "expected string or list"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bundle, err := tc.codec.Decode([]byte(tc.doc))
			require.Error(t, err)
			assert.Nil(t, bundle)
			assert.True(t, errors.Is(err, domain.ErrDecode))
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestNew(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = New("yaml")
	require.NoError(t, err)
	assert.Equal(t, "application/yaml", c.ContentType())

	_, err = New("xml")
	assert.Error(t, err)
}
