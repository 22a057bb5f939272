package graphspec

import (
	"errors"
	"testing"

	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func row(graph, node, edge, success, failure string) Row {
	return Row{GraphName: graph, Node: node, Edge: edge, SuccessNext: success, FailureNext: failure}
}

func TestBuilder_Build(t *testing.T) {
	rows := []Row{
		row("flow", "Start", "", "A|B|C", "Error"),
		row("flow", "A", "End", "", ""),
		row("flow", "B", "End", "", ""),
		row("flow", "C", "End", "", ""),
		row("flow", "Error", "", "", ""),
		row("flow", "End", "", "", ""),
		row("other", "Only", "", "", ""),
	}
	rows[0].InputFields = "question|context"

	result, err := NewBuilder(zap.NewNop()).Build(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"flow", "other"}, result.Order)
	require.Len(t, result.Graphs, 2)

	flow := result.Graphs["flow"]
	assert.Equal(t, "Start", flow.EntryPoint)
	require.Len(t, flow.Nodes, 6)

	start := flow.Nodes["Start"]
	assert.Equal(t, []string{"question", "context"}, start.InputFields)
	assert.True(t, start.Edge(domain.ConditionDefault).IsAbsent())

	targets, ok := start.Edge(domain.ConditionSuccess).Parallel()
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, targets)

	name, ok := start.Edge(domain.ConditionFailure).Single()
	require.True(t, ok)
	assert.Equal(t, "Error", name)

	assert.Equal(t, "Only", result.Graphs["other"].EntryPoint)
	assert.Empty(t, result.Warnings)
}

func TestBuilder_Build_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		rows    []Row
		target  error
		errMsgs []string
	}{
		{
			name:    "default and success on one node",
			rows:    []Row{row("flow", "A", "B", "B", ""), row("flow", "B", "", "", "")},
			target:  domain.ErrConfiguration,
			errMsgs: []string{"default edge and success/failure"},
		},
		{
			name:    "duplicate node",
			rows:    []Row{row("flow", "A", "", "", ""), row("flow", "A", "", "", "")},
			target:  domain.ErrConfiguration,
			errMsgs: []string{"more than once"},
		},
		{
			name:    "empty node name",
			rows:    []Row{row("flow", "", "", "", "")},
			target:  domain.ErrConfiguration,
			errMsgs: []string{"node name is empty"},
		},
		{
			name:    "empty graph name",
			rows:    []Row{row("", "A", "", "", "")},
			target:  domain.ErrConfiguration,
			errMsgs: []string{"graph name is empty"},
		},
		{
			name:    "missing parallel target",
			rows:    []Row{row("flow", "A", "B|Ghost", "", ""), row("flow", "B", "", "", "")},
			target:  domain.ErrReferential,
			errMsgs: []string{`"Ghost"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := NewBuilder(zap.NewNop()).Build(tc.rows)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tc.target), "expected %v in %v", tc.target, err)
			for _, msg := range tc.errMsgs {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestBuilder_Build_CollectsAllErrors(t *testing.T) {
	rows := []Row{
		row("flow", "A", "Missing1", "", ""),
		row("flow", "B", "X", "Y", ""),
		row("good", "C", "", "", ""),
		row("bad", "D", "Missing2", "", ""),
	}

	result, err := NewBuilder(zap.NewNop()).Build(rows)
	require.Error(t, err)
	assert.Nil(t, result, "no graph is returned when any graph fails")

	errs := multierr.Errors(err)
	assert.Len(t, errs, 5)

	var refErr *domain.ReferentialError
	require.ErrorAs(t, errs[len(errs)-1], &refErr)
	assert.Equal(t, "bad", refErr.Graph)
	assert.Equal(t, "D", refErr.Node)
	assert.Equal(t, domain.ConditionDefault, refErr.Condition)
	assert.Equal(t, "Missing2", refErr.Target)
}

func TestBuilder_Build_Warnings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	builder := NewBuilder(zap.New(core))

	result, err := builder.Build([]Row{
		row("flow", "A", "B|", "", ""),
		row("flow", "B", "", "", ""),
	})
	require.NoError(t, err)

	name, ok := result.Graphs["flow"].Nodes["A"].Edge(domain.ConditionDefault).Single()
	require.True(t, ok)
	assert.Equal(t, "B", name)

	require.Len(t, result.Warnings, 2)
	w := result.Warnings[0]
	assert.Equal(t, "flow", w.Graph)
	assert.Equal(t, "A", w.Node)
	assert.Equal(t, domain.ConditionDefault, w.Condition)
	assert.Equal(t, "B|", w.Raw)
	assert.True(t, errors.Is(w, domain.ErrParseWarning))

	assert.Equal(t, 2, logs.FilterMessage("ambiguous edge syntax").Len())
}

func TestBuilder_BuildGraph(t *testing.T) {
	rows := []Row{
		row("broken", "X", "Nowhere", "", ""),
		row("flow", "A", "B", "", ""),
		row("flow", "B", "", "", ""),
	}
	builder := NewBuilder(zap.NewNop())

	spec, warnings, err := builder.BuildGraph(rows, "flow")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "A", spec.EntryPoint)
	require.NoError(t, spec.Validate())

	_, _, err = builder.BuildGraph(rows, "broken")
	assert.True(t, errors.Is(err, domain.ErrReferential))

	_, _, err = builder.BuildGraph(rows, "unknown")
	assert.True(t, errors.Is(err, domain.ErrGraphNotFound))
}

func TestBuilder_Validate(t *testing.T) {
	builder := NewBuilder(zap.NewNop())

	t.Run("valid graph with cycle warning", func(t *testing.T) {
		report := builder.Validate([]Row{
			row("loop", "A", "", "B", "A"),
			row("loop", "B", "", "", ""),
			row("loop", "Lonely", "", "", ""),
		}, "loop")

		assert.True(t, report.Valid)
		assert.Empty(t, report.Errors)
		require.NotNil(t, report.Analysis)
		assert.False(t, report.Analysis.IsDAG)

		kinds := make([]domain.IssueKind, 0, len(report.Warnings))
		for _, w := range report.Warnings {
			kinds = append(kinds, w.Kind)
		}
		assert.ElementsMatch(t, []domain.IssueKind{domain.IssueCycle, domain.IssueUnreachable}, kinds)
	})

	t.Run("errors and parse warnings", func(t *testing.T) {
		report := builder.Validate([]Row{
			row("flow", "A", "B|Ghost|", "", ""),
			row("flow", "B", "C", "C", ""),
		}, "flow")

		assert.False(t, report.Valid)
		kinds := make([]domain.IssueKind, 0, len(report.Errors))
		for _, e := range report.Errors {
			kinds = append(kinds, e.Kind)
		}
		assert.Contains(t, kinds, domain.IssueConfiguration)
		assert.Contains(t, kinds, domain.IssueReferential)
		require.NotEmpty(t, report.Warnings)
		assert.Equal(t, domain.IssueParseWarning, report.Warnings[0].Kind)
	})

	t.Run("unknown graph", func(t *testing.T) {
		report := builder.Validate(nil, "nope")
		assert.False(t, report.Valid)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0].Message, "graph not found")
	})
}
