package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEdgeTarget(t *testing.T) {
	testCases := []struct {
		name      string
		names     []string
		expectErr bool
		kind      TargetKind
	}{
		{name: "no names is absent", names: nil, kind: TargetAbsent},
		{name: "one name is single", names: []string{"A"}, kind: TargetSingle},
		{name: "two names are parallel", names: []string{"A", "B"}, kind: TargetParallel},
		{name: "error - empty name", names: []string{"A", ""}, expectErr: true},
		{name: "error - whitespace name", names: []string{" "}, expectErr: true},
		{name: "error - untrimmed name", names: []string{" A"}, expectErr: true},
		{name: "error - duplicate names", names: []string{"A", "A"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target, err := NewEdgeTarget(tc.names...)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.kind, target.Kind())
		})
	}
}

func TestEdgeTarget_ZeroValueIsAbsent(t *testing.T) {
	var target EdgeTarget
	assert.True(t, target.IsAbsent())
	assert.Equal(t, TargetAbsent, target.Kind())
	assert.Nil(t, target.Value())
	assert.Equal(t, "", target.String())
}

func TestEdgeTarget_Accessors(t *testing.T) {
	single := Single("Next")
	name, ok := single.Single()
	require.True(t, ok)
	assert.Equal(t, "Next", name)
	_, ok = single.Parallel()
	assert.False(t, ok)
	assert.Equal(t, "Next", single.Value())

	parallel := Parallel("A", "B", "C")
	names, ok := parallel.Parallel()
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, names)
	_, ok = parallel.Single()
	assert.False(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, parallel.Value())
	assert.Equal(t, "A|B|C", parallel.String())
}

func TestEdgeTarget_NamesAreCopies(t *testing.T) {
	parallel := Parallel("A", "B")
	names := parallel.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"A", "B"}, parallel.Names())
}

func TestEdgeTarget_ParallelWithOneNameIsSingle(t *testing.T) {
	target := Parallel("Only")
	assert.Equal(t, TargetSingle, target.Kind())
	assert.True(t, target.Equal(Single("Only")))
}

func TestFoldEdge(t *testing.T) {
	describe := func(target EdgeTarget) string {
		return FoldEdge(target,
			func() string { return "absent" },
			func(name string) string { return "single " + name },
			func(names []string) string { return "parallel " + names[0] },
		)
	}

	assert.Equal(t, "absent", describe(EdgeTarget{}))
	assert.Equal(t, "single X", describe(Single("X")))
	assert.Equal(t, "parallel X", describe(Parallel("X", "Y")))
}

func TestEdgeTarget_Equal(t *testing.T) {
	assert.True(t, Parallel("A", "B").Equal(Parallel("A", "B")))
	assert.False(t, Parallel("A", "B").Equal(Parallel("B", "A")), "order is significant")
	assert.False(t, Single("A").Equal(Parallel("A", "B")))
	assert.True(t, EdgeTarget{}.Equal(EdgeTarget{}))
}
