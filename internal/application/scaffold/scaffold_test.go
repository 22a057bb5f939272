package scaffold

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testGraph(t *testing.T) *domain.GraphSpec {
	t.Helper()
	g := domain.NewGraphSpec("flow")

	start := domain.NewNode("Start")
	start.SetEdge(domain.ConditionSuccess, domain.Parallel("A", "B"))
	start.SetEdge(domain.ConditionFailure, domain.Single("End"))
	require.NoError(t, g.AddNode(start))

	a := domain.NewNode("A")
	a.SetEdge(domain.ConditionDefault, domain.Single("End"))
	require.NoError(t, g.AddNode(a))
	require.NoError(t, g.AddNode(domain.NewNode("B")))
	require.NoError(t, g.AddNode(domain.NewNode("End")))
	return g
}

func TestRender(t *testing.T) {
	g := testGraph(t)

	src, err := Render("flow", "", g.Nodes["Start"])
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "start_route.go", src, parser.ParseComments)
	require.NoError(t, err, "generated stub must be valid Go")

	text := string(src)
	assert.Contains(t, text, "package routes")
	assert.Contains(t, text, `func RouteStartSuccess(state map[string]any) []string`)
	assert.Contains(t, text, `return []string{"A", "B"}`)
	assert.Contains(t, text, `func RouteStartFailure(state map[string]any) string`)
	assert.Contains(t, text, `return "End"`)
	assert.Contains(t, text, "Parallel: yes")
	assert.Contains(t, text, "Parallel: no")
	assert.NotContains(t, text, `[]string{"End"}`)
}

func TestRender_InvalidPackage(t *testing.T) {
	_, err := Render("flow", "my-routes", testGraph(t).Nodes["A"])
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(zap.NewNop())
	g := testGraph(t)

	results, err := gen.Generate(g, Options{Dir: dir})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Node)
	assert.Equal(t, StatusCreated, results[0].Status)
	assert.FileExists(t, filepath.Join(dir, "start_route.go"))
	assert.NoFileExists(t, filepath.Join(dir, "end_route.go"))

	custom := []byte("package routes\n// edited\n")
	path := filepath.Join(dir, "a_route.go")
	require.NoError(t, os.WriteFile(path, custom, 0o644))

	results, err = gen.Generate(g, Options{Dir: dir})
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, StatusSkipped, r.Status)
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, custom, data, "existing stub must not be overwritten")

	results, err = gen.Generate(g, Options{Dir: dir, Force: true})
	require.NoError(t, err)
	assert.Equal(t, StatusOverwritten, results[0].Status)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "func RouteADefault")
}

func TestGenerate_FileNameClash(t *testing.T) {
	g := domain.NewGraphSpec("flow")
	for _, name := range []string{"check-in", "check_in"} {
		n := domain.NewNode(name)
		n.SetEdge(domain.ConditionDefault, domain.Single("End"))
		require.NoError(t, g.AddNode(n))
	}
	require.NoError(t, g.AddNode(domain.NewNode("End")))

	dir := t.TempDir()
	_, err := NewGenerator(zap.NewNop()).Generate(g, Options{Dir: dir})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_FunctionNameClash(t *testing.T) {
	g := domain.NewGraphSpec("flow")
	for _, name := range []string{"a b", "aB"} {
		n := domain.NewNode(name)
		n.SetEdge(domain.ConditionDefault, domain.Single("End"))
		require.NoError(t, g.AddNode(n))
	}
	require.NoError(t, g.AddNode(domain.NewNode("End")))
	require.NotEqual(t, FileName("a b"), FileName("aB"))

	dir := t.TempDir()
	_, err := NewGenerator(zap.NewNop()).Generate(g, Options{Dir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RouteABDefault")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNames(t *testing.T) {
	testCases := []struct {
		node     string
		file     string
		exported string
	}{
		{node: "Start", file: "start_route.go", exported: "Start"},
		{node: "check-in step", file: "check_in_step_route.go", exported: "CheckInStep"},
		{node: "2fa", file: "2fa_route.go", exported: "N2fa"},
		{node: "---", file: "node_route.go", exported: "Node"},
	}

	for _, tc := range testCases {
		t.Run(tc.node, func(t *testing.T) {
			assert.Equal(t, tc.file, FileName(tc.node))
			assert.Equal(t, tc.exported, exportedName(tc.node))
		})
	}
}
