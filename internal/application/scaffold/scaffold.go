package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/aescanero/dagoc/pkg/domain"
	"go.uber.org/zap"
)

// DefaultPackage is the package name of generated files.
const DefaultPackage = "routes"

// Status describes what happened to one generated file.
type Status string

const (
	StatusCreated     Status = "created"
	StatusSkipped     Status = "skipped"
	StatusOverwritten Status = "overwritten"
)

// Options controls generation.
type Options struct {
	Dir     string
	Package string
	// Force overwrites existing stubs.
	Force bool
}

// FileResult reports one generated file.
type FileResult struct {
	Node   string
	Path   string
	Status Status
}

// Generator writes routing stubs.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a new stub generator
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger}
}

// Render returns the formatted stub source for node.
func Render(graph, pkg string, node *domain.Node) ([]byte, error) {
	if pkg == "" {
		pkg = DefaultPackage
	}
	if !isIdentifier(pkg) {
		return nil, fmt.Errorf("invalid package name %q", pkg)
	}

	file := stubFile{Graph: graph, Package: pkg, Node: node.Name}
	for _, c := range node.EdgeConditions() {
		file.Stubs = append(file.Stubs, buildStub(node.Name, c, node.Edges[c]))
	}

	var buf bytes.Buffer
	if err := stubTemplate.Execute(&buf, file); err != nil {
		return nil, fmt.Errorf("failed to render stub for node %s: %w", node.Name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format stub for node %s: %w", node.Name, err)
	}
	return src, nil
}

func buildStub(node string, c domain.Condition, t domain.EdgeTarget) stub {
	s := stub{
		Func:        funcName(node, c),
		Condition:   string(c),
		Cardinality: t.Len(),
	}
	return domain.FoldEdge(t,
		func() stub {
			s.ReturnType = "string"
			s.Example = `""`
			return s
		},
		func(name string) stub {
			s.ReturnType = "string"
			s.Example = quote(name)
			return s
		},
		func(names []string) stub {
			quoted := make([]string, len(names))
			for i, n := range names {
				quoted[i] = quote(n)
			}
			s.ReturnType = "[]string"
			s.Example = "[]string{" + strings.Join(quoted, ", ") + "}"
			s.Parallel = true
			return s
		},
	)
}

// Generate writes one stub file per node with edges into opts.Dir.
func (g *Generator) Generate(spec *domain.GraphSpec, opts Options) ([]FileResult, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	type pending struct {
		node string
		path string
		src  []byte
	}

	// Render everything first so a bad node never leaves a half-written set.
	var files []pending
	owners := make(map[string]string)
	funcs := make(map[string]string)
	for _, name := range spec.NodeNames() {
		node := spec.Nodes[name]
		if !node.HasEdges() {
			continue
		}

		path := filepath.Join(opts.Dir, FileName(name))
		if other, clash := owners[path]; clash {
			return nil, fmt.Errorf("nodes %s and %s both map to %s", other, name, path)
		}
		owners[path] = name

		for _, c := range node.EdgeConditions() {
			fn := funcName(name, c)
			if other, clash := funcs[fn]; clash {
				return nil, fmt.Errorf("nodes %s and %s both declare %s", other, name, fn)
			}
			funcs[fn] = name
		}

		src, err := Render(spec.Name, opts.Package, node)
		if err != nil {
			return nil, err
		}
		files = append(files, pending{node: name, path: path, src: src})
	}

	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		status, err := writeStub(f.path, f.src, opts.Force)
		if err != nil {
			return results, err
		}
		results = append(results, FileResult{Node: f.node, Path: f.path, Status: status})

		g.logger.Info("stub scaffolded",
			zap.String("graph", spec.Name),
			zap.String("node", f.node),
			zap.String("path", f.path),
			zap.String("status", string(status)))
	}

	return results, nil
}

// writeStub creates path exclusively so concurrent runs never clobber each
// other. With force an existing file is replaced.
func writeStub(path string, src []byte, force bool) (Status, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err == nil {
		if _, werr := f.Write(src); werr != nil {
			_ = f.Close()
			return "", fmt.Errorf("failed to write %s: %w", path, werr)
		}
		if cerr := f.Close(); cerr != nil {
			return "", fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		return StatusCreated, nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if !force {
		return StatusSkipped, nil
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", fmt.Errorf("failed to overwrite %s: %w", path, err)
	}
	return StatusOverwritten, nil
}

// FileName returns the stub file name for node.
func FileName(node string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range node {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case !lastUnderscore && sb.Len() > 0:
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	name := strings.TrimSuffix(sb.String(), "_")
	if name == "" {
		name = "node"
	}
	return name + "_route.go"
}

// funcName returns the stub function name for one edge of node.
func funcName(node string, c domain.Condition) string {
	return "Route" + exportedName(node) + exportedName(string(c))
}

// exportedName turns arbitrary text into an exported Go identifier fragment.
func exportedName(s string) string {
	var sb strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if sb.Len() == 0 && unicode.IsDigit(r) {
			sb.WriteByte('N')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		return "Node"
	}
	return sb.String()
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return s != ""
}

func quote(s string) string {
	return strconv.Quote(s)
}
