package graphspec

import (
	"fmt"
	"strings"

	"github.com/aescanero/dagoc/internal/application/analyzer"
	"github.com/aescanero/dagoc/pkg/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Builder groups rows into graphs and validates them.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a new graph builder
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger}
}

// BuildResult holds every graph defined by a source.
type BuildResult struct {
	Graphs map[string]*domain.GraphSpec
	// Order lists graph names in first-seen source order.
	Order    []string
	Warnings []*domain.ParseWarning
}

// graphDraft accumulates one graph while rows are processed.
type graphDraft struct {
	spec     *domain.GraphSpec
	warnings []*domain.ParseWarning
	errs     []error
}

// Build builds every graph in rows. Errors from all graphs are collected and
// returned together; no graph is returned when any graph is invalid.
func (b *Builder) Build(rows []Row) (*BuildResult, error) {
	drafts, order, orphanErrs := b.collect(rows)

	result := &BuildResult{
		Graphs: make(map[string]*domain.GraphSpec, len(drafts)),
		Order:  order,
	}
	errs := orphanErrs
	for _, name := range order {
		d := drafts[name]
		result.Warnings = append(result.Warnings, d.warnings...)
		errs = append(errs, d.errs...)
		result.Graphs[name] = d.spec
	}

	if err := multierr.Combine(errs...); err != nil {
		b.logger.Error("graph build failed",
			zap.Int("graphs", len(order)),
			zap.Int("errors", len(errs)))
		return nil, err
	}

	b.logger.Debug("graphs built",
		zap.Int("graphs", len(order)),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// BuildGraph builds the single graph called name. Rows of other graphs are
// ignored, so their errors do not block this one.
func (b *Builder) BuildGraph(rows []Row, name string) (*domain.GraphSpec, []*domain.ParseWarning, error) {
	d, err := b.draft(rows, name)
	if err != nil {
		return nil, nil, err
	}
	if combined := multierr.Combine(d.errs...); combined != nil {
		b.logger.Error("graph build failed",
			zap.String("graph", name),
			zap.Int("errors", len(d.errs)))
		return nil, d.warnings, combined
	}
	return d.spec, d.warnings, nil
}

// Validate produces a report for graph name without failing: configuration and
// referential errors, parse warnings, and cycle/reachability warnings from the
// static analyzer.
func (b *Builder) Validate(rows []Row, name string) *domain.ValidationReport {
	report := domain.NewValidationReport(name)

	d, err := b.draft(rows, name)
	if err != nil {
		report.AddError(domain.Issue{Kind: domain.IssueConfiguration, Message: err.Error()})
		return report
	}

	for _, w := range d.warnings {
		report.AddWarning(domain.IssueFromError(w))
	}
	report.AddErr(multierr.Combine(d.errs...))

	if len(d.spec.Nodes) == 0 {
		return report
	}

	analysis := analyzer.Analyze(d.spec)
	report.Analysis = analysis
	for _, cycle := range analysis.Cycles {
		report.AddWarning(domain.Issue{
			Kind:    domain.IssueCycle,
			Node:    cycle[0],
			Message: "cycle detected: " + strings.Join(cycle, " -> "),
		})
	}
	for _, node := range analysis.Unreachable {
		report.AddWarning(domain.Issue{
			Kind:    domain.IssueUnreachable,
			Node:    node,
			Message: fmt.Sprintf("node is not reachable from entry point %q", d.spec.EntryPoint),
		})
	}

	return report
}

func (b *Builder) draft(rows []Row, name string) (*graphDraft, error) {
	var selected []Row
	for _, row := range rows {
		if row.GraphName == name {
			selected = append(selected, row)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrGraphNotFound, name)
	}

	drafts, _, _ := b.collect(selected)
	return drafts[name], nil
}

// collect performs both passes: node creation with eager configuration checks,
// then referential checks once every node of a graph exists.
func (b *Builder) collect(rows []Row) (map[string]*graphDraft, []string, []error) {
	drafts := make(map[string]*graphDraft)
	var order []string
	var orphanErrs []error

	for _, row := range rows {
		if row.GraphName == "" {
			orphanErrs = append(orphanErrs, &domain.ConfigurationError{
				Node: row.Node,
				Msg:  fmt.Sprintf("line %d: graph name is empty", row.Line),
			})
			continue
		}

		d, ok := drafts[row.GraphName]
		if !ok {
			d = &graphDraft{spec: domain.NewGraphSpec(row.GraphName)}
			drafts[row.GraphName] = d
			order = append(order, row.GraphName)
		}

		node, warnings, errs := b.buildNode(row)
		d.warnings = append(d.warnings, warnings...)
		d.errs = append(d.errs, errs...)
		if node == nil {
			continue
		}
		if err := d.spec.AddNode(node); err != nil {
			d.errs = append(d.errs, err)
		}
	}

	for _, name := range order {
		d := drafts[name]
		for _, refErr := range d.spec.ReferentialErrors() {
			d.errs = append(d.errs, refErr)
		}
	}

	return drafts, order, orphanErrs
}

// buildNode creates the node for one row. A nil node means the row cannot be
// represented at all (no node name).
func (b *Builder) buildNode(row Row) (*domain.Node, []*domain.ParseWarning, []error) {
	if row.Node == "" {
		return nil, nil, []error{&domain.ConfigurationError{
			Graph: row.GraphName,
			Msg:   fmt.Sprintf("line %d: node name is empty", row.Line),
		}}
	}

	node := domain.NewNode(row.Node)
	node.AgentType = row.AgentType
	node.Context = row.Context
	node.Prompt = row.Prompt
	node.Description = row.Description
	node.InputFields = ParseFieldList(row.InputFields)
	node.OutputField = row.OutputField

	var warnings []*domain.ParseWarning
	cells := []struct {
		cond domain.Condition
		raw  string
	}{
		{domain.ConditionDefault, row.Edge},
		{domain.ConditionSuccess, row.SuccessNext},
		{domain.ConditionFailure, row.FailureNext},
	}
	for _, cell := range cells {
		target, msgs := ParseEdgeTarget(cell.raw)
		for _, msg := range msgs {
			w := &domain.ParseWarning{
				Graph:     row.GraphName,
				Node:      row.Node,
				Condition: cell.cond,
				Raw:       cell.raw,
				Msg:       msg,
			}
			b.logger.Warn("ambiguous edge syntax",
				zap.String("graph", w.Graph),
				zap.String("node", w.Node),
				zap.String("condition", string(w.Condition)),
				zap.String("raw", w.Raw),
				zap.String("detail", msg),
				zap.Int("line", row.Line))
			warnings = append(warnings, w)
		}
		node.SetEdge(cell.cond, target)
	}

	if err := node.ValidateEdges(row.GraphName); err != nil {
		return node, warnings, []error{err}
	}
	return node, warnings, nil
}
