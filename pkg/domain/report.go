package domain

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// IssueKind classifies a validation finding.
type IssueKind string

const (
	IssueParseWarning  IssueKind = "parse_warning"
	IssueConfiguration IssueKind = "configuration"
	IssueReferential   IssueKind = "referential"
	IssueCycle         IssueKind = "cycle"
	IssueUnreachable   IssueKind = "unreachable"
)

// Issue is one finding in a ValidationReport.
type Issue struct {
	Kind      IssueKind `json:"kind"`
	Node      string    `json:"node,omitempty"`
	Condition Condition `json:"condition,omitempty"`
	Target    string    `json:"target,omitempty"`
	Message   string    `json:"message"`
}

// ValidationReport collects every error and warning for one graph.
type ValidationReport struct {
	Graph    string           `json:"graph"`
	Valid    bool             `json:"valid"`
	Errors   []Issue          `json:"errors"`
	Warnings []Issue          `json:"warnings"`
	Analysis *PatternAnalysis `json:"analysis,omitempty"`
}

// NewValidationReport creates an empty, valid report.
func NewValidationReport(graph string) *ValidationReport {
	return &ValidationReport{
		Graph:    graph,
		Valid:    true,
		Errors:   []Issue{},
		Warnings: []Issue{},
	}
}

// AddError records a fatal finding.
func (r *ValidationReport) AddError(issue Issue) {
	r.Errors = append(r.Errors, issue)
	r.Valid = false
}

// AddWarning records a non-fatal finding.
func (r *ValidationReport) AddWarning(issue Issue) {
	r.Warnings = append(r.Warnings, issue)
}

// AddErr flattens err (possibly combined) into typed issues.
func (r *ValidationReport) AddErr(err error) {
	for _, e := range multierr.Errors(err) {
		r.AddError(IssueFromError(e))
	}
}

// IssueFromError converts a typed domain error into an Issue.
func IssueFromError(err error) Issue {
	var (
		cfgErr *ConfigurationError
		refErr *ReferentialError
		warn   *ParseWarning
	)
	switch {
	case errors.As(err, &refErr):
		return Issue{
			Kind:      IssueReferential,
			Node:      refErr.Node,
			Condition: refErr.Condition,
			Target:    refErr.Target,
			Message:   fmt.Sprintf("target %q does not exist", refErr.Target),
		}
	case errors.As(err, &cfgErr):
		return Issue{
			Kind:      IssueConfiguration,
			Node:      cfgErr.Node,
			Condition: cfgErr.Condition,
			Message:   cfgErr.Msg,
		}
	case errors.As(err, &warn):
		return Issue{
			Kind:      IssueParseWarning,
			Node:      warn.Node,
			Condition: warn.Condition,
			Message:   warn.Msg,
		}
	default:
		return Issue{Kind: IssueConfiguration, Message: err.Error()}
	}
}
