package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrParseWarning marks degraded-but-accepted edge syntax.
	ErrParseWarning = errors.New("parse warning")

	// ErrConfiguration marks invalid column combinations or duplicate/empty names.
	ErrConfiguration = errors.New("configuration error")

	// ErrReferential marks an edge naming a node that does not exist.
	ErrReferential = errors.New("referential error")

	// ErrDecode marks a persisted bundle that cannot be decoded.
	ErrDecode = errors.New("decode error")

	// ErrCacheConsistency marks a bundle whose embedded hash is stale.
	ErrCacheConsistency = errors.New("cache consistency error")

	// ErrBundleNotFound is returned by bundle stores on a cache miss.
	ErrBundleNotFound = errors.New("bundle not found")

	// ErrGraphNotFound is returned when a source does not define the requested graph.
	ErrGraphNotFound = errors.New("graph not found")
)

// ParseWarning describes edge syntax that was accepted after normalisation.
type ParseWarning struct {
	Graph     string
	Node      string
	Condition Condition
	Raw       string
	Msg       string
}

func (w *ParseWarning) Error() string {
	return fmt.Sprintf("%s: %s", ErrParseWarning.Error(), w.describe())
}

func (w *ParseWarning) Unwrap() error { return ErrParseWarning }

func (w *ParseWarning) describe() string {
	var sb strings.Builder
	writeLocation(&sb, w.Graph, w.Node, w.Condition)
	sb.WriteString(w.Msg)
	if w.Raw != "" {
		fmt.Fprintf(&sb, " (raw %q)", w.Raw)
	}
	return sb.String()
}

// ConfigurationError is fatal for the graph it names.
type ConfigurationError struct {
	Graph     string
	Node      string
	Condition Condition
	Msg       string
}

func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrConfiguration.Error())
	sb.WriteString(": ")
	writeLocation(&sb, e.Graph, e.Node, e.Condition)
	sb.WriteString(e.Msg)
	return sb.String()
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ReferentialError names an edge whose target does not exist in the graph.
type ReferentialError struct {
	Graph     string
	Node      string
	Condition Condition
	Target    string
}

func (e *ReferentialError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrReferential.Error())
	sb.WriteString(": ")
	writeLocation(&sb, e.Graph, e.Node, e.Condition)
	fmt.Fprintf(&sb, "target %q does not exist", e.Target)
	return sb.String()
}

func (e *ReferentialError) Unwrap() error { return ErrReferential }

// DecodeError reports a malformed bundle document. The bundle is unusable.
type DecodeError struct {
	Node      string
	Condition Condition
	Msg       string
	Err       error
}

func (e *DecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrDecode.Error())
	sb.WriteString(": ")
	writeLocation(&sb, "", e.Node, e.Condition)
	sb.WriteString(e.Msg)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDecode, e.Err}
	}
	return []error{ErrDecode}
}

// CacheConsistencyError reports a bundle whose embedded hash differs from the
// freshly computed one. Callers treat it as a cache miss.
type CacheConsistencyError struct {
	Graph    string
	Embedded string
	Computed string
}

func (e *CacheConsistencyError) Error() string {
	return fmt.Sprintf("%s: graph %q: embedded hash %s does not match computed hash %s",
		ErrCacheConsistency.Error(), e.Graph, shortHash(e.Embedded), shortHash(e.Computed))
}

func (e *CacheConsistencyError) Unwrap() error { return ErrCacheConsistency }

func writeLocation(sb *strings.Builder, graph, node string, cond Condition) {
	if graph != "" {
		fmt.Fprintf(sb, "graph %q: ", graph)
	}
	if node != "" {
		fmt.Fprintf(sb, "node %q: ", node)
	}
	if cond != "" {
		fmt.Fprintf(sb, "condition %q: ", cond)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	if h == "" {
		return "<none>"
	}
	return h
}
