// Package domain holds the compiler's core types.
//
// Types:
//   - EdgeTarget: routing destination(s) for one condition of one node
//   - Node, GraphSpec: the compiled intermediate representation of a CSV graph
//   - Bundle, PatternAnalysis: the cacheable artifact and its derived metadata
//   - ValidationReport, Issue: structured output for tooling
//   - Event: compilation notifications published on the event bus
//
// Errors are typed and wrap package-level sentinels so callers can use errors.Is.
package domain
