// Package scaffold generates Go routing stubs for graph nodes.
//
// Each node with edges gets one file holding one stub per populated
// condition. A stub's return type and example value follow the edge's
// cardinality: string for a single target, []string for a parallel one.
// Existing files are left untouched unless Force is set.
package scaffold
