// Package assembler turns a GraphSpec into the routing closures an external
// graph executor installs.
//
// Routing closures:
//   - default edge: always routes to its target
//   - success/failure edges: one combined closure keyed on the
//     last_action_success state flag, each branch keeping its own cardinality
//
// A Single target is always rendered as a bare node name, never as a
// one-element list; Parallel targets are rendered as an ordered list.
package assembler
