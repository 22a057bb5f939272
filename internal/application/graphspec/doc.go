// Package graphspec turns a tabular workflow source into validated GraphSpecs.
//
// The package covers:
//   - Edge target parsing: raw cell text -> Absent / Single / Parallel
//   - CSV row reading with tolerant header matching
//   - Graph building: grouping rows per graph, eager configuration checks and
//     collected referential checks
//   - Validation reports for tooling
package graphspec
