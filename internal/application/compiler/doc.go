// Package compiler ties the pipeline together: it builds a graph from rows,
// looks its structural hash up in the bundle cache, and on a miss analyzes,
// encodes and stores a fresh bundle.
//
// Cache entries that fail to decode or whose embedded hash is stale are
// treated as misses and replaced wholesale. CompileAll spreads independent
// graphs over a bounded worker pool.
package compiler
