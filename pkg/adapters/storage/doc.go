// Package storage provides bundle cache implementations keyed by structural
// hash. Every Put replaces the whole entry atomically.
//
// Implementations:
//   - redis: Redis SET with TTL
//   - file: one file per bundle, written via temp file and rename
//   - memory: in-memory map for tests and single-process use
package storage
