// Package events provides event bus implementations for compilation events.
//
// Implementations:
//   - redis: Redis Streams with consumer groups
//   - memory: in-process fan-out for tests and single-process use
package events
