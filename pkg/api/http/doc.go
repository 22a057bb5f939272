// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Compiling a CSV graph source into a bundle
//   - Validating a graph source
//   - Reading and deleting cached bundles
//   - Streaming compile events over WebSocket, when an event bus is set
//   - Health checks
//   - Prometheus metrics
package http
