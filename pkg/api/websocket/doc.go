// Package websocket streams compilation events to clients over WebSocket.
//
// Clients connect to /api/v1/events and receive one JSON message per
// event. The optional graph query parameter restricts the stream to a
// single graph.
package websocket
