package domain

import "time"

// EventType identifies a compilation event.
type EventType string

const (
	EventTypeBundleCompiled    EventType = "bundle.compiled"
	EventTypeBundleCacheHit    EventType = "bundle.cache_hit"
	EventTypeBundleInvalidated EventType = "bundle.invalidated"
)

// Event is published on the event bus after each compilation request.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	GraphName string                 `json:"graph_name"`
	Hash      string                 `json:"hash"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
