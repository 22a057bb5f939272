package ports

import (
	"context"
	"time"

	"github.com/aescanero/dagoc/pkg/domain"
)

// BundleStore persists encoded bundles keyed by structural hash.
//
// Put must replace the whole value atomically: a concurrent Get observes either
// the previous complete value or the new one. Get returns domain.ErrBundleNotFound
// on a miss.
type BundleStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}

// BundleCodec converts bundles to and from their persisted document form.
// Decode is all-or-nothing: on error no bundle is returned.
type BundleCodec interface {
	Name() string
	ContentType() string
	Encode(bundle *domain.Bundle) ([]byte, error)
	Decode(data []byte) (*domain.Bundle, error)
}

// EventHandler processes a delivered event.
type EventHandler func(ctx context.Context, event domain.Event) error

// EventBus publishes and delivers compilation events.
type EventBus interface {
	Publish(ctx context.Context, topic string, event domain.Event) error
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Close() error
}

// MetricsCollector records compilation metrics.
type MetricsCollector interface {
	RecordCompilation(result string, duration time.Duration)
	RecordParseWarnings(graph string, count int)
	RecordCacheInvalidation(reason string)
	RecordValidation(valid bool, errors, warnings int)
}

// Router is the routing closure installed into the executor. It is pure and
// safe to call from concurrent execution branches.
type Router interface {
	Route(state map[string]any) any
}

// GraphBuilder is the construction surface of the external graph executor.
type GraphBuilder interface {
	AddNode(name string, node *domain.Node) error
	SetEntryPoint(name string) error
	// AddConditionalEdges installs router on source. destinations lists every
	// node the router may return so the executor can pre-wire its branches.
	AddConditionalEdges(source string, router Router, destinations []string) error
}
