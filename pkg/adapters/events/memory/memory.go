package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/aescanero/dagoc/pkg/ports"
	"go.uber.org/zap"
)

type subscription struct {
	id      uint64
	handler ports.EventHandler
}

// EventBus implements ports.EventBus with in-process handlers. Handlers run
// asynchronously; Close waits for in-flight deliveries.
type EventBus struct {
	subscribers map[string][]subscription
	nextID      uint64
	logger      *zap.Logger
	mu          sync.RWMutex
	closed      bool
	inflight    sync.WaitGroup
}

// ErrClosed is returned by Publish and Subscribe after Close.
var ErrClosed = errors.New("event bus is closed")

// NewEventBus creates a new in-memory event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]subscription),
		logger:      logger,
	}
}

// Publish delivers event to every subscriber of topic.
func (e *EventBus) Publish(ctx context.Context, topic string, event domain.Event) error {
	// Deliveries are registered under the read lock so Close cannot start
	// waiting before they are counted.
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}

	for _, sub := range e.subscribers[topic] {
		e.inflight.Add(1)
		go func(h ports.EventHandler) {
			defer e.inflight.Done()
			if err := h(ctx, event); err != nil {
				e.logger.Warn("event handler failed",
					zap.String("topic", topic),
					zap.String("event_id", event.ID),
					zap.String("type", string(event.Type)),
					zap.Error(err))
			}
		}(sub.handler)
	}

	return nil
}

// Subscribe registers handler on topic until ctx is cancelled.
func (e *EventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.nextID++
	id := e.nextID
	e.subscribers[topic] = append(e.subscribers[topic], subscription{id: id, handler: handler})
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.unsubscribe(topic, id)
	}()

	return nil
}

// Close drops every subscriber and waits for in-flight handlers.
func (e *EventBus) Close() error {
	e.mu.Lock()
	e.closed = true
	e.subscribers = make(map[string][]subscription)
	e.mu.Unlock()

	e.inflight.Wait()
	return nil
}

func (e *EventBus) unsubscribe(topic string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.subscribers[topic]
	for i, sub := range subs {
		if sub.id == id {
			e.subscribers[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
}
