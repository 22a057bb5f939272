package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/aescanero/dagoc/pkg/ports"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// streamMaxLen caps each stream; older events are trimmed approximately.
const streamMaxLen = 10000

const groupCleanupTimeout = 5 * time.Second

// StreamsEventBus implements ports.EventBus using Redis Streams. consumerGroup
// is the prefix of the per-subscription groups.
type StreamsEventBus struct {
	client        *redis.Client
	logger        *zap.Logger
	consumerGroup string
	consumerName  string
}

// NewStreamsEventBus creates a new Redis Streams event bus
func NewStreamsEventBus(client *redis.Client, consumerGroup, consumerName string, logger *zap.Logger) (*StreamsEventBus, error) {
	if consumerGroup == "" || consumerName == "" {
		return nil, fmt.Errorf("consumer group and consumer name are required")
	}
	return &StreamsEventBus{
		client:        client,
		logger:        logger,
		consumerGroup: consumerGroup,
		consumerName:  consumerName,
	}, nil
}

// Publish appends event to the stream of topic.
func (e *StreamsEventBus) Publish(ctx context.Context, topic string, event domain.Event) error {
	streamKey := getStreamKey(topic)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: streamKey,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type": string(event.Type),
			"data": string(data),
		},
	}

	if _, err := e.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	e.logger.Debug("event published",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("topic", topic),
		zap.String("stream", streamKey))

	return nil
}

// Subscribe reads topic in the background until ctx is cancelled. Every
// subscription gets its own consumer group starting at the stream tail, so
// each subscriber receives every event published after it subscribed. The
// group is destroyed when ctx ends.
func (e *StreamsEventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	streamKey := getStreamKey(topic)
	group := subscriptionGroup(e.consumerGroup)

	if err := e.client.XGroupCreateMkStream(ctx, streamKey, group, "$").Err(); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	e.logger.Info("subscribed to event stream",
		zap.String("stream", streamKey),
		zap.String("topic", topic),
		zap.String("consumer_group", group),
		zap.String("consumer", e.consumerName))

	go func() {
		defer e.destroyGroup(streamKey, group)
		e.readStream(ctx, streamKey, group, handler)
	}()

	return nil
}

func (e *StreamsEventBus) readStream(ctx context.Context, streamKey, group string, handler ports.EventHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := e.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: e.consumerName,
			Streams:  []string{streamKey, ">"},
			Count:    10,
			Block:    time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			e.logger.Error("failed to read from stream",
				zap.String("stream", streamKey),
				zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				e.processMessage(ctx, streamKey, group, message, handler)
			}
		}
	}
}

func (e *StreamsEventBus) destroyGroup(streamKey, group string) {
	ctx, cancel := context.WithTimeout(context.Background(), groupCleanupTimeout)
	defer cancel()

	if err := e.client.XGroupDestroy(ctx, streamKey, group).Err(); err != nil {
		e.logger.Warn("failed to destroy consumer group",
			zap.String("stream", streamKey),
			zap.String("consumer_group", group),
			zap.Error(err))
		return
	}
	e.logger.Debug("unsubscribed from event stream",
		zap.String("stream", streamKey),
		zap.String("consumer_group", group))
}

func (e *StreamsEventBus) processMessage(ctx context.Context, streamKey, group string, message redis.XMessage, handler ports.EventHandler) {
	event, err := decodeMessage(message)
	if err != nil {
		e.logger.Error("invalid message",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID),
			zap.Error(err))
		return
	}

	if err := handler(ctx, event); err != nil {
		e.logger.Error("handler error",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID),
			zap.Error(err))
		return
	}

	if err := e.client.XAck(ctx, streamKey, group, message.ID).Err(); err != nil {
		e.logger.Error("failed to acknowledge message",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID),
			zap.Error(err))
	}
}

// Close is a no-op; the Redis client is closed by its owner.
func (e *StreamsEventBus) Close() error {
	return nil
}

func decodeMessage(message redis.XMessage) (domain.Event, error) {
	data, ok := message.Values["data"].(string)
	if !ok {
		return domain.Event{}, fmt.Errorf("message has no data field")
	}
	var event domain.Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return domain.Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}

// subscriptionGroup derives a consumer group name unique to one subscription.
func subscriptionGroup(base string) string {
	return fmt.Sprintf("%s:%s", base, uuid.NewString())
}

func getStreamKey(topic string) string {
	return fmt.Sprintf("dagoc:events:%s", topic)
}
