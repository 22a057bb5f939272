package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "dagoc:bundle:"

// BundleStore implements ports.BundleStore using Redis. Each bundle is one
// string value, so SET replaces it atomically.
type BundleStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewBundleStore creates a new Redis bundle store. A zero ttl keeps entries
// until they are deleted.
func NewBundleStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *BundleStore {
	return &BundleStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Get returns the encoded bundle stored under key.
func (s *BundleStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, getBundleKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBundleNotFound, key)
		}
		return nil, fmt.Errorf("failed to get bundle: %w", err)
	}
	return data, nil
}

// Put replaces the entry for key and refreshes its TTL.
func (s *BundleStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, getBundleKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save bundle: %w", err)
	}

	s.logger.Debug("bundle saved",
		zap.String("hash", key),
		zap.Int("bytes", len(data)),
		zap.Duration("ttl", s.ttl))
	return nil
}

// Delete removes the entry for key.
func (s *BundleStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, getBundleKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete bundle: %w", err)
	}

	s.logger.Debug("bundle deleted", zap.String("hash", key))
	return nil
}

// List returns every stored hash, sorted.
func (s *BundleStore) List(ctx context.Context) ([]string, error) {
	var cursor uint64
	var keys []string

	for {
		var batch []string
		var err error

		batch, cursor, err = s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, batch...)

		if cursor == 0 {
			break
		}
	}

	hashes := make([]string, 0, len(keys))
	for _, key := range keys {
		if len(key) > len(keyPrefix) {
			hashes = append(hashes, key[len(keyPrefix):])
		}
	}
	sort.Strings(hashes)
	return hashes, nil
}

func getBundleKey(hash string) string {
	return keyPrefix + hash
}
