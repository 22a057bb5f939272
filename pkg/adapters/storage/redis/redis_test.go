package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("DAGOC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DAGOC_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestBundleStore(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	store := NewBundleStore(client, time.Minute, zap.NewNop())
	key := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(context.Background(), key) })

	_, err := store.Get(ctx, key)
	assert.True(t, errors.Is(err, domain.ErrBundleNotFound))

	require.NoError(t, store.Put(ctx, key, []byte("v1")))
	require.NoError(t, store.Put(ctx, key, []byte("v2")))

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	ttl, err := client.TTL(ctx, getBundleKey(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, key)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.True(t, errors.Is(err, domain.ErrBundleNotFound))
}

func TestGetBundleKey(t *testing.T) {
	assert.Equal(t, "dagoc:bundle:abc", getBundleKey("abc"))
}
