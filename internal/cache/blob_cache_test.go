package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-service/internal/storage"
)

type countingStore struct {
	storage.Store
	gets   int
	putErr error
}

func (c *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets++
	return c.Store.Get(ctx, key)
}

func (c *countingStore) Put(ctx context.Context, key string, data []byte) error {
	if c.putErr != nil {
		return c.putErr
	}
	return c.Store.Put(ctx, key, data)
}

func newTestCache(t *testing.T) (*CachedStore, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := ConnectRedis(context.Background(), Config{URL: mr.Addr()})
	require.NoError(t, err)

	backing := &countingStore{Store: storage.NewMemory()}
	cached := NewCachedStore(backing, rdb, time.Minute)
	t.Cleanup(func() { cached.Close() })
	return cached, backing, mr
}

func TestCachedStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	cached, backing, mr := newTestCache(t)

	require.NoError(t, backing.Store.Put(ctx, "products", []byte(`[]`)))

	data, err := cached.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Equal(t, 1, backing.gets)

	data, err = cached.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Equal(t, 1, backing.gets, "second read is served by redis")

	assert.True(t, mr.Exists("ledger:blob:products"))
}

func TestCachedStoreCachesNotFound(t *testing.T) {
	ctx := context.Background()
	cached, backing, _ := newTestCache(t)

	_, err := cached.Get(ctx, "debts")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = cached.Get(ctx, "debts")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 1, backing.gets)
}

func TestCachedStorePutRefreshesCache(t *testing.T) {
	ctx := context.Background()
	cached, backing, mr := newTestCache(t)

	_, err := cached.Get(ctx, "sales")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, cached.Put(ctx, "sales", []byte(`[1]`)))
	got, err := mr.Get("ledger:blob:sales")
	require.NoError(t, err)
	assert.Equal(t, "[1]", got)

	data, err := cached.Get(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(data))
	assert.Equal(t, 1, backing.gets)
}

func TestCachedStorePutFailureInvalidates(t *testing.T) {
	ctx := context.Background()
	cached, backing, mr := newTestCache(t)

	require.NoError(t, cached.Put(ctx, "movements", []byte(`[]`)))
	backing.putErr = errors.New("disk full")

	assert.Error(t, cached.Put(ctx, "movements", []byte(`[2]`)))
	assert.False(t, mr.Exists("ledger:blob:movements"))
}

func TestCachedStoreFallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Store: storage.NewMemory()}
	require.NoError(t, backing.Store.Put(ctx, "settings", []byte(`{}`)))

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	cached := NewCachedStore(backing, rdb, time.Minute)
	defer cached.Close()

	data, err := cached.Get(ctx, "settings")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
