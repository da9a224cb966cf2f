package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"ledger-service/internal/logger"
	"ledger-service/internal/storage"
)

const notFoundMarker = "notfound"

// CachedStore is a read-through redis cache in front of a blob store. Redis
// problems are logged and never fail a call; the backing store decides.
type CachedStore struct {
	realStore storage.Store
	redis     *redis.Client
	ttl       time.Duration
	log       zerolog.Logger
}

func NewCachedStore(realStore storage.Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{
		realStore: realStore,
		redis:     rdb,
		ttl:       ttl,
		log:       logger.WithComponent("blob-cache"),
	}
}

func cacheKey(key string) string {
	return fmt.Sprintf("ledger:blob:%s", key)
}

func (c *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	ck := cacheKey(key)

	data, err := c.redis.Get(ctx, ck).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, storage.ErrNotFound
		}
		return data, nil
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("redis error, continuing with store")
	}

	data, err = c.realStore.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			if setErr := c.redis.Set(ctx, ck, notFoundMarker, time.Minute).Err(); setErr != nil {
				c.log.Warn().Err(setErr).Str("key", key).Msg("failed to cache notfound")
			}
		}
		return nil, err
	}

	if err := c.redis.Set(ctx, ck, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("failed to cache blob")
	}
	return data, nil
}

func (c *CachedStore) Put(ctx context.Context, key string, data []byte) error {
	ck := cacheKey(key)

	if err := c.realStore.Put(ctx, key, data); err != nil {
		if delErr := c.redis.Del(ctx, ck).Err(); delErr != nil {
			c.log.Warn().Err(delErr).Str("key", key).Msg("failed to invalidate blob cache")
		}
		return err
	}

	if err := c.redis.Set(ctx, ck, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("failed to refresh blob cache")
		if delErr := c.redis.Del(ctx, ck).Err(); delErr != nil {
			c.log.Warn().Err(delErr).Str("key", key).Msg("failed to invalidate blob cache")
		}
	}
	return nil
}

// Close closes the backing store and the redis client.
func (c *CachedStore) Close() error {
	storeErr := c.realStore.Close()
	redisErr := c.redis.Close()
	return errors.Join(storeErr, redisErr)
}
