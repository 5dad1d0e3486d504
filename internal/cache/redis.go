package cache

import (
	"context"
	"time"

	rediscache "github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"

	"github.com/jackfredericksen/fantasma/internal/apperr"
)

// RedisCache adapts github.com/go-redis/cache/v8 over an already-connected
// redis/v8 client, for deployments where discovery-document/JWKS caching
// must survive process restarts and be shared across replicas.
type RedisCache struct {
	codec *rediscache.Cache
}

// NewRedisCache wraps client in a RedisCache.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{
		codec: rediscache.New(&rediscache.Options{
			Redis:      client,
			LocalCache: rediscache.NewTinyLFU(1000, time.Minute),
		}),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	if err := c.codec.Get(ctx, key, &value); err != nil {
		if err == rediscache.ErrCacheMiss {
			return nil, false, nil
		}
		return nil, false, apperr.Unavailable("cache get failed", err)
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.codec.Set(&rediscache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
	if err != nil {
		return apperr.Unavailable("cache set failed", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.codec.Delete(ctx, key); err != nil {
		return apperr.Unavailable("cache delete failed", err)
	}
	return nil
}
