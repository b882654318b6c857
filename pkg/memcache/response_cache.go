package mem

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ResponseCache keeps model answers that are safe to reuse across visitors,
// such as destination validation results.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

type LocalCache struct {
	c *gocache.Cache
}

func NewLocalCache(defaultTTL time.Duration) *LocalCache {
	return &LocalCache{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (l *LocalCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := l.c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (l *LocalCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	l.c.Set(key, value, ttl)
}

// RedisCache shares entries between instances. Redis errors are treated as
// misses.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) || err != nil {
		return "", false
	}
	return v, true
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	_ = r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}
