package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talivision/where-am-i-listening/internal/entity"
)

// RedisCache is a Redis-backed implementation of entity.Cache: the
// persistent key-value cache spec.md §6 requires (`artist:<lowercased-name>`
// keys, 30-day TTL, concurrent put/get with last-writer-wins semantics).
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig names the connection parameters for the Redis cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisCache creates a Redis cache client and verifies connectivity with
// a bounded ping. ttl is applied to every Set call.
func NewRedisCache(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get retrieves and decodes a cached ResolvedLocation. Returns (nil, nil) on
// a cache miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*entity.ResolvedLocation, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var loc entity.ResolvedLocation
	if err := json.Unmarshal(val, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Set JSON-encodes value and stores it under key with the configured TTL.
// Concurrent Set calls on the same key are last-writer-wins, which is
// acceptable per spec.md §5: a lost update only costs a future re-resolve.
func (c *RedisCache) Set(ctx context.Context, key string, value entity.ResolvedLocation) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Delete removes key. Deleting an absent key is a no-op.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ entity.Cache = (*RedisCache)(nil)
