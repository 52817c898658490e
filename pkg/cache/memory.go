// Package cache provides implementations of entity.Cache: an in-memory,
// TTL-backed store for cache-less local development, and a Redis-backed
// store for the persistent key-value cache spec.md requires.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/talivision/where-am-i-listening/internal/entity"
)

// entryRecord pairs a cached value with its expiration time.
type entryRecord struct {
	value      entity.ResolvedLocation
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory implementation of entity.Cache
// with TTL support. A background goroutine periodically removes expired
// entries. Close stops the goroutine and blocks until it exits.
//
// This is the cache-less/local-dev fallback: the injected capability when
// no Redis address is configured, per spec.md §9's "optional capability"
// design note.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entryRecord
	ttl     time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMemoryCache creates a new in-memory cache with the specified TTL and
// starts a background goroutine that removes expired entries at an interval
// derived from the TTL (ttl / 6). Call Close to stop the goroutine.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c := &MemoryCache{
		entries: make(map[string]entryRecord),
		ttl:     ttl,
		cancel:  cancel,
		done:    done,
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(ttl / 6)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()

	return c
}

// Get retrieves a value from the cache. Returns (nil, nil) if not found or
// expired — a cache miss is not an error.
func (c *MemoryCache) Get(_ context.Context, key string) (*entity.ResolvedLocation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiration) {
		return nil, nil
	}

	v := e.value
	return &v, nil
}

// Set stores a value in the cache with the configured TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value entity.ResolvedLocation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entryRecord{
		value:      value,
		expiration: time.Now().Add(c.ttl),
	}
	return nil
}

// Delete removes a value from the cache. Deleting an absent key is a no-op.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Close stops the background sweep goroutine and waits for it to exit.
func (c *MemoryCache) Close() error {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	return nil
}

// sweep removes expired entries from the cache.
func (c *MemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiration) {
			delete(c.entries, key)
		}
	}
}

var _ entity.Cache = (*MemoryCache)(nil)
