// Package cache provides a small in-process TTL cache.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTL caches loader results per key for a fixed duration.
type TTL[K comparable, V any] struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	items map[K]entry[V]
}

// NewTTL returns a cache whose entries live for ttl.
func NewTTL[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TTL[K, V]{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[K]entry[V]),
	}
}

// Get returns the cached value when present, otherwise it calls load and
// stores the result. Errors are not cached.
func (c *TTL[K, V]) Get(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if ok && now.Before(e.expires) {
		return e.value, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return value, nil
}

// Invalidate drops key so the next Get reloads it.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}
