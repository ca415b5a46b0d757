package cache

import (
	"context"
	"sync/atomic"
)

// Share is shared ownership of a Cache. While any Share is held, Clear and
// Close wait, so every Ref obtained (through the Share or the Cache) stays
// valid at least until Release.
//
// A Share must be released exactly once; further Release calls are no-ops.
type Share[K comparable, V any] struct {
	c        *Cache[K, V]
	released atomic.Bool
}

// Share takes shared ownership of c. It waits, bounded by ctx, while a Clear
// or Close is pending or running.
func (c *Cache[K, V]) Share(ctx context.Context) (*Share[K, V], error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if err := c.own.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	if c.closed.Load() {
		c.own.Release(1)
		return nil, ErrClosed
	}
	return &Share[K, V]{c: c}, nil
}

// Release gives up shared ownership.
func (s *Share[K, V]) Release() {
	if s.released.CompareAndSwap(false, true) {
		s.c.own.Release(1)
	}
}

// Lookup is Cache.Lookup; it reports a miss once s is released.
func (s *Share[K, V]) Lookup(k K) (Ref[V], bool) {
	if s.released.Load() {
		return Ref[V]{}, false
	}
	return s.c.Lookup(k)
}

// GetOrInsert is Cache.GetOrInsert.
func (s *Share[K, V]) GetOrInsert(k K) (Ref[V], error) {
	if s.released.Load() {
		return Ref[V]{}, ErrShareReleased
	}
	return s.c.GetOrInsert(k)
}

// GetOrInsertWith is Cache.GetOrInsertWith.
func (s *Share[K, V]) GetOrInsertWith(k K, p Provider[K, V]) (Ref[V], error) {
	if s.released.Load() {
		return Ref[V]{}, ErrShareReleased
	}
	return s.c.GetOrInsertWith(k, p)
}
