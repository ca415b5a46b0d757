package cache

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/IvanBrykalov/stablecache/internal/singleflight"
	"github.com/IvanBrykalov/stablecache/internal/util"
)

// ownWeight is the total ownership weight. A Share holds 1; Clear and Close
// acquire all of it, so they run only when no Share is outstanding.
const ownWeight = 1 << 40

// Cache is a sharded, insert-only table of key -> *Box[V].
// All methods are safe for concurrent use by multiple goroutines.
//
// Values are never moved or replaced once stored, so a Ref returned by
// Lookup or GetOrInsert keeps its address after the shard lock is released
// and while other keys are inserted. Only Clear and Close drop values.
//
// Validity of a Ref is guaranteed only while a Share is held: Clear and
// Close wait for Shares, not for plain calls, so a Ref obtained directly
// from the Cache may be invalidated by a concurrent Clear at any time.
// Check Ref.Valid, or take a Share, when that matters.
type Cache[K comparable, V any] struct {
	shards   []*shard[K, V]
	hasher   Hasher[K]
	shardCap int // per-shard map size hint, reused after Clear

	own    *semaphore.Weighted
	closed atomic.Bool

	// coalesces concurrent provider calls for the same key
	sf singleflight.Group[K, *Box[V]]

	opt Options[K, V]
	log Logger

	entries   atomic.Int64
	discards  atomic.Int64
	providerE atomic.Int64
	clears    atomic.Int64
}

// New constructs a cache with the provided Options.
// Defaults:
//   - nil Hasher   -> DefaultHasher
//   - nil Logger   -> NopLogger
//   - nil Metrics  -> NoopMetrics
//   - Shards <= 0  -> auto, rounded up to the next power of two
func New[K comparable, V any](opt Options[K, V]) *Cache[K, V] {
	if opt.Hasher == nil {
		opt.Hasher = DefaultHasher[K]()
	}
	if opt.Logger == nil {
		opt.Logger = NopLogger{}
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}

	n := util.ShardCount(opt.Shards)
	perShard := util.SplitCapacity(opt.Capacity, n)
	c := &Cache[K, V]{
		shards:   make([]*shard[K, V], n),
		hasher:   opt.Hasher,
		shardCap: perShard,
		own:      semaphore.NewWeighted(ownWeight),
		opt:      opt,
		log:      opt.Logger,
	}
	for i := range c.shards {
		c.shards[i] = newShard[K, V](perShard, &c.closed)
	}
	return c
}

// NewDefault returns a cache with default options and no provider.
func NewDefault[K comparable, V any]() *Cache[K, V] {
	return New(Options[K, V]{})
}

// NewWithCapacity returns a cache whose table is pre-sized for capacity entries.
func NewWithCapacity[K comparable, V any](capacity int) *Cache[K, V] {
	return New(Options[K, V]{Capacity: capacity})
}

// NewWithHasher returns a cache using the given hash strategy.
func NewWithHasher[K comparable, V any](h Hasher[K]) *Cache[K, V] {
	return New(Options[K, V]{Hasher: h})
}

// NewWithProvider returns a cache whose GetOrInsert uses p.
func NewWithProvider[K comparable, V any](p Provider[K, V]) *Cache[K, V] {
	return New(Options[K, V]{Provider: p})
}

// Lookup returns a reference to the value stored for k, if any.
// It takes only a shard read lock.
func (c *Cache[K, V]) Lookup(k K) (Ref[V], bool) {
	if c.closed.Load() {
		return Ref[V]{}, false
	}
	b, ok := c.lookup(c.shardFor(k), k)
	if !ok {
		return Ref[V]{}, false
	}
	return b.Ref(), true
}

// GetOrInsert returns the value for k, computing it with Options.Provider on
// a miss. It returns ErrNoProvider if no provider was configured.
func (c *Cache[K, V]) GetOrInsert(k K) (Ref[V], error) {
	if c.opt.Provider == nil {
		return Ref[V]{}, ErrNoProvider
	}
	return c.GetOrInsertWith(k, c.opt.Provider)
}

// GetOrInsertWith returns the value for k, computing it with p on a miss.
//
// p runs without any cache lock held. If it fails, nothing is stored and the
// error is returned as a *ProviderError. If another goroutine stores k first,
// the value p produced is released and the stored one is returned, so every
// caller observes the same value for k.
func (c *Cache[K, V]) GetOrInsertWith(k K, p Provider[K, V]) (Ref[V], error) {
	if c.closed.Load() {
		return Ref[V]{}, ErrClosed
	}
	if p == nil {
		return Ref[V]{}, ErrNoProvider
	}
	s := c.shardFor(k)
	if b, ok := c.lookup(s, k); ok {
		return b.Ref(), nil
	}
	b, err := c.load(s, k, p)
	if err != nil {
		return Ref[V]{}, err
	}
	return b.Ref(), nil
}

// Clear releases every stored value and empties the table. It first waits,
// bounded by ctx, until no Share is outstanding. Refs handed out before
// Clear report Valid() == false afterwards.
//
// Calling Clear while holding a Share of the same cache waits until ctx ends.
func (c *Cache[K, V]) Clear(ctx context.Context) error {
	if err := c.own.Acquire(ctx, ownWeight); err != nil {
		return err
	}
	defer c.own.Release(ownWeight)

	if c.closed.Load() {
		return ErrClosed
	}
	n := c.clearExclusive()
	c.log.Info("cache cleared", Fields{"released": n})
	return nil
}

// TryClear is Clear without waiting: it reports false if a Share is
// outstanding or the cache is closed.
func (c *Cache[K, V]) TryClear() bool {
	if !c.own.TryAcquire(ownWeight) {
		return false
	}
	defer c.own.Release(ownWeight)

	if c.closed.Load() {
		return false
	}
	n := c.clearExclusive()
	c.log.Info("cache cleared", Fields{"released": n})
	return true
}

// Close clears the cache and marks it closed. Later operations return
// ErrClosed (Lookup reports a miss). Close is idempotent.
func (c *Cache[K, V]) Close(ctx context.Context) error {
	if c.closed.Load() {
		return nil
	}
	if err := c.own.Acquire(ctx, ownWeight); err != nil {
		return err
	}
	defer c.own.Release(ownWeight)

	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	n := c.clearExclusive()
	c.log.Info("cache closed", Fields{"released": n})
	return nil
}

// Len returns the total number of resident entries across all shards.
func (c *Cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// ---- helpers ----

// shardFor picks a shard by hashing the key.
func (c *Cache[K, V]) shardFor(k K) *shard[K, V] {
	return c.shards[util.ShardIndex(c.hasher.Hash(k), len(c.shards))]
}

func (c *Cache[K, V]) lookup(s *shard[K, V], k K) (*Box[V], bool) {
	b, ok := s.lookup(k)
	c.record(s, ok)
	return b, ok
}

func (c *Cache[K, V]) record(s *shard[K, V], hit bool) {
	if hit {
		s.hits.Inc()
		c.opt.Metrics.Hit()
		return
	}
	s.misses.Inc()
	c.opt.Metrics.Miss()
}

// load computes and stores the value for k after a miss.
func (c *Cache[K, V]) load(s *shard[K, V], k K, p Provider[K, V]) (*Box[V], error) {
	if c.opt.DisableCoalescing {
		return c.produce(s, k, p)
	}
	return c.sf.Do(k, func() (*Box[V], error) {
		// double-check after flight join
		if b, ok := s.lookup(k); ok {
			return b, nil
		}
		return c.produce(s, k, p)
	})
}

// produce runs p and inserts its value unless k got stored meanwhile.
func (c *Cache[K, V]) produce(s *shard[K, V], k K, p Provider[K, V]) (*Box[V], error) {
	v, err := c.call(k, p)
	if err != nil {
		c.providerE.Add(1)
		c.opt.Metrics.ProviderError()
		c.log.Warn("provider failed", Fields{"key": k, "err": err})
		return nil, &ProviderError{Key: k, Err: err}
	}

	fresh := NewBox(v)
	stored, inserted, err := s.insertIfAbsent(k, fresh)
	if err != nil {
		// closed while p ran; the value was never published
		fresh.release(c.releaser(k))
		return nil, err
	}
	if !inserted {
		fresh.release(c.releaser(k))
		c.discards.Add(1)
		c.opt.Metrics.Discard()
		c.log.Debug("discarded value that lost the insert race", Fields{"key": k})
		return stored, nil
	}

	n := c.entries.Add(1)
	c.opt.Metrics.Insert()
	c.opt.Metrics.Size(int(n))
	return stored, nil
}

// call invokes p, logging a panic before letting it continue.
func (c *Cache[K, V]) call(k K, p Provider[K, V]) (V, error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("provider panicked", Fields{"key": k, "panic": r})
			panic(r)
		}
	}()
	return p(k)
}

func (c *Cache[K, V]) releaser(k K) func(V) {
	if c.opt.OnRelease == nil {
		return nil
	}
	return func(v V) { c.opt.OnRelease(k, v) }
}

// clearExclusive drains every shard and releases the drained boxes.
// The caller must hold the full ownership weight.
func (c *Cache[K, V]) clearExclusive() int {
	released := 0
	for _, s := range c.shards {
		for k, b := range s.drain(c.shardCap) {
			if b.release(c.releaser(k)) {
				released++
			}
		}
	}
	left := c.entries.Add(int64(-released))
	c.clears.Add(1)
	c.opt.Metrics.Clear(released)
	c.opt.Metrics.Size(int(left))
	return released
}
