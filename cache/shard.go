package cache

import (
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/stablecache/internal/util"
)

// shard is an independent partition of the table with its own lock.
// The map holds *Box handles only; growing the map relocates handles, never
// the boxed values that outstanding refs point at.
type shard[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu sync.RWMutex
	m  map[K]*Box[V]

	// set by Close before it drains; shared by all shards of a cache
	closed *atomic.Bool

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_       util.CacheLinePad
	hits    util.Counter
	misses  util.Counter
	inserts util.Counter
}

func newShard[K comparable, V any](capacity int, closed *atomic.Bool) *shard[K, V] {
	return &shard[K, V]{m: make(map[K]*Box[V], capacity), closed: closed}
}

// lookup returns the box stored for k under the read lock.
func (s *shard[K, V]) lookup(k K) (*Box[V], bool) {
	s.mu.RLock()
	b, ok := s.m[k]
	s.mu.RUnlock()
	return b, ok
}

// insertIfAbsent stores b for k unless k is already present. It returns the
// box that is stored for k afterwards and whether b was the one inserted.
// Once the cache is closed nothing is stored and ErrClosed is returned;
// Close drains each shard under the same lock, so an insert either lands
// before the drain or observes the flag.
func (s *shard[K, V]) insertIfAbsent(k K, b *Box[V]) (*Box[V], bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	if cur, ok := s.m[k]; ok {
		return cur, false, nil
	}
	s.m[k] = b
	s.inserts.Inc()
	return b, true, nil
}

// Len returns the number of resident entries in this shard.
func (s *shard[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// drain swaps in an empty map and returns the old one. The caller owns the
// returned boxes; capacity is the size hint for the fresh map.
func (s *shard[K, V]) drain(capacity int) map[K]*Box[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.m
	s.m = make(map[K]*Box[V], capacity)
	return old
}

// lookupBytes is lookup for string-keyed shards given the key's bytes.
// The string(b) conversion inside the map index does not allocate.
func lookupBytes[V any](s *shard[string, V], b []byte) (*Box[V], bool) {
	s.mu.RLock()
	box, ok := s.m[string(b)]
	s.mu.RUnlock()
	return box, ok
}
