package cache

// Snapshot is a point-in-time copy of cache statistics.
type Snapshot struct {
	Hits           int64
	Misses         int64
	Inserts        int64
	Discards       int64
	ProviderErrors int64
	Clears         int64
	Entries        int64
}

// HitRate returns the hit rate as a value between 0 and 1.
// Returns 0 if there have been no lookups.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns current counters. Counters are read without a global lock,
// so under concurrent traffic the fields are individually but not mutually
// consistent.
func (c *Cache[K, V]) Stats() Snapshot {
	var snap Snapshot
	for _, s := range c.shards {
		snap.Hits += s.hits.Load()
		snap.Misses += s.misses.Load()
		snap.Inserts += s.inserts.Load()
	}
	snap.Discards = c.discards.Load()
	snap.ProviderErrors = c.providerE.Load()
	snap.Clears = c.clears.Load()
	snap.Entries = c.entries.Load()
	return snap
}
