// Package cache provides a generic, concurrent, insert-only cache whose
// stored values never move: a reference handed out by a lookup stays valid
// and points at the same value while other goroutines keep reading and
// inserting, until the whole cache is cleared.
//
// Design
//
//   - Storage: every value lives in its own heap allocation (Box). The table
//     maps keys to *Box handles, so map growth moves handles, never values.
//     A Ref is a read-only handle into a Box and is comparable by identity.
//
//   - Concurrency: the table is split into shards, each protected by an
//     RWMutex. Lookups take a read lock; a miss takes the write lock only
//     for one insert-if-absent. Shards: 1 gives a single lock for the table.
//
//   - Misses: GetOrInsert computes the value through a Provider with no lock
//     held. Concurrent misses on the same key share one provider call
//     (singleflight). If two values are produced anyway, the first insert
//     wins and the loser is released; all callers see the stored value.
//
//   - Failures: provider errors store nothing and surface as *ProviderError.
//     A panicking provider leaves no lock held and no flight behind; the key
//     can be retried right away.
//
//   - Clearing: entries are never removed one by one. Clear and Close wait
//     for exclusive ownership: they run only while no Share is held. Holding
//     a Share therefore guarantees that every Ref obtained meanwhile stays
//     valid. After a clear, old refs report Valid() == false.
//
//   - Observability: Options.Metrics receives Hit/Miss/Insert/Discard/...
//     signals (see metrics/prom) and Options.Logger receives leveled events
//     (see log/zap, log/logrus, log/slog).
//
// Basic usage
//
//	c := cache.New(cache.Options[string, int]{
//	    Provider: func(k string) (int, error) { return len(k), nil },
//	})
//	ref, err := c.GetOrInsert("hello")
//	if err != nil {
//	    return err
//	}
//	_ = ref.Value() // 5, same address on every later call
//
// Borrowed keys
//
//	ref, ok := cache.LookupBytes(c, []byte("hello")) // no string allocation
//
// Exclusive clear
//
//	sh, _ := c.Share(ctx)
//	ref, _ := sh.Lookup("hello") // valid until sh.Release()
//	sh.Release()
//	_ = c.Clear(ctx)             // waits for all shares
//
// # Reentrancy
//
// A provider must not call GetOrInsert on the same cache for the same key;
// that call waits for the provider's own flight and never returns. Calls for
// other keys are fine because no cache lock is held while a provider runs.
package cache
