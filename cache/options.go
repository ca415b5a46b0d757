package cache

// Provider computes the value for a key on a cache miss.
//
// A provider may run more than once for the same key when callers race
// (concurrent misses are coalesced, but a caller arriving right after a
// failed or finished flight starts a new one), so it must be safe to invoke
// redundantly. Only one produced value is ever stored per key.
//
// A provider must not call back into the same cache for the same key: that
// call waits on the flight the provider itself is running and never returns.
type Provider[K comparable, V any] func(k K) (V, error)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	// Insert is called when a freshly produced value becomes the stored one.
	Insert()
	// Discard is called when a produced value lost the race for its key.
	Discard()
	ProviderError()
	// Clear reports how many entries a clear released.
	Clear(entries int)
	Size(entries int)
}

// Options configures the cache. Zero values are safe;
// defaults are applied in New():
//   - Shards <= 0   => auto (≈ 2*GOMAXPROCS, rounded up to a power of two)
//   - nil Hasher    => DefaultHasher
//   - nil Logger    => NopLogger
//   - nil Metrics   => NoopMetrics
type Options[K comparable, V any] struct {
	// Capacity is an initial size hint for the table, split across shards.
	// It is not a limit: the table grows without bound.
	Capacity int

	// Shards is the number of independently locked partitions. Use 1 for a
	// single reader/writer lock over the whole table.
	Shards int

	// Hasher picks the shard for a key. Equal keys must hash equally.
	Hasher Hasher[K]

	// Provider is used by GetOrInsert. GetOrInsert returns ErrNoProvider
	// when it is nil; GetOrInsertWith works regardless.
	Provider Provider[K, V]

	// OnRelease is called exactly once for every value the cache drops:
	// each stored value on Clear/Close, and each produced value that lost
	// an insert race. Use it to close values holding resources.
	OnRelease func(k K, v V)

	// DisableCoalescing lets every concurrent miss for a key run its own
	// provider call. The first value inserted wins; the others are released.
	// By default concurrent misses share one call.
	DisableCoalescing bool

	Logger  Logger
	Metrics Metrics
}
