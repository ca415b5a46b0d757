package cache

// Reader is the read/insert surface shared by *Cache and *Share.
// All methods are safe for concurrent use by multiple goroutines.
//
// Typical complexity is O(1) expected: one hash, one map lookup under a
// shard read lock, plus one insert under the shard write lock on a miss.
type Reader[K comparable, V any] interface {
	// Lookup returns a reference to the value stored for k, if any.
	Lookup(k K) (Ref[V], bool)

	// GetOrInsert returns the value for k, computing it with the configured
	// Provider on a miss. Without a Provider it returns ErrNoProvider.
	GetOrInsert(k K) (Ref[V], error)

	// GetOrInsertWith returns the value for k, computing it with p on a miss.
	// Provider errors are returned as *ProviderError and store nothing.
	GetOrInsertWith(k K, p Provider[K, V]) (Ref[V], error)
}

var (
	_ Reader[string, int] = (*Cache[string, int])(nil)
	_ Reader[string, int] = (*Share[string, int])(nil)
)
