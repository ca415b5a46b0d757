// Package source builds cache providers that read encoded values from a
// byte store (Redis, bigcache, ristretto, or anything implementing Store).
//
// A source only reads. The cache decides when to call it and keeps the
// decoded value for the cache's lifetime.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IvanBrykalov/stablecache/cache"
	"github.com/IvanBrykalov/stablecache/source/codec"
)

// ErrNotFound is returned by a provider when the store has no bytes for the key.
var ErrNotFound = errors.New("source: key not found")

var (
	// ErrNoStore is returned by New when Config.Store is nil.
	ErrNoStore = errors.New("source: nil store")

	// ErrNoCodec is returned by New when Config.Codec is nil.
	ErrNoCodec = errors.New("source: nil codec")
)

// Store is a read-only byte lookup.
// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, key string) ([]byte, bool, error)

func (f StoreFunc) Get(ctx context.Context, key string) ([]byte, bool, error) { return f(ctx, key) }

// Config describes where a provider reads bytes from and how it decodes them.
type Config[V any] struct {
	Store Store
	Codec codec.Codec[V]

	// Prefix is prepended to every cache key before the store lookup.
	Prefix string

	// Timeout bounds each store call. Zero means no deadline.
	Timeout time.Duration

	// Context is the parent of every store call; defaults to Background.
	// Cancelling it makes later misses fail fast.
	Context context.Context
}

// New returns a cache.Provider that fetches Prefix+key from the store and
// decodes it. Misses surface as ErrNotFound, so nothing is cached for them.
func New[V any](cfg Config[V]) (cache.Provider[string, V], error) {
	if cfg.Store == nil {
		return nil, ErrNoStore
	}
	if cfg.Codec == nil {
		return nil, ErrNoCodec
	}
	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}

	return func(key string) (V, error) {
		var zero V
		ctx := parent
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, cfg.Timeout)
			defer cancel()
		}

		b, ok, err := cfg.Store.Get(ctx, cfg.Prefix+key)
		if err != nil {
			return zero, fmt.Errorf("source: get %q: %w", cfg.Prefix+key, err)
		}
		if !ok {
			return zero, ErrNotFound
		}
		v, err := cfg.Codec.Decode(b)
		if err != nil {
			return zero, fmt.Errorf("source: decode %q: %w", cfg.Prefix+key, err)
		}
		return v, nil
	}, nil
}

// MustNew is New for wiring code where a nil store is a programming error.
func MustNew[V any](cfg Config[V]) cache.Provider[string, V] {
	p, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return p
}
