package cache

import (
	"errors"
	"fmt"

	"github.com/IvanBrykalov/stablecache/internal/singleflight"
)

var (
	// ErrNoProvider is returned by GetOrInsert when no Provider was configured.
	ErrNoProvider = errors.New("cache: no Provider configured")

	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache: closed")

	// ErrShareReleased is returned by operations on a released Share.
	ErrShareReleased = errors.New("cache: share released")
)

// PanicError is returned to callers that were waiting on a provider call
// that panicked. The caller that ran the provider gets the panic itself.
type PanicError = singleflight.PanicError

// ProviderError wraps a provider failure for a key. No entry is stored.
type ProviderError struct {
	Key any
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("cache: provider failed for key %v: %v", e.Key, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
