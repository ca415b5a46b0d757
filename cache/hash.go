package cache

import (
	"hash/maphash"

	"github.com/IvanBrykalov/stablecache/internal/util"
)

// Hasher is the hash strategy used to spread keys over shards.
// Equal keys must produce equal hashes; otherwise a key may be stored twice
// in different shards. Key equality itself is Go's == on K.
type Hasher[K comparable] interface {
	Hash(k K) uint64
}

// BytesHasher is implemented by string hashers that can hash the borrowed
// []byte form of a key directly. HashBytes(b) must equal Hash(string(b)).
type BytesHasher interface {
	HashBytes(b []byte) uint64
}

// HasherFunc adapts a plain function to Hasher.
type HasherFunc[K comparable] func(K) uint64

func (f HasherFunc[K]) Hash(k K) uint64 { return f(k) }

// DefaultHasher returns the default strategy: xxhash for strings and
// integers, hash/maphash for any other comparable key.
func DefaultHasher[K comparable]() Hasher[K] {
	return defaultHasher[K]{seed: maphash.MakeSeed()}
}

type defaultHasher[K comparable] struct{ seed maphash.Seed }

func (h defaultHasher[K]) Hash(k K) uint64         { return util.Hash(h.seed, k) }
func (defaultHasher[K]) HashBytes(b []byte) uint64 { return util.HashBytes(b) }

// FNVHasher returns a 64-bit FNV-1a strategy. It supports strings, integers,
// small byte arrays and fmt.Stringer keys, and panics on anything else.
func FNVHasher[K comparable]() Hasher[K] { return fnvHasher[K]{} }

type fnvHasher[K comparable] struct{}

func (fnvHasher[K]) Hash(k K) uint64           { return util.Fnv64a(k) }
func (fnvHasher[K]) HashBytes(b []byte) uint64 { return util.Fnv64aBytes(b) }

var (
	_ BytesHasher = defaultHasher[string]{}
	_ BytesHasher = fnvHasher[string]{}
)
