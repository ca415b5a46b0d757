package util

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Hash is the default shard hash. Strings go through xxhash (so a []byte with
// the same contents hashes identically via HashBytes), fixed-width integers
// are hashed from their little-endian bytes, and every other comparable key
// falls back to maphash.Comparable with the given seed.
func Hash[K comparable](seed maphash.Seed, k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case int:
		return hashUint64(uint64(v))
	case int64:
		return hashUint64(uint64(v))
	case int32:
		return hashUint64(uint64(uint32(v)))
	case uint:
		return hashUint64(uint64(v))
	case uint64:
		return hashUint64(v)
	case uint32:
		return hashUint64(uint64(v))
	case uintptr:
		return hashUint64(uint64(v))
	default:
		return maphash.Comparable(seed, k)
	}
}

// HashBytes hashes a borrowed byte form of a string key; it equals
// Hash(seed, string(b)) without converting.
func HashBytes(b []byte) uint64 { return xxhash.Sum64(b) }

func hashUint64(u uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	return xxhash.Sum64(buf[:])
}

// Fnv64a hashes common key types using 64-bit FNV-1a.
// Supported: string, [16|32]byte, all int/uint widths, uintptr, fmt.Stringer.
// Panics on other types rather than hashing them poorly.
func Fnv64a[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return fnvString(v)
	case [16]byte:
		return Fnv64aBytes(v[:])
	case [32]byte:
		return Fnv64aBytes(v[:])
	case uint8:
		return fnvUint64(uint64(v))
	case uint16:
		return fnvUint64(uint64(v))
	case uint32:
		return fnvUint64(uint64(v))
	case uint64:
		return fnvUint64(v)
	case uint:
		return fnvUint64(uint64(v))
	case uintptr:
		return fnvUint64(uint64(v))
	case int8:
		return fnvUint64(uint64(uint8(v)))
	case int16:
		return fnvUint64(uint64(uint16(v)))
	case int32:
		return fnvUint64(uint64(uint32(v)))
	case int64:
		return fnvUint64(uint64(v))
	case int:
		return fnvUint64(uint64(v))
	case fmt.Stringer:
		return fnvString(v.String())
	default:
		panic(fmt.Sprintf("util.Fnv64a: unsupported key type %T; use the default hasher or a custom one", k))
	}
}

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

// Fnv64aBytes is FNV-1a over b; Fnv64a(s) == Fnv64aBytes([]byte(s)).
func Fnv64aBytes(b []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

func fnvString(s string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

func fnvUint64(u uint64) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < 8; i++ {
		h ^= uint64(byte(u))
		h *= fnvPrime64
		u >>= 8
	}
	return h
}
