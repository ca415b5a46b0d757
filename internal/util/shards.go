package util

import "runtime"

// MaxShards caps the shard count, automatic or requested.
const MaxShards = 256

// ReasonableShardCount picks a practical default shard count based on CPU
// parallelism: nextPow2(2*GOMAXPROCS), clamped to [1..MaxShards].
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 2)))
	if n > MaxShards {
		n = MaxShards
	}
	return n
}

// ShardCount normalizes a requested shard count: non-positive values select
// ReasonableShardCount, anything else is rounded up to a power of two and
// clamped to MaxShards.
func ShardCount(requested int) int {
	if requested <= 0 {
		return ReasonableShardCount()
	}
	if requested >= MaxShards {
		return MaxShards
	}
	return int(NextPow2(uint64(requested)))
}

// SplitCapacity divides a total map size hint evenly across shards (ceil).
// A non-positive total yields 0, letting the runtime pick its own initial size.
func SplitCapacity(total, shards int) int {
	if total <= 0 || shards <= 0 {
		return 0
	}
	return (total + shards - 1) / shards
}

// ShardIndex maps a 64-bit hash to a shard index.
// The fast mask path is used when shards is a power of two.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && (x&(x-1)) == 0
}

// NextPow2 returns the smallest power of two >= x (1 for x == 0), clamped
// to 1<<63 on overflow.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++
	if x == 0 {
		return 1 << 63
	}
	return x
}
