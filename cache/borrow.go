package cache

import "github.com/IvanBrykalov/stablecache/internal/util"

// LookupBytes is Lookup for string-keyed caches, taking the key as bytes.
// It does not allocate a string: the shard is chosen with the hasher's
// BytesHasher form when available and the map is indexed with string(key),
// which the compiler performs without a copy.
func LookupBytes[V any](c *Cache[string, V], key []byte) (Ref[V], bool) {
	if c.closed.Load() {
		return Ref[V]{}, false
	}
	s := shardForBytes(c, key)
	b, ok := lookupBytes(s, key)
	c.record(s, ok)
	if !ok {
		return Ref[V]{}, false
	}
	return b.Ref(), true
}

// GetOrInsertBytes is GetOrInsertWith for string-keyed caches, taking the key
// as bytes. The owned string key is built only when a value is inserted.
func GetOrInsertBytes[V any](c *Cache[string, V], key []byte, p Provider[string, V]) (Ref[V], error) {
	if c.closed.Load() {
		return Ref[V]{}, ErrClosed
	}
	if p == nil {
		return Ref[V]{}, ErrNoProvider
	}
	if ref, ok := LookupBytes(c, key); ok {
		return ref, nil
	}
	k := string(key)
	b, err := c.load(c.shardFor(k), k, p)
	if err != nil {
		return Ref[V]{}, err
	}
	return b.Ref(), nil
}

func shardForBytes[V any](c *Cache[string, V], key []byte) *shard[string, V] {
	var h uint64
	if bh, ok := c.hasher.(BytesHasher); ok {
		h = bh.HashBytes(key)
	} else {
		// The hasher only understands the owned form; pay for the conversion.
		h = c.hasher.Hash(string(key))
	}
	return c.shards[util.ShardIndex(h, len(c.shards))]
}
