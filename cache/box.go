package cache

import "sync/atomic"

// Box owns exactly one heap-allocated value whose address never changes.
//
// Shards store *Box handles, so when a shard map grows or rehashes only the
// handles move; the payload a Ref points at stays where it is. A Box exposes
// no mutation API.
type Box[V any] struct {
	val      V
	released atomic.Bool
}

// NewBox allocates v on the heap and returns its owning box.
func NewBox[V any](v V) *Box[V] {
	return &Box[V]{val: v}
}

// Ref returns a read-only handle to the boxed value.
func (b *Box[V]) Ref() Ref[V] { return Ref[V]{b: b} }

// release marks the box dead and runs fn on its value. It reports whether
// this call performed the release; later calls are no-ops.
// The owning cache calls it only while it holds exclusive ownership, or on
// a box that was never published.
func (b *Box[V]) release(fn func(V)) bool {
	if !b.released.CompareAndSwap(false, true) {
		return false
	}
	if fn != nil {
		fn(b.val)
	}
	return true
}

// Ref is a read-only reference into a Box. Refs are comparable: two refs are
// equal exactly when they point at the same stored value.
//
// A Ref obtained from a Cache stays valid until that cache is cleared or
// closed. Holding a Share guarantees no clear can happen meanwhile.
type Ref[V any] struct {
	b *Box[V]
}

// Value returns a copy of the referenced value (zero V for the zero Ref).
func (r Ref[V]) Value() V {
	if r.b == nil {
		var zero V
		return zero
	}
	return r.b.val
}

// Pointer returns the stable address of the referenced value.
// Callers must treat the pointee as read-only: other goroutines may be
// reading it at the same time.
func (r Ref[V]) Pointer() *V {
	if r.b == nil {
		return nil
	}
	return &r.b.val
}

// IsZero reports whether r refers to nothing.
func (r Ref[V]) IsZero() bool { return r.b == nil }

// Valid reports whether r refers to a live value, i.e. one whose owning
// cache has not been cleared or closed since r was handed out.
func (r Ref[V]) Valid() bool { return r.b != nil && !r.b.released.Load() }
