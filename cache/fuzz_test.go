package cache

import (
	"context"
	"strings"
	"testing"
)

// Fuzz GetOrInsert/Lookup/LookupBytes/Clear semantics under arbitrary string
// inputs. Guards against panics and checks that hits return the stored value.
// NOTE: key/value lengths are capped to keep memory bounded during fuzzing.
func FuzzCache_GetOrInsertLookup(f *testing.F) {
	f.Add("", "")
	f.Add("a", "1")
	f.Add("b", "2")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := New(Options[string, string]{Shards: 4})
		t.Cleanup(func() { _ = c.Close(context.Background()) })

		ref, err := c.GetOrInsertWith(k, constProvider[string](v))
		if err != nil || ref.Value() != v {
			t.Fatalf("GetOrInsert: want %q, got %q err=%v", v, ref.Value(), err)
		}

		// A second insert with another value must not overwrite.
		again, err := c.GetOrInsertWith(k, constProvider[string]("other"))
		if err != nil || again != ref || again.Value() != v {
			t.Fatalf("second GetOrInsert: want %q, got %q err=%v", v, again.Value(), err)
		}

		// Owned and borrowed lookups agree.
		owned, ok := c.Lookup(k)
		if !ok || owned != ref {
			t.Fatalf("Lookup mismatch for %q", k)
		}
		borrowed, ok := LookupBytes(c, []byte(k))
		if !ok || borrowed != ref {
			t.Fatalf("LookupBytes mismatch for %q", k)
		}

		if !c.TryClear() {
			t.Fatal("TryClear with no shares must succeed")
		}
		if _, ok := c.Lookup(k); ok {
			t.Fatal("key must be absent after Clear")
		}
		if ref.Valid() {
			t.Fatal("ref must be invalid after Clear")
		}
	})
}
