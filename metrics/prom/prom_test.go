package prom

import (
	"context"
	"errors"
	"testing"

	"github.com/IvanBrykalov/stablecache/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAdapter_CountsCacheTraffic(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "stablecache", "test", prometheus.Labels{"app": "unit"})

	c := cache.New(cache.Options[string, int]{Metrics: m})
	_, _ = c.GetOrInsertWith("a", func(string) (int, error) { return 1, nil })
	_, _ = c.GetOrInsertWith("a", func(string) (int, error) { return 2, nil })
	_, _ = c.GetOrInsertWith("b", func(string) (int, error) { return 0, errors.New("down") })
	if err := c.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(m.hits); got != 1 {
		t.Fatalf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.misses); got != 2 {
		t.Fatalf("misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.inserts); got != 1 {
		t.Fatalf("inserts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.errors); got != 1 {
		t.Fatalf("provider errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.released); got != 1 {
		t.Fatalf("released = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.entries); got != 0 {
		t.Fatalf("entries = %v, want 0 after clear", got)
	}
	if n := testutil.CollectAndCount(reg); n != 8 {
		t.Fatalf("registered series = %d, want 8", n)
	}
}
