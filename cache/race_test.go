package cache

import (
	"context"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// A mixed workload of concurrent Lookup/GetOrInsert/LookupBytes on random
// keys with occasional shared-ownership clears. Every ref is re-checked
// while its share is held. Should pass under `-race` without detector reports.
func TestRace_Basic(t *testing.T) {
	c := New(Options[string, string]{
		Shards:   32,
		Provider: func(k string) (string, error) { return "v:" + k, nil },
	})
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 50_000
	deadline := time.Now().Add(time.Second)

	var wg sync.WaitGroup
	wg.Add(workers + 1)

	// Clearer: competes with the workers for exclusive ownership.
	go func() {
		defer wg.Done()
		for time.Now().Before(deadline) {
			time.Sleep(50 * time.Millisecond)
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			_ = c.Clear(ctx)
			cancel()
		}
	}()

	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				sh, err := c.Share(context.Background())
				if err != nil {
					t.Errorf("Share: %v", err)
					return
				}
				held := make([]Ref[string], 0, 16)
				keys := make([]string, 0, 16)
				for i := 0; i < 16; i++ {
					k := "k:" + strconv.Itoa(r.Intn(keyspace))
					var ref Ref[string]
					switch r.Intn(10) {
					case 0, 1: // ~20% borrowed lookup
						ref, _ = LookupBytes(c, []byte(k))
					case 2, 3, 4: // ~30% plain lookup
						ref, _ = sh.Lookup(k)
					default: // ~50% get-or-insert
						ref, err = sh.GetOrInsert(k)
						if err != nil {
							t.Errorf("GetOrInsert: %v", err)
						}
					}
					if !ref.IsZero() {
						held = append(held, ref)
						keys = append(keys, k)
					}
				}
				for i, ref := range held {
					if !ref.Valid() || ref.Value() != "v:"+keys[i] {
						t.Errorf("ref for %s changed while share held: %q valid=%v", keys[i], ref.Value(), ref.Valid())
					}
				}
				sh.Release()
			}
		}(w)
	}
	wg.Wait()
}

// One hundred goroutines call GetOrInsert on the same key concurrently.
// The provider should run at most once (singleflight coalescing).
func TestRace_GetOrInsertSameKey(t *testing.T) {
	var calls atomic.Int64
	c := NewWithProvider(func(k string) (string, error) {
		calls.Add(1)
		time.Sleep(2 * time.Millisecond)
		return "v:" + k, nil
	})
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	const goroutines = 100
	key := "same-key"

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			<-start
			ref, err := c.GetOrInsert(key)
			if err != nil {
				t.Errorf("GetOrInsert error: %v", err)
				return
			}
			if ref.Value() != "v:"+key {
				t.Errorf("unexpected value: %q", ref.Value())
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("provider should run once, got %d", got)
	}
}
