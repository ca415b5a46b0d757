package singleflight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Concurrent callers for the same key share one execution.
func TestDo_Coalesces(t *testing.T) {
	var g Group[string, int]
	var calls atomic.Int64
	release := make(chan struct{})

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	results := make([]int, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := g.Do("k", func() (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
			results[i] = v
		}(i)
	}

	// Wait until the leader is in flight, give followers time to join.
	for g.InFlight() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, v := range results {
		if v != 42 {
			t.Fatalf("result[%d] = %d, want 42", i, v)
		}
	}
	if got := calls.Load(); got < 1 || got > n {
		t.Fatalf("unexpected call count %d", got)
	}
	if g.InFlight() != 0 {
		t.Fatal("flight record leaked")
	}
}

func TestDo_ErrorIsShared(t *testing.T) {
	t.Parallel()

	var g Group[int, string]
	boom := errors.New("boom")
	_, err := g.Do(1, func() (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	v, err := g.Do(1, func() (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("second flight must run fresh: v=%q err=%v", v, err)
	}
}

// A panicking leader re-panics, waiters see PanicError, and the key is usable
// afterwards.
func TestDo_PanicDoesNotWedgeKey(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	entered := make(chan struct{})
	proceed := make(chan struct{})

	leaderDone := make(chan any, 1)
	go func() {
		defer func() { leaderDone <- recover() }()
		_, _ = g.Do("k", func() (int, error) {
			close(entered)
			<-proceed
			panic("provider exploded")
		})
	}()
	<-entered

	followerErr := make(chan error, 1)
	go func() {
		_, err := g.Do("k", func() (int, error) { return 1, nil })
		followerErr <- err
	}()
	time.Sleep(10 * time.Millisecond)
	close(proceed)

	if r := <-leaderDone; r != "provider exploded" {
		t.Fatalf("leader must re-panic with original value, got %v", r)
	}
	err := <-followerErr
	// The follower either joined the failed flight or started a new one.
	var pe *PanicError
	if err != nil && !errors.As(err, &pe) {
		t.Fatalf("follower: want PanicError or success, got %v", err)
	}

	v, err := g.Do("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("key wedged after panic: v=%d err=%v", v, err)
	}
}
