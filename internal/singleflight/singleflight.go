// Package singleflight coalesces concurrent computations for the same key.
package singleflight

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// ErrGoexit is reported to waiters when the leader's fn called runtime.Goexit.
var ErrGoexit = errors.New("singleflight: leader goroutine exited")

// PanicError is returned to waiters when the leader's fn panicked.
// The leader itself re-panics with the original value.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("singleflight: computation panicked: %v", e.Value)
}

// Group coalesces concurrent function calls for the same key K so that
// the supplied fn is executed once per flight. Other concurrent callers
// wait for the shared result.
//
// Concurrency notes:
//   - The first caller for a given key becomes the leader and runs fn.
//   - Followers wait on c.done. Publishing (val, err) happens-before
//     close(c.done), so reads after <-done observe the final values.
//   - The in-flight record is removed even when fn panics, so a failed
//     flight never blocks later callers of the same key.
//   - Calling Do for key K from inside fn for the same K deadlocks.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
}

// Do runs fn once for the given key. Concurrent calls with the same key
// wait for the shared result.
func (g *Group[K, V]) Do(key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.val, c.err
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(key, c, fn)
	return c.val, c.err
}

// InFlight reports the number of keys currently being computed.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}

func (g *Group[K, V]) run(key K, c *call[V], fn func() (V, error)) {
	normal := false
	defer func() {
		if normal {
			g.finish(key, c)
			return
		}
		r := recover()
		if r == nil {
			// runtime.Goexit: let it keep unwinding.
			c.err = ErrGoexit
			g.finish(key, c)
			return
		}
		c.err = &PanicError{Value: r, Stack: debug.Stack()}
		g.finish(key, c)
		panic(r)
	}()

	c.val, c.err = fn()
	normal = true
}

func (g *Group[K, V]) finish(key K, c *call[V]) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
	close(c.done)
}
