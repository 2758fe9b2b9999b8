package gosync

import (
	"context"
	"sync"
)

// Result carries the outcome of a multiplexed call delivered over a channel.
// It is used by DoChan to transmit both successful values and failures.
type Result[V any] struct {
	Val    V     // The value produced by the work function
	Err    error // Any error (or captured panic) the work function produced
	Shared bool  // Whether the outcome was given to more than one caller
}

// call is the in-flight record for one key. Its val and err fields are
// written once by the executor before done is closed and are only read by
// waiters after done is closed.
type call[V any] struct {
	done chan struct{}
	val  V
	err  error

	// dups counts the callers attached beyond the executor. It is written
	// under the Group mutex.
	dups int
}

// Group multiplexes calls so that concurrent callers sharing a key trigger at
// most one execution of the underlying work. The first caller for a key runs
// the work; callers that arrive while it is in flight block and receive the
// same outcome. Once the call completes its record is dropped, so a call
// issued after completion always executes afresh.
//
// The zero Group is ready for use. A Group must not be copied after first
// use.
type Group[V any] struct {
	mu sync.Mutex
	m  map[string]*call[V] // lazily initialized
}

// NewGroup creates an empty call multiplexer for results of type V.
func NewGroup[V any]() *Group[V] {
	return &Group[V]{}
}

// Do executes and returns the result of work, making sure that only one
// execution is in flight for key at a time. If a duplicate call comes in
// while the first is running, the duplicate waits for the original to
// complete and receives the same value and error. The shared return reports
// whether the outcome was given to more than one caller.
//
// A panic in work is captured and delivered to every attached caller as a
// *PanicError; the key is cleaned up either way, so later calls start fresh.
//
// Calling Do reentrantly with the same key from inside work deadlocks.
func (g *Group[V]) Do(key string, work func() (V, error)) (v V, shared bool, err error) {
	return g.DoContext(context.Background(), key, work)
}

// DoContext is Do with a bounded wait: a caller that attaches to an
// in-flight record as a waiter gives up with ctx.Err() when ctx is done,
// leaving the record, the executor, and the other waiters untouched. The
// caller that executes the work is not interrupted; bounding the work itself
// is up to the work function.
func (g *Group[V]) DoContext(ctx context.Context, key string, work func() (V, error)) (v V, shared bool, err error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[string]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		done := c.done
		g.mu.Unlock()

		select {
		case <-done:
			return c.val, true, c.err
		case <-ctx.Done():
			var zero V
			return zero, false, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(key, c, work)
	return c.val, c.dups > 0, c.err
}

// DoChan is like Do but returns a channel that will deliver exactly one
// Result when the call completes, instead of blocking the caller.
func (g *Group[V]) DoChan(key string, work func() (V, error)) <-chan Result[V] {
	ch := make(chan Result[V], 1)
	go func() {
		v, shared, err := g.Do(key, work)
		ch <- Result[V]{Val: v, Err: err, Shared: shared}
	}()
	return ch
}

// Forget tells the Group to forget about key, and reports whether an
// in-flight record existed. Future calls to Do for the key will execute the
// work rather than waiting for the forgotten call to complete; callers
// already waiting on the forgotten call still receive its eventual outcome.
func (g *Group[V]) Forget(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.m[key]; !ok {
		return false
	}
	delete(g.m, key)
	return true
}

// Waiters returns the number of callers currently attached to the in-flight
// record for key beyond the executor. It returns zero when no call is in
// flight.
func (g *Group[V]) Waiters(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.m[key]; ok {
		return c.dups
	}
	return 0
}

// run executes work for c and publishes its outcome. The record is removed
// from the map before the completion channel is closed, so no released
// waiter can observe the stale record.
func (g *Group[V]) run(key string, c *call[V], work func() (V, error)) {
	defer func() {
		if r := recover(); r != nil {
			c.err = &PanicError{Value: r}
		}
		g.mu.Lock()
		if g.m[key] == c {
			delete(g.m, key)
		}
		close(c.done)
		g.mu.Unlock()
	}()

	c.val, c.err = work()
}
