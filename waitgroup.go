package gosync

import (
	"context"
	"sync"
)

// WaitGroup waits for a counter of outstanding work units to reach zero.
// Add adjusts the counter, Done decrements it, and Wait blocks until it hits
// zero. Unlike the standard sync.WaitGroup it supports construction with a
// nonzero counter, counter inspection, and a context-aware wait.
//
// The zero WaitGroup is ready for use with a counter of zero. A WaitGroup
// must not be copied after first use.
//
// A WaitGroup may be reused for a new round of work after a wait cycle
// completes, but an Add that starts a new round must not race with the
// wake-up delivery of the previous round; see Add.
type WaitGroup struct {
	mu    sync.Mutex
	count int

	// done is created lazily by the first waiter of a round and is closed
	// and discarded on the zero transition that ends the round.
	done chan struct{}
}

// NewWaitGroup creates a WaitGroup whose counter starts at n.
func NewWaitGroup(n int) *WaitGroup {
	if n < 0 {
		panic("gosync: negative WaitGroup counter")
	}
	return &WaitGroup{count: n}
}

// Add adds delta, which may be negative, to the counter. If the counter
// reaches zero, all goroutines blocked in Wait are released. If the counter
// goes negative, Add panics: a decrement without a matching increment is a
// programming error, not a recoverable condition.
//
// Calls with a positive delta that start a new round must happen after all
// Wait calls of the previous round have returned; the WaitGroup does not
// guard against that race.
func (wg *WaitGroup) Add(delta int) {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	wg.count += delta
	if wg.count < 0 {
		panic("gosync: negative WaitGroup counter")
	}
	if wg.count == 0 && wg.done != nil {
		close(wg.done)
		wg.done = nil
	}
}

// Done decrements the counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Wait blocks until the counter is zero. All goroutines blocked in Wait are
// released together on the same zero transition.
func (wg *WaitGroup) Wait() {
	for {
		done, ok := wg.waitChan()
		if !ok {
			return
		}
		<-done
		// A new round may have started between the close and this wake-up,
		// so loop and re-check the counter.
	}
}

// WaitContext blocks until the counter is zero or ctx is done. On timeout or
// cancellation it returns ctx.Err() and leaves the counter and other waiters
// untouched.
func (wg *WaitGroup) WaitContext(ctx context.Context) error {
	for {
		done, ok := wg.waitChan()
		if !ok {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Count returns the current counter value.
func (wg *WaitGroup) Count() int {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	return wg.count
}

// waitChan returns the broadcast channel for the current round, creating it
// if needed. ok is false when the counter is already zero.
func (wg *WaitGroup) waitChan() (ch <-chan struct{}, ok bool) {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	if wg.count == 0 {
		return nil, false
	}
	if wg.done == nil {
		wg.done = make(chan struct{})
	}
	return wg.done, true
}
