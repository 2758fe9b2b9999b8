package gosync

import (
	"context"
	"sync"
)

// Gatherer synthesizes one result of type R from values of type V
// contributed independently by sources identified by S. Each source
// contributes exactly once; a caller-supplied merge function folds each value
// into an accumulator under exclusive access. Once every expected source has
// contributed (or Finalize is called), the accumulator is frozen as the
// published result and every goroutine blocked in Await is released with it.
//
// Contribution order across sources is not guaranteed, so the merge function
// must be order-tolerant. Callers that need an order-sensitive merge should
// encode ordering into the contributed values themselves.
type Gatherer[S comparable, V any, R any] struct {
	mu    sync.Mutex
	merge func(acc R, value V) (R, error)

	expected    map[S]struct{} // nil unless WithSources was used
	want        int            // contributions needed to auto-finalize; <0 means Finalize only
	contributed map[S]struct{}
	acc         R
	finalized   bool
	done        chan struct{} // closed on finalization
}

// GathererOption is a functional option for configuring a Gatherer.
type GathererOption[S comparable, V any, R any] func(*Gatherer[S, V, R])

// WithSources sets the expected source set. The Gatherer finalizes
// automatically once every listed source has contributed, and contributions
// from sources outside the set fail with ErrUnknownSource.
func WithSources[S comparable, V any, R any](ids ...S) GathererOption[S, V, R] {
	return func(gt *Gatherer[S, V, R]) {
		gt.expected = make(map[S]struct{}, len(ids))
		for _, id := range ids {
			gt.expected[id] = struct{}{}
		}
		gt.want = len(gt.expected)
	}
}

// WithExpected sets an expected contribution count without naming the
// sources. The Gatherer finalizes automatically once n distinct sources have
// contributed.
func WithExpected[S comparable, V any, R any](n int) GathererOption[S, V, R] {
	return func(gt *Gatherer[S, V, R]) {
		gt.expected = nil
		gt.want = n
	}
}

// WithInitial sets the initial accumulator value. The default is R's zero
// value.
func WithInitial[S comparable, V any, R any](acc R) GathererOption[S, V, R] {
	return func(gt *Gatherer[S, V, R]) {
		gt.acc = acc
	}
}

// NewGatherer creates a Gatherer with the given merge function. Options
// configure the expected sources and the initial accumulator. Without
// WithSources or WithExpected the Gatherer never finalizes on its own and
// must be finalized explicitly via Finalize.
func NewGatherer[S comparable, V any, R any](merge func(acc R, value V) (R, error), opts ...GathererOption[S, V, R]) *Gatherer[S, V, R] {
	gt := &Gatherer[S, V, R]{
		merge:       merge,
		want:        -1,
		contributed: make(map[S]struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(gt)
	}
	if gt.want == 0 {
		// Nothing expected, so the initial accumulator is the result.
		gt.finalize()
	}
	return gt
}

// Contribute folds value into the accumulator on behalf of source. It fails
// with ErrDuplicateSource if the source already contributed, ErrFinalized if
// the result has been published, and ErrUnknownSource if an expected set was
// configured and the source is not in it. A merge-function error is returned
// to this caller only: the accumulator keeps its pre-contribution value, the
// source is not recorded, and the Gatherer remains open.
//
// The contribution that completes the expected set finalizes the Gatherer
// and releases every goroutine blocked in Await.
func (gt *Gatherer[S, V, R]) Contribute(source S, value V) error {
	gt.mu.Lock()
	defer gt.mu.Unlock()

	if _, ok := gt.contributed[source]; ok {
		return ErrDuplicateSource
	}
	if gt.finalized {
		return ErrFinalized
	}
	if gt.expected != nil {
		if _, ok := gt.expected[source]; !ok {
			return ErrUnknownSource
		}
	}

	merged, err := gt.merge(gt.acc, value)
	if err != nil {
		return err
	}
	gt.acc = merged
	gt.contributed[source] = struct{}{}

	if gt.want >= 0 && len(gt.contributed) >= gt.want {
		gt.finalize()
	}
	return nil
}

// Finalize publishes whatever has been accumulated so far, even if not all
// expected sources contributed, and releases every goroutine blocked in
// Await. Repeat calls are no-ops that return the published result.
func (gt *Gatherer[S, V, R]) Finalize() R {
	gt.mu.Lock()
	defer gt.mu.Unlock()

	gt.finalize()
	return gt.acc
}

// finalize must be called with mu held.
func (gt *Gatherer[S, V, R]) finalize() {
	if gt.finalized {
		return
	}
	gt.finalized = true
	close(gt.done)
}

// Await blocks until the Gatherer is finalized and returns the published
// result. After finalization it returns immediately with the same result on
// every call.
func (gt *Gatherer[S, V, R]) Await() R {
	<-gt.done

	gt.mu.Lock()
	defer gt.mu.Unlock()
	return gt.acc
}

// AwaitContext is Await with a bounded wait. On timeout or cancellation it
// returns ctx.Err() and leaves the Gatherer untouched; other callers are
// unaffected.
func (gt *Gatherer[S, V, R]) AwaitContext(ctx context.Context) (R, error) {
	select {
	case <-gt.done:
		gt.mu.Lock()
		defer gt.mu.Unlock()
		return gt.acc, nil
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed when the Gatherer finalizes, for use
// in select statements.
func (gt *Gatherer[S, V, R]) Done() <-chan struct{} {
	return gt.done
}

// Contributed reports whether source has already contributed.
func (gt *Gatherer[S, V, R]) Contributed(source S) bool {
	gt.mu.Lock()
	defer gt.mu.Unlock()

	_, ok := gt.contributed[source]
	return ok
}

// Remaining returns the number of contributions still needed before the
// Gatherer finalizes on its own. It returns zero once finalized and -1 when
// no expected set or count was configured.
func (gt *Gatherer[S, V, R]) Remaining() int {
	gt.mu.Lock()
	defer gt.mu.Unlock()

	if gt.finalized {
		return 0
	}
	if gt.want < 0 {
		return -1
	}
	return gt.want - len(gt.contributed)
}
