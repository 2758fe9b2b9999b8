// Package gosync provides coordination primitives for concurrent Go programs
// beyond what the standard sync package offers directly.
//
// The main components include:
//
//   - WaitGroup: A completion barrier that blocks waiters until a dynamically adjusted count of outstanding work units reaches zero, with an optional context-aware wait
//   - Group: A call multiplexer that collapses concurrent calls sharing a key into a single execution whose outcome every attached caller receives
//   - Gatherer: A fan-in synthesizer that merges asynchronous contributions from an expected set of sources into one published result
//
// The primitives are independent of each other and carry no policy of their
// own: callers supply the units of work, the merge functions, and any retry
// behavior. All three are safe for use from arbitrarily many goroutines, and
// every blocking operation has a context-aware variant for bounded waits.
package gosync
