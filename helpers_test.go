package gosync

import (
	"testing"
	"time"
)

const testTimeout = 5 * time.Second

// withTimeout wraps a channel receive with a timeout
func withTimeout[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case val := <-ch:
		return val
	case <-time.After(testTimeout):
		t.Fatal("Test timed out waiting for channel receive")
		var zero T
		return zero
	}
}

// eventually polls cond until it returns true or the test times out.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Test timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}
