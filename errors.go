package gosync

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateSource indicates a source already contributed to a Gatherer.
	ErrDuplicateSource = errors.New("gosync: source already contributed")
	// ErrFinalized indicates a Gatherer has already published its result.
	ErrFinalized = errors.New("gosync: gatherer already finalized")
	// ErrUnknownSource indicates a source outside the Gatherer's expected set.
	ErrUnknownSource = errors.New("gosync: source not in expected set")
)

// PanicError is the error delivered to every caller attached to a multiplexed
// call whose work function panicked. The recovered value is preserved so
// callers can inspect it.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("gosync: panic in flight work: %v", e.Value)
}
