package spatialgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/spatialgo/index"
)

// Sentinels re-exported from package index so callers need only one import.
var (
	ErrCapacityExceeded     = index.ErrCapacityExceeded
	ErrOutOfBounds          = index.ErrOutOfBounds
	ErrInvalidConfiguration = index.ErrInvalidConfiguration
	ErrStale                = index.ErrStale
)

// ErrNilIndex is returned by New when no backend is given.
var ErrNilIndex = errors.New("spatialgo: nil index")

// DropPolicy selects how Load handles elements the backend rejects.
type DropPolicy int

const (
	// FailFast stops Load at the first rejected element and returns its error.
	FailFast DropPolicy = iota

	// DropAndCount skips rejected elements, counts them in FrameStats.Dropped
	// and logs each at warn level. Only capacity and bounds errors are
	// droppable; anything else still aborts the load.
	DropAndCount
)

// String returns the policy name.
func (p DropPolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case DropAndCount:
		return "drop-and-count"
	default:
		return fmt.Sprintf("DropPolicy(%d)", int(p))
	}
}

// ParseDropPolicy parses a policy name as produced by String.
func ParseDropPolicy(s string) (DropPolicy, error) {
	switch s {
	case "fail-fast", "":
		return FailFast, nil
	case "drop-and-count", "drop":
		return DropAndCount, nil
	default:
		return FailFast, &index.ConfigError{Field: "drop policy", Value: s, Reason: "unknown"}
	}
}

// droppable reports whether err may be skipped under DropAndCount.
func droppable(err error) bool {
	return errors.Is(err, ErrCapacityExceeded) || errors.Is(err, ErrOutOfBounds)
}

// LoadError reports the element at which a fail-fast Load stopped.
type LoadError struct {
	Index int
	cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load element %d: %v", e.Index, e.cause)
}

func (e *LoadError) Unwrap() error { return e.cause }
