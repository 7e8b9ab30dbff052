package index

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/spatialgo/geom"
)

var (
	// ErrCapacityExceeded is returned when fixed storage (a bin, an arena or
	// a fixed results buffer) cannot take another element.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrOutOfBounds is returned for positions outside a bounded world under
	// the Reject policy, and for non-finite positions in every backend.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrInvalidConfiguration is returned by constructors for unusable options.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrStale is returned when querying a rebuild-based backend after a
	// mutation without an intervening Rebuild.
	ErrStale = errors.New("index is stale: rebuild required")
)

// CapacityError reports which fixed resource overflowed.
type CapacityError struct {
	// Resource is "bin", "arena" or "results".
	Resource string
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s capacity %d exceeded", e.Resource, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// OutOfBoundsError reports a position that violates the bounds policy.
type OutOfBoundsError struct {
	Pos   geom.Vec
	World geom.Box
}

func (e *OutOfBoundsError) Error() string {
	if !e.Pos.IsFinite() {
		return fmt.Sprintf("non-finite position %s", e.Pos)
	}
	return fmt.Sprintf("position %s outside world %s", e.Pos, e.World)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }

// ConfigError reports an invalid option value.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// ValidatePosition checks that p is finite.
func ValidatePosition(p geom.Vec) error {
	if !p.IsFinite() {
		return &OutOfBoundsError{Pos: p}
	}
	return nil
}

// ValidateRadius checks that r is a usable query radius.
func ValidateRadius(r float64) error {
	if math.IsNaN(r) || r < 0 {
		return &ConfigError{Field: "radius", Value: r, Reason: "must be a non-negative number"}
	}
	return nil
}
