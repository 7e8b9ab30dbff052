package index

import (
	"iter"

	"github.com/hupe1980/spatialgo/geom"
)

// Ref is the arena slot of an element. It is only meaningful for the index
// that returned it and only until that index is cleared or rebuilt.
type Ref uint32

// Element is a positioned value stored by value inside an index.
type Element[T any] struct {
	// Pos is the element position used for bucketing and distance tests.
	Pos geom.Vec

	// Data is the caller payload (velocity, mass, an id into host state, ...).
	Data T
}

// E is shorthand for an Element without payload.
func E[T any](x, y float64) Element[T] {
	return Element[T]{Pos: geom.V(x, y)}
}

// Index is the capability set every backend implements.
type Index[T any] interface {
	// Insert adds an element. It returns a *CapacityError when fixed storage
	// is full and an *OutOfBoundsError when the position violates the
	// backend's bounds policy. A failed insert leaves the index unchanged.
	Insert(e Element[T]) error

	// Clear drops all elements and keeps allocated storage.
	Clear()

	// Rebuild recomputes the partitioning from the current elements.
	// It is a no-op for backends that partition on insert.
	Rebuild() error

	// Len returns the current number of elements.
	Len() int

	// All yields every element with its Ref in backend-defined order.
	// The sequence is finite and restartable; the order is not stable across rebuilds.
	All() iter.Seq2[Ref, Element[T]]

	// At resolves a Ref returned by a query.
	At(ref Ref) Element[T]

	// Bounds returns the bounding box of the index. Grid backends return
	// their configured world; the others the exact box of inserted positions.
	Bounds() geom.Box

	// Query writes into dst every element matching pred, up to maxResults
	// (<= 0 means unlimited). dst is reset first.
	Query(dst *Results, pred Predicate, maxResults int) error

	// Near writes into dst every element strictly closer than radius to center.
	// Grid-like backends document their radius precondition.
	Near(dst *Results, center geom.Vec, radius float64) error
}

// Name returns a stable backend name if ix implements Namer, or "unknown".
func Name[T any](ix Index[T]) string {
	if n, ok := ix.(Namer); ok {
		return n.Name()
	}
	return "unknown"
}

// Namer is implemented by backends that report a stable name.
type Namer interface {
	Name() string
}

// BoundsPolicy decides what happens to positions outside a bounded world.
// Insert and query paths of a backend always apply the same policy.
type BoundsPolicy int

const (
	// Reject fails the operation with an *OutOfBoundsError.
	Reject BoundsPolicy = iota
	// Clamp pins the position to the nearest edge cell. The stored element
	// keeps its real position; only its cell is clamped.
	Clamp
)

// String returns a string representation of the BoundsPolicy.
func (p BoundsPolicy) String() string {
	switch p {
	case Reject:
		return "Reject"
	case Clamp:
		return "Clamp"
	default:
		return "Unknown"
	}
}

// Collect resolves every Ref in res into a fresh slice of elements.
func Collect[T any](ix Index[T], res *Results) []Element[T] {
	out := make([]Element[T], 0, res.Len())
	for _, ref := range res.Refs() {
		out = append(out, ix.At(ref))
	}
	return out
}

// Positions returns the positions of every element in ix.
func Positions[T any](ix Index[T]) []geom.Vec {
	out := make([]geom.Vec, 0, ix.Len())
	for _, e := range ix.All() {
		out = append(out, e.Pos)
	}
	return out
}
