// Package linear provides an unindexed baseline: every query scans every element.
//
// It is the reference for the other backends and the oracle in their tests.
package linear

import (
	"iter"

	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
	"github.com/hupe1980/spatialgo/internal/arena"
)

// Compile-time checks to ensure Linear satisfies required interfaces.
var _ index.Index[struct{}] = (*Linear[struct{}])(nil)
var _ index.Namer = (*Linear[struct{}])(nil)

// Options contains configuration options for the linear index.
type Options struct {
	// Capacity is the maximum number of elements (0 = growable).
	Capacity int
}

// DefaultOptions contains the default configuration options for the linear index.
var DefaultOptions = Options{}

// Linear is the baseline index.
type Linear[T any] struct {
	opts   Options
	elems  *arena.Arena[index.Element[T]]
	bounds geom.Box
}

// New creates a new linear index.
func New[T any](optFns ...func(o *Options)) (*Linear[T], error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Capacity < 0 {
		return nil, &index.ConfigError{Field: "capacity", Value: opts.Capacity, Reason: "must not be negative"}
	}

	return &Linear[T]{
		opts:  opts,
		elems: arena.New[index.Element[T]](opts.Capacity),
	}, nil
}

// Name returns the backend name.
func (*Linear[T]) Name() string { return "linear" }

// Insert appends e and merges its position into the bounds.
func (l *Linear[T]) Insert(e index.Element[T]) error {
	if err := index.ValidatePosition(e.Pos); err != nil {
		return err
	}

	if _, err := l.elems.Append(e); err != nil {
		return &index.CapacityError{Resource: "arena", Capacity: l.opts.Capacity}
	}

	if l.elems.Len() == 1 {
		l.bounds = geom.BoxOf(e.Pos)
	} else {
		l.bounds = l.bounds.Extend(e.Pos)
	}

	return nil
}

// Clear drops every element.
func (l *Linear[T]) Clear() {
	l.elems.Reset()
	l.bounds = geom.Box{}
}

// Rebuild is a no-op.
func (l *Linear[T]) Rebuild() error { return nil }

// Len returns the number of stored elements.
func (l *Linear[T]) Len() int { return l.elems.Len() }

// At resolves a Ref.
func (l *Linear[T]) At(ref index.Ref) index.Element[T] { return l.elems.At(uint32(ref)) }

// Bounds returns the bounding box of every inserted position.
func (l *Linear[T]) Bounds() geom.Box { return l.bounds }

// All yields every element in insertion order.
func (l *Linear[T]) All() iter.Seq2[index.Ref, index.Element[T]] {
	return func(yield func(index.Ref, index.Element[T]) bool) {
		for i, e := range l.elems.Items() {
			if !yield(index.Ref(i), e) {
				return
			}
		}
	}
}

// Query writes into dst every element matching pred, in insertion order.
func (l *Linear[T]) Query(dst *index.Results, pred index.Predicate, maxResults int) error {
	col := index.NewCollector(dst, pred, maxResults)

	for i, e := range l.elems.Items() {
		done, err := col.Offer(index.Ref(i), e.Pos)
		if err != nil || done {
			return err
		}
	}

	return nil
}

// Near writes into dst every element strictly closer than radius to center.
func (l *Linear[T]) Near(dst *index.Results, center geom.Vec, radius float64) error {
	if err := index.ValidatePosition(center); err != nil {
		dst.Reset()
		return err
	}
	if err := index.ValidateRadius(radius); err != nil {
		dst.Reset()
		return err
	}
	return l.Query(dst, index.Near(center, radius), 0)
}
