// Package bvh provides a bounding-volume hierarchy backend on top of an R-tree.
//
// Elements are buffered on Insert and bulk-loaded into a fresh tree by
// Rebuild. Queries descend the tree with the predicate's bounding box and
// apply the exact predicate to every leaf they reach, so Near is exact for
// any radius.
package bvh

import (
	"iter"
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
	"github.com/hupe1980/spatialgo/internal/arena"
)

// Compile-time checks to ensure BVH satisfies required interfaces.
var _ index.Index[struct{}] = (*BVH[struct{}])(nil)
var _ index.Namer = (*BVH[struct{}])(nil)

// Options contains configuration options for the bvh index.
type Options struct {
	// MinChildren and MaxChildren bound the fan-out of inner nodes.
	MinChildren int
	MaxChildren int

	// Capacity is the maximum number of elements (0 = growable).
	Capacity int
}

// DefaultOptions contains the default configuration options for the bvh index.
var DefaultOptions = Options{
	MinChildren: 25,
	MaxChildren: 50,
}

type leaf struct {
	rect rtreego.Rect
	ref  index.Ref
}

func (l *leaf) Bounds() rtreego.Rect { return l.rect }

// BVH is the bounding-volume index.
type BVH[T any] struct {
	opts   Options
	elems  *arena.Arena[index.Element[T]]
	bounds geom.Box

	tree   *rtreego.Rtree
	leaves []leaf
	objs   []rtreego.Spatial
	dirty  bool
}

// New creates a new bvh index.
func New[T any](optFns ...func(o *Options)) (*BVH[T], error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MinChildren < 1 {
		return nil, &index.ConfigError{Field: "min children", Value: opts.MinChildren, Reason: "must be positive"}
	}
	if opts.MaxChildren < 2*opts.MinChildren {
		return nil, &index.ConfigError{Field: "max children", Value: opts.MaxChildren, Reason: "must be at least twice min children"}
	}
	if opts.Capacity < 0 {
		return nil, &index.ConfigError{Field: "capacity", Value: opts.Capacity, Reason: "must not be negative"}
	}

	return &BVH[T]{
		opts:  opts,
		elems: arena.New[index.Element[T]](opts.Capacity),
		tree:  rtreego.NewTree(2, opts.MinChildren, opts.MaxChildren),
	}, nil
}

// Name returns the backend name.
func (*BVH[T]) Name() string { return "bvh" }

// Insert buffers e until the next Rebuild.
func (b *BVH[T]) Insert(e index.Element[T]) error {
	if err := index.ValidatePosition(e.Pos); err != nil {
		return err
	}

	if _, err := b.elems.Append(e); err != nil {
		return &index.CapacityError{Resource: "arena", Capacity: b.opts.Capacity}
	}

	if b.elems.Len() == 1 {
		b.bounds = geom.BoxOf(e.Pos)
	} else {
		b.bounds = b.bounds.Extend(e.Pos)
	}
	b.dirty = true

	return nil
}

// Clear drops every element.
func (b *BVH[T]) Clear() {
	b.elems.Reset()
	b.bounds = geom.Box{}
	b.dirty = true
}

// Rebuild bulk-loads a new tree from the buffered elements.
func (b *BVH[T]) Rebuild() error {
	items := b.elems.Items()

	b.leaves = b.leaves[:0]
	for i, e := range items {
		b.leaves = append(b.leaves, leaf{
			rect: rtreego.Point{e.Pos.X, e.Pos.Y}.ToRect(0),
			ref:  index.Ref(i),
		})
	}

	clear(b.objs)
	b.objs = b.objs[:0]
	for i := range b.leaves {
		b.objs = append(b.objs, &b.leaves[i])
	}

	b.tree = rtreego.NewTree(2, b.opts.MinChildren, b.opts.MaxChildren, b.objs...)
	b.dirty = false

	return nil
}

// Len returns the number of stored elements.
func (b *BVH[T]) Len() int { return b.elems.Len() }

// At resolves a Ref.
func (b *BVH[T]) At(ref index.Ref) index.Element[T] { return b.elems.At(uint32(ref)) }

// Bounds returns the bounding box of every inserted position.
func (b *BVH[T]) Bounds() geom.Box { return b.bounds }

// All yields every element in insertion order.
func (b *BVH[T]) All() iter.Seq2[index.Ref, index.Element[T]] {
	return func(yield func(index.Ref, index.Element[T]) bool) {
		for i, e := range b.elems.Items() {
			if !yield(index.Ref(i), e) {
				return
			}
		}
	}
}

// Query writes into dst every element matching pred. Bounded predicates
// descend the tree; unbounded predicates scan every element.
func (b *BVH[T]) Query(dst *index.Results, pred index.Predicate, maxResults int) error {
	col := index.NewCollector(dst, pred, maxResults)

	if b.dirty {
		return index.ErrStale
	}

	box, ok := index.BoundsOf(pred)
	if !ok || !box.IsFinite() {
		for i, e := range b.elems.Items() {
			done, err := col.Offer(index.Ref(i), e.Pos)
			if err != nil || done {
				return err
			}
		}
		return nil
	}

	rect, err := searchRect(box)
	if err != nil {
		return err
	}

	// abort only ends the scan of the current node in rtreego; stopped keeps
	// sibling subtrees from offering more candidates.
	var (
		offerErr error
		stopped  bool
	)
	b.tree.SearchIntersect(rect, func(_ []rtreego.Spatial, obj rtreego.Spatial) (refuse, abort bool) {
		if stopped {
			return true, true
		}
		l := obj.(*leaf)
		done, err := col.Offer(l.ref, b.elems.At(uint32(l.ref)).Pos)
		if err != nil {
			offerErr = err
		}
		stopped = done
		// Results are collected by col; the tree's own slice stays empty.
		return true, done
	})

	return offerErr
}

// Near writes into dst every element strictly closer than radius to center.
func (b *BVH[T]) Near(dst *index.Results, center geom.Vec, radius float64) error {
	if err := index.ValidatePosition(center); err != nil {
		dst.Reset()
		return err
	}
	if err := index.ValidateRadius(radius); err != nil {
		dst.Reset()
		return err
	}
	return b.Query(dst, index.Near(center, radius), 0)
}

// searchRect returns an R-tree rectangle strictly enclosing box, so that
// positions on its edges intersect regardless of how the tree treats touching rectangles.
func searchRect(box geom.Box) (rtreego.Rect, error) {
	lo, hi := box.Min(), box.Max()
	pad := 1 + 1e-9*math.Max(math.Max(math.Abs(lo.X), math.Abs(lo.Y)), math.Max(math.Abs(hi.X), math.Abs(hi.Y)))

	return rtreego.NewRect(
		rtreego.Point{lo.X - pad, lo.Y - pad},
		[]float64{hi.X - lo.X + 2*pad, hi.Y - lo.Y + 2*pad},
	)
}
