// Package grid provides a uniform grid index: a fixed N×N lattice of
// fixed-capacity bins covering a bounded world.
//
// Elements are partitioned on Insert and Rebuild is a no-op. Near scans the
// 3×3 block of bins around the query cell, which is exact for radii up to
// the cell size. Larger radii silently miss elements; use Query with a
// Within predicate for arbitrary radii.
package grid

import (
	"fmt"
	"iter"
	"math"

	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
	"github.com/hupe1980/spatialgo/internal/arena"
)

// Compile-time checks to ensure Grid satisfies required interfaces.
var _ index.Index[struct{}] = (*Grid[struct{}])(nil)
var _ index.Namer = (*Grid[struct{}])(nil)

// Options contains configuration options for the grid index.
type Options struct {
	// Width and Height are the world dimensions. The world is [0,Width)×[0,Height).
	Width  float64
	Height float64

	// Resolution is the number of bins per axis (N).
	Resolution int

	// BinCapacity is the maximum number of elements per bin.
	BinCapacity int

	// OutOfBounds decides what Insert and Near do with positions outside the world.
	OutOfBounds index.BoundsPolicy

	// QueryRadius is the largest radius the caller intends to pass to Near.
	// When set, it is checked against the cell size at construction time.
	QueryRadius float64
}

// DefaultOptions contains the default configuration options for the grid index.
var DefaultOptions = Options{
	Width:       1000,
	Height:      1000,
	Resolution:  20,
	BinCapacity: 100,
	OutOfBounds: index.Reject,
}

// Grid is the uniform grid index.
type Grid[T any] struct {
	opts  Options
	world geom.Box
	cellW float64
	cellH float64

	elems  *arena.Arena[index.Element[T]]
	bins   []index.Ref // Resolution² × BinCapacity
	counts []int32     // occupancy per bin
}

// New creates a new grid index.
func New[T any](optFns ...func(o *Options)) (*Grid[T], error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if err := validate(opts); err != nil {
		return nil, err
	}

	n := opts.Resolution * opts.Resolution
	total := n * opts.BinCapacity

	return &Grid[T]{
		opts:   opts,
		world:  geom.NewBox(0, 0, opts.Width, opts.Height),
		cellW:  opts.Width / float64(opts.Resolution),
		cellH:  opts.Height / float64(opts.Resolution),
		elems:  arena.New[index.Element[T]](total),
		bins:   make([]index.Ref, total),
		counts: make([]int32, n),
	}, nil
}

func validate(o Options) error {
	if !(o.Width > 0) || math.IsInf(o.Width, 0) {
		return &index.ConfigError{Field: "width", Value: o.Width, Reason: "must be positive and finite"}
	}
	if !(o.Height > 0) || math.IsInf(o.Height, 0) {
		return &index.ConfigError{Field: "height", Value: o.Height, Reason: "must be positive and finite"}
	}
	if o.Resolution <= 0 {
		return &index.ConfigError{Field: "resolution", Value: o.Resolution, Reason: "must be positive"}
	}
	if o.BinCapacity <= 0 {
		return &index.ConfigError{Field: "bin capacity", Value: o.BinCapacity, Reason: "must be positive"}
	}
	if uint64(o.Resolution)*uint64(o.Resolution)*uint64(o.BinCapacity) > math.MaxUint32 {
		return &index.ConfigError{Field: "bin capacity", Value: o.BinCapacity, Reason: "total capacity exceeds 2^32 elements"}
	}
	if o.OutOfBounds != index.Reject && o.OutOfBounds != index.Clamp {
		return &index.ConfigError{Field: "out of bounds policy", Value: o.OutOfBounds, Reason: "unknown policy"}
	}
	if err := index.ValidateRadius(o.QueryRadius); err != nil {
		return err
	}
	cell := math.Min(o.Width, o.Height) / float64(o.Resolution)
	if o.QueryRadius > cell {
		return &index.ConfigError{
			Field:  "query radius",
			Value:  o.QueryRadius,
			Reason: fmt.Sprintf("exceeds cell size %g; the 3x3 neighborhood would miss elements", cell),
		}
	}
	return nil
}

// Name returns the backend name.
func (*Grid[T]) Name() string { return "grid" }

// Options returns the configuration of the grid.
func (g *Grid[T]) Options() Options { return g.opts }

// CellSize returns the width and height of one bin.
func (g *Grid[T]) CellSize() (w, h float64) { return g.cellW, g.cellH }

// MaxResults returns the largest number of results Near can produce.
// A fixed Results of this capacity never overflows on Near.
func (g *Grid[T]) MaxResults() int { return 9 * g.opts.BinCapacity }

// Insert adds e to the bin of its cell.
func (g *Grid[T]) Insert(e index.Element[T]) error {
	c, err := g.cellOf(e.Pos)
	if err != nil {
		return err
	}

	slot, err := g.elems.Append(e)
	if err != nil {
		return &index.CapacityError{Resource: "arena", Capacity: g.elems.Limit()}
	}

	b := g.binIndex(c)
	if int(g.counts[b]) >= g.opts.BinCapacity {
		g.elems.Truncate(int(slot))
		return &index.CapacityError{Resource: "bin", Capacity: g.opts.BinCapacity}
	}

	g.bins[b*g.opts.BinCapacity+int(g.counts[b])] = index.Ref(slot)
	g.counts[b]++

	return nil
}

// Clear empties every bin. Storage is kept.
func (g *Grid[T]) Clear() {
	g.elems.Reset()
	clear(g.counts)
}

// Rebuild is a no-op: elements are partitioned on insert.
func (g *Grid[T]) Rebuild() error { return nil }

// Len returns the number of stored elements.
func (g *Grid[T]) Len() int { return g.elems.Len() }

// At resolves a Ref.
func (g *Grid[T]) At(ref index.Ref) index.Element[T] { return g.elems.At(uint32(ref)) }

// Bounds returns the configured world rectangle.
func (g *Grid[T]) Bounds() geom.Box { return g.world }

// All yields every element in bin order.
func (g *Grid[T]) All() iter.Seq2[index.Ref, index.Element[T]] {
	return func(yield func(index.Ref, index.Element[T]) bool) {
		for b := range g.counts {
			for _, ref := range g.bin(b) {
				if !yield(ref, g.elems.At(uint32(ref))) {
					return
				}
			}
		}
	}
}

// Bin returns the refs stored in cell c. The slice aliases grid storage.
func (g *Grid[T]) Bin(c geom.Cell) []index.Ref {
	if c.X < 0 || c.Y < 0 || c.X >= g.opts.Resolution || c.Y >= g.opts.Resolution {
		return nil
	}
	return g.bin(g.binIndex(c))
}

// CellOf returns the bin p belongs to under the configured bounds policy.
func (g *Grid[T]) CellOf(p geom.Vec) (geom.Cell, error) {
	return g.cellOf(p)
}

// Near writes into dst every element strictly closer than radius to center,
// scanning the 3×3 bins around center's cell. Exact only for radius <= cell size.
func (g *Grid[T]) Near(dst *index.Results, center geom.Vec, radius float64) error {
	dst.Reset()

	if err := index.ValidateRadius(radius); err != nil {
		return err
	}

	c, err := g.cellOf(center)
	if err != nil {
		return err
	}

	n := g.opts.Resolution
	x0, x1 := max(c.X-1, 0), min(c.X+1, n-1)
	y0, y1 := max(c.Y-1, 0), min(c.Y+1, n-1)
	r2 := radius * radius

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			for _, ref := range g.bin(y*n + x) {
				if g.elems.At(uint32(ref)).Pos.DistanceSq(center) < r2 {
					if err := dst.Add(ref); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

// Query writes into dst every element matching pred. Bounded predicates
// scan the bins their box covers; unbounded predicates scan every bin.
func (g *Grid[T]) Query(dst *index.Results, pred index.Predicate, maxResults int) error {
	col := index.NewCollector(dst, pred, maxResults)

	x0, y0, x1, y1 := 0, 0, g.opts.Resolution-1, g.opts.Resolution-1
	if box, ok := index.BoundsOf(pred); ok && box.IsFinite() {
		lo, hi := box.Min(), box.Max()
		x0, x1 = g.axis(lo.X, g.cellW), g.axis(hi.X, g.cellW)
		y0, y1 = g.axis(lo.Y, g.cellH), g.axis(hi.Y, g.cellH)
	}

	n := g.opts.Resolution
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			for _, ref := range g.bin(y*n + x) {
				done, err := col.Offer(ref, g.elems.At(uint32(ref)).Pos)
				if err != nil || done {
					return err
				}
			}
		}
	}

	return nil
}

// Stats is a snapshot of bin occupancy.
type Stats struct {
	Len          int
	Bins         int
	EmptyBins    int
	FullBins     int
	MaxOccupancy int
}

func (s Stats) String() string {
	return fmt.Sprintf("Grid{len: %d, bins: %d, empty: %d, full: %d, max: %d}",
		s.Len, s.Bins, s.EmptyBins, s.FullBins, s.MaxOccupancy)
}

// Stats returns the current bin occupancy.
func (g *Grid[T]) Stats() Stats {
	s := Stats{Len: g.elems.Len(), Bins: len(g.counts)}
	for _, c := range g.counts {
		switch {
		case c == 0:
			s.EmptyBins++
		case int(c) == g.opts.BinCapacity:
			s.FullBins++
		}
		s.MaxOccupancy = max(s.MaxOccupancy, int(c))
	}
	return s
}

func (g *Grid[T]) bin(b int) []index.Ref {
	start := b * g.opts.BinCapacity
	return g.bins[start : start+int(g.counts[b])]
}

func (g *Grid[T]) binIndex(c geom.Cell) int {
	return c.Y*g.opts.Resolution + c.X
}

// cellOf applies the bounds policy and returns p's bin coordinate.
func (g *Grid[T]) cellOf(p geom.Vec) (geom.Cell, error) {
	if err := index.ValidatePosition(p); err != nil {
		return geom.Cell{}, err
	}
	if !g.world.Contains(p) && g.opts.OutOfBounds == index.Reject {
		return geom.Cell{}, &index.OutOfBoundsError{Pos: p, World: g.world}
	}
	return geom.Cell{X: g.axis(p.X, g.cellW), Y: g.axis(p.Y, g.cellH)}, nil
}

// axis returns floor(v/size) pinned to [0, Resolution-1]. Pinning happens
// in float space so huge coordinates never overflow the int conversion.
func (g *Grid[T]) axis(v, size float64) int {
	f := math.Floor(v / size)
	if f < 0 {
		return 0
	}
	if last := float64(g.opts.Resolution - 1); f > last {
		return g.opts.Resolution - 1
	}
	return int(f)
}
