package spatialgo

// This file implements backend-specific fluent builder APIs for creating and configuring Spaces.
// Builders are immutable - each method returns a new builder with the updated configuration.

import (
	"slices"

	"github.com/hupe1980/spatialgo/index"
	"github.com/hupe1980/spatialgo/index/bvh"
	"github.com/hupe1980/spatialgo/index/grid"
	"github.com/hupe1980/spatialgo/index/linear"
	"github.com/hupe1980/spatialgo/index/spatialhash"
)

// with returns a copy of opts extended by o, leaving opts untouched.
func with(opts []Option, o ...Option) []Option {
	return append(slices.Clip(opts), o...)
}

// =============================================================================
// Grid Builder (Immutable)
// =============================================================================

// Grid creates a new uniform grid builder over the world [0,width)×[0,height).
//
// Example:
//
//	sp, err := spatialgo.Grid[*Body](1000, 1000).
//	    Resolution(20).
//	    BinCapacity(100).
//	    Build()
func Grid[T any](width, height float64) GridBuilder[T] {
	return GridBuilder[T]{
		opts: func() grid.Options {
			o := grid.DefaultOptions
			o.Width, o.Height = width, height
			return o
		}(),
	}
}

// GridBuilder is an immutable fluent builder for grid-backed Spaces.
type GridBuilder[T any] struct {
	opts      grid.Options
	spaceOpts []Option
}

// Resolution sets the number of bins per axis.
// Default: 20.
func (b GridBuilder[T]) Resolution(n int) GridBuilder[T] {
	b.opts.Resolution = n
	return b
}

// BinCapacity sets the maximum number of elements per bin.
// Default: 100.
func (b GridBuilder[T]) BinCapacity(n int) GridBuilder[T] {
	b.opts.BinCapacity = n
	return b
}

// Clamp assigns out-of-world positions to the nearest edge bin instead of rejecting them.
func (b GridBuilder[T]) Clamp() GridBuilder[T] {
	b.opts.OutOfBounds = index.Clamp
	return b
}

// QueryRadius sets the largest Near radius the grid accepts (0 = no check).
func (b GridBuilder[T]) QueryRadius(r float64) GridBuilder[T] {
	b.opts.QueryRadius = r
	return b
}

// Logger sets the structured logger for operation tracing.
func (b GridBuilder[T]) Logger(l *Logger) GridBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, WithLogger(l))
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b GridBuilder[T]) Metrics(mc MetricsCollector) GridBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, WithMetricsCollector(mc))
	return b
}

// Options appends Space options.
func (b GridBuilder[T]) Options(opts ...Option) GridBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, opts...)
	return b
}

// Build creates the Space.
func (b GridBuilder[T]) Build() (*Space[T], error) {
	ix, err := grid.New[T](func(o *grid.Options) { *o = b.opts })
	if err != nil {
		return nil, err
	}
	return New[T](ix, b.spaceOpts...)
}

// MustBuild creates the Space, panicking on error.
func (b GridBuilder[T]) MustBuild() *Space[T] {
	return must[T](b.Build())
}

// =============================================================================
// Spatial Hash Builder (Immutable)
// =============================================================================

// Hash creates a new spatial hash builder with the given cell size.
//
// Example:
//
//	sp, err := spatialgo.Hash[*Body](50).
//	    TableSize(4096).
//	    Shuffle(42).
//	    Build()
func Hash[T any](cellSize float64) HashBuilder[T] {
	return HashBuilder[T]{
		opts: func() spatialhash.Options {
			o := spatialhash.DefaultOptions
			o.CellSize = cellSize
			return o
		}(),
	}
}

// HashBuilder is an immutable fluent builder for spatial-hash-backed Spaces.
type HashBuilder[T any] struct {
	opts      spatialhash.Options
	spaceOpts []Option
}

// TableSize sets the number of hash buckets.
// Default: 1000.
func (b HashBuilder[T]) TableSize(n int) HashBuilder[T] {
	b.opts.TableSize = n
	return b
}

// Capacity sets the maximum number of elements per frame (0 = growable).
func (b HashBuilder[T]) Capacity(n int) HashBuilder[T] {
	b.opts.Capacity = n
	return b
}

// Diffuse enables or disables inserting each element into its 3×3 cell
// neighborhood. Without diffusion Near only sees the center's own bucket.
// Default: true.
func (b HashBuilder[T]) Diffuse(enabled bool) HashBuilder[T] {
	b.opts.Diffuse = enabled
	return b
}

// Shuffle randomizes the order of elements within buckets on every rebuild,
// seeded for reproducibility.
func (b HashBuilder[T]) Shuffle(seed uint64) HashBuilder[T] {
	b.opts.Shuffle = true
	b.opts.Seed = seed
	return b
}

// QueryRadius sets the largest Near radius the hash accepts (0 = no check).
func (b HashBuilder[T]) QueryRadius(r float64) HashBuilder[T] {
	b.opts.QueryRadius = r
	return b
}

// Logger sets the structured logger for operation tracing.
func (b HashBuilder[T]) Logger(l *Logger) HashBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, WithLogger(l))
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b HashBuilder[T]) Metrics(mc MetricsCollector) HashBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, WithMetricsCollector(mc))
	return b
}

// Options appends Space options.
func (b HashBuilder[T]) Options(opts ...Option) HashBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, opts...)
	return b
}

// Build creates the Space.
func (b HashBuilder[T]) Build() (*Space[T], error) {
	ix, err := spatialhash.New[T](func(o *spatialhash.Options) { *o = b.opts })
	if err != nil {
		return nil, err
	}
	return New[T](ix, b.spaceOpts...)
}

// MustBuild creates the Space, panicking on error.
func (b HashBuilder[T]) MustBuild() *Space[T] {
	return must[T](b.Build())
}

// =============================================================================
// Linear Builder (Immutable)
// =============================================================================

// Linear creates a new builder for the unindexed baseline.
func Linear[T any]() LinearBuilder[T] {
	return LinearBuilder[T]{opts: linear.DefaultOptions}
}

// LinearBuilder is an immutable fluent builder for linear-backed Spaces.
type LinearBuilder[T any] struct {
	opts      linear.Options
	spaceOpts []Option
}

// Capacity sets the maximum number of elements per frame (0 = growable).
func (b LinearBuilder[T]) Capacity(n int) LinearBuilder[T] {
	b.opts.Capacity = n
	return b
}

// Logger sets the structured logger for operation tracing.
func (b LinearBuilder[T]) Logger(l *Logger) LinearBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, WithLogger(l))
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b LinearBuilder[T]) Metrics(mc MetricsCollector) LinearBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, WithMetricsCollector(mc))
	return b
}

// Options appends Space options.
func (b LinearBuilder[T]) Options(opts ...Option) LinearBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, opts...)
	return b
}

// Build creates the Space.
func (b LinearBuilder[T]) Build() (*Space[T], error) {
	ix, err := linear.New[T](func(o *linear.Options) { *o = b.opts })
	if err != nil {
		return nil, err
	}
	return New[T](ix, b.spaceOpts...)
}

// MustBuild creates the Space, panicking on error.
func (b LinearBuilder[T]) MustBuild() *Space[T] {
	return must[T](b.Build())
}

// =============================================================================
// BVH Builder (Immutable)
// =============================================================================

// BVH creates a new bounding-volume hierarchy builder.
//
// Example:
//
//	sp, err := spatialgo.BVH[*Body]().
//	    FanOut(8, 16).
//	    Build()
func BVH[T any]() BVHBuilder[T] {
	return BVHBuilder[T]{opts: bvh.DefaultOptions}
}

// BVHBuilder is an immutable fluent builder for bvh-backed Spaces.
type BVHBuilder[T any] struct {
	opts      bvh.Options
	spaceOpts []Option
}

// FanOut sets the minimum and maximum number of children per node.
// Default: 25, 50.
func (b BVHBuilder[T]) FanOut(minChildren, maxChildren int) BVHBuilder[T] {
	b.opts.MinChildren = minChildren
	b.opts.MaxChildren = maxChildren
	return b
}

// Capacity sets the maximum number of elements per frame (0 = growable).
func (b BVHBuilder[T]) Capacity(n int) BVHBuilder[T] {
	b.opts.Capacity = n
	return b
}

// Logger sets the structured logger for operation tracing.
func (b BVHBuilder[T]) Logger(l *Logger) BVHBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, WithLogger(l))
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b BVHBuilder[T]) Metrics(mc MetricsCollector) BVHBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, WithMetricsCollector(mc))
	return b
}

// Options appends Space options.
func (b BVHBuilder[T]) Options(opts ...Option) BVHBuilder[T] {
	b.spaceOpts = with(b.spaceOpts, opts...)
	return b
}

// Build creates the Space.
func (b BVHBuilder[T]) Build() (*Space[T], error) {
	ix, err := bvh.New[T](func(o *bvh.Options) { *o = b.opts })
	if err != nil {
		return nil, err
	}
	return New[T](ix, b.spaceOpts...)
}

// MustBuild creates the Space, panicking on error.
func (b BVHBuilder[T]) MustBuild() *Space[T] {
	return must[T](b.Build())
}

func must[T any](sp *Space[T], err error) *Space[T] {
	if err != nil {
		panic(err)
	}
	return sp
}
