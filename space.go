package spatialgo

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
)

// ctxCheckInterval is how many elements Load and ForEachNeighbor process
// between context checks.
const ctxCheckInterval = 256

// minChunk is the smallest run of elements handed to one fan-out task.
const minChunk = 64

// FrameStats summarizes one Load.
type FrameStats struct {
	// Loaded is the number of elements the backend accepted.
	Loaded int
	// Dropped is the number of elements skipped under DropAndCount.
	Dropped int
	// Generation is the generation reached by the closing rebuild.
	Generation uint64
	// Elapsed covers clear, inserts and rebuild.
	Elapsed time.Duration
}

// Neighborhood is the outcome of one per-element query of ForEachNeighbor.
// It is reused once the NeighborFunc returns.
type Neighborhood[T any] struct {
	// Ref and Element identify the queried element.
	Ref     index.Ref
	Element index.Element[T]

	// Refs holds every element Near returned, the queried element included.
	Refs []index.Ref

	ix index.Index[T]
}

// Len returns the number of neighbors, the queried element excluded.
func (n *Neighborhood[T]) Len() int { return max(0, len(n.Refs)-1) }

// At resolves a Ref of the current generation without locking.
func (n *Neighborhood[T]) At(ref index.Ref) index.Element[T] { return n.ix.At(ref) }

// Neighbors yields every neighbor except the queried element.
func (n *Neighborhood[T]) Neighbors() iter.Seq2[index.Ref, index.Element[T]] {
	return func(yield func(index.Ref, index.Element[T]) bool) {
		for _, ref := range n.Refs {
			if ref == n.Ref {
				continue
			}
			if !yield(ref, n.ix.At(ref)) {
				return
			}
		}
	}
}

// NeighborFunc receives one Neighborhood. It is called from several
// goroutines at once and must not call back into the Space's mutating methods.
type NeighborFunc[T any] func(nb *Neighborhood[T]) error

// Space drives a backend through the frame lifecycle.
//
// Load, Insert, Clear and Rebuild take the write lock; queries take the read
// lock and fail with ErrStale between a mutation and the next rebuild, for
// every backend. Each completed rebuild advances the generation.
type Space[T any] struct {
	ix      index.Index[T]
	name    string
	opts    options
	logger  *Logger
	metrics MetricsCollector

	mu    sync.RWMutex
	gen   uint64
	stale bool

	results sync.Pool
}

// New wraps ix in a Space. The Space owns ix from now on: mutate it only
// through the Space.
func New[T any](ix index.Index[T], optFns ...Option) (*Space[T], error) {
	if ix == nil {
		return nil, ErrNilIndex
	}

	opts := applyOptions(optFns)
	name := index.Name(ix)

	s := &Space[T]{
		ix:      ix,
		name:    name,
		opts:    opts,
		logger:  opts.logger.WithBackend(name),
		metrics: opts.metricsCollector,
		stale:   ix.Len() > 0,
	}
	s.results.New = func() any { return index.NewResults(0) }

	return s, nil
}

// Name returns the backend name.
func (s *Space[T]) Name() string { return s.name }

// Workers returns the fan-out limit of ForEachNeighbor.
func (s *Space[T]) Workers() int { return s.opts.workers }

// DropPolicy returns the configured drop policy.
func (s *Space[T]) DropPolicy() DropPolicy { return s.opts.dropPolicy }

// Backend returns the wrapped index for read-only inspection, such as a
// backend's Stats. Mutating it bypasses the Space's barrier.
func (s *Space[T]) Backend() index.Index[T] { return s.ix }

// Generation returns the number of completed rebuilds.
func (s *Space[T]) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Stale reports whether the space was mutated since its last rebuild.
func (s *Space[T]) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// Load replaces the contents of the space with elems and rebuilds.
//
// Under FailFast the first rejected element aborts the load with a
// *LoadError; the space is left stale. Under DropAndCount capacity and bounds
// rejections are skipped and counted.
func (s *Space[T]) Load(ctx context.Context, elems []index.Element[T]) (FrameStats, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ix.Clear()
	s.stale = true

	var stats FrameStats
	for i, e := range elems {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				s.metrics.RecordLoad(i, stats.Dropped, time.Since(start))
				s.logger.LogLoad(ctx, stats.Loaded, stats.Dropped, err)
				return stats, err
			}
		}

		if err := s.ix.Insert(e); err != nil {
			if s.opts.dropPolicy == DropAndCount && droppable(err) {
				stats.Dropped++
				s.logger.LogDropped(ctx, i, err)
				continue
			}

			err = &LoadError{Index: i, cause: err}
			s.metrics.RecordLoad(i+1, stats.Dropped, time.Since(start))
			s.logger.LogLoad(ctx, stats.Loaded, stats.Dropped, err)
			return stats, err
		}
		stats.Loaded++
	}

	s.metrics.RecordLoad(len(elems), stats.Dropped, time.Since(start))
	s.logger.LogLoad(ctx, stats.Loaded, stats.Dropped, nil)

	if err := s.rebuildLocked(ctx); err != nil {
		return stats, err
	}

	stats.Generation = s.gen
	stats.Elapsed = time.Since(start)

	return stats, nil
}

// Insert adds one element. The space is stale until the next Rebuild.
func (s *Space[T]) Insert(e index.Element[T]) error {
	start := time.Now()

	s.mu.Lock()
	err := s.ix.Insert(e)
	if err == nil {
		s.stale = true
	}
	s.mu.Unlock()

	s.metrics.RecordInsert(time.Since(start), err)

	return err
}

// Clear drops every element. The space is stale until the next Rebuild.
func (s *Space[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ix.Clear()
	s.stale = true
}

// Rebuild is the barrier between the insert phase and the query phase.
func (s *Space[T]) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rebuildLocked(ctx)
}

func (s *Space[T]) rebuildLocked(ctx context.Context) error {
	start := time.Now()
	err := s.ix.Rebuild()
	d := time.Since(start)

	s.metrics.RecordRebuild(s.ix.Len(), d, err)
	if err == nil {
		s.gen++
		s.stale = false
	}
	s.logger.WithGeneration(s.gen).LogRebuild(ctx, s.ix.Len(), d, err)

	return err
}

// Len returns the number of stored elements.
func (s *Space[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.Len()
}

// Bounds returns the backend's bounds.
func (s *Space[T]) Bounds() geom.Box {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.Bounds()
}

// At resolves a Ref from the current generation.
func (s *Space[T]) At(ref index.Ref) index.Element[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.At(ref)
}

// Positions returns the position of every element in backend order.
func (s *Space[T]) Positions() []geom.Vec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return index.Positions(s.ix)
}

// Near writes into dst every element strictly closer than radius to center.
func (s *Space[T]) Near(dst *index.Results, center geom.Vec, radius float64) error {
	start := time.Now()

	s.mu.RLock()
	var err error
	if s.stale {
		dst.Reset()
		err = ErrStale
	} else {
		err = s.ix.Near(dst, center, radius)
	}
	s.mu.RUnlock()

	s.metrics.RecordQuery(dst.Len(), time.Since(start), err)

	return err
}

// Query writes into dst every element matching pred, up to maxResults.
func (s *Space[T]) Query(dst *index.Results, pred index.Predicate, maxResults int) error {
	start := time.Now()

	s.mu.RLock()
	var err error
	if s.stale {
		dst.Reset()
		err = ErrStale
	} else {
		err = s.ix.Query(dst, pred, maxResults)
	}
	s.mu.RUnlock()

	s.metrics.RecordQuery(dst.Len(), time.Since(start), err)

	return err
}

// ForEachNeighbor runs one Near query of the given radius around every
// element and hands the result to fn. Every element is visited exactly once.
//
// Elements are split into contiguous runs fanned out over at most Workers
// goroutines; with a Controller each run also holds one of its worker slots.
// The first error from a query, from fn or from ctx cancels the pass.
func (s *Space[T]) ForEachNeighbor(ctx context.Context, radius float64, fn NeighborFunc[T]) error {
	start := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stale {
		return ErrStale
	}
	if err := index.ValidateRadius(radius); err != nil {
		return err
	}

	n := s.ix.Len()
	workers := max(1, min(s.opts.workers, n))
	chunk := max(minChunk, n/(4*workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var neighbors atomic.Int64
	ctrl := s.opts.controller

	// dispatchErr is set when undispatched chunks remain.
	var dispatchErr error
	for lo := 0; lo < n; lo += chunk {
		if err := gctx.Err(); err != nil {
			dispatchErr = err
			break
		}

		hi := min(lo+chunk, n)

		g.Go(func() error {
			if err := ctrl.AcquireWorker(gctx); err != nil {
				return err
			}
			defer ctrl.ReleaseWorker()

			res := s.results.Get().(*index.Results)
			defer s.results.Put(res)

			nb := &Neighborhood[T]{ix: s.ix}

			found := 0
			for i := lo; i < hi; i++ {
				if (i-lo)%ctxCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}

				ref := index.Ref(i)
				e := s.ix.At(ref)
				if err := s.ix.Near(res, e.Pos, radius); err != nil {
					return err
				}
				found += res.Len()

				nb.Ref, nb.Element, nb.Refs = ref, e, res.Refs()
				if err := fn(nb); err != nil {
					return err
				}
			}
			neighbors.Add(int64(found))

			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = dispatchErr
	}

	s.metrics.RecordFanout(n, int(neighbors.Load()), time.Since(start), err)
	s.logger.LogFanout(ctx, n, int(neighbors.Load()), workers, err)

	return err
}
