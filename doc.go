// Package spatialgo provides per-frame 2D spatial indexes for simulations and games.
//
// A Space wraps one of four backends and drives it through the frame
// lifecycle: clear, insert every live element, rebuild, then answer any
// number of neighborhood queries until the next frame.
//
// # Quick Start
//
//	sp, err := spatialgo.Hash[*sim.Body](50).Build()
//	if err != nil {
//	    return err
//	}
//
//	for frame := range frames {
//	    if _, err := sp.Load(ctx, frame.Elements()); err != nil {
//	        return err
//	    }
//	    res := index.NewResults(0)
//	    _ = sp.Near(res, geom.V(120, 80), 40)
//	}
//
// # Backends
//
//	Grid[T](w, h)   fixed N×N lattice of fixed-capacity bins over a bounded world
//	Hash[T](cell)   unbounded world, hashed cells counting-sorted into a flat table
//	Linear[T]()     unindexed baseline, always exact
//	BVH[T]()        R-tree bulk-loaded per frame, exact for any radius
//
// Grid and Hash answer Near exactly for radii up to their cell size. For
// larger radii use Query with index.Near, which is exact on every backend.
//
// # Realistic Workloads
//
// ForEachNeighbor issues one radius query per live element and fans the
// queries out over a bounded set of goroutines:
//
//	err := sp.ForEachNeighbor(ctx, 25, func(nb *spatialgo.Neighborhood[*sim.Body]) error {
//	    for _, other := range nb.Neighbors() {
//	        // steer nb.Element.Data using other
//	    }
//	    return nil
//	})
//
// # Error Handling
//
// Capacity and bounds violations are reported as ErrCapacityExceeded and
// ErrOutOfBounds and leave the space intact. Load can either stop at the
// first violation (FailFast) or skip and count them (DropAndCount). Queries
// issued between a mutation and the next rebuild fail with ErrStale.
package spatialgo
