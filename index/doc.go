// Package index defines the capability set shared by every spatial index backend.
//
// spatialgo ships four backends:
//
//   - grid: fixed N×N lattice of fixed-capacity bins over a bounded world
//   - spatialhash: hashed cells counting-sorted into a flat bucket table each rebuild
//   - linear: unindexed list, linear scan (reference semantics and test oracle)
//   - bvh: bounding-volume hierarchy bulk-loaded on rebuild
//
// # Frame Lifecycle
//
// An index is constructed once with static options and then driven once per frame:
//
//	ix.Clear()
//	for _, e := range elements {
//	    if err := ix.Insert(e); err != nil {
//	        // CapacityExceeded or OutOfBounds: drop, clamp or abort
//	    }
//	}
//	if err := ix.Rebuild(); err != nil {
//	    return err
//	}
//	res := index.NewResults(0)
//	_ = ix.Near(res, center, radius)
//
// Rebuild happens-before every query of the frame. Backends do not lock:
// after Rebuild an index may be queried from many goroutines at once, but
// Insert, Clear and Rebuild must not run concurrently with anything else.
//
// # References
//
// Query results are Refs: slots in the backend's element arena. A Ref is
// valid until the next Clear or Rebuild; resolve it with At. Every backend
// assigns slots densely in insertion order, so the Refs of a frame are
// exactly 0 through Len()-1.
//
// # Predicates
//
// Query accepts any Predicate. Predicates that also implement Bounded expose
// a box enclosing every position they can match; backends use that box to
// prune candidates and then apply Match exactly, so bucket false positives
// never leak into results.
package index
