package index

import "github.com/hupe1980/spatialgo/geom"

// Results is a caller-owned buffer of Refs filled by Query and Near.
//
// A Results created with capacity 0 grows as needed and is reused across
// queries without reallocating once warm. A Results with a positive
// capacity is fixed: adding past it fails with a *CapacityError.
//
// A Results must not be shared between goroutines; use one per worker.
type Results struct {
	refs  []Ref
	fixed int
}

// NewResults creates a result buffer. capacity > 0 makes it fixed-size.
func NewResults(capacity int) *Results {
	r := &Results{}
	if capacity > 0 {
		r.refs = make([]Ref, 0, capacity)
		r.fixed = capacity
	}
	return r
}

// Add appends ref. It fails only for fixed buffers that are full.
func (r *Results) Add(ref Ref) error {
	if r.fixed > 0 && len(r.refs) >= r.fixed {
		return &CapacityError{Resource: "results", Capacity: r.fixed}
	}
	r.refs = append(r.refs, ref)
	return nil
}

// Reset empties the buffer and keeps its storage.
func (r *Results) Reset() {
	r.refs = r.refs[:0]
}

// Refs returns the collected refs. The slice aliases the buffer and is
// overwritten by the next query.
func (r *Results) Refs() []Ref {
	return r.refs
}

// Len returns the number of collected refs.
func (r *Results) Len() int {
	return len(r.refs)
}

// Cap returns the fixed capacity or 0 for a growable buffer.
func (r *Results) Cap() int {
	return r.fixed
}

// Collector applies a predicate and a result cap while a backend walks
// candidates. Backends create one per query.
type Collector struct {
	dst   *Results
	pred  Predicate
	limit int
}

// NewCollector resets dst and returns a Collector writing into it.
// limit <= 0 means unlimited.
func NewCollector(dst *Results, pred Predicate, limit int) Collector {
	dst.Reset()
	return Collector{dst: dst, pred: pred, limit: limit}
}

// Offer tests the candidate and records it when it matches.
// It returns done=true once the limit is reached; err is non-nil only when
// a fixed results buffer overflows.
func (c *Collector) Offer(ref Ref, pos geom.Vec) (done bool, err error) {
	if !c.pred.Match(pos) {
		return false, nil
	}
	if err := c.dst.Add(ref); err != nil {
		return true, err
	}
	return c.Full(), nil
}

// Full reports whether the result limit has been reached.
func (c *Collector) Full() bool {
	return c.limit > 0 && c.dst.Len() >= c.limit
}
