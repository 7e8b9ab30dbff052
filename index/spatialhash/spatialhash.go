// Package spatialhash provides a spatial hash index rebuilt every frame with
// a two-pass counting sort into one flat bucket table.
//
// Positions map to integer cells of CellSize; cells map to one of TableSize
// buckets by hashing. Unrelated cells may collide into one bucket, so every
// query applies its exact predicate to the candidates it scans.
//
// # Neighborhood Diffusion
//
// Near scans a single bucket. With Diffuse enabled (the default) Rebuild
// writes each element into the buckets of all nine cells around its own, so
// the bucket of the query cell holds every element of the 3×3 neighborhood
// and Near is exact for radii up to CellSize. With Diffuse disabled each
// element lands only in its own cell's bucket: memory drops by up to 9× and
// Near becomes an approximation that misses neighbors across cell lines.
// Query is exact in both modes.
package spatialhash

import (
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
	"github.com/hupe1980/spatialgo/internal/arena"
)

// Compile-time checks to ensure Hash satisfies required interfaces.
var _ index.Index[struct{}] = (*Hash[struct{}])(nil)
var _ index.Namer = (*Hash[struct{}])(nil)

// Options contains configuration options for the spatial hash index.
type Options struct {
	// CellSize is the side length of a hashed cell.
	CellSize float64

	// TableSize is the number of buckets.
	TableSize int

	// Capacity is the maximum number of elements (0 = growable).
	Capacity int

	// Diffuse writes each element into the buckets of its 3×3 cell neighborhood.
	Diffuse bool

	// Shuffle permutes the scatter order on every rebuild, so the order of
	// elements inside a bucket varies between rebuilds. Membership does not.
	Shuffle bool

	// Seed seeds the shuffle. Identical seeds produce identical orders.
	Seed uint64

	// QueryRadius is the largest radius the caller intends to pass to Near.
	// When set with Diffuse enabled, it is checked against CellSize.
	QueryRadius float64
}

// DefaultOptions contains the default configuration options for the spatial hash index.
var DefaultOptions = Options{
	CellSize:  50,
	TableSize: 1000,
	Diffuse:   true,
}

// cellLimit bounds cell coordinates so float-to-int conversion stays exact.
// Positions beyond it share the edge cell; exact predicates keep results correct.
const cellLimit = 1 << 30

// Hash is the spatial hash index.
type Hash[T any] struct {
	opts Options

	elems  *arena.Arena[index.Element[T]]
	cells  []geom.Cell // cell per arena slot
	bounds geom.Box

	pivots []int       // TableSize+1 prefix sums; bucket i = table[pivots[i]:pivots[i+1]]
	cursor []int       // scatter write positions, reused
	table  []index.Ref // bucket contents
	order  []uint32    // scatter order, reused
	rng    *rand.Rand

	dirty bool
	seen  sync.Pool // *roaring.Bitmap for multi-bucket de-duplication
}

// New creates a new spatial hash index.
func New[T any](optFns ...func(o *Options)) (*Hash[T], error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if err := validate(opts); err != nil {
		return nil, err
	}

	h := &Hash[T]{
		opts:   opts,
		elems:  arena.New[index.Element[T]](opts.Capacity),
		pivots: make([]int, opts.TableSize+1),
		cursor: make([]int, opts.TableSize),
		rng:    rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
	h.seen.New = func() any { return roaring.New() }

	if opts.Capacity > 0 {
		h.cells = make([]geom.Cell, 0, opts.Capacity)
		h.order = make([]uint32, 0, opts.Capacity)
	}

	return h, nil
}

func validate(o Options) error {
	if !(o.CellSize > 0) || math.IsInf(o.CellSize, 0) {
		return &index.ConfigError{Field: "cell size", Value: o.CellSize, Reason: "must be positive and finite"}
	}
	if o.TableSize <= 0 || o.TableSize > math.MaxInt32 {
		return &index.ConfigError{Field: "table size", Value: o.TableSize, Reason: "must be in [1, 2^31)"}
	}
	if o.Capacity < 0 || uint64(o.Capacity) > math.MaxUint32 {
		return &index.ConfigError{Field: "capacity", Value: o.Capacity, Reason: "must be in [0, 2^32]"}
	}
	if err := index.ValidateRadius(o.QueryRadius); err != nil {
		return err
	}
	if o.Diffuse && o.QueryRadius > o.CellSize {
		return &index.ConfigError{
			Field:  "query radius",
			Value:  o.QueryRadius,
			Reason: fmt.Sprintf("exceeds cell size %g; the diffused neighborhood would miss elements", o.CellSize),
		}
	}
	return nil
}

// Name returns the backend name.
func (*Hash[T]) Name() string { return "hash" }

// Options returns the configuration of the index.
func (h *Hash[T]) Options() Options { return h.opts }

// Insert appends e. It becomes visible to queries after the next Rebuild.
func (h *Hash[T]) Insert(e index.Element[T]) error {
	if err := index.ValidatePosition(e.Pos); err != nil {
		return err
	}

	if _, err := h.elems.Append(e); err != nil {
		return &index.CapacityError{Resource: "bucket table", Capacity: h.opts.Capacity}
	}

	h.cells = append(h.cells, h.CellOf(e.Pos))
	if h.elems.Len() == 1 {
		h.bounds = geom.BoxOf(e.Pos)
	} else {
		h.bounds = h.bounds.Extend(e.Pos)
	}
	h.dirty = true

	return nil
}

// Clear drops every element. Storage is kept.
func (h *Hash[T]) Clear() {
	h.elems.Reset()
	h.cells = h.cells[:0]
	h.table = h.table[:0]
	clear(h.pivots)
	h.bounds = geom.Box{}
	h.dirty = true
}

// Rebuild counting-sorts every element into the bucket table.
func (h *Hash[T]) Rebuild() error {
	n := h.elems.Len()
	var buf [9]int

	// Pass 1: count entries per bucket, shifted by one for the prefix sum.
	clear(h.pivots)
	for _, c := range h.cells {
		for _, b := range h.bucketsOf(c, &buf) {
			h.pivots[b+1]++
		}
	}

	for i := 1; i < len(h.pivots); i++ {
		h.pivots[i] += h.pivots[i-1]
	}

	total := h.pivots[len(h.pivots)-1]
	if cap(h.table) < total {
		h.table = make([]index.Ref, total)
	}
	h.table = h.table[:total]
	copy(h.cursor, h.pivots[:len(h.cursor)])

	h.order = h.order[:0]
	for i := range n {
		h.order = append(h.order, uint32(i))
	}
	if h.opts.Shuffle {
		h.rng.Shuffle(n, func(i, j int) { h.order[i], h.order[j] = h.order[j], h.order[i] })
	}

	// Pass 2: scatter.
	for _, slot := range h.order {
		for _, b := range h.bucketsOf(h.cells[slot], &buf) {
			h.table[h.cursor[b]] = index.Ref(slot)
			h.cursor[b]++
		}
	}

	h.dirty = false

	return nil
}

// Len returns the number of stored elements.
func (h *Hash[T]) Len() int { return h.elems.Len() }

// At resolves a Ref.
func (h *Hash[T]) At(ref index.Ref) index.Element[T] { return h.elems.At(uint32(ref)) }

// Bounds returns the bounding box of every inserted position.
func (h *Hash[T]) Bounds() geom.Box { return h.bounds }

// All yields every element in insertion order.
func (h *Hash[T]) All() iter.Seq2[index.Ref, index.Element[T]] {
	return func(yield func(index.Ref, index.Element[T]) bool) {
		for i, e := range h.elems.Items() {
			if !yield(index.Ref(i), e) {
				return
			}
		}
	}
}

// Near writes into dst every element in center's bucket strictly closer
// than radius to center.
func (h *Hash[T]) Near(dst *index.Results, center geom.Vec, radius float64) error {
	dst.Reset()

	if h.dirty {
		return index.ErrStale
	}
	if err := index.ValidatePosition(center); err != nil {
		return err
	}
	if err := index.ValidateRadius(radius); err != nil {
		return err
	}

	r2 := radius * radius
	for _, ref := range h.Bucket(h.BucketOf(h.CellOf(center))) {
		if h.elems.At(uint32(ref)).Pos.DistanceSq(center) < r2 {
			if err := dst.Add(ref); err != nil {
				return err
			}
		}
	}

	return nil
}

// Query writes into dst every element matching pred.
//
// A bounded predicate whose box lies within one diffused neighborhood scans
// a single bucket. Larger boxes scan the buckets of every covered cell,
// de-duplicating refs. Unbounded predicates, or boxes covering more cells
// than there are buckets or elements, scan all elements.
func (h *Hash[T]) Query(dst *index.Results, pred index.Predicate, maxResults int) error {
	col := index.NewCollector(dst, pred, maxResults)

	if h.dirty {
		return index.ErrStale
	}

	box, ok := index.BoundsOf(pred)
	if !ok || !box.IsFinite() {
		return h.scan(&col)
	}

	lo, hi := h.CellOf(box.Min()), h.CellOf(box.Max())

	if h.opts.Diffuse {
		if c := h.CellOf(box.Center()); c.Adjacent(lo) && c.Adjacent(hi) {
			return h.scanBucket(&col, h.BucketOf(c))
		}
	}

	cells := (int64(hi.X-lo.X) + 1) * (int64(hi.Y-lo.Y) + 1)
	if cells > int64(h.opts.TableSize) || cells > int64(h.elems.Len()) {
		return h.scan(&col)
	}

	buckets := h.seen.Get().(*roaring.Bitmap)
	refs := h.seen.Get().(*roaring.Bitmap)
	defer func() {
		buckets.Clear()
		refs.Clear()
		h.seen.Put(buckets)
		h.seen.Put(refs)
	}()

	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			b := h.BucketOf(geom.Cell{X: x, Y: y})
			if !buckets.CheckedAdd(uint32(b)) {
				continue
			}
			for _, ref := range h.Bucket(b) {
				if !refs.CheckedAdd(uint32(ref)) {
					continue
				}
				done, err := col.Offer(ref, h.elems.At(uint32(ref)).Pos)
				if err != nil || done {
					return err
				}
			}
		}
	}

	return nil
}

func (h *Hash[T]) scan(col *index.Collector) error {
	for i, e := range h.elems.Items() {
		done, err := col.Offer(index.Ref(i), e.Pos)
		if err != nil || done {
			return err
		}
	}
	return nil
}

func (h *Hash[T]) scanBucket(col *index.Collector, b int) error {
	for _, ref := range h.Bucket(b) {
		done, err := col.Offer(ref, h.elems.At(uint32(ref)).Pos)
		if err != nil || done {
			return err
		}
	}
	return nil
}

// CellOf returns the cell of p. Coordinates beyond ±2^30 cells share the edge cell.
func (h *Hash[T]) CellOf(p geom.Vec) geom.Cell {
	return geom.Cell{X: axis(p.X, h.opts.CellSize), Y: axis(p.Y, h.opts.CellSize)}
}

func axis(v, size float64) int {
	f := math.Floor(v / size)
	switch {
	case f > cellLimit:
		return cellLimit
	case f < -cellLimit:
		return -cellLimit
	default:
		return int(f)
	}
}

// BucketOf returns the bucket index of cell c.
func (h *Hash[T]) BucketOf(c geom.Cell) int {
	return BucketIndex(c, h.opts.TableSize)
}

// BucketIndex hashes cell c into [0, n).
func BucketIndex(c geom.Cell, n int) int {
	x := uint64(int64(c.X))
	y := uint64(int64(c.Y))
	return int((x*1640531513 ^ y*2654435789) % uint64(n))
}

// bucketsOf returns the distinct buckets an element of cell c is written to.
func (h *Hash[T]) bucketsOf(c geom.Cell, buf *[9]int) []int {
	if !h.opts.Diffuse {
		buf[0] = h.BucketOf(c)
		return buf[:1]
	}

	out := buf[:0]
	for dy := -1; dy <= 1; dy++ {
	next:
		for dx := -1; dx <= 1; dx++ {
			b := h.BucketOf(c.Add(dx, dy))
			for _, seen := range out {
				if seen == b {
					continue next
				}
			}
			out = append(out, b)
		}
	}
	return out
}

// Pivots returns the prefix-sum array. It aliases index storage.
func (h *Hash[T]) Pivots() []int { return h.pivots }

// Bucket returns the refs stored in bucket i. The slice aliases index storage.
func (h *Hash[T]) Bucket(i int) []index.Ref {
	if i < 0 || i >= h.opts.TableSize {
		return nil
	}
	return h.table[h.pivots[i]:h.pivots[i+1]]
}

// Stats is a snapshot of bucket table usage.
type Stats struct {
	Len          int
	Entries      int
	EmptyBuckets int
	MaxBucket    int
}

func (s Stats) String() string {
	return fmt.Sprintf("SpatialHash{len: %d, entries: %d, empty: %d, max: %d}",
		s.Len, s.Entries, s.EmptyBuckets, s.MaxBucket)
}

// Stats returns bucket table usage as of the last rebuild.
func (h *Hash[T]) Stats() Stats {
	s := Stats{Len: h.elems.Len(), Entries: len(h.table)}
	for i := 0; i < h.opts.TableSize; i++ {
		size := h.pivots[i+1] - h.pivots[i]
		if size == 0 {
			s.EmptyBuckets++
		}
		s.MaxBucket = max(s.MaxBucket, size)
	}
	return s
}
