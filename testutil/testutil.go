package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/spatialgo/geom"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Point returns a uniform random point inside the half-open box.
func (r *RNG) Point(world geom.Box) geom.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pointLocked(world)
}

func (r *RNG) pointLocked(world geom.Box) geom.Vec {
	lo, hi := world.Min(), world.Max()
	return geom.V(
		lo.X+r.rand.Float64()*(hi.X-lo.X),
		lo.Y+r.rand.Float64()*(hi.Y-lo.Y),
	)
}

// Points generates num uniform random points inside world.
// Locks only once per call (preferred over calling Point in a loop).
func (r *RNG) Points(num int, world geom.Box) []geom.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()

	pts := make([]geom.Vec, num)
	for i := range pts {
		pts[i] = r.pointLocked(world)
	}
	return pts
}

// ClusteredPoints generates points gathered around random centroids with
// Gaussian spread, clamped into world. Dense clusters stress bin capacity
// and bucket skew the way flocks do.
func (r *RNG) ClusteredPoints(num int, world geom.Box, clusters int, spread float64) []geom.Vec {
	centroids := r.Points(clusters, world)

	r.mu.Lock()
	defer r.mu.Unlock()

	lo := world.Min()
	hi := world.Max()
	// Keep clamped points inside the half-open world.
	hi = geom.V(math.Nextafter(hi.X, lo.X), math.Nextafter(hi.Y, lo.Y))

	pts := make([]geom.Vec, num)
	for i := range pts {
		c := centroids[i%clusters]
		p := geom.V(c.X+r.rand.NormFloat64()*spread, c.Y+r.rand.NormFloat64()*spread)
		pts[i] = p.Clamp(lo, hi)
	}
	return pts
}

// Velocities generates num random velocity vectors with length in [0, maxSpeed).
func (r *RNG) Velocities(num int, maxSpeed float64) []geom.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]geom.Vec, num)
	for i := range out {
		out[i] = geom.FromAngle(r.rand.Float64() * 2 * math.Pi).Scale(r.rand.Float64() * maxSpeed)
	}
	return out
}

// Shuffle permutes pts in place.
func (r *RNG) Shuffle(pts []geom.Vec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })
}

// BruteForceWithin returns the sorted indices of every point strictly
// closer than radius to center.
func BruteForceWithin(pts []geom.Vec, center geom.Vec, radius float64) []int {
	return BruteForce(pts, func(p geom.Vec) bool { return center.Near(p, radius) })
}

// BruteForce returns the sorted indices of every point matching pred.
func BruteForce(pts []geom.Vec, pred func(geom.Vec) bool) []int {
	out := []int{}
	for i, p := range pts {
		if pred(p) {
			out = append(out, i)
		}
	}
	return out
}

// SortedPositions returns a sorted copy of pts, for order-insensitive comparison.
func SortedPositions(pts []geom.Vec) []geom.Vec {
	out := slices.Clone(pts)
	slices.SortFunc(out, geom.Compare)
	return out
}

// Select returns pts[i] for every index in idx, sorted.
func Select(pts []geom.Vec, idx []int) []geom.Vec {
	out := make([]geom.Vec, 0, len(idx))
	for _, i := range idx {
		out = append(out, pts[i])
	}
	slices.SortFunc(out, geom.Compare)
	return out
}

// ComputeRecall returns the share of groundTruth positions present in approximate.
// Both inputs are treated as multisets.
func ComputeRecall(groundTruth, approximate []geom.Vec) float64 {
	if len(groundTruth) == 0 {
		return 1.0
	}

	have := make(map[geom.Vec]int, len(approximate))
	for _, p := range approximate {
		have[p]++
	}

	var hits int
	for _, p := range groundTruth {
		if have[p] > 0 {
			have[p]--
			hits++
		}
	}

	return float64(hits) / float64(len(groundTruth))
}
