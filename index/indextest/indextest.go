// Package indextest provides a conformance suite shared by every index backend.
//
// Each backend's tests call Run with a factory; the suite fills the index
// with seeded random points and compares every query against a brute-force
// oracle from testutil.
package indextest

import (
	"math"
	"slices"
	"testing"

	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
	"github.com/hupe1980/spatialgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Config describes the backend under test.
type Config struct {
	// World is the region points are drawn from. It must lie inside the
	// backend's accepted bounds.
	World geom.Box

	// N is the number of points per fill.
	N int

	// NearRadius is the largest radius for which Near is exact.
	NearRadius float64

	// FixedBounds is set when Bounds returns a configured world instead of
	// the exact box of inserted points.
	FixedBounds bool

	// Stale is set when queries between a mutation and Rebuild fail with index.ErrStale.
	Stale bool

	// Seed seeds the point generator. Zero picks a fixed default.
	Seed int64
}

// Factory creates an empty index for one subtest.
type Factory func(t *testing.T) index.Index[int]

// Run executes the conformance suite.
func Run(t *testing.T, newIndex Factory, cfg Config) {
	t.Helper()

	if cfg.N == 0 {
		cfg.N = 500
	}
	if cfg.Seed == 0 {
		cfg.Seed = 4711
	}

	t.Run("Empty", func(t *testing.T) {
		ix := newIndex(t)
		require.NoError(t, ix.Rebuild())
		res := index.NewResults(0)

		assert.Equal(t, 0, ix.Len())
		require.NoError(t, ix.Near(res, cfg.World.Center(), cfg.NearRadius))
		assert.Equal(t, 0, res.Len())
		require.NoError(t, ix.Query(res, index.PredicateFunc(func(geom.Vec) bool { return true }), 0))
		assert.Equal(t, 0, res.Len())
	})

	t.Run("Len", func(t *testing.T) {
		ix := newIndex(t)
		pts := fill(t, ix, cfg)

		assert.Equal(t, len(pts), ix.Len())

		ix.Clear()
		assert.Equal(t, 0, ix.Len())
	})

	t.Run("All", func(t *testing.T) {
		ix := newIndex(t)
		pts := fill(t, ix, cfg)

		got := make([]geom.Vec, 0, len(pts))
		for ref, e := range ix.All() {
			assert.Equal(t, e, ix.At(ref))
			got = append(got, e.Pos)
		}
		assert.Equal(t, testutil.SortedPositions(pts), testutil.SortedPositions(got))

		// The sequence is restartable.
		var again int
		for range ix.All() {
			again++
		}
		assert.Equal(t, len(pts), again)

		// Early termination is honored.
		var first int
		for range ix.All() {
			first++
			break
		}
		assert.Equal(t, 1, first)
	})

	t.Run("NearMatchesBruteForce", func(t *testing.T) {
		ix := newIndex(t)
		pts := fill(t, ix, cfg)
		rng := testutil.NewRNG(cfg.Seed + 1)
		res := index.NewResults(0)

		for _, r := range []float64{0, cfg.NearRadius / 4, cfg.NearRadius / 2, cfg.NearRadius} {
			for _, c := range rng.Points(25, cfg.World) {
				require.NoError(t, ix.Near(res, c, r))
				want := testutil.Select(pts, testutil.BruteForceWithin(pts, c, r))
				assert.Equal(t, want, positions(ix, res), "center %s radius %g", c, r)
			}
		}
	})

	t.Run("QueryWithinAnyRadius", func(t *testing.T) {
		ix := newIndex(t)
		pts := fill(t, ix, cfg)
		rng := testutil.NewRNG(cfg.Seed + 2)
		res := index.NewResults(0)

		for _, r := range []float64{cfg.NearRadius, 3 * cfg.NearRadius, cfg.World.Width} {
			for _, c := range rng.Points(10, cfg.World) {
				require.NoError(t, ix.Query(res, index.Near(c, r), 0))
				want := testutil.Select(pts, testutil.BruteForceWithin(pts, c, r))
				assert.Equal(t, want, positions(ix, res), "center %s radius %g", c, r)
			}
		}
	})

	t.Run("QueryBox", func(t *testing.T) {
		ix := newIndex(t)
		pts := fill(t, ix, cfg)
		rng := testutil.NewRNG(cfg.Seed + 3)
		res := index.NewResults(0)

		for range 20 {
			b := geom.BoxFromCorners(rng.Point(cfg.World), rng.Point(cfg.World))
			require.NoError(t, ix.Query(res, index.InBox{Box: b}, 0))
			want := testutil.Select(pts, testutil.BruteForce(pts, b.Contains))
			assert.Equal(t, want, positions(ix, res), "box %s", b)
		}
	})

	t.Run("QueryUnbounded", func(t *testing.T) {
		ix := newIndex(t)
		pts := fill(t, ix, cfg)
		res := index.NewResults(0)
		mid := cfg.World.Center().X
		pred := func(p geom.Vec) bool { return p.X < mid }

		require.NoError(t, ix.Query(res, index.PredicateFunc(pred), 0))
		assert.Equal(t, testutil.Select(pts, testutil.BruteForce(pts, pred)), positions(ix, res))
	})

	t.Run("QueryMaxResults", func(t *testing.T) {
		ix := newIndex(t)
		fill(t, ix, cfg)
		res := index.NewResults(0)
		all := index.PredicateFunc(func(geom.Vec) bool { return true })

		require.NoError(t, ix.Query(res, all, 7))
		assert.Equal(t, 7, res.Len())

		require.NoError(t, ix.Query(res, index.InBox{Box: cfg.World}, 3))
		assert.Equal(t, 3, res.Len())

		require.NoError(t, ix.Query(res, all, 0))
		assert.Equal(t, ix.Len(), res.Len())

		for _, ref := range res.Refs() {
			assert.True(t, cfg.World.Contains(ix.At(ref).Pos))
		}
	})

	t.Run("FixedResultsOverflow", func(t *testing.T) {
		ix := newIndex(t)
		fill(t, ix, cfg)
		res := index.NewResults(2)

		err := ix.Query(res, index.PredicateFunc(func(geom.Vec) bool { return true }), 0)
		require.ErrorIs(t, err, index.ErrCapacityExceeded)

		var ce *index.CapacityError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "results", ce.Resource)
		assert.Equal(t, 2, res.Len())
	})

	t.Run("RebuildIdempotent", func(t *testing.T) {
		ix := newIndex(t)
		fill(t, ix, cfg)
		c := cfg.World.Center()
		res := index.NewResults(0)

		require.NoError(t, ix.Near(res, c, cfg.NearRadius))
		first := positions(ix, res)

		require.NoError(t, ix.Rebuild())
		require.NoError(t, ix.Near(res, c, cfg.NearRadius))
		assert.Equal(t, first, positions(ix, res))

		// Clear and reinsert the same set.
		ix.Clear()
		pts := testutil.NewRNG(cfg.Seed).Points(cfg.N, cfg.World)
		for i, p := range pts {
			require.NoError(t, ix.Insert(index.Element[int]{Pos: p, Data: i}))
		}
		require.NoError(t, ix.Rebuild())
		require.NoError(t, ix.Near(res, c, cfg.NearRadius))
		assert.Equal(t, first, positions(ix, res))
	})

	t.Run("PayloadPreserved", func(t *testing.T) {
		ix := newIndex(t)
		pts := fill(t, ix, cfg)

		for _, e := range ix.All() {
			require.GreaterOrEqual(t, e.Data, 0)
			require.Less(t, e.Data, len(pts))
			assert.Equal(t, pts[e.Data], e.Pos)
		}
	})

	t.Run("RefsDenseInInsertionOrder", func(t *testing.T) {
		ix := newIndex(t)
		pts := fill(t, ix, cfg)

		for i := range pts {
			assert.Equal(t, i, ix.At(index.Ref(i)).Data)
		}
	})

	t.Run("Bounds", func(t *testing.T) {
		ix := newIndex(t)
		pts := fill(t, ix, cfg)

		if cfg.FixedBounds {
			before := ix.Bounds()
			ix.Clear()
			assert.Equal(t, before, ix.Bounds())
			return
		}

		want := geom.BoxOf(pts[0])
		for _, p := range pts[1:] {
			want = want.Extend(p)
		}
		assert.Equal(t, want, ix.Bounds())
	})

	t.Run("NonFinitePositionRejected", func(t *testing.T) {
		ix := newIndex(t)
		nan := geom.V(cfg.World.Center().X, math.NaN())

		err := ix.Insert(index.Element[int]{Pos: nan})
		require.ErrorIs(t, err, index.ErrOutOfBounds)
		assert.Equal(t, 0, ix.Len())
	})

	if cfg.Stale {
		t.Run("StaleAfterMutation", func(t *testing.T) {
			ix := newIndex(t)
			fill(t, ix, cfg)
			res := index.NewResults(0)

			require.NoError(t, ix.Insert(index.Element[int]{Pos: cfg.World.Center(), Data: -1}))
			assert.ErrorIs(t, ix.Near(res, cfg.World.Center(), cfg.NearRadius), index.ErrStale)
			assert.ErrorIs(t, ix.Query(res, index.InBox{Box: cfg.World}, 0), index.ErrStale)

			require.NoError(t, ix.Rebuild())
			assert.NoError(t, ix.Near(res, cfg.World.Center(), cfg.NearRadius))
		})
	}
}

// fill inserts cfg.N seeded points with their index as payload and rebuilds.
func fill(t *testing.T, ix index.Index[int], cfg Config) []geom.Vec {
	t.Helper()

	pts := testutil.NewRNG(cfg.Seed).Points(cfg.N, cfg.World)
	for i, p := range pts {
		require.NoError(t, ix.Insert(index.Element[int]{Pos: p, Data: i}))
	}
	require.NoError(t, ix.Rebuild())

	return pts
}

func positions(ix index.Index[int], res *index.Results) []geom.Vec {
	out := make([]geom.Vec, 0, res.Len())
	for _, e := range index.Collect(ix, res) {
		out = append(out, e.Pos)
	}
	slices.SortFunc(out, geom.Compare)
	return out
}
