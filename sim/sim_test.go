package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialgo"
	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
)

func TestBody(t *testing.T) {
	b := Body{Vel: geom.V(3, 4), Mass: 2}

	assert.Equal(t, 5.0, b.Speed())
	assert.Equal(t, 10.0, b.Inertia())
	assert.Equal(t, 25.0, b.KineticEnergy())
	assert.InDelta(t, math.Atan2(4, 3), b.Heading(), 1e-12)

	west := Body{Vel: geom.V(-1, 0.01)}
	assert.InDelta(t, -0.02, west.TurnTo(-math.Pi+0.01), 1e-9)
	assert.InDelta(t, math.Pi/2, Body{Vel: geom.V(1, 0)}.TurnTo(5*math.Pi/2), 1e-12)

	b.ApplyForce(geom.V(2, 0), 0.5)
	assert.Equal(t, geom.V(3.5, 4), b.Vel)

	massless := Body{}
	massless.ApplyForce(geom.V(1, 1), 1)
	assert.Equal(t, geom.V(1, 1), massless.Vel)
}

func TestFPSCounter(t *testing.T) {
	var published [][3]float64
	start := time.Unix(0, 0)

	f := &FPSCounter{interval: 100 * time.Millisecond, onRefresh: func(lo, cur, hi float64) {
		published = append(published, [3]float64{lo, cur, hi})
	}}
	f.Restart(start)

	now := start
	for _, d := range []time.Duration{20, 50, 25, 10} {
		now = now.Add(d * time.Millisecond)
		f.Tick(now)
	}

	assert.Equal(t, 100.0, f.Current())
	require.Len(t, published, 1)
	assert.Equal(t, 1, f.Refreshes())
	assert.InDelta(t, 20, f.Min(), 1e-9)
	assert.InDelta(t, 100, f.Max(), 1e-9)
	assert.InDelta(t, 20, published[0][0], 1e-9)
}

func TestFlock(t *testing.T) {
	ctx := context.Background()

	backends := map[string]func() *spatialgo.Space[int]{
		"grid":   func() *spatialgo.Space[int] { return spatialgo.Grid[int](1000, 1000).Resolution(40).MustBuild() },
		"hash":   func() *spatialgo.Space[int] { return spatialgo.Hash[int](25).MustBuild() },
		"linear": func() *spatialgo.Space[int] { return spatialgo.Linear[int]().MustBuild() },
		"bvh":    func() *spatialgo.Space[int] { return spatialgo.BVH[int]().MustBuild() },
	}

	// Every backend steers identically: the flock only depends on neighbor sets.
	var reference []Agent

	for _, name := range []string{"linear", "grid", "hash", "bvh"} {
		t.Run(name, func(t *testing.T) {
			f, err := NewFlock(backends[name](), 400, 7)
			require.NoError(t, err)
			assert.Equal(t, 400, f.Len())

			for range 5 {
				stats, err := f.Step(ctx)
				require.NoError(t, err)
				assert.Equal(t, 400, stats.Queries)
				assert.Zero(t, stats.Frame.Dropped)
				assert.GreaterOrEqual(t, stats.Isolated, 0)
				assert.LessOrEqual(t, stats.Isolated, 400)
				assert.GreaterOrEqual(t, stats.Turn, 0.0)
				assert.LessOrEqual(t, stats.Turn, math.Pi)
			}

			w := f.Params().World
			for _, a := range f.Agents() {
				assert.True(t, a.Pos.X >= w.Left && a.Pos.X < w.Right(), "x %v", a.Pos.X)
				assert.True(t, a.Pos.Y >= w.Top && a.Pos.Y < w.Bottom(), "y %v", a.Pos.Y)
				assert.LessOrEqual(t, a.Speed(), f.Params().MaxSpeed+1e-9)
			}

			if reference == nil {
				reference = append([]Agent(nil), f.Agents()...)
				return
			}
			for i, a := range f.Agents() {
				assert.InDelta(t, reference[i].Pos.X, a.Pos.X, 1e-6)
				assert.InDelta(t, reference[i].Pos.Y, a.Pos.Y, 1e-6)
			}
		})
	}
}

func TestFlockSteering(t *testing.T) {
	ctx := context.Background()

	t.Run("PairCounts", func(t *testing.T) {
		sp := spatialgo.Linear[int]().MustBuild()
		f, err := NewFlockFrom(sp, []Agent{
			{Pos: geom.V(100, 100), Body: Body{Vel: geom.V(1, 0), Mass: 1}},
			{Pos: geom.V(105, 100), Body: Body{Vel: geom.V(1, 0), Mass: 1}},
			{Pos: geom.V(900, 900), Body: Body{Vel: geom.V(0, 1), Mass: 1}},
		})
		require.NoError(t, err)

		stats, err := f.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Pairs)
		assert.Equal(t, 1, stats.Isolated)

		// The isolated agent coasts unchanged.
		assert.Equal(t, geom.V(900, 901), f.Agents()[2].Pos)
	})

	t.Run("SeparationPushesApart", func(t *testing.T) {
		sp := spatialgo.Linear[int]().MustBuild()
		f, err := NewFlockFrom(sp, []Agent{
			{Pos: geom.V(500, 500), Body: Body{Mass: 1}},
			{Pos: geom.V(502, 500), Body: Body{Mass: 1}},
		}, func(p *Params) {
			p.Alignment = 0
			p.Cohesion = 0
		})
		require.NoError(t, err)

		stats, err := f.Step(ctx)
		require.NoError(t, err)

		a := f.Agents()
		assert.Less(t, a[0].Vel.X, 0.0)
		assert.Greater(t, a[1].Vel.X, 0.0)

		// Both start with heading 0; only the left agent reverses.
		assert.InDelta(t, math.Pi/2, stats.Turn, 1e-9)
		assert.Greater(t, a[1].Pos.X-a[0].Pos.X, 2.0)
	})

	t.Run("BouncesOffEdges", func(t *testing.T) {
		sp := spatialgo.Grid[int](100, 100).Resolution(4).MustBuild()
		f, err := NewFlockFrom(sp, []Agent{
			{Pos: geom.V(99, 50), Body: Body{Vel: geom.V(3, 0), Mass: 1}},
		}, func(p *Params) {
			p.World = geom.NewBox(0, 0, 100, 100)
		})
		require.NoError(t, err)

		for range 3 {
			_, err = f.Step(ctx)
			require.NoError(t, err)
		}

		a := f.Agents()[0]
		assert.Less(t, a.Vel.X, 0.0)
		assert.Less(t, a.Pos.X, 100.0)
	})

	t.Run("DroppedAgentsCoast", func(t *testing.T) {
		sp := spatialgo.Linear[int]().
			Capacity(1).
			Options(spatialgo.WithDropPolicy(spatialgo.DropAndCount)).
			MustBuild()
		f, err := NewFlockFrom(sp, []Agent{
			{Pos: geom.V(10, 10), Body: Body{Vel: geom.V(1, 1), Mass: 1}},
			{Pos: geom.V(20, 20), Body: Body{Vel: geom.V(1, 1), Mass: 1}},
		})
		require.NoError(t, err)

		stats, err := f.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Frame.Dropped)
		assert.Equal(t, geom.V(21, 21), f.Agents()[1].Pos)
	})

	t.Run("Within", func(t *testing.T) {
		sp := spatialgo.Hash[int](50).MustBuild()
		f, err := NewFlockFrom(sp, []Agent{
			{Pos: geom.V(10, 10), Body: Body{Mass: 1}},
			{Pos: geom.V(12, 10), Body: Body{Mass: 1}},
			{Pos: geom.V(300, 300), Body: Body{Mass: 1}},
		})
		require.NoError(t, err)

		_, err = f.Step(ctx)
		require.NoError(t, err)

		near, err := f.Within(geom.V(11, 10), 100)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 1}, near.ToArray())
		assert.Equal(t, 2, f.Nearest(geom.V(290, 290)))
		assert.Greater(t, f.KineticEnergy(), 0.0)
		assert.Equal(t, 3, sp.Len())
	})

	t.Run("InvalidParams", func(t *testing.T) {
		sp := spatialgo.Linear[int]().MustBuild()

		_, err := NewFlock(sp, 10, 1, func(p *Params) { p.Radius = 0 })
		assert.ErrorIs(t, err, index.ErrInvalidConfiguration)

		_, err = NewFlock(sp, 10, 1, func(p *Params) { p.SeparationRadius = 100 })
		assert.ErrorIs(t, err, index.ErrInvalidConfiguration)

		_, err = NewFlock(nil, 10, 1)
		assert.ErrorIs(t, err, spatialgo.ErrNilIndex)
	})
}

func BenchmarkFlockStep(b *testing.B) {
	ctx := context.Background()
	f, err := NewFlock(spatialgo.Hash[int](25).MustBuild(), 5000, 1)
	require.NoError(b, err)

	for b.Loop() {
		if _, err := f.Step(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
