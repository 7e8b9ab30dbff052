package spatialgo_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialgo"
	"github.com/hupe1980/spatialgo/index"
	"github.com/hupe1980/spatialgo/index/bvh"
	"github.com/hupe1980/spatialgo/index/grid"
	"github.com/hupe1980/spatialgo/index/spatialhash"
)

func TestBuilder(t *testing.T) {
	t.Run("Grid", func(t *testing.T) {
		sp, err := spatialgo.Grid[string](400, 200).
			Resolution(8).
			BinCapacity(3).
			Clamp().
			QueryRadius(20).
			Build()
		require.NoError(t, err)

		g, ok := sp.Backend().(*grid.Grid[string])
		require.True(t, ok)
		opts := g.Options()
		assert.Equal(t, 400.0, opts.Width)
		assert.Equal(t, 200.0, opts.Height)
		assert.Equal(t, 8, opts.Resolution)
		assert.Equal(t, 3, opts.BinCapacity)
		assert.Equal(t, index.Clamp, opts.OutOfBounds)
	})

	t.Run("GridInvalid", func(t *testing.T) {
		_, err := spatialgo.Grid[string](100, 100).Resolution(0).Build()
		assert.ErrorIs(t, err, spatialgo.ErrInvalidConfiguration)
	})

	t.Run("Hash", func(t *testing.T) {
		sp, err := spatialgo.Hash[string](10).
			TableSize(64).
			Capacity(100).
			Diffuse(false).
			Shuffle(7).
			Build()
		require.NoError(t, err)

		h, ok := sp.Backend().(*spatialhash.Hash[string])
		require.True(t, ok)
		opts := h.Options()
		assert.Equal(t, 10.0, opts.CellSize)
		assert.Equal(t, 64, opts.TableSize)
		assert.Equal(t, 100, opts.Capacity)
		assert.False(t, opts.Diffuse)
		assert.True(t, opts.Shuffle)
		assert.Equal(t, uint64(7), opts.Seed)
	})

	t.Run("BVH", func(t *testing.T) {
		sp, err := spatialgo.BVH[string]().FanOut(4, 8).Build()
		require.NoError(t, err)
		_, ok := sp.Backend().(*bvh.BVH[string])
		assert.True(t, ok)

		_, err = spatialgo.BVH[string]().FanOut(4, 5).Build()
		assert.ErrorIs(t, err, spatialgo.ErrInvalidConfiguration)
	})

	t.Run("Immutable", func(t *testing.T) {
		base := spatialgo.Linear[int]()
		small := base.Capacity(1)

		a := base.MustBuild()
		b := small.MustBuild()

		assert.NoError(t, a.Insert(index.E[int](1, 1)))
		assert.NoError(t, a.Insert(index.E[int](2, 2)))
		assert.NoError(t, b.Insert(index.E[int](1, 1)))
		assert.ErrorIs(t, b.Insert(index.E[int](2, 2)), spatialgo.ErrCapacityExceeded)
	})

	t.Run("LoggerOption", func(t *testing.T) {
		var buf bytes.Buffer
		logger := spatialgo.NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		sp := spatialgo.Linear[int]().Logger(logger).MustBuild()
		require.NoError(t, sp.Rebuild(t.Context()))

		assert.Contains(t, buf.String(), "rebuild completed")
		assert.Contains(t, buf.String(), "backend=linear")
		assert.Contains(t, buf.String(), "generation=1")
	})

	t.Run("MustBuildPanics", func(t *testing.T) {
		assert.Panics(t, func() {
			spatialgo.Hash[int](0).MustBuild()
		})
	})
}

func TestDropPolicy(t *testing.T) {
	for _, p := range []spatialgo.DropPolicy{spatialgo.FailFast, spatialgo.DropAndCount} {
		got, err := spatialgo.ParseDropPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := spatialgo.ParseDropPolicy("sometimes")
	assert.ErrorIs(t, err, spatialgo.ErrInvalidConfiguration)
	assert.Equal(t, "DropPolicy(9)", spatialgo.DropPolicy(9).String())
}
