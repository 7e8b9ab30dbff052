package index

import (
	"errors"
	"math"
	"testing"

	"github.com/hupe1980/spatialgo/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResults(t *testing.T) {
	t.Run("Growable", func(t *testing.T) {
		r := NewResults(0)
		for i := 0; i < 1000; i++ {
			require.NoError(t, r.Add(Ref(i)))
		}
		assert.Equal(t, 1000, r.Len())
		assert.Equal(t, 0, r.Cap())

		r.Reset()
		assert.Equal(t, 0, r.Len())
	})

	t.Run("FixedOverflow", func(t *testing.T) {
		r := NewResults(2)
		require.NoError(t, r.Add(1))
		require.NoError(t, r.Add(2))

		err := r.Add(3)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		var ce *CapacityError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "results", ce.Resource)
		assert.Equal(t, 2, ce.Capacity)
		assert.Equal(t, []Ref{1, 2}, r.Refs())
	})
}

func TestCollector(t *testing.T) {
	t.Run("StopsAtLimit", func(t *testing.T) {
		r := NewResults(0)
		c := NewCollector(r, PredicateFunc(func(geom.Vec) bool { return true }), 2)

		done, err := c.Offer(0, geom.V(0, 0))
		require.NoError(t, err)
		assert.False(t, done)

		done, err = c.Offer(1, geom.V(0, 0))
		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, 2, r.Len())
	})

	t.Run("ResetsDestination", func(t *testing.T) {
		r := NewResults(0)
		_ = r.Add(7)

		c := NewCollector(r, Near(geom.V(0, 0), 1), 0)
		done, err := c.Offer(3, geom.V(5, 5))
		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, 0, r.Len())
	})
}

func TestPredicates(t *testing.T) {
	t.Run("WithinIsStrict", func(t *testing.T) {
		w := Near(geom.V(500, 500), 50)

		assert.True(t, w.Match(geom.V(525, 500)))
		assert.False(t, w.Match(geom.V(550, 500)))
		assert.Equal(t, geom.NewBox(450, 450, 100, 100), w.Bounds())
	})

	t.Run("InBox", func(t *testing.T) {
		b := InBox{Box: geom.NewBox(0, 0, 10, 10)}

		assert.True(t, b.Match(geom.V(0, 0)))
		assert.False(t, b.Match(geom.V(10, 0)))
	})

	t.Run("BoundsOf", func(t *testing.T) {
		_, ok := BoundsOf(PredicateFunc(func(geom.Vec) bool { return true }))
		assert.False(t, ok)

		box, ok := BoundsOf(Near(geom.V(0, 0), 5))
		assert.True(t, ok)
		assert.Equal(t, geom.NewBox(-5, -5, 10, 10), box)
	})

	t.Run("AndIntersectsBounds", func(t *testing.T) {
		p := And(
			InBox{Box: geom.NewBox(0, 0, 10, 10)},
			PredicateFunc(func(v geom.Vec) bool { return v.X > 2 }),
			InBox{Box: geom.NewBox(5, 5, 10, 10)},
		)

		box, ok := BoundsOf(p)
		require.True(t, ok)
		assert.Equal(t, geom.NewBox(5, 5, 5, 5), box)

		assert.True(t, p.Match(geom.V(6, 6)))
		assert.False(t, p.Match(geom.V(4, 6)))
	})
}

func TestErrors(t *testing.T) {
	t.Run("Sentinels", func(t *testing.T) {
		assert.True(t, errors.Is(&CapacityError{Resource: "bin", Capacity: 3}, ErrCapacityExceeded))
		assert.True(t, errors.Is(&OutOfBoundsError{}, ErrOutOfBounds))
		assert.True(t, errors.Is(&ConfigError{Field: "x"}, ErrInvalidConfiguration))
	})

	t.Run("ValidatePosition", func(t *testing.T) {
		assert.NoError(t, ValidatePosition(geom.V(1e300, -1e300)))
		assert.ErrorIs(t, ValidatePosition(geom.V(math.NaN(), 0)), ErrOutOfBounds)
		assert.ErrorIs(t, ValidatePosition(geom.V(0, math.Inf(1))), ErrOutOfBounds)
	})

	t.Run("ValidateRadius", func(t *testing.T) {
		assert.NoError(t, ValidateRadius(0))
		assert.ErrorIs(t, ValidateRadius(-1), ErrInvalidConfiguration)
		assert.ErrorIs(t, ValidateRadius(math.NaN()), ErrInvalidConfiguration)
	})

	t.Run("Messages", func(t *testing.T) {
		assert.Equal(t, "bin capacity 3 exceeded", (&CapacityError{Resource: "bin", Capacity: 3}).Error())
	})
}

func TestBoundsPolicy(t *testing.T) {
	assert.Equal(t, "Reject", Reject.String())
	assert.Equal(t, "Clamp", Clamp.String())
	assert.Equal(t, "Unknown", BoundsPolicy(9).String())
}
