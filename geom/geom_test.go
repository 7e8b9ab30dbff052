package geom

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec(t *testing.T) {
	t.Run("Arithmetic", func(t *testing.T) {
		a := V(1, 2)
		b := V(3, -4)

		assert.Equal(t, V(4, -2), a.Add(b))
		assert.Equal(t, V(-2, 6), a.Sub(b))
		assert.Equal(t, V(2, 4), a.Scale(2))
		assert.Equal(t, V(-1, -2), a.Neg())
		assert.Equal(t, -5.0, a.Dot(b))
		assert.Equal(t, -10.0, a.Cross(b))
		assert.Equal(t, 25.0, b.LengthSq())
		assert.Equal(t, 5.0, b.Length())
	})

	t.Run("Distance", func(t *testing.T) {
		a := V(500, 500)
		b := V(525, 500)

		assert.Equal(t, 625.0, a.DistanceSq(b))
		assert.Equal(t, 25.0, a.Distance(b))
		assert.True(t, a.Near(b, 50))
		assert.False(t, a.Near(b, 25), "Near is strict")
	})

	t.Run("NormalizeAndLimit", func(t *testing.T) {
		assert.Equal(t, Vec{}, Vec{}.Normalize())
		assert.InDelta(t, 1.0, V(3, 4).Normalize().Length(), 1e-12)
		assert.InDelta(t, 2.0, V(30, 40).Limit(2).Length(), 1e-12)
		assert.Equal(t, V(0.3, 0.4), V(0.3, 0.4).Limit(2))
	})

	t.Run("Ordering", func(t *testing.T) {
		pts := []Vec{V(2, 1), V(1, 5), V(1, 2)}
		slices.SortFunc(pts, Compare)
		assert.Equal(t, []Vec{V(1, 2), V(1, 5), V(2, 1)}, pts)
		assert.Equal(t, 0, Compare(V(1, 1), V(1, 1)))
	})

	t.Run("IsFinite", func(t *testing.T) {
		assert.True(t, V(1, 2).IsFinite())
		assert.False(t, V(math.NaN(), 2).IsFinite())
		assert.False(t, V(1, math.Inf(-1)).IsFinite())
	})

	t.Run("Rotate", func(t *testing.T) {
		r := V(1, 0).Rotate(math.Pi / 2)
		assert.InDelta(t, 0.0, r.X, 1e-12)
		assert.InDelta(t, 1.0, r.Y, 1e-12)
		assert.InDelta(t, math.Pi/2, r.Heading(), 1e-12)
	})
}

func TestBox(t *testing.T) {
	t.Run("ContainsIsHalfOpen", func(t *testing.T) {
		b := NewBox(0, 0, 10, 10)

		assert.True(t, b.Contains(V(0, 0)))
		assert.True(t, b.Contains(V(9.999, 5)))
		assert.False(t, b.Contains(V(10, 5)))
		assert.False(t, b.Contains(V(5, 10)))
		assert.False(t, b.Contains(V(-0.001, 5)))
	})

	t.Run("NegativeSizeIsNormalized", func(t *testing.T) {
		b := NewBox(10, 10, -10, -10)

		assert.True(t, b.Contains(V(5, 5)))
		assert.True(t, b.Intersects(NewBox(8, 8, 5, 5)))
		assert.Equal(t, V(0, 0), b.Min())
		assert.Equal(t, V(10, 10), b.Max())
	})

	t.Run("BoxAround", func(t *testing.T) {
		b := BoxAround(V(50, 50), 20)
		assert.Equal(t, NewBox(40, 40, 20, 20), b)
		assert.Equal(t, V(50, 50), b.Center())
	})

	t.Run("Intersects", func(t *testing.T) {
		a := NewBox(0, 0, 10, 10)

		assert.True(t, a.Intersects(NewBox(5, 5, 10, 10)))
		assert.False(t, a.Intersects(NewBox(10, 0, 10, 10)), "touching edges do not overlap")
	})

	t.Run("Intersection", func(t *testing.T) {
		a := NewBox(0, 0, 10, 10)

		assert.Equal(t, NewBox(5, 5, 5, 5), a.Intersection(NewBox(5, 5, 10, 10)))
		assert.Equal(t, Box{}, a.Intersection(NewBox(20, 20, 1, 1)))
	})

	t.Run("MergeAndExtend", func(t *testing.T) {
		a := NewBox(0, 0, 10, 10)

		assert.Equal(t, NewBox(-5, 0, 15, 20), a.Merge(NewBox(-5, 15, 1, 5)))

		b := BoxOf(V(3, 4)).Extend(V(-1, 8)).Extend(V(2, 0))
		assert.Equal(t, NewBox(-1, 0, 4, 8), b)
	})

	t.Run("ScaleInflateTranslate", func(t *testing.T) {
		a := NewBox(0, 0, 10, 10)

		assert.Equal(t, NewBox(-5, -5, 20, 20), a.Scale(2))
		assert.Equal(t, NewBox(-1, -1, 12, 12), a.Inflate(2))
		assert.Equal(t, NewBox(1, 2, 10, 10), a.Translate(V(1, 2)))
		assert.Equal(t, a.Center(), a.Scale(3).Center())
	})

	t.Run("Empty", func(t *testing.T) {
		assert.True(t, Box{}.IsEmpty())
		assert.False(t, Box{}.Contains(V(0, 0)))
		assert.False(t, NewBox(0, 0, 1, 1).IsEmpty())
	})
}

func TestCell(t *testing.T) {
	t.Run("FloorDivision", func(t *testing.T) {
		assert.Equal(t, Cell{10, 10}, CellOf(V(500, 500), 50))
		assert.Equal(t, Cell{9, 10}, CellOf(V(499.999, 500), 50))
		assert.Equal(t, Cell{-1, -1}, CellOf(V(-0.5, -49), 50))
		assert.Equal(t, Cell{-2, 0}, CellOf(V(-50.5, 0), 50))
	})

	t.Run("EdgeBelongsToCellStartingThere", func(t *testing.T) {
		assert.Equal(t, Cell{1, 0}, CellOf(V(50, 0), 50))
		assert.Equal(t, Cell{0, 0}, CellOf(V(math.Nextafter(50, 0), 0), 50))
	})

	t.Run("Adjacent", func(t *testing.T) {
		c := Cell{3, 3}
		assert.True(t, c.Adjacent(Cell{2, 4}))
		assert.True(t, c.Adjacent(c))
		assert.False(t, c.Adjacent(Cell{5, 3}))
	})

	t.Run("Range", func(t *testing.T) {
		lo, hi := CellRange(BoxAround(V(525, 500), 100), 50, 50)
		assert.Equal(t, Cell{9, 9}, lo)
		assert.Equal(t, Cell{11, 11}, hi)
	})
}

func TestAngle(t *testing.T) {
	t.Run("Normalize", func(t *testing.T) {
		assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), 1e-12)
		assert.InDelta(t, math.Pi/2, NormalizeAngle(5*math.Pi/2), 1e-12)
		assert.InDelta(t, -math.Pi/2, NormalizeAngle(3*math.Pi/2), 1e-12)
		assert.InDelta(t, math.Pi/4, NormalizeAngle(-7*math.Pi/4), 1e-12)
		assert.InDelta(t, 1.0, NormalizeAngle(1+20*math.Pi), 1e-9)

		for _, a := range []float64{-100, -7, -math.Pi, 0, 3, math.Pi, 42} {
			n := NormalizeAngle(a)
			assert.LessOrEqual(t, math.Abs(n), math.Pi, "angle %g", a)
		}
	})

	t.Run("DeltaTakesShortestWay", func(t *testing.T) {
		assert.InDelta(t, math.Pi/2, AngleDelta(0, math.Pi/2), 1e-12)
		assert.InDelta(t, -math.Pi/2, AngleDelta(math.Pi/2, 0), 1e-12)

		// Across the ±π seam.
		assert.InDelta(t, 0.2, AngleDelta(math.Pi-0.1, -math.Pi+0.1), 1e-12)
		assert.InDelta(t, -0.2, AngleDelta(-math.Pi+0.1, math.Pi-0.1), 1e-12)

		assert.InDelta(t, 0, AngleDelta(1, 1+4*math.Pi), 1e-9)
	})
}
