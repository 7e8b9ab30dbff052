package testutil

import (
	"testing"

	"github.com/hupe1980/spatialgo/geom"
	"github.com/stretchr/testify/assert"
)

var world = geom.NewBox(0, 0, 1000, 1000)

func TestPoints(t *testing.T) {
	rng := NewRNG(4711)

	pts := rng.Points(500, world)

	assert.Len(t, pts, 500)
	for _, p := range pts {
		assert.True(t, world.Contains(p), "%s outside world", p)
	}
}

func TestClusteredPoints(t *testing.T) {
	rng := NewRNG(4711)

	pts := rng.ClusteredPoints(1000, world, 4, 200)

	assert.Len(t, pts, 1000)
	for _, p := range pts {
		assert.True(t, world.Contains(p), "%s outside world", p)
	}
}

func TestVelocities(t *testing.T) {
	rng := NewRNG(4711)

	for _, v := range rng.Velocities(100, 3) {
		assert.Less(t, v.Length(), 3.0+1e-9)
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	p1 := rng.Points(10, world)

	rng.Reset()
	p2 := rng.Points(10, world)

	assert.Equal(t, p1, p2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestBruteForceWithin(t *testing.T) {
	pts := []geom.Vec{geom.V(0, 0), geom.V(3, 4), geom.V(5, 0), geom.V(10, 10)}

	assert.Equal(t, []int{0, 1, 2}, BruteForceWithin(pts, geom.V(0, 0), 5.5))
	assert.Equal(t, []int{0}, BruteForceWithin(pts, geom.V(0, 0), 5), "strict comparison")
	assert.Empty(t, BruteForceWithin(pts, geom.V(100, 100), 1))
}

func TestComputeRecall(t *testing.T) {
	truth := []geom.Vec{geom.V(1, 1), geom.V(2, 2), geom.V(2, 2), geom.V(3, 3)}

	assert.Equal(t, 1.0, ComputeRecall(truth, truth))
	assert.Equal(t, 0.5, ComputeRecall(truth, []geom.Vec{geom.V(2, 2), geom.V(3, 3)}))
	assert.Equal(t, 0.0, ComputeRecall(truth, nil))
	assert.Equal(t, 1.0, ComputeRecall(nil, nil))
}

func TestSelect(t *testing.T) {
	pts := []geom.Vec{geom.V(3, 0), geom.V(1, 0), geom.V(2, 0)}

	assert.Equal(t, []geom.Vec{geom.V(2, 0), geom.V(3, 0)}, Select(pts, []int{0, 2}))
	assert.Equal(t, []geom.Vec{geom.V(1, 0), geom.V(2, 0), geom.V(3, 0)}, SortedPositions(pts))
}
