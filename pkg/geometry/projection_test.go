package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGroundToRoadRoundTrip(t *testing.T) {
	t.Parallel()

	geom := NewPolyline([]Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	ground := mat.NewVecDense(4, []float64{40, 5, 0, 0})

	roadProj := GroundToRoad(geom, false, true, ground)
	assert.InDelta(t, 40, roadProj.Value.AtVec(0), 1e-9)
	assert.InDelta(t, 5, roadProj.Value.AtVec(1), 1e-9)

	groundBack := RoadToGround(geom, false, true, roadProj.Value)
	assert.InDelta(t, 40, groundBack.Value.AtVec(0), 1e-9)
	assert.InDelta(t, 0, groundBack.Value.AtVec(2), 1e-9)
	assert.InDelta(t, 5, groundBack.Value.AtVec(1), 1e-9)
}

func TestGroundToRoadBackwardNegatesPosition(t *testing.T) {
	t.Parallel()

	geom := NewPolyline([]Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	ground := mat.NewVecDense(4, []float64{40, 5, 0, 0})

	forward := GroundToRoad(geom, false, true, ground)
	backward := GroundToRoad(geom, true, true, ground)
	assert.InDelta(t, forward.Value.AtVec(0), -backward.Value.AtVec(0), 1e-9)
}

func TestProjectCovarianceIsSymmetric(t *testing.T) {
	t.Parallel()

	geom := NewPolyline([]Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	ground := mat.NewVecDense(4, []float64{40, 5, 0, 0})
	proj := GroundToRoad(geom, false, true, ground)

	cov := mat.NewSymDense(4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	out := ProjectCovariance(proj, cov)
	r, c := out.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			assert.InDelta(t, out.At(i, j), out.At(j, i), 1e-9)
		}
	}
}

func TestAdjustForOppositeDirectionSnapsWithinTolerance(t *testing.T) {
	t.Parallel()

	s, err := AdjustForOppositeDirection(-1e-5, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0, s, 1e-9)

	s, err = AdjustForOppositeDirection(100+1e-5, 100)
	require.NoError(t, err)
	assert.InDelta(t, 100, s, 1e-9)
}

func TestAdjustForOppositeDirectionFailsBeyondTolerance(t *testing.T) {
	t.Parallel()

	_, err := AdjustForOppositeDirection(-5, 100)
	assert.Error(t, err)
}

func TestMergePathsHeadToTail(t *testing.T) {
	t.Parallel()

	from := NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	to := NewPolyline([]Point{{X: 10, Y: 0}, {X: 20, Y: 0}})

	result, err := MergePaths(from, to)
	require.NoError(t, err)
	assert.False(t, result.Reversed)
	assert.InDelta(t, 20, result.Geometry.Length, 1e-9)
}

func TestMergePathsReversesWhenTailsMatch(t *testing.T) {
	t.Parallel()

	from := NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	to := NewPolyline([]Point{{X: 20, Y: 0}, {X: 10, Y: 0}})

	result, err := MergePaths(from, to)
	require.NoError(t, err)
	assert.True(t, result.Reversed)
}

func TestMergePathsFailsWithNoSharedEndpoint(t *testing.T) {
	t.Parallel()

	from := NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	to := NewPolyline([]Point{{X: 100, Y: 100}, {X: 200, Y: 200}})

	_, err := MergePaths(from, to)
	assert.Error(t, err)
}
