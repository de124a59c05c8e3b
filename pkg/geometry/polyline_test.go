package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightLine() *Polyline {
	return NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}})
}

func TestPolylineLengthAndSegments(t *testing.T) {
	t.Parallel()

	pl := straightLine()
	assert.Equal(t, 2, pl.NumSegments())
	assert.InDelta(t, 20, pl.Length, 1e-9)
}

func TestPolylineProjectInsideSegment(t *testing.T) {
	t.Parallel()

	pl := straightLine()
	arcLen, segIdx, _, _ := pl.Project(Point{X: 5, Y: 3})
	assert.InDelta(t, 5, arcLen, 1e-9)
	assert.Equal(t, 0, segIdx)
}

func TestPolylineProjectTieBreaksTowardLaterSegment(t *testing.T) {
	t.Parallel()

	pl := straightLine()
	// (10, 0) is the shared vertex between segment 0 and segment 1.
	_, segIdx, _, _ := pl.Project(Point{X: 10, Y: 0})
	assert.Equal(t, 1, segIdx)
}

func TestPolylinePointAtRoundTripsProject(t *testing.T) {
	t.Parallel()

	pl := straightLine()
	for _, s := range []float64{0, 3.5, 10, 15.2, 20} {
		p, _, _ := pl.PointAt(s)
		back, _, _, _ := pl.Project(p)
		assert.InDelta(t, s, back, 1e-6)
	}
}

func TestPolylinePointAtClampsOutOfRange(t *testing.T) {
	t.Parallel()

	pl := straightLine()
	p, _, _ := pl.PointAt(-5)
	assert.Equal(t, Point{X: 0, Y: 0}, p)

	p, _, _ = pl.PointAt(100)
	assert.Equal(t, Point{X: 20, Y: 0}, p)
}

func TestConcatJoinsSharedEndpoints(t *testing.T) {
	t.Parallel()

	a := NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	b := NewPolyline([]Point{{X: 10, Y: 0}, {X: 20, Y: 0}})

	joined := Concat(a, b)
	require.Len(t, joined.Points, 3)
	assert.InDelta(t, 20, joined.Length, 1e-9)
}
