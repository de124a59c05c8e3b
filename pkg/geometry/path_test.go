package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoEdgePath(t *testing.T) *Path {
	t.Helper()
	e1 := NewInferredEdge("e1", NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}}), true)
	e2 := NewInferredEdge("e2", NewPolyline([]Point{{X: 10, Y: 0}, {X: 25, Y: 0}}), true)
	return &Path{Edges: []PathEdge{
		{Edge: e1, DistToStartOfEdge: 0},
		{Edge: e2, DistToStartOfEdge: 10},
	}}
}

func TestPathTotalDistance(t *testing.T) {
	t.Parallel()

	p := twoEdgePath(t)
	assert.InDelta(t, 25, p.TotalDistance(), 1e-9)

	p.IsBackward = true
	assert.InDelta(t, -25, p.TotalDistance(), 1e-9)
}

func TestPathClampToPath(t *testing.T) {
	t.Parallel()

	p := twoEdgePath(t)
	assert.InDelta(t, 0, p.ClampToPath(-5), 1e-9)
	assert.InDelta(t, 25, p.ClampToPath(30), 1e-9)
	assert.InDelta(t, 12, p.ClampToPath(12), 1e-9)
}

func TestPathClampToPathBackward(t *testing.T) {
	t.Parallel()

	p := twoEdgePath(t)
	p.IsBackward = true
	assert.InDelta(t, -25, p.ClampToPath(-30), 1e-9)
	assert.InDelta(t, 0, p.ClampToPath(5), 1e-9)
}

func TestPathGetEdgeForDistanceTieBreaksLater(t *testing.T) {
	t.Parallel()

	p := twoEdgePath(t)
	edge, ok := p.GetEdgeForDistance(10)
	assert.True(t, ok)
	assert.Equal(t, "e2", edge.Edge.ID)

	edge, ok = p.GetEdgeForDistance(5)
	assert.True(t, ok)
	assert.Equal(t, "e1", edge.Edge.ID)

	_, ok = p.GetEdgeForDistance(100)
	assert.False(t, ok)
}

func TestPathGeometryConcatenatesEdges(t *testing.T) {
	t.Parallel()

	p := twoEdgePath(t)
	geom := p.Geometry()
	assert.InDelta(t, 25, geom.Length, 1e-9)
}

func TestNullPath(t *testing.T) {
	t.Parallel()

	p := NullPath()
	assert.True(t, p.IsNull())
	assert.Nil(t, p.Geometry())
	assert.InDelta(t, 0, p.TotalDistance(), 1e-9)
}
