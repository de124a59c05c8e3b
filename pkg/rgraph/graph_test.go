package rgraph

import (
	"testing"

	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightEdge(id string, x0, x1 float64) *geometry.InferredEdge {
	return geometry.NewInferredEdge(id, geometry.NewPolyline([]geometry.Point{{X: x0, Y: 0}, {X: x1, Y: 0}}), true)
}

func TestBuildIndexesEveryAddedEdge(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	e1 := straightEdge("e1", 0, 10)
	e2 := straightEdge("e2", 10, 20)
	b.AddEdge(e1, []*geometry.InferredEdge{e2})
	b.AddEdge(e2, nil)

	g := b.Build()
	assert.Equal(t, 2, g.NumEdges())
}

func TestEdgeByID(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	e1 := straightEdge("e1", 0, 10)
	b.AddEdge(e1, nil)
	g := b.Build()

	found, ok := g.EdgeByID("e1")
	require.True(t, ok)
	assert.Equal(t, e1, found)

	_, ok = g.EdgeByID("missing")
	assert.False(t, ok)
}

func TestOutgoingReturnsRegisteredAdjacency(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	e1 := straightEdge("e1", 0, 10)
	e2 := straightEdge("e2", 10, 20)
	b.AddEdge(e1, []*geometry.InferredEdge{e2})
	b.AddEdge(e2, nil)
	g := b.Build()

	out := g.Outgoing(e1)
	require.Len(t, out, 1)
	assert.Equal(t, "e2", out[0].ID)

	assert.Nil(t, g.Outgoing(geometry.NullEdge()))
}

func TestNearbyEdgesFindsCloseEdgeOnly(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	near := straightEdge("near", 0, 10)
	far := straightEdge("far", 10000, 10010)
	b.AddEdge(near, nil)
	b.AddEdge(far, nil)
	g := b.Build()

	results := g.NearbyEdges(geometry.Point{X: 5, Y: 0}, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].Edge.ID)
}

func TestNearbyEdgesRadiusScalesSearch(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	edge := straightEdge("e1", 100, 110)
	b.AddEdge(edge, nil)
	g := b.Build()

	assert.Empty(t, g.NearbyEdges(geometry.Point{X: 0, Y: 0}, 1))
	assert.NotEmpty(t, g.NearbyEdges(geometry.Point{X: 0, Y: 0}, 10))
}

func TestNewGraphHasZeroOrigin(t *testing.T) {
	t.Parallel()

	g := New()
	assert.InDelta(t, 0, g.Origin.LatRad, 1e-9)
}
