package geometry

import "github.com/lintang-b-s/roadtrack/pkg/roaderr"

// InferredEdge is an immutable directed polyline on the road graph.
type InferredEdge struct {
	ID         string
	Geometry   *Polyline
	Length     float64
	Start, End Point
	HasReverse bool
}

// NewInferredEdge builds an edge from an ordered geometry, deriving Length,
// Start and End from it. Panics if the geometry has zero length, since a
// degenerate edge breaks the path-distance invariants downstream.
func NewInferredEdge(id string, geom *Polyline, hasReverse bool) *InferredEdge {
	roaderr.AssertInvariant(geom.Length > 0, "InferredEdge geometry must have positive length")
	return &InferredEdge{
		ID:         id,
		Geometry:   geom,
		Length:     geom.Length,
		Start:      geom.Points[0],
		End:        geom.Points[len(geom.Points)-1],
		HasReverse: hasReverse,
	}
}

// nullEdge is the distinguished off-road sentinel: zero length, no geometry.
var nullEdge = &InferredEdge{ID: ""}

// NullEdge returns the singleton off-road edge. Identity comparison (==) is
// meaningful against this value.
func NullEdge() *InferredEdge { return nullEdge }

// IsNull reports whether e is the null (off-road) edge.
func (e *InferredEdge) IsNull() bool { return e == nullEdge }
