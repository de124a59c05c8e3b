package geometry

// InferenceGraphSegment is one candidate edge returned by a nearby-edge
// query, before it has been placed on a particular path (signed distance
// and direction are chosen by the caller).
type InferenceGraphSegment struct {
	Edge *InferredEdge
}

// AsPathEdge places this segment at the start of a path (distToStart is
// typically 0 for a freshly discovered candidate).
func (s InferenceGraphSegment) AsPathEdge(distToStart float64, backward bool) PathEdge {
	return PathEdge{Edge: s.Edge, DistToStartOfEdge: distToStart, IsBackward: backward}
}

// InferenceGraph is the collaborator the estimator core depends on: a
// nearby-edge query and outgoing adjacency. The estimator never depends on
// a concrete implementation; pkg/rgraph provides one (R-tree backed,
// in-memory), but any implementation satisfying this interface works.
type InferenceGraph interface {
	// NearbyEdges returns candidate edges within a covariance-scaled radius
	// of center.
	NearbyEdges(center Point, radiusScale float64) []InferenceGraphSegment
	// Outgoing returns the edges reachable immediately after edge.
	Outgoing(edge *InferredEdge) []*InferredEdge
}
