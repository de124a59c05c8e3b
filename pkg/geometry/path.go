package geometry

// Path is an ordered sequence of PathEdges sharing one IsBackward flag.
type Path struct {
	Edges      []PathEdge
	IsBackward bool
}

// NullPath is the distinguished off-road path: an empty edge list.
func NullPath() *Path { return &Path{} }

// IsNull reports whether p denotes off-road (no edges).
func (p *Path) IsNull() bool { return len(p.Edges) == 0 }

// TotalDistance returns the signed total path distance: the sum of edge
// lengths, negated when the path runs backward.
func (p *Path) TotalDistance() float64 {
	var total float64
	for _, e := range p.Edges {
		total += e.Edge.Length
	}
	if p.IsBackward {
		return -total
	}
	return total
}

// ClampToPath clips s to [min(0,total), max(0,total)], i.e. the signed range
// spanned by the path (0 at the origin, TotalDistance() at the far end).
func (p *Path) ClampToPath(s float64) float64 {
	total := p.TotalDistance()
	lo, hi := 0.0, total
	if lo > hi {
		lo, hi = hi, lo
	}
	if s < lo {
		return lo
	}
	if s > hi {
		return hi
	}
	return s
}

// GetEdgeForDistance returns the last PathEdge whose signed range contains
// s, breaking ties toward the later edge so the shared endpoint between two
// edges belongs to the edge that follows it.
func (p *Path) GetEdgeForDistance(s float64) (PathEdge, bool) {
	var found PathEdge
	ok := false
	for _, e := range p.Edges {
		if e.ContainsSigned(s) {
			found = e
			ok = true
		}
	}
	return found, ok
}

// Geometry returns the path's full concatenated polyline, following edge
// order. Returns nil for a null path.
func (p *Path) Geometry() *Polyline {
	if p.IsNull() {
		return nil
	}
	lines := make([]*Polyline, 0, len(p.Edges))
	for _, e := range p.Edges {
		geom := e.Edge.Geometry
		if e.IsBackward {
			geom = reversePolyline(geom)
		}
		lines = append(lines, geom)
	}
	return concatTolerant(lines)
}

func reversePolyline(pl *Polyline) *Polyline {
	points := make([]Point, len(pl.Points))
	for i, p := range pl.Points {
		points[len(points)-1-i] = p
	}
	return NewPolyline(points)
}

// concatTolerant joins polylines end-to-end, tolerating tiny floating-point
// mismatch between one polyline's end and the next one's start (the join
// point is taken from the earlier polyline; see MergePaths for the same
// tolerance used when establishing which ends actually correspond).
func concatTolerant(lines []*Polyline) *Polyline {
	points := append([]Point(nil), lines[0].Points...)
	for _, l := range lines[1:] {
		points = append(points, l.Points[1:]...)
	}
	return NewPolyline(points)
}
