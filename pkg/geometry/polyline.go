package geometry

import (
	"math"

	"github.com/lintang-b-s/roadtrack/pkg/roaderr"
)

// Polyline is a length-indexed sequence of points: cumDist[i] holds the arc
// length from Points[0] to Points[i] along the chain. This is the building
// block both InferredEdge geometry and whole-Path geometry are expressed in.
type Polyline struct {
	Points  []Point
	cumDist []float64
	Length  float64
}

// NewPolyline builds a length-indexed line from an ordered point sequence.
// Requires at least two points.
func NewPolyline(points []Point) *Polyline {
	roaderr.AssertInvariant(len(points) >= 2, "polyline requires at least two points")
	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		seg := LineSegment{points[i-1], points[i]}
		cum[i] = cum[i-1] + seg.Length()
	}
	return &Polyline{Points: points, cumDist: cum, Length: cum[len(cum)-1]}
}

// NumSegments returns the number of line segments in the polyline.
func (pl *Polyline) NumSegments() int {
	return len(pl.Points) - 1
}

// Segment returns the i-th line segment and its cumulative distance-to-start
// (the arc length of Points[i] from the polyline origin).
func (pl *Polyline) Segment(i int) (seg LineSegment, d0 float64) {
	return LineSegment{pl.Points[i], pl.Points[i+1]}, pl.cumDist[i]
}

// Project snaps p orthogonally onto the polyline, returning the arc length
// from the polyline start, the containing segment index, the segment's own
// d0 (cumulative distance to its start), and the segment itself. Ties
// between adjacent segments at a shared vertex are broken toward the later
// segment, matching the edge-on-path tie-break convention.
func (pl *Polyline) Project(p Point) (arcLen float64, segIdx int, d0 float64, seg LineSegment) {
	bestDist := math.Inf(1)
	for i := 0; i < pl.NumSegments(); i++ {
		s, segD0 := pl.Segment(i)
		t, _, dist := s.ProjectOrthogonal(p)
		// <= rather than < so that, among equally-close segments (the shared
		// vertex between two adjacent edges), the later segment wins.
		if dist <= bestDist {
			bestDist = dist
			segIdx = i
			d0 = segD0
			seg = s
			arcLen = segD0 + t*s.Length()
		}
	}
	return arcLen, segIdx, d0, seg
}

// PointAt returns the point and containing-segment data at arc length s
// (clamped into [0, Length]).
func (pl *Polyline) PointAt(s float64) (p Point, seg LineSegment, d0 float64) {
	if s < 0 {
		s = 0
	}
	if s > pl.Length {
		s = pl.Length
	}
	idx := pl.NumSegments() - 1
	for i := 0; i < pl.NumSegments(); i++ {
		segEnd := pl.cumDist[i+1]
		if s <= segEnd {
			idx = i
			break
		}
	}
	seg, d0 = pl.Segment(idx)
	local := s - d0
	t := 0.0
	if segLen := seg.Length(); segLen > 0 {
		t = local / segLen
	}
	p = seg.P0.Add(seg.P1.Sub(seg.P0).Scale(t))
	return p, seg, d0
}

// Concat joins polylines end to end, assuming each one's last point equals
// the next one's first point (callers are responsible for that invariant;
// use MergePaths to establish it from arbitrary endpoint pairs).
func Concat(lines ...*Polyline) *Polyline {
	roaderr.AssertInvariant(len(lines) > 0, "Concat requires at least one polyline")
	points := append([]Point(nil), lines[0].Points...)
	for _, l := range lines[1:] {
		points = append(points, l.Points[1:]...)
	}
	return NewPolyline(points)
}
