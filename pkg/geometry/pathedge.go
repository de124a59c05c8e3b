package geometry

import "github.com/lintang-b-s/roadtrack/pkg/roaderr"

// PathEdge is an oriented placement of one InferredEdge on a path.
// Invariant: sign(DistToStartOfEdge) == (IsBackward ? -1 : +1), except at the
// path origin where it is zero.
type PathEdge struct {
	Edge              *InferredEdge
	DistToStartOfEdge float64
	IsBackward        bool
}

// EndDistance returns the signed distance of this edge's far end from the
// path origin.
func (pe PathEdge) EndDistance() float64 {
	if pe.IsBackward {
		return pe.DistToStartOfEdge - pe.Edge.Length
	}
	return pe.DistToStartOfEdge + pe.Edge.Length
}

// ContainsSigned reports whether signed distance s falls within this edge's
// signed range (inclusive at both ends).
func (pe PathEdge) ContainsSigned(s float64) bool {
	lo, hi := pe.DistToStartOfEdge, pe.EndDistance()
	if lo > hi {
		lo, hi = hi, lo
	}
	return s >= lo && s <= hi
}

// Segment splits pe into sub-edges whose concatenated geometry equals the
// original and whose lengths sum to pe.Edge.Length, bounding each sub-edge to
// at most targetDist. Each sub-edge's cumulative distance-to-start is
// preserved relative to the path origin.
func (pe PathEdge) Segment(targetDist float64) []PathEdge {
	roaderr.AssertInvariant(targetDist > 0, "Segment requires a positive target distance")
	total := pe.Edge.Length
	if total <= targetDist {
		return []PathEdge{pe}
	}

	n := int(total/targetDist) + 1
	step := total / float64(n)

	out := make([]PathEdge, 0, n)
	for i := 0; i < n; i++ {
		startOffset := float64(i) * step
		endOffset := startOffset + step
		if i == n-1 {
			endOffset = total
		}
		geom := subGeometry(pe.Edge.Geometry, startOffset, endOffset)
		sub := NewInferredEdge(subEdgeID(pe.Edge.ID, i), geom, pe.Edge.HasReverse)

		var dist float64
		if pe.IsBackward {
			dist = pe.DistToStartOfEdge - startOffset
		} else {
			dist = pe.DistToStartOfEdge + startOffset
		}
		out = append(out, PathEdge{Edge: sub, DistToStartOfEdge: dist, IsBackward: pe.IsBackward})
	}
	return out
}

func subEdgeID(base string, i int) string {
	return base + "#" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// subGeometry extracts the portion of geom between arc lengths [from,to],
// inserting exact interpolated endpoints.
func subGeometry(geom *Polyline, from, to float64) *Polyline {
	start, startSeg, startD0 := geom.PointAt(from)
	end, _, _ := geom.PointAt(to)

	points := []Point{start}
	for i := 0; i < geom.NumSegments(); i++ {
		seg, d0 := geom.Segment(i)
		segEnd := d0 + seg.Length()
		if d0 <= from {
			continue
		}
		if d0 >= to {
			break
		}
		points = append(points, seg.P0)
		_ = segEnd
	}
	_ = startSeg
	_ = startD0
	points = append(points, end)
	return NewPolyline(dedupe(points))
}

func dedupe(points []Point) []Point {
	out := points[:0:0]
	for i, p := range points {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	if len(out) < 2 {
		out = append(out, points[len(points)-1])
	}
	return out
}
