// Package geometry implements the JTS-style polyline geometry the estimator
// projects vehicle state through: length-indexed lines, orthogonal
// point-to-line projection, path clamping, and edge-on-path lookup.
package geometry

import "math"

// Point is a planar coordinate in the same projection as the road graph
// (never lat/lon directly — see pkg/geo for the lat/lon <-> planar
// conversion used at import time).
type Point struct {
	X, Y float64
}

func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Scale(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

func (p Point) Dot(o Point) float64 { return p.X*o.X + p.Y*o.Y }
func (p Point) Norm() float64       { return math.Hypot(p.X, p.Y) }

// DistanceTo returns the euclidean distance between p and o.
func (p Point) DistanceTo(o Point) float64 {
	return p.Sub(o).Norm()
}

// Unit returns p scaled to unit length, or the zero vector if p is
// (numerically) zero length.
func (p Point) Unit() Point {
	n := p.Norm()
	if n == 0 {
		return Point{}
	}
	return p.Scale(1 / n)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	if v > 0 {
		return 1
	}
	return 0
}
