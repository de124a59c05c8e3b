package geometry

import (
	"math"

	"github.com/lintang-b-s/roadtrack/pkg/roaderr"
	"gonum.org/v1/gonum/mat"
)

// EdgeLengthErrorTolerance is the fixed numeric constant used to accept a
// state marginally outside a path endpoint before rejecting it as
// unrepresentable.
const EdgeLengthErrorTolerance = 1e-4

// MergeCoordinateTolerance is how close two endpoint coordinates must be to
// be treated as the same point when merging paths.
const MergeCoordinateTolerance = 1e-6

// Projection holds a road<->ground conversion result: the projected vector
// and the affine Jacobian relating small perturbations of the input to
// perturbations of the output (used to project covariance via P Sigma P^T).
type Projection struct {
	Value    *mat.VecDense
	Jacobian *mat.Dense
}

// GroundToRoad projects a 4D ground state (x, xdot, y, ydot) onto the
// polyline geom, producing a 2D road state (s, sdot). isBackward and
// useAbsVelocity follow §4.1. The returned Jacobian is 2x4.
func GroundToRoad(geom *Polyline, isBackward, useAbsVelocity bool, ground *mat.VecDense) Projection {
	x, xdot, y, ydot := ground.AtVec(0), ground.AtVec(1), ground.AtVec(2), ground.AtVec(3)
	point := Point{x, y}

	arcLen, _, d0, seg := geom.Project(point)
	_ = d0
	t := seg.UnitTangent()

	s := arcLen
	sdot := t.X*xdot + t.Y*ydot

	rowSign := 1.0
	if isBackward {
		s = -s
		sdot = -sdot
		rowSign = -1.0
	}

	jac := mat.NewDense(2, 4, nil)
	jac.Set(0, 0, rowSign*t.X)
	jac.Set(0, 2, rowSign*t.Y)

	if useAbsVelocity {
		speed := math.Hypot(xdot, ydot)
		sdot = sign(sdot) * speed
		if speed > 0 {
			jac.Set(1, 1, rowSign*sign(sdot)*xdot/speed)
			jac.Set(1, 3, rowSign*sign(sdot)*ydot/speed)
		}
	} else {
		jac.Set(1, 1, rowSign*t.X)
		jac.Set(1, 3, rowSign*t.Y)
	}

	road := mat.NewVecDense(2, []float64{s, sdot})
	return Projection{Value: road, Jacobian: jac}
}

// RoadToGround is the inverse of GroundToRoad: projects a 2D road state onto
// geom, producing a 4D ground state. The returned Jacobian is 4x2.
func RoadToGround(geom *Polyline, isBackward, useAbsVelocity bool, road *mat.VecDense) Projection {
	s, sdot := road.AtVec(0), road.AtVec(1)

	sAbs := s
	velSign := 1.0
	if isBackward {
		sAbs = -s
		velSign = -1.0
	}
	velTangential := velSign * sdot

	point, seg, _ := geom.PointAt(sAbs)
	t := seg.UnitTangent()

	velocity := t.Scale(velTangential)
	_ = useAbsVelocity // velTangential already carries magnitude+sign either way

	ground := mat.NewVecDense(4, []float64{point.X, velocity.X, point.Y, velocity.Y})

	jac := mat.NewDense(4, 2, nil)
	jac.Set(0, 0, velSign*t.X)
	jac.Set(2, 0, velSign*t.Y)
	jac.Set(1, 1, velSign*t.X)
	jac.Set(3, 1, velSign*t.Y)

	return Projection{Value: ground, Jacobian: jac}
}

// ProjectCovariance returns P * cov * P^T for the Jacobian of a Projection.
func ProjectCovariance(p Projection, cov mat.Symmetric) *mat.SymDense {
	var tmp mat.Dense
	tmp.Mul(p.Jacobian, cov)
	var out mat.Dense
	out.Mul(&tmp, p.Jacobian.T())
	r, _ := out.Dims()
	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, out.At(i, j))
		}
	}
	return sym
}

// AdjustForOppositeDirection snaps s to the nearest boundary of [0,total]
// when it lies beyond that boundary by no more than EdgeLengthErrorTolerance,
// and fails with ErrUnrepresentable when it lies farther beyond.
func AdjustForOppositeDirection(s, total float64) (float64, error) {
	lo, hi := 0.0, total
	if lo > hi {
		lo, hi = hi, lo
	}
	if s < lo {
		if lo-s <= EdgeLengthErrorTolerance {
			return lo, nil
		}
		return 0, roaderr.Wrap(roaderr.ErrUnrepresentable, roaderr.ErrUnrepresentable,
			"state %.6f lies %.6f before path start, beyond tolerance %.6f", s, lo-s, EdgeLengthErrorTolerance)
	}
	if s > hi {
		if s-hi <= EdgeLengthErrorTolerance {
			return hi, nil
		}
		return 0, roaderr.Wrap(roaderr.ErrUnrepresentable, roaderr.ErrUnrepresentable,
			"state %.6f lies %.6f past path end, beyond tolerance %.6f", s, s-hi, EdgeLengthErrorTolerance)
	}
	return s, nil
}

// MergeResult is the outcome of MergePaths.
type MergeResult struct {
	Geometry *Polyline
	Reversed bool
}

// MergePaths joins "from" (already traveled) and "to" (continuing) polylines
// at whichever shared endpoint matches within MergeCoordinateTolerance,
// reversing "to"'s geometry first if that is the pairing that matches.
// Checks the (from, to) endpoint pairs tail/head, tail/tail, head/tail,
// head/head in that order. Returns
// ErrNoMergeableGeometry if no endpoint pair matches.
func MergePaths(from, to *Polyline) (MergeResult, error) {
	fromHead, fromTail := from.Points[0], from.Points[len(from.Points)-1]
	toHead, toTail := to.Points[0], to.Points[len(to.Points)-1]

	closeEnough := func(a, b Point) bool { return a.DistanceTo(b) <= MergeCoordinateTolerance }

	switch {
	case closeEnough(fromTail, toHead):
		return MergeResult{Geometry: Concat(from, to), Reversed: false}, nil
	case closeEnough(fromTail, toTail):
		return MergeResult{Geometry: Concat(from, reversePolyline(to)), Reversed: true}, nil
	case closeEnough(fromHead, toTail):
		return MergeResult{Geometry: Concat(to, from), Reversed: false}, nil
	case closeEnough(fromHead, toHead):
		return MergeResult{Geometry: Concat(reversePolyline(to), from), Reversed: true}, nil
	default:
		return MergeResult{}, roaderr.Wrap(roaderr.ErrNoMergeableGeometry, roaderr.ErrNoMergeableGeometry,
			"no shared endpoint within tolerance %.6f between merge candidates", MergeCoordinateTolerance)
	}
}
