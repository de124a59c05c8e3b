// Package belief implements PathStateBelief: the (Path, Gaussian) pair that
// couples the road/ground Kalman models to the current candidate path, and
// the road-observation construction that lets a 2D ground observation
// measure against an on-road belief.
package belief

import (
	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/lintang-b-s/roadtrack/pkg/numeric"
	"gonum.org/v1/gonum/mat"
)

// groundObsMatrix is O_g, the fixed (dt-independent) ground observation
// matrix extracting position from [x, xdot, y, ydot].
var groundObsMatrix = mat.NewDense(2, 4, []float64{
	1, 0, 0, 0,
	0, 0, 1, 0,
})

// RoadObservation maps a 2D ground observation y (with covariance obsCov)
// onto a 1D pseudo-observation on edge, per §4.3: lift y to 4D ground space
// with zero velocity and covariance O_g^T*obsCov*O_g, project to road
// coordinates on edge with useAbsVelocity=true, then take the position
// component. The edge must be the one carrying the posterior mean.
func RoadObservation(edge geometry.PathEdge, y *mat.VecDense, obsCov mat.Symmetric) (yPos *mat.VecDense, sigmaPos mat.Symmetric) {
	lifted := mat.NewVecDense(4, []float64{y.AtVec(0), 0, y.AtVec(1), 0})

	var tmp mat.Dense
	tmp.Mul(groundObsMatrix.T(), obsCov)
	var liftedCovDense mat.Dense
	liftedCovDense.Mul(&tmp, groundObsMatrix)
	liftedCov := numeric.SymmetrizeCopy(&liftedCovDense)

	seg := edge.Edge.Geometry
	proj := geometry.GroundToRoad(seg, edge.IsBackward, true, lifted)

	roadCov := geometry.ProjectCovariance(proj, liftedCov)

	// proj.Value is measured from this edge's own geometry start; convert to
	// the path-origin convention the belief's road state is expressed in.
	sPath := edge.DistToStartOfEdge + proj.Value.AtVec(0)

	yPos = mat.NewVecDense(1, []float64{sPath})
	sigmaPos = mat.NewSymDense(1, []float64{roadCov.At(0, 0)})
	return yPos, sigmaPos
}
