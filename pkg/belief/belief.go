package belief

import (
	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/lintang-b-s/roadtrack/pkg/motion"
	"github.com/lintang-b-s/roadtrack/pkg/roaderr"
	"gonum.org/v1/gonum/mat"
)

// PathStateBelief is a (Path, Gaussian) pair where the Gaussian's
// dimensionality matches the path's on/off-road character.
type PathStateBelief struct {
	Path     *geometry.Path
	Gaussian motion.Gaussian
}

// IsOnRoad reports whether b's path is non-null.
func (b PathStateBelief) IsOnRoad() bool { return !b.Path.IsNull() }

// GetGlobalState returns the raw Gaussian mean, in whatever coordinate
// system (road or ground) the path dictates.
func (b PathStateBelief) GetGlobalState() *mat.VecDense { return b.Gaussian.Mean }

// GetEdge returns the last PathEdge whose signed range contains the mean's
// position, or false off-road.
func (b PathStateBelief) GetEdge() (geometry.PathEdge, bool) {
	if !b.IsOnRoad() {
		return geometry.PathEdge{}, false
	}
	return b.Path.GetEdgeForDistance(b.Gaussian.Mean.AtVec(0))
}

// GetGroundBelief returns the 4D ground-coordinate projection of b,
// identity when b is already off-road.
func (b PathStateBelief) GetGroundBelief() motion.Gaussian {
	if !b.IsOnRoad() {
		return b.Gaussian
	}
	geom := b.Path.Geometry()
	proj := geometry.RoadToGround(geom, b.Path.IsBackward, true, b.Gaussian.Mean)
	cov := geometry.ProjectCovariance(proj, b.Gaussian.Cov)
	return motion.Gaussian{Mean: proj.Value, Cov: cov}
}

// ConvertToCharacter returns g reinterpreted in the coordinate system of
// targetOnRoad, converting via the full path geometry when a conversion is
// needed. No-op when the Gaussian is already in the target character.
func ConvertToCharacter(g motion.Gaussian, onRoad bool, targetOnRoad bool, path *geometry.Path) motion.Gaussian {
	if onRoad == targetOnRoad {
		return g
	}
	if targetOnRoad {
		geom := path.Geometry()
		proj := geometry.GroundToRoad(geom, path.IsBackward, true, g.Mean)
		cov := geometry.ProjectCovariance(proj, g.Cov)
		return motion.Gaussian{Mean: proj.Value, Cov: cov}
	}
	geom := path.Geometry()
	proj := geometry.RoadToGround(geom, path.IsBackward, true, g.Mean)
	cov := geometry.ProjectCovariance(proj, g.Cov)
	return motion.Gaussian{Mean: proj.Value, Cov: cov}
}

// Predict runs the Kalman predict step using the model matching path's
// on/off-road character, first converting prior to that character if it
// differs (§4.4).
func Predict(prior PathStateBelief, path *geometry.Path, dt float64, qRoad, qGround mat.Symmetric) PathStateBelief {
	targetOnRoad := !path.IsNull()
	converted := ConvertToCharacter(prior.Gaussian, prior.IsOnRoad(), targetOnRoad, priorPathOrTarget(prior, path))

	var next motion.Gaussian
	if targetOnRoad {
		next = motion.Predict(motion.RoadModel(dt), converted, qRoad)
	} else {
		next = motion.Predict(motion.GroundModel(dt), converted, qGround)
	}
	return PathStateBelief{Path: path, Gaussian: next}
}

// priorPathOrTarget picks whichever of prior's own path or the target path
// is non-null, since ConvertToCharacter needs a concrete path geometry to
// convert through and exactly one side of a road<->ground conversion is
// on-road.
func priorPathOrTarget(prior PathStateBelief, target *geometry.Path) *geometry.Path {
	if prior.IsOnRoad() {
		return prior.Path
	}
	return target
}

// Measure runs the Kalman update against observation obs (2D ground
// coordinates) with covariance obsCov, routing through the road-observation
// construction (§4.3) when b is on-road. edge must be the PathEdge carrying
// b's posterior mean; passing a different edge is a contract violation.
func Measure(b PathStateBelief, obs *mat.VecDense, obsCov mat.Symmetric, edge geometry.PathEdge) PathStateBelief {
	if !b.IsOnRoad() {
		updated := motion.Update(groundObsMatrix, b.Gaussian, obs, obsCov)
		return PathStateBelief{Path: b.Path, Gaussian: updated}
	}

	containing, ok := b.GetEdge()
	if ok {
		roaderr.AssertInvariant(containing.Edge.ID == edge.Edge.ID, "Measure called with an edge other than the one carrying the posterior mean")
	}

	yPos, sigmaPos := RoadObservation(edge, obs, obsCov)
	oRoad := mat.NewDense(1, 2, []float64{1, 0})
	updated := motion.Update(oRoad, b.Gaussian, yPos, sigmaPos)
	updated.Mean.SetVec(0, b.Path.ClampToPath(updated.Mean.AtVec(0)))
	return PathStateBelief{Path: b.Path, Gaussian: updated}
}

// GetStateBeliefOnPath rewraps b onto newPath, converting coordinates and
// sign as needed. Fails with ErrUnrepresentable if the mean's position
// cannot be placed on newPath within EdgeLengthErrorTolerance.
func GetStateBeliefOnPath(b PathStateBelief, newPath *geometry.Path) (PathStateBelief, error) {
	ground := b.GetGroundBelief()

	if newPath.IsNull() {
		return PathStateBelief{Path: newPath, Gaussian: ground}, nil
	}

	geom := newPath.Geometry()
	roadProj := geometry.GroundToRoad(geom, newPath.IsBackward, true, ground.Mean)
	s, err := geometry.AdjustForOppositeDirection(roadProj.Value.AtVec(0), newPath.TotalDistance())
	if err != nil {
		return PathStateBelief{}, err
	}
	roadProj.Value.SetVec(0, s)

	cov := geometry.ProjectCovariance(roadProj, ground.Cov)
	return PathStateBelief{Path: newPath, Gaussian: motion.Gaussian{Mean: roadProj.Value, Cov: cov}}, nil
}
