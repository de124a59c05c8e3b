package vehicle

import (
	"github.com/lintang-b-s/roadtrack/pkg/belief"
	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/lintang-b-s/roadtrack/pkg/motion"
	"github.com/lintang-b-s/roadtrack/pkg/numeric"
	"github.com/lintang-b-s/roadtrack/pkg/roaderr"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// groundObsMatrix is O_g, duplicated from pkg/belief to avoid an import
// cycle (belief already depends on geometry/motion; vehicle depends on
// belief).
var groundObsMatrix = mat.NewDense(2, 4, []float64{
	1, 0, 0, 0,
	0, 0, 1, 0,
})

// edgeAt returns the PathEdge on path containing signed position s, clamped
// first to the path's own range.
func edgeAt(path *geometry.Path, s float64) (geometry.PathEdge, bool) {
	if path.IsNull() {
		return geometry.PathEdge{}, false
	}
	return path.GetEdgeForDistance(path.ClampToPath(s))
}

// roadMeasurement returns the observation/covariance pair a measurement
// against prior's on/off-road character would use: the §4.3 road pseudo-
// observation when on-road, the raw ground observation otherwise.
func roadMeasurement(onRoad bool, path *geometry.Path, posS float64, obs *mat.VecDense, sigmaObs mat.Symmetric) (*mat.VecDense, mat.Symmetric, geometry.PathEdge) {
	if !onRoad {
		return obs, sigmaObs, geometry.PathEdge{}
	}
	edge, ok := edgeAt(path, posS)
	roaderr.AssertInvariant(ok, "on-road state has no containing edge")
	y, sigma := belief.RoadObservation(edge, obs, sigmaObs)
	return y, sigma, edge
}

// LearnCovariance runs the §4.8 covariance-learning steps given the prior
// belief x_{t-1|t-1}, the raw 2D ground observation y_t, and dt. F, G and Ω
// are all keyed off prior's on/off-road status, per the resolved Open
// Question in DESIGN.md (a midway on/off-road transition does not change
// which process covariance this step learns from).
func (f *RoadTrackingFilter) LearnCovariance(prior belief.PathStateBelief, obs *mat.VecDense, dt float64, rng *rand.Rand) error {
	onRoad := prior.IsOnRoad()

	var model motion.Model
	var omega *mat.SymDense
	if onRoad {
		model = motionRoadModel(dt)
		omega = f.QRoad
	} else {
		model = motionGroundModel(dt)
		omega = f.QGround
	}

	m := prior.Gaussian.Mean
	c := prior.Gaussian.Cov

	var gm mat.VecDense
	gm.MulVec(model.G, m)

	y1, sigma1, _ := roadMeasurement(onRoad, prior.Path, gm.AtVec(0), obs, f.Sigma)

	var fg mat.Dense
	fg.Mul(model.O, model.G)

	w := addSym(sandwich(model.O, omega), sigma1)
	a := addSym(sandwich(&fg, c), w)

	var aInv mat.Dense
	if err := aInv.Inverse(a); err != nil {
		return roaderr.Wrap(err, roaderr.ErrNotPositiveDefinite, "smoothing innovation covariance A is singular")
	}

	var cFgT mat.Dense
	cFgT.Mul(c, fg.T())
	var wTilde mat.Dense
	wTilde.Mul(&cFgT, &aInv)

	var fgm mat.VecDense
	fgm.MulVec(&fg, m)
	var innovation mat.VecDense
	innovation.SubVec(y1, &fgm)

	var correction mat.VecDense
	correction.MulVec(&wTilde, &innovation)
	var mTilde mat.VecDense
	mTilde.AddVec(m, &correction)

	var wTildeA mat.Dense
	wTildeA.Mul(&wTilde, a)
	var wTildeAWt mat.Dense
	wTildeAWt.Mul(&wTildeA, wTilde.T())
	cTildeDense := subDense(c, &wTildeAWt)
	cTilde := numeric.SymmetrizeCopy(cTildeDense)

	xPrev := numeric.SampleMVN(&mTilde, cTilde, rng)
	if onRoad {
		xPrev.SetVec(0, prior.Path.ClampToPath(xPrev.AtVec(0)))
	}

	var gxPrev mat.VecDense
	gxPrev.MulVec(model.G, xPrev)
	predictedGaussian := motion.Gaussian{Mean: &gxPrev, Cov: omega}

	y2, sigma2, _ := roadMeasurement(onRoad, prior.Path, gxPrev.AtVec(0), obs, f.Sigma)
	posterior2 := motion.Update(model.O, predictedGaussian, y2, sigma2)

	xCurrent := numeric.SampleMVN(posterior2.Mean, posterior2.Cov, rng)
	if onRoad {
		xCurrent.SetVec(0, prior.Path.ClampToPath(xCurrent.AtVec(0)))
	}

	ffT := numeric.SymmetrizeCopy(outer(model.F))
	fPinv := numeric.PseudoInverseRoot(ffT)

	var diff mat.VecDense
	diff.SubVec(xCurrent, &gxPrev)
	var e mat.VecDense
	e.MulVec(fPinv, &diff)

	if onRoad {
		f.OnRoadPrior.Update(&e)
		f.QRoad = f.OnRoadPrior.Sample(rng)
	} else {
		f.OffRoadPrior.Update(&e)
		f.QGround = f.OffRoadPrior.Sample(rng)
	}

	groundCurrent := xCurrent
	if onRoad {
		geom := prior.Path.Geometry()
		proj := geometry.RoadToGround(geom, prior.Path.IsBackward, true, xCurrent)
		groundCurrent = proj.Value
	}
	var predictedObs mat.VecDense
	predictedObs.MulVec(groundObsMatrix, groundCurrent)
	var r mat.VecDense
	r.SubVec(obs, &predictedObs)

	f.ObsPrior.Update(&r)
	f.Sigma = f.ObsPrior.Sample(rng)

	prevBelief := belief.PathStateBelief{Path: prior.Path, Gaussian: motion.Gaussian{Mean: xPrev, Cov: cTilde}}
	currentBelief := belief.PathStateBelief{Path: prior.Path, Gaussian: motion.Gaussian{Mean: xCurrent, Cov: posterior2.Cov}}
	f.PrevStateSample = &prevBelief
	f.CurrentStateSample = &currentBelief

	return nil
}

func motionRoadModel(dt float64) motion.Model   { return motion.RoadModel(dt) }
func motionGroundModel(dt float64) motion.Model { return motion.GroundModel(dt) }

// sandwich returns a * b * a^T as a *mat.SymDense.
func sandwich(a *mat.Dense, b mat.Symmetric) *mat.SymDense {
	var ab mat.Dense
	ab.Mul(a, b)
	var abat mat.Dense
	abat.Mul(&ab, a.T())
	return numeric.SymmetrizeCopy(&abat)
}

func addSym(a, b mat.Symmetric) *mat.SymDense {
	n := a.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, a.At(i, j)+b.At(i, j))
		}
	}
	return out
}

func subDense(a mat.Symmetric, b mat.Matrix) *mat.Dense {
	n := a.SymmetricDim()
	out := mat.NewDense(n, n, nil)
	out.Sub(a, b)
	return out
}

// outer returns F * F^T for covariance factor F.
func outer(fMat *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(fMat, fMat.T())
	return &out
}
