package motion

import (
	"github.com/lintang-b-s/roadtrack/pkg/numeric"
	"gonum.org/v1/gonum/mat"
)

// Gaussian is a mean/covariance pair over a motion state (road or ground,
// depending on context).
type Gaussian struct {
	Mean *mat.VecDense
	Cov  mat.Symmetric
}

// Predict runs the standard linear-Gaussian predict step: mean' = G*mean,
// cov' = G*cov*G^T + Q, where Q is the current process noise covariance
// (already state-space sized — see DESIGN.md's resolution of the covariance
// factor dimensionality question).
func Predict(model Model, prior Gaussian, q mat.Symmetric) Gaussian {
	var mean mat.VecDense
	mean.MulVec(model.G, prior.Mean)

	var gc mat.Dense
	gc.Mul(model.G, prior.Cov)
	var gcgt mat.Dense
	gcgt.Mul(&gc, model.G.T())

	var covDense mat.Dense
	covDense.Add(&gcgt, q)
	cov := numeric.SymmetrizeCopy(&covDense)

	return Gaussian{Mean: &mean, Cov: cov}
}

// Update runs the standard linear-Gaussian measurement update against
// observation obs with covariance obsCov, using observation matrix o.
func Update(o *mat.Dense, prior Gaussian, obs *mat.VecDense, obsCov mat.Symmetric) Gaussian {
	var innovMean mat.VecDense
	innovMean.MulVec(o, prior.Mean)
	var residual mat.VecDense
	residual.SubVec(obs, &innovMean)

	var oc mat.Dense
	oc.Mul(o, prior.Cov)
	var s mat.Dense
	s.Mul(&oc, o.T())
	var sPlusR mat.Dense
	sPlusR.Add(&s, obsCov)
	innovCov := numeric.SymmetrizeCopy(&sPlusR)

	var co mat.Dense
	co.Mul(prior.Cov, o.T())
	sInv := numeric.PseudoInverseMatrix(innovCov)

	var gain mat.Dense
	gain.Mul(&co, sInv)

	var correction mat.VecDense
	correction.MulVec(&gain, &residual)
	var mean mat.VecDense
	mean.AddVec(prior.Mean, &correction)

	var gainO mat.Dense
	gainO.Mul(&gain, o)
	r, _ := gainO.Dims()
	identity := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		identity.Set(i, i, 1)
	}
	var ImGO mat.Dense
	ImGO.Sub(identity, &gainO)
	var newCov mat.Dense
	newCov.Mul(&ImGO, prior.Cov)
	cov := numeric.SymmetrizeCopy(&newCov)

	return Gaussian{Mean: &mean, Cov: cov}
}
