package numeric

import (
	"math"

	"github.com/lintang-b-s/roadtrack/pkg/roaderr"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// SampleMVN draws a single sample from N(mean, cov) using the supplied RNG.
// cov need not be full rank: samples are generated via RootPSD rather than
// gonum's distmv.NewNormal, which requires a Cholesky decomposition and so
// rejects the rank-deficient covariances this estimator produces routinely
// (e.g. a freshly created path-state belief with zero velocity variance).
func SampleMVN(mean *mat.VecDense, cov mat.Symmetric, rng *rand.Rand) *mat.VecDense {
	n := mean.Len()
	root := RootPSD(cov)

	z := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		z.SetVec(i, rng.NormFloat64())
	}

	var scaled mat.VecDense
	scaled.MulVec(root, z)

	var out mat.VecDense
	out.AddVec(mean, &scaled)
	return &out
}

// LogDensityMVN evaluates the log-density of x under N(mean, cov) using
// gonum's distmv.NewNormal. cov must be full rank; callers evaluating
// likelihoods against potentially rank-deficient covariances should add a
// small regularizing diagonal first, or use Mahalanobis2 instead.
func LogDensityMVN(x, mean *mat.VecDense, cov mat.Symmetric, src rand.Source) (float64, error) {
	normal, ok := distmv.NewNormal(mean.RawVector().Data, cov, src)
	if !ok {
		return math.Inf(-1), roaderr.Wrap(roaderr.ErrNotPositiveDefinite, roaderr.ErrNotPositiveDefinite,
			"distmv.NewNormal rejected covariance as non positive-definite")
	}
	return normal.LogProb(x.RawVector().Data), nil
}

// Mahalanobis2 returns the squared Mahalanobis distance (x-mean)^T cov^-1
// (x-mean), computed via the pseudoinverse square root so it tolerates a
// rank-deficient cov.
func Mahalanobis2(x, mean *mat.VecDense, cov mat.Symmetric) float64 {
	n := mean.Len()
	diff := mat.NewVecDense(n, nil)
	diff.SubVec(x, mean)

	pinvRoot := PseudoInverseRoot(cov)
	var transformed mat.VecDense
	transformed.MulVec(pinvRoot, diff)

	return mat.Dot(&transformed, &transformed)
}
