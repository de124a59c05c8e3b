// Package numeric holds the small set of positive-semi-definite matrix
// operations the estimator core leans on repeatedly: PSD square roots with a
// negative-eigenvalue floor, and truncated-SVD/eigendecomposition pseudo-
// inverse square roots. These stand in for the reference system's
// StatisticsUtil, but as free functions taking gonum matrices explicitly
// rather than a global math context.
package numeric

import (
	"math"

	"github.com/lintang-b-s/roadtrack/pkg/roaderr"
	"gonum.org/v1/gonum/mat"
)

// NegativeEigenvalueFloor is the tolerance below which a negative eigenvalue
// is treated as numerical noise (clamped to zero) rather than a genuine
// invariant violation.
const NegativeEigenvalueFloor = 1e-7

// RootPSD returns a matrix S such that S*S^T approximates sym, clamping any
// eigenvalue in (-NegativeEigenvalueFloor, 0] to zero. An eigenvalue more
// negative than the floor indicates sym was not actually positive
// semi-definite, which is an internal invariant violation: this fails fast
// rather than silently producing garbage.
func RootPSD(sym mat.Symmetric) *mat.Dense {
	n := sym.SymmetricDim()
	var eig mat.EigenSym
	ok := eig.Factorize(sym, true)
	roaderr.AssertInvariant(ok, "eigendecomposition of a symmetric matrix failed")

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	root := mat.NewDense(n, n, nil)
	for j, lambda := range values {
		if lambda < 0 {
			if lambda < -NegativeEigenvalueFloor {
				roaderr.AssertInvariant(false, "covariance eigenvalue below negative-eigenvalue floor: not positive semi-definite")
			}
			lambda = 0
		}
		s := math.Sqrt(lambda)
		for i := 0; i < n; i++ {
			root.Set(i, j, vectors.At(i, j)*s)
		}
	}
	return root
}

// PseudoInverseRoot returns the Moore-Penrose pseudoinverse square root of
// sym: a matrix F- of the same shape as sym such that, on the range of sym,
// F- acts as the inverse of RootPSD(sym). Eigenvalues (equivalently singular
// values, since sym is symmetric PSD) at or below NegativeEigenvalueFloor are
// treated as belonging to the null space and mapped to zero, following the
// "truncated SVD-based pseudoinverse square root" construction called for
// when the source's rootOfSemiDefinite is given a signed/pseudo-inverse
// request.
func PseudoInverseRoot(sym mat.Symmetric) *mat.Dense {
	n := sym.SymmetricDim()
	var eig mat.EigenSym
	ok := eig.Factorize(sym, true)
	roaderr.AssertInvariant(ok, "eigendecomposition of a symmetric matrix failed")

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	root := mat.NewDense(n, n, nil)
	for j, lambda := range values {
		var s float64
		if lambda > NegativeEigenvalueFloor {
			s = 1 / math.Sqrt(lambda)
		}
		for i := 0; i < n; i++ {
			root.Set(i, j, vectors.At(i, j)*s)
		}
	}
	// root currently holds U * diag(s); the pseudoinverse root, applied to a
	// vector in the original basis, must first change into eigenbasis
	// coordinates and back: F- = U * diag(s) * U^T.
	var pinv mat.Dense
	pinv.Mul(root, vectors.T())
	return &pinv
}

// PseudoInverseMatrix returns the Moore-Penrose pseudoinverse of an
// arbitrary (possibly non-square) matrix m, via truncated SVD with the same
// tolerance used elsewhere in this package.
func PseudoInverseMatrix(m mat.Matrix) *mat.Dense {
	var svd mat.SVD
	ok := svd.Factorize(m, mat.SVDFull)
	roaderr.AssertInvariant(ok, "SVD factorization failed")

	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	r, c := m.Dims()
	sInv := mat.NewDense(c, r, nil)
	for i, sv := range values {
		if sv > NegativeEigenvalueFloor {
			sInv.Set(i, i, 1/sv)
		}
	}

	var tmp mat.Dense
	tmp.Mul(&v, sInv)
	var result mat.Dense
	result.Mul(&tmp, u.T())
	return &result
}

// IsPositiveSemiDefinite reports whether every eigenvalue of sym is no more
// negative than NegativeEigenvalueFloor.
func IsPositiveSemiDefinite(sym mat.Symmetric) bool {
	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return false
	}
	for _, lambda := range eig.Values(nil) {
		if lambda < -NegativeEigenvalueFloor {
			return false
		}
	}
	return true
}

// SymmetrizeCopy returns 0.5*(m+m^T) as a *mat.SymDense, which guards against
// asymmetry creeping in from floating point round-off in chained matrix
// products before a value is handed to a routine that requires
// mat.Symmetric.
func SymmetrizeCopy(m mat.Matrix) *mat.SymDense {
	r, c := m.Dims()
	roaderr.AssertInvariant(r == c, "SymmetrizeCopy requires a square matrix")
	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			v := 0.5 * (m.At(i, j) + m.At(j, i))
			sym.SetSym(i, j, v)
		}
	}
	return sym
}
