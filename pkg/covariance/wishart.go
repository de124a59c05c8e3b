// Package covariance implements the inverse-Wishart conjugate priors for the
// three learned covariance matrices (Sigma_obs, Q_r, Q_g) and the §4.8
// covariance-learning update steps.
package covariance

import (
	"github.com/lintang-b-s/roadtrack/pkg/numeric"
	"github.com/lintang-b-s/roadtrack/pkg/roaderr"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmat"
)

// InverseWishartPosterior holds the sufficient statistics (Psi, dof) of an
// inverse-Wishart distribution over a dim x dim covariance matrix.
type InverseWishartPosterior struct {
	Dim int
	Dof float64
	Psi *mat.SymDense
}

// NewPrior builds the initial inverse-Wishart prior from configuration
// (scale, dof, dim): inverse scale = diag(scale) * (dof - dim - 1), so that
// the prior mean is numerically equal to diag(scale).
func NewPrior(scale []float64, dof float64, dim int) *InverseWishartPosterior {
	roaderr.AssertInvariant(len(scale) == dim, "prior scale vector length must equal dim")
	roaderr.AssertInvariant(dof > float64(dim)+1, "inverse-Wishart dof must exceed dim+1 for a finite mean")

	factor := dof - float64(dim) - 1
	psi := mat.NewSymDense(dim, nil)
	for i, s := range scale {
		psi.SetSym(i, i, s*factor)
	}
	return &InverseWishartPosterior{Dim: dim, Dof: dof, Psi: psi}
}

// Mean returns Psi / (dof - dim - 1), the inverse-Wishart mean.
func (p *InverseWishartPosterior) Mean() *mat.SymDense {
	factor := p.Dof - float64(p.Dim) - 1
	out := mat.NewSymDense(p.Dim, nil)
	for i := 0; i < p.Dim; i++ {
		for j := i; j < p.Dim; j++ {
			out.SetSym(i, j, p.Psi.At(i, j)/factor)
		}
	}
	return out
}

// Update performs the rank-1 posterior update (nu, Psi) <- (nu+1, Psi + e e^T)
// from a residual outer product.
func (p *InverseWishartPosterior) Update(e *mat.VecDense) {
	roaderr.AssertInvariant(e.Len() == p.Dim, "residual dimension must match posterior dim")
	var outer mat.Dense
	outer.Outer(1, e, e)
	for i := 0; i < p.Dim; i++ {
		for j := i; j < p.Dim; j++ {
			p.Psi.SetSym(i, j, p.Psi.At(i, j)+outer.At(i, j))
		}
	}
	p.Dof++
}

// Sample draws a fresh covariance matrix from the current posterior via
// Sigma^-1 ~ Wishart(Psi^-1, dof), Sigma = (Sigma^-1)^-1.
func (p *InverseWishartPosterior) Sample(rng *rand.Rand) *mat.SymDense {
	var psiInvDense mat.Dense
	err := psiInvDense.Inverse(p.Psi)
	roaderr.AssertInvariant(err == nil, "inverse-Wishart Psi accumulator is singular")
	psiInv := numeric.SymmetrizeCopy(&psiInvDense)

	wishart, ok := distmat.NewWishart(psiInv, p.Dof, rng)
	roaderr.AssertInvariant(ok, "Wishart distribution construction failed (dof too small for dim)")

	w := mat.NewSymDense(p.Dim, nil)
	wishart.RandSymTo(w)
	var sigmaDense mat.Dense
	invErr := sigmaDense.Inverse(w)
	roaderr.AssertInvariant(invErr == nil, "sampled Wishart draw is singular")

	return numeric.SymmetrizeCopy(&sigmaDense)
}
