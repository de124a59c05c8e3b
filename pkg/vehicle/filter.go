// Package vehicle assembles the per-particle RoadTrackingFilter and
// VehicleState: the Kalman model pair, the three inverse-Wishart covariance
// priors, and the smoothed-sample bookkeeping the covariance-learning step
// needs.
package vehicle

import (
	"github.com/lintang-b-s/roadtrack/pkg/belief"
	"github.com/lintang-b-s/roadtrack/pkg/covariance"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// InitialParameters mirrors the documented VehicleStateInitialParameters
// configuration surface (§6); validated struct tags live on the
// config-loading type in pkg/rtconfig, this is the plain value the filter
// is constructed from.
type InitialParameters struct {
	ObsCov        [2]float64
	ObsCovDof     float64
	OnRoadCov     [2]float64
	OnRoadCovDof  float64
	OffRoadCov    [4]float64
	OffRoadCovDof float64
	InitialObsFreq float64
}

// RoadTrackingFilter holds the per-particle Kalman model pair, the three
// inverse-Wishart priors, and the smoothed-sample bookkeeping used by
// covariance learning (§4.8).
type RoadTrackingFilter struct {
	Params InitialParameters

	ObsPrior     *covariance.InverseWishartPosterior
	OnRoadPrior  *covariance.InverseWishartPosterior
	OffRoadPrior *covariance.InverseWishartPosterior

	Sigma  *mat.SymDense // current Sigma_obs
	QRoad  *mat.SymDense // current Q_r
	QGround *mat.SymDense // current Q_g

	PrevStateSample    *belief.PathStateBelief
	CurrentStateSample *belief.PathStateBelief
}

// NewFilter builds a RoadTrackingFilter from configuration. When
// stochastic is true, initial covariances are drawn from their priors
// rather than set to the prior mean (§4.8 "Prior construction").
func NewFilter(params InitialParameters, stochastic bool, rng *rand.Rand) *RoadTrackingFilter {
	obsPrior := covariance.NewPrior(params.ObsCov[:], params.ObsCovDof, 2)
	onRoadPrior := covariance.NewPrior(params.OnRoadCov[:], params.OnRoadCovDof, 2)
	offRoadPrior := covariance.NewPrior(params.OffRoadCov[:], params.OffRoadCovDof, 4)

	f := &RoadTrackingFilter{
		Params:       params,
		ObsPrior:     obsPrior,
		OnRoadPrior:  onRoadPrior,
		OffRoadPrior: offRoadPrior,
	}

	if stochastic {
		f.Sigma = obsPrior.Sample(rng)
		f.QRoad = onRoadPrior.Sample(rng)
		f.QGround = offRoadPrior.Sample(rng)
	} else {
		f.Sigma = obsPrior.Mean()
		f.QRoad = onRoadPrior.Mean()
		f.QGround = offRoadPrior.Mean()
	}
	return f
}

// Clone performs a deep copy of all mutable math objects, as required when
// a particle is duplicated across a resampling step.
func (f *RoadTrackingFilter) Clone() *RoadTrackingFilter {
	clone := &RoadTrackingFilter{
		Params: f.Params,
		ObsPrior: &covariance.InverseWishartPosterior{
			Dim: f.ObsPrior.Dim, Dof: f.ObsPrior.Dof, Psi: cloneSym(f.ObsPrior.Psi),
		},
		OnRoadPrior: &covariance.InverseWishartPosterior{
			Dim: f.OnRoadPrior.Dim, Dof: f.OnRoadPrior.Dof, Psi: cloneSym(f.OnRoadPrior.Psi),
		},
		OffRoadPrior: &covariance.InverseWishartPosterior{
			Dim: f.OffRoadPrior.Dim, Dof: f.OffRoadPrior.Dof, Psi: cloneSym(f.OffRoadPrior.Psi),
		},
		Sigma:   cloneSym(f.Sigma),
		QRoad:   cloneSym(f.QRoad),
		QGround: cloneSym(f.QGround),
	}
	if f.PrevStateSample != nil {
		s := *f.PrevStateSample
		clone.PrevStateSample = &s
	}
	if f.CurrentStateSample != nil {
		s := *f.CurrentStateSample
		clone.CurrentStateSample = &s
	}
	return clone
}

func cloneSym(s *mat.SymDense) *mat.SymDense {
	if s == nil {
		return nil
	}
	n := s.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, s.At(i, j))
		}
	}
	return out
}
