package vehicle

import (
	"testing"

	"github.com/lintang-b-s/roadtrack/pkg/belief"
	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/lintang-b-s/roadtrack/pkg/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func learnTestPath() *geometry.Path {
	e1 := geometry.NewInferredEdge("e1", geometry.NewPolyline([]geometry.Point{{X: 0, Y: 0}, {X: 50, Y: 0}}), true)
	return &geometry.Path{Edges: []geometry.PathEdge{
		{Edge: e1, DistToStartOfEdge: 0},
	}}
}

func TestLearnCovarianceOnRoadUpdatesPriorsWithoutError(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	f := NewFilter(testParams(), false, rng)

	onRoadDofBefore := f.OnRoadPrior.Dof
	obsDofBefore := f.ObsPrior.Dof

	prior := belief.PathStateBelief{
		Path: learnTestPath(),
		Gaussian: motion.Gaussian{
			Mean: mat.NewVecDense(2, []float64{10, 2}),
			Cov:  mat.NewSymDense(2, []float64{1, 0, 0, 1}),
		},
	}
	obs := mat.NewVecDense(2, []float64{10, 0.1})

	err := f.LearnCovariance(prior, obs, 1.0, rng)
	require.NoError(t, err)

	assert.Equal(t, onRoadDofBefore+1, f.OnRoadPrior.Dof)
	assert.Equal(t, obsDofBefore+1, f.ObsPrior.Dof)
	require.NotNil(t, f.PrevStateSample)
	require.NotNil(t, f.CurrentStateSample)
}

func TestLearnCovarianceOffRoadUpdatesOffRoadPrior(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(2))
	f := NewFilter(testParams(), false, rng)

	offRoadDofBefore := f.OffRoadPrior.Dof

	prior := belief.PathStateBelief{
		Path: geometry.NullPath(),
		Gaussian: motion.Gaussian{
			Mean: mat.NewVecDense(4, []float64{10, 1, 10, 1}),
			Cov:  mat.NewSymDense(4, []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}),
		},
	}
	obs := mat.NewVecDense(2, []float64{11, 11})

	err := f.LearnCovariance(prior, obs, 1.0, rng)
	require.NoError(t, err)
	assert.Equal(t, offRoadDofBefore+1, f.OffRoadPrior.Dof)
}
