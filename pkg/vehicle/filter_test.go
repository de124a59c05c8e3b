package vehicle

import (
	"testing"

	"github.com/lintang-b-s/roadtrack/pkg/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func testParams() InitialParameters {
	return InitialParameters{
		ObsCov:         [2]float64{1, 1},
		ObsCovDof:      10,
		OnRoadCov:      [2]float64{1, 1},
		OnRoadCovDof:   10,
		OffRoadCov:     [4]float64{1, 1, 1, 1},
		OffRoadCovDof:  10,
		InitialObsFreq: 1,
	}
}

func TestNewFilterMeanModeUsesPriorMean(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	f := NewFilter(testParams(), false, rng)

	assert.InDelta(t, 1, f.Sigma.At(0, 0), 1e-9)
	assert.InDelta(t, 1, f.QRoad.At(0, 0), 1e-9)
	assert.InDelta(t, 1, f.QGround.At(0, 0), 1e-9)
}

func TestNewFilterStochasticModeProducesPSDCovariances(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(2))
	f := NewFilter(testParams(), true, rng)

	assert.True(t, numeric.IsPositiveSemiDefinite(f.Sigma))
	assert.True(t, numeric.IsPositiveSemiDefinite(f.QRoad))
	assert.True(t, numeric.IsPositiveSemiDefinite(f.QGround))
}

func TestFilterCloneIsIndependent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	f := NewFilter(testParams(), false, rng)
	clone := f.Clone()

	clone.Sigma.SetSym(0, 0, 99)
	clone.ObsPrior.Dof = 999

	assert.InDelta(t, 1, f.Sigma.At(0, 0), 1e-9)
	assert.NotEqual(t, clone.ObsPrior.Dof, f.ObsPrior.Dof)
}

func TestFilterCloneCopiesNilStateSamples(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(4))
	f := NewFilter(testParams(), false, rng)
	require.Nil(t, f.PrevStateSample)

	clone := f.Clone()
	assert.Nil(t, clone.PrevStateSample)
	assert.Nil(t, clone.CurrentStateSample)
}
