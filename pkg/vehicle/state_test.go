package vehicle

import (
	"testing"

	"github.com/lintang-b-s/roadtrack/pkg/belief"
	"github.com/lintang-b-s/roadtrack/pkg/gpsobs"
	"github.com/lintang-b-s/roadtrack/pkg/transition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func testState(rng *rand.Rand) *VehicleState {
	return &VehicleState{
		Observation: gpsobs.GpsObservation{},
		Belief:      belief.PathStateBelief{},
		Filter:      NewFilter(testParams(), false, rng),
		Transition:  transition.New(0.1, nil),
		RNG:         rng,
	}
}

func TestStateCloneDeepCopiesFilter(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	v := testState(rng)
	clone := v.Clone()

	clone.Filter.Sigma.SetSym(0, 0, 42)
	assert.NotEqual(t, v.Filter.Sigma.At(0, 0), clone.Filter.Sigma.At(0, 0))
}

func TestStateCloneSharesRNG(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(2))
	v := testState(rng)
	clone := v.Clone()
	assert.Same(t, v.RNG, clone.RNG)
}

func TestStateCloneSharesParentPointer(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	parent := testState(rng)
	v := testState(rng)
	v.Parent = parent

	clone := v.Clone()
	assert.Same(t, parent, clone.Parent)
}

func TestWithParentTruncatesLineageToOneDeep(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(4))
	grandparent := testState(rng)
	parent := testState(rng)
	parent.Parent = grandparent

	child := testState(rng)
	result := WithParent(child, parent)

	require.NotNil(t, result.Parent)
	assert.Nil(t, result.Parent.Parent)
}

func TestWithParentDoesNotMutateOriginalParent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(5))
	grandparent := testState(rng)
	parent := testState(rng)
	parent.Parent = grandparent

	_ = WithParent(testState(rng), parent)
	assert.Same(t, grandparent, parent.Parent)
}
