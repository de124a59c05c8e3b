package trackserver

import (
	"context"
	"testing"

	"github.com/lintang-b-s/roadtrack/pkg/belief"
	"github.com/lintang-b-s/roadtrack/pkg/estimator"
	"github.com/lintang-b-s/roadtrack/pkg/geo"
	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/lintang-b-s/roadtrack/pkg/gpsobs"
	"github.com/lintang-b-s/roadtrack/pkg/motion"
	"github.com/lintang-b-s/roadtrack/pkg/rtconfig"
	"github.com/lintang-b-s/roadtrack/pkg/vehicle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

type fakeTrackerGraph struct {
	e1 *geometry.InferredEdge
}

func newFakeTrackerGraph() *fakeTrackerGraph {
	return &fakeTrackerGraph{
		e1: geometry.NewInferredEdge("e1", geometry.NewPolyline([]geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}), true),
	}
}

func (g *fakeTrackerGraph) NearbyEdges(center geometry.Point, radiusScale float64) []geometry.InferenceGraphSegment {
	return []geometry.InferenceGraphSegment{{Edge: g.e1}}
}

func (g *fakeTrackerGraph) Outgoing(edge *geometry.InferredEdge) []*geometry.InferredEdge {
	return nil
}

func testTrackerParams() rtconfig.VehicleStateInitialParameters {
	return rtconfig.VehicleStateInitialParameters{
		ObsCov:         [2]float64{1, 1},
		ObsCovDof:      10,
		OnRoadCov:      [2]float64{0.1, 0.1},
		OnRoadCovDof:   10,
		OffRoadCov:     [4]float64{0.1, 0.1, 0.1, 0.1},
		OffRoadCovDof:  10,
		InitialObsFreq: 1,
		NumParticles:   8,
		Seed:           1,
	}
}

func newTestTracker() *Tracker {
	updater := estimator.New(newFakeTrackerGraph(), testTrackerParams().ToFilterParameters(), zap.NewNop())
	origin := geo.NewPlanarOrigin(geo.NewCoordinate(0, 0))
	return NewTracker(updater, origin, testTrackerParams(), zap.NewNop())
}

func onRoadParticle() *vehicle.VehicleState {
	edge := geometry.NewInferredEdge("e1", geometry.NewPolyline([]geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}), true)
	path := &geometry.Path{Edges: []geometry.PathEdge{{Edge: edge, DistToStartOfEdge: 0}}}
	return &vehicle.VehicleState{
		Observation: gpsobs.GpsObservation{ProjectedPoint: mat.NewVecDense(2, []float64{10, 0})},
		Belief: belief.PathStateBelief{
			Path:     path,
			Gaussian: motion.Gaussian{Mean: mat.NewVecDense(2, []float64{10, 0}), Cov: mat.NewSymDense(2, []float64{1, 0, 0, 1})},
		},
		Filter: vehicle.NewFilter(testTrackerParams().ToFilterParameters(), false, rand.New(rand.NewSource(1))),
	}
}

func offRoadParticle() *vehicle.VehicleState {
	return &vehicle.VehicleState{
		Observation: gpsobs.GpsObservation{ProjectedPoint: mat.NewVecDense(2, []float64{5, 5})},
		Belief: belief.PathStateBelief{
			Path:     geometry.NullPath(),
			Gaussian: motion.Gaussian{Mean: mat.NewVecDense(4, []float64{5, 0, 5, 0}), Cov: mat.NewSymDense(4, []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1})},
		},
		Filter: vehicle.NewFilter(testTrackerParams().ToFilterParameters(), false, rand.New(rand.NewSource(2))),
	}
}

func TestSummarizeAllOffRoad(t *testing.T) {
	t.Parallel()

	tr := newTestTracker()
	pop := &estimator.Population{Particles: []*vehicle.VehicleState{offRoadParticle(), offRoadParticle()}}

	resp := tr.summarize(pop, 1000, geo.NewCoordinate(0, 0))
	assert.Equal(t, 2, resp.NumParticles)
	assert.InDelta(t, 0, resp.OnRoadFraction, 1e-9)
	assert.Empty(t, resp.EdgeID)
}

func TestSummarizeMixedPopulationReportsOnRoadFraction(t *testing.T) {
	t.Parallel()

	tr := newTestTracker()
	pop := &estimator.Population{Particles: []*vehicle.VehicleState{onRoadParticle(), offRoadParticle()}}

	resp := tr.summarize(pop, 1000, geo.NewCoordinate(0, 0))
	assert.InDelta(t, 0.5, resp.OnRoadFraction, 1e-9)
	assert.Equal(t, "e1", resp.EdgeID)
	assert.NotEmpty(t, resp.Polyline)
	assert.GreaterOrEqual(t, resp.SnapDistance, 0.0)
}

func TestSummarizeEmptyPopulation(t *testing.T) {
	t.Parallel()

	tr := newTestTracker()
	resp := tr.summarize(&estimator.Population{}, 42, geo.NewCoordinate(0, 0))
	assert.Equal(t, 0, resp.NumParticles)
	assert.Equal(t, int64(42), resp.TimestampMillis)
}

func TestApplyFixInitializesThenAdvancesSession(t *testing.T) {
	t.Parallel()

	tr := newTestTracker()
	sess := tr.newSession()

	first, err := tr.applyFix(context.Background(), sess, fixRequest{Lat: 0.00001, Lon: 0.00001, TimestampMillis: 0})
	require.NoError(t, err)
	assert.Equal(t, testTrackerParams().NumParticles, first.NumParticles)
	require.NotNil(t, sess.pop)

	second, err := tr.applyFix(context.Background(), sess, fixRequest{Lat: 0.00002, Lon: 0.00002, TimestampMillis: 1000})
	require.NoError(t, err)
	assert.Greater(t, second.NumParticles, 0)
}
