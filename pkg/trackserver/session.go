package trackserver

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lintang-b-s/roadtrack/pkg/estimator"
	"github.com/lintang-b-s/roadtrack/pkg/geo"
	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/lintang-b-s/roadtrack/pkg/gpsobs"
	"github.com/lintang-b-s/roadtrack/pkg/rtconfig"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Tracker holds the shared, read-only state every websocket session tracks
// against: the particle updater and the planar projection its road graph
// was built in.
type Tracker struct {
	updater *estimator.Updater
	origin  geo.PlanarOrigin
	params  rtconfig.VehicleStateInitialParameters
	log     *zap.Logger

	sessionSeq int64
}

// NewTracker builds a Tracker. origin must be the same projection the
// updater's graph's edge geometry was built in (see rgraph.Graph.Origin).
func NewTracker(updater *estimator.Updater, origin geo.PlanarOrigin, params rtconfig.VehicleStateInitialParameters, log *zap.Logger) *Tracker {
	return &Tracker{updater: updater, origin: origin, params: params, log: log}
}

// session carries one connection's per-vehicle state: the current particle
// population, the last observation (for dt computation), and a private RNG
// for resampling draws.
type session struct {
	pop     *estimator.Population
	prevObs *gpsobs.GpsObservation
	rng     *rand.Rand
	seed    int64
}

func (t *Tracker) newSession() *session {
	seq := atomic.AddInt64(&t.sessionSeq, 1)
	mixConstant := uint64(0x9E3779B97F4A7C15)
	seed := time.Now().UnixNano() ^ (seq * int64(mixConstant))
	return &session{
		rng:  rand.New(rand.NewSource(uint64(seed))),
		seed: seed,
	}
}

// fixRequest is one inbound GPS fix.
type fixRequest struct {
	Lat             float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon             float64 `json:"lon" validate:"required,min=-180,max=180"`
	TimestampMillis int64   `json:"timestampMillis" validate:"required"`
}

// fixResponse is the current population estimate after applying a fix.
type fixResponse struct {
	TimestampMillis int64   `json:"timestampMillis"`
	MeanX           float64 `json:"meanX"`
	MeanY           float64 `json:"meanY"`
	OnRoadFraction  float64 `json:"onRoadFraction"`
	EdgeID          string  `json:"edgeId,omitempty"`
	Polyline        string  `json:"polyline,omitempty"`
	NumParticles    int     `json:"numParticles"`
	SnapDistance    float64 `json:"snapDistanceMeters,omitempty"`
}

// applyFix advances sess by one observation and returns the new estimate.
func (t *Tracker) applyFix(ctx context.Context, sess *session, req fixRequest) (*fixResponse, error) {
	x, y := t.origin.ToPlanar(geo.NewCoordinate(req.Lat, req.Lon))
	point := mat.NewVecDense(2, []float64{x, y})
	obs := gpsobs.GpsObservation{
		TimestampMillis: req.TimestampMillis,
		ProjectedPoint:  point,
		Previous:        sess.prevObs,
	}

	var pop *estimator.Population
	if sess.pop == nil {
		created, err := t.updater.CreateInitialParticles(obs, t.params.NumParticles, sess.seed)
		if err != nil {
			return nil, fmt.Errorf("initializing particles: %w", err)
		}
		pop = created
	} else {
		dt := obs.DeltaSeconds(t.params.InitialObsFreq)
		updated, err := t.updater.Update(ctx, sess.pop, obs, dt)
		if err != nil {
			return nil, fmt.Errorf("advancing particles: %w", err)
		}
		pop = t.updater.Resample(updated, obs, sess.rng)
	}

	obsCopy := obs
	sess.pop = pop
	sess.prevObs = &obsCopy

	rawFix := geo.NewCoordinate(req.Lat, req.Lon)
	return t.summarize(pop, req.TimestampMillis, rawFix), nil
}

// summarize reduces pop to a single reported estimate: the particle mean
// ground position and on-road fraction, plus the edge of the
// highest-likelihood on-road particle (if any are on-road) and that edge's
// real-world snap distance from rawFix, the lat/lon fix as received before
// planar projection.
func (t *Tracker) summarize(pop *estimator.Population, timestampMillis int64, rawFix geo.Coordinate) *fixResponse {
	var sumX, sumY float64
	var onRoadCount int
	var bestLL = -1.0
	var bestEdgeID string
	var bestPolyline string
	var bestEdge *geometry.InferredEdge
	first := true

	for _, p := range pop.Particles {
		ground := p.Belief.GetGroundBelief()
		sumX += ground.Mean.AtVec(0)
		sumY += ground.Mean.AtVec(2)

		if !p.Belief.IsOnRoad() {
			continue
		}
		onRoadCount++

		pathEdge, ok := p.Belief.GetEdge()
		if !ok {
			continue
		}
		ll := t.updater.ComputeLogLikelihood(p, p.Observation)
		if first || ll > bestLL {
			first = false
			bestLL = ll
			bestEdgeID = pathEdge.Edge.ID
			bestPolyline = geometry.EncodePolyline(pathEdge.Edge.Geometry)
			bestEdge = pathEdge.Edge
		}
	}

	n := len(pop.Particles)
	resp := &fixResponse{
		TimestampMillis: timestampMillis,
		NumParticles:    n,
	}
	if n > 0 {
		resp.MeanX = sumX / float64(n)
		resp.MeanY = sumY / float64(n)
		resp.OnRoadFraction = float64(onRoadCount) / float64(n)
	}
	resp.EdgeID = bestEdgeID
	resp.Polyline = bestPolyline
	if bestEdge != nil {
		startCoord := t.origin.FromPlanar(bestEdge.Start.X, bestEdge.Start.Y)
		endCoord := t.origin.FromPlanar(bestEdge.End.X, bestEdge.End.Y)
		resp.SnapDistance = geo.PointLinePerpendicularDistance(startCoord, endCoord, rawFix)
	}
	return resp
}
