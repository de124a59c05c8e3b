// Package estimator implements the bootstrap particle updater (§4.5): per
// observation and per particle, predict the motion state, walk the edge
// graph forward, place the predicted mean on the sampled path, and link to
// the parent particle. Likelihood weighting and resampling live alongside
// it; the covariance-learning pass (§4.8) runs inside the same step, via
// pkg/vehicle.RoadTrackingFilter.LearnCovariance.
package estimator

import (
	"context"
	"math"
	"runtime"

	"github.com/lintang-b-s/roadtrack/pkg/belief"
	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/lintang-b-s/roadtrack/pkg/gpsobs"
	"github.com/lintang-b-s/roadtrack/pkg/motion"
	"github.com/lintang-b-s/roadtrack/pkg/numeric"
	"github.com/lintang-b-s/roadtrack/pkg/roaderr"
	"github.com/lintang-b-s/roadtrack/pkg/transition"
	"github.com/lintang-b-s/roadtrack/pkg/vehicle"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Population is the particle posterior carried between observations.
type Population struct {
	Particles []*vehicle.VehicleState
}

// Updater drives the per-observation bootstrap particle update.
type Updater struct {
	Graph  geometry.InferenceGraph
	Params vehicle.InitialParameters
	Log    *zap.Logger
}

// New builds an Updater against graph, using params for filter priors and
// log for diagnostics.
func New(graph geometry.InferenceGraph, params vehicle.InitialParameters, log *zap.Logger) *Updater {
	return &Updater{Graph: graph, Params: params, Log: log}
}

// splitSeed derives a per-particle seed from a master seed and index,
// ensuring distinct, reproducible streams without any shared generator.
func splitSeed(master int64, index int) uint64 {
	h := uint64(master) ^ 0x9E3779B97F4A7C15
	h ^= uint64(index) * 0xBF58476D1CE4E5B9
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	return h
}

// CreateInitialParticles builds the initial population from the first
// observation (§4.5 "Initialization"): one null (off-road) candidate plus
// one candidate per nearby-edge segment, mixed by
// log p(edge|transition prior) + log p(obs|candidate), then resampled with
// replacement into numParticles independent draws, each carrying its own
// seeded RNG.
func (u *Updater) CreateInitialParticles(obs gpsobs.GpsObservation, numParticles int, masterSeed int64) (*Population, error) {
	candidates, logWeights, err := u.buildInitialCandidates(obs, masterSeed)
	if err != nil {
		return nil, err
	}

	maxW := math.Inf(-1)
	for _, w := range logWeights {
		if w > maxW {
			maxW = w
		}
	}
	weights := make([]float64, len(logWeights))
	var sum float64
	for i, w := range logWeights {
		weights[i] = math.Exp(w - maxW)
		sum += weights[i]
	}

	masterRNG := rand.New(rand.NewSource(splitSeed(masterSeed, -1)))
	particles := make([]*vehicle.VehicleState, numParticles)
	for i := 0; i < numParticles; i++ {
		idx := sampleCategorical(weights, sum, masterRNG)
		clone := candidates[idx].Clone()
		clone.RNG = rand.New(rand.NewSource(splitSeed(masterSeed, i)))
		particles[i] = clone
	}
	return &Population{Particles: particles}, nil
}

func (u *Updater) buildInitialCandidates(obs gpsobs.GpsObservation, masterSeed int64) ([]*vehicle.VehicleState, []float64, error) {
	rng := rand.New(rand.NewSource(splitSeed(masterSeed, -2)))

	var candidates []*vehicle.VehicleState
	var logWeights []float64

	nullFilter := vehicle.NewFilter(u.Params, false, rng)
	nullGaussian := initialGroundGaussian(obs, nullFilter.Sigma)
	nullBelief := belief.PathStateBelief{Path: geometry.NullPath(), Gaussian: nullGaussian}
	nullTrans := transition.New(1, nil)
	candidates = append(candidates, &vehicle.VehicleState{
		Observation: obs,
		Belief:      nullBelief,
		Filter:      nullFilter,
		Transition:  nullTrans,
		RNG:         rng,
	})
	logWeights = append(logWeights, nullTrans.LogProbOf(geometry.NullEdge())+u.logLikelihoodGround(nullGaussian, obs))

	center := geometry.Point{X: obs.ProjectedPoint.AtVec(0), Y: obs.ProjectedPoint.AtVec(1)}
	for _, seg := range u.Graph.NearbyEdges(center, 1) {
		edge := seg.Edge
		pathEdge := seg.AsPathEdge(0, false)
		path := &geometry.Path{Edges: []geometry.PathEdge{pathEdge}}

		roadGaussian, err := candidateRoadGaussian(path, obs)
		if err != nil {
			continue
		}
		candBelief := belief.PathStateBelief{Path: path, Gaussian: roadGaussian}

		filter := vehicle.NewFilter(u.Params, false, rng)
		trans := transition.New(0.1, u.Graph.Outgoing(edge))

		candidates = append(candidates, &vehicle.VehicleState{
			Observation: obs,
			Belief:      candBelief,
			Filter:      filter,
			Transition:  trans,
			RNG:         rng,
		})
		logWeights = append(logWeights, trans.LogProbOf(edge)+u.logLikelihoodRoad(candBelief, obs))
	}

	if len(candidates) == 0 {
		return nil, nil, roaderr.Wrap(roaderr.ErrUnrepresentable, roaderr.ErrUnrepresentable, "no candidate states near initial observation")
	}
	return candidates, logWeights, nil
}

// initialGroundGaussian seeds an off-road 4D state at obs with zero velocity
// and the current observation-noise estimate on the position block.
func initialGroundGaussian(obs gpsobs.GpsObservation, sigma mat.Symmetric) motion.Gaussian {
	mean := mat.NewVecDense(4, []float64{obs.ProjectedPoint.AtVec(0), 0, obs.ProjectedPoint.AtVec(1), 0})
	cov := mat.NewSymDense(4, nil)
	cov.SetSym(0, 0, sigma.At(0, 0))
	cov.SetSym(0, 2, sigma.At(0, 1))
	cov.SetSym(2, 2, sigma.At(1, 1))
	cov.SetSym(1, 1, 1)
	cov.SetSym(3, 3, 1)
	return motion.Gaussian{Mean: mean, Cov: cov}
}

// candidateRoadGaussian projects obs onto path to seed a road-state
// candidate at zero velocity.
func candidateRoadGaussian(path *geometry.Path, obs gpsobs.GpsObservation) (motion.Gaussian, error) {
	geom := path.Geometry()
	lifted := mat.NewVecDense(4, []float64{obs.ProjectedPoint.AtVec(0), 0, obs.ProjectedPoint.AtVec(1), 0})
	proj := geometry.GroundToRoad(geom, path.IsBackward, true, lifted)
	s, err := geometry.AdjustForOppositeDirection(proj.Value.AtVec(0), path.TotalDistance())
	if err != nil {
		return motion.Gaussian{}, err
	}
	mean := mat.NewVecDense(2, []float64{s, 0})
	cov := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	return motion.Gaussian{Mean: mean, Cov: cov}, nil
}

func sampleCategorical(weights []float64, sum float64, rng *rand.Rand) int {
	if sum <= 0 {
		return rng.Intn(len(weights))
	}
	target := rng.Float64() * sum
	var acc float64
	for i, w := range weights {
		acc += w
		if acc >= target {
			return i
		}
	}
	return len(weights) - 1
}

func (u *Updater) logLikelihoodGround(g motion.Gaussian, obs gpsobs.GpsObservation) float64 {
	mean2 := mat.NewVecDense(2, []float64{g.Mean.AtVec(0), g.Mean.AtVec(2)})
	d2 := numeric.Mahalanobis2(obs.ProjectedPoint, mean2, subCov2(g.Cov))
	return -0.5 * d2
}

func (u *Updater) logLikelihoodRoad(b belief.PathStateBelief, obs gpsobs.GpsObservation) float64 {
	return u.logLikelihoodGround(b.GetGroundBelief(), obs)
}

func subCov2(cov mat.Symmetric) *mat.SymDense {
	out := mat.NewSymDense(2, nil)
	out.SetSym(0, 0, cov.At(0, 0))
	out.SetSym(0, 1, cov.At(0, 2))
	out.SetSym(1, 1, cov.At(2, 2))
	return out
}

// Update runs one bootstrap particle step across the whole population
// concurrently (§5), bounded to runtime.GOMAXPROCS(0) concurrent particle
// updates via errgroup. Particles that become unrepresentable (the
// predicted mean cannot be placed on the walked path) are dropped with a
// warning rather than failing the whole step.
func (u *Updater) Update(ctx context.Context, pop *Population, obs gpsobs.GpsObservation, dt float64) (*Population, error) {
	next := make([]*vehicle.VehicleState, len(pop.Particles))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, particle := range pop.Particles {
		i, particle := i, particle
		g.Go(func() error {
			updated, err := u.updateOne(particle, obs, dt)
			if err != nil {
				u.Log.Warn("particle update dropped", zap.Int("particle", i), zap.Error(err))
				return nil
			}
			next[i] = updated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	surviving := next[:0]
	for _, p := range next {
		if p != nil {
			surviving = append(surviving, p)
		}
	}
	roaderr.AssertInvariant(len(surviving) > 0, "every particle became unrepresentable in this step")
	return &Population{Particles: surviving}, nil
}

func (u *Updater) updateOne(particle *vehicle.VehicleState, obs gpsobs.GpsObservation, dt float64) (*vehicle.VehicleState, error) {
	prior := particle.Belief

	predicted := belief.Predict(prior, prior.Path, dt, particle.Filter.QRoad, particle.Filter.QGround)

	newPath := u.walkEdges(particle, predicted)

	placed, err := belief.GetStateBeliefOnPath(predicted, newPath)
	if err != nil {
		return nil, err
	}

	next := particle.Clone()
	next.Belief = placed
	next.Observation = obs
	next = vehicle.WithParent(next, particle)

	if err := next.Filter.LearnCovariance(prior, obs.ProjectedPoint, dt, next.RNG); err != nil {
		u.Log.Warn("covariance learning step failed", zap.Error(err))
	}

	return next, nil
}

// walkEdges implements §4.5 step 2: starting from the particle's current
// transition distribution, sample the on/off-edge transition repeatedly,
// removing the null option the moment the first on-road edge is drawn (a
// particle never returns off-road mid-walk), stopping on a null draw or a
// repeated edge.
func (u *Updater) walkEdges(particle *vehicle.VehicleState, predicted belief.PathStateBelief) *geometry.Path {
	_ = predicted
	trans := particle.Transition.Clone()

	var edges []geometry.PathEdge
	var dist float64
	var prevEdge *geometry.InferredEdge

	first := true
	for {
		sampled := trans.Sample(particle.RNG)
		if sampled.IsNull() {
			break
		}
		if !first && prevEdge != nil && sampled.ID == prevEdge.ID {
			break
		}
		trans.RemoveNullOption()

		edges = append(edges, geometry.PathEdge{Edge: sampled, DistToStartOfEdge: dist, IsBackward: false})
		dist += sampled.Length

		trans = transition.New(trans.NullProbability, u.Graph.Outgoing(sampled))
		prevEdge = sampled
		first = false

		if len(edges) > 64 {
			break // bounded walk; a self-loop-free graph terminates far sooner
		}
	}

	if len(edges) == 0 {
		return geometry.NullPath()
	}
	return &geometry.Path{Edges: edges}
}

// ComputeLogLikelihood returns the log-density of particle's motion-state
// conditional distribution evaluated at obs.ProjectedPoint (§4.5).
func (u *Updater) ComputeLogLikelihood(particle *vehicle.VehicleState, obs gpsobs.GpsObservation) float64 {
	return u.logLikelihoodGround(particle.Belief.GetGroundBelief(), obs)
}

// Resample draws len(pop.Particles) new particles with replacement,
// weighted by ComputeLogLikelihood.
func (u *Updater) Resample(pop *Population, obs gpsobs.GpsObservation, rng *rand.Rand) *Population {
	logWeights := make([]float64, len(pop.Particles))
	maxW := math.Inf(-1)
	for i, p := range pop.Particles {
		logWeights[i] = u.ComputeLogLikelihood(p, obs)
		if logWeights[i] > maxW {
			maxW = logWeights[i]
		}
	}
	weights := make([]float64, len(logWeights))
	var sum float64
	for i, w := range logWeights {
		weights[i] = math.Exp(w - maxW)
		sum += weights[i]
	}

	out := make([]*vehicle.VehicleState, len(pop.Particles))
	for i := range out {
		idx := sampleCategorical(weights, sum, rng)
		out[i] = pop.Particles[idx].Clone()
		out[i].RNG = rand.New(rand.NewSource(rng.Uint64()))
	}
	return &Population{Particles: out}
}
