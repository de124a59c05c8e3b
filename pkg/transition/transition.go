// Package transition implements the on/off-edge transition distribution
// the bootstrap updater's edge walk samples from (§4.6).
package transition

import (
	"math"

	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"golang.org/x/exp/rand"
)

// OnOffEdgeTransDistribution is a categorical distribution over {null edge}
// union {outgoing edges of the current edge}. NullProbability governs the
// off-road/on-road Bernoulli split; among on-road options the distribution
// is uniform over Outgoing by default.
type OnOffEdgeTransDistribution struct {
	NullProbability float64
	Outgoing        []*geometry.InferredEdge
}

// New builds a transition distribution for the outgoing edges of the
// current position, with nullProbability governing the chance of going
// off-road (or, off-road, of staying off-road).
func New(nullProbability float64, outgoing []*geometry.InferredEdge) *OnOffEdgeTransDistribution {
	return &OnOffEdgeTransDistribution{NullProbability: nullProbability, Outgoing: outgoing}
}

// Clone returns a deep copy whose Outgoing slice is independent, so the
// updater's edge-walk mutations (RemoveNullOption) never leak back to a
// distribution another particle or step still holds.
func (d *OnOffEdgeTransDistribution) Clone() *OnOffEdgeTransDistribution {
	outgoing := make([]*geometry.InferredEdge, len(d.Outgoing))
	copy(outgoing, d.Outgoing)
	return &OnOffEdgeTransDistribution{NullProbability: d.NullProbability, Outgoing: outgoing}
}

// RemoveNullOption zeroes the null-edge probability, redistributing all mass
// onto the on-road outgoing edges. Used by the edge walk once it has taken
// its first on-road draw: the particle may not return off-road within the
// same walk.
func (d *OnOffEdgeTransDistribution) RemoveNullOption() {
	d.NullProbability = 0
}

// Sample draws one edge: the null edge with probability NullProbability,
// otherwise uniformly from Outgoing. Returns the null edge if Outgoing is
// empty and the null draw didn't trigger (a dead end).
func (d *OnOffEdgeTransDistribution) Sample(rng *rand.Rand) *geometry.InferredEdge {
	if d.NullProbability > 0 && rng.Float64() < d.NullProbability {
		return geometry.NullEdge()
	}
	if len(d.Outgoing) == 0 {
		return geometry.NullEdge()
	}
	idx := rng.Intn(len(d.Outgoing))
	return d.Outgoing[idx]
}

// LogProbOf returns the log-probability this distribution assigns to
// choosing edge, used by the initial-particle mixture weighting (§4.5).
func (d *OnOffEdgeTransDistribution) LogProbOf(edge *geometry.InferredEdge) float64 {
	if edge.IsNull() {
		return logOrNegInf(d.NullProbability)
	}
	if len(d.Outgoing) == 0 {
		return logOrNegInf(0)
	}
	onRoadMass := 1 - d.NullProbability
	return logOrNegInf(onRoadMass / float64(len(d.Outgoing)))
}

func logOrNegInf(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}
