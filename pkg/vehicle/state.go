package vehicle

import (
	"github.com/lintang-b-s/roadtrack/pkg/belief"
	"github.com/lintang-b-s/roadtrack/pkg/gpsobs"
	"github.com/lintang-b-s/roadtrack/pkg/transition"
	"golang.org/x/exp/rand"
)

// VehicleState bundles one particle's observation, belief, filter,
// transition distribution, and a one-step parent lineage link.
type VehicleState struct {
	Observation gpsobs.GpsObservation
	Belief      belief.PathStateBelief
	Filter      *RoadTrackingFilter
	Transition  *transition.OnOffEdgeTransDistribution
	Parent      *VehicleState

	// RNG is this particle's own seeded source (§5): never shared across
	// goroutines, carried across clone/update.
	RNG *rand.Rand
}

// Clone performs a deep copy suitable for spawning a child particle during
// resampling: filter state is deep-copied, the parent link is copied as is
// (it points at v's own parent, not at v; WithParent is what sets a new
// parent and keeps the lineage one deep). The RNG pointer is shared with v.
func (v *VehicleState) Clone() *VehicleState {
	return &VehicleState{
		Observation: v.Observation,
		Belief:      v.Belief,
		Filter:      v.Filter.Clone(),
		Transition:  v.Transition.Clone(),
		Parent:      v.Parent,
		RNG:         v.RNG,
	}
}

// WithParent returns a copy of v with Parent set to parent, and parent's own
// Parent cleared first so the lineage chain never grows past one deep.
func WithParent(v *VehicleState, parent *VehicleState) *VehicleState {
	shallowParent := *parent
	shallowParent.Parent = nil
	next := *v
	next.Parent = &shallowParent
	return &next
}
