package osmimport

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
)

func wayWithTags(nodeCount int, tags osm.Tags) *osm.Way {
	nodes := make(osm.WayNodes, nodeCount)
	for i := range nodes {
		nodes[i] = osm.WayNode{ID: osm.NodeID(i + 1)}
	}
	return &osm.Way{Nodes: nodes, Tags: tags}
}

func TestAcceptWayRejectsSingleNodeWay(t *testing.T) {
	t.Parallel()

	way := wayWithTags(1, osm.Tags{{Key: "highway", Value: "residential"}})
	assert.False(t, acceptWay(way))
}

func TestAcceptWayAcceptsAllowlistedHighway(t *testing.T) {
	t.Parallel()

	way := wayWithTags(2, osm.Tags{{Key: "highway", Value: "residential"}})
	assert.True(t, acceptWay(way))
}

func TestAcceptWayRejectsUnlistedHighway(t *testing.T) {
	t.Parallel()

	way := wayWithTags(2, osm.Tags{{Key: "highway", Value: "footway"}})
	assert.False(t, acceptWay(way))
}

func TestAcceptWayAcceptsJunctionWithoutHighwayTag(t *testing.T) {
	t.Parallel()

	way := wayWithTags(2, osm.Tags{{Key: "junction", Value: "roundabout"}})
	assert.True(t, acceptWay(way))
}

func TestAcceptWayRejectsBareWay(t *testing.T) {
	t.Parallel()

	way := wayWithTags(2, osm.Tags{})
	assert.False(t, acceptWay(way))
}

func TestIsOneWayRecognizesAllTruthyForms(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"yes", "-1", "true", "1"} {
		way := wayWithTags(2, osm.Tags{{Key: "oneway", Value: v}})
		assert.True(t, isOneWay(way), "value %q should be one-way", v)
	}
}

func TestIsOneWayFalseWhenUntaggedOrNo(t *testing.T) {
	t.Parallel()

	assert.False(t, isOneWay(wayWithTags(2, osm.Tags{})))
	assert.False(t, isOneWay(wayWithTags(2, osm.Tags{{Key: "oneway", Value: "no"}})))
}
