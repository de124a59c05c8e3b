// Package osmimport builds an rgraph.Graph from an OpenStreetMap PBF
// extract, generalizing the reference codebase's routing-engine OSM
// parser down to the geometry this tracker actually needs: accepted ways
// split into edges at junction nodes, projected onto a local plane.
package osmimport

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lintang-b-s/roadtrack/pkg/geo"
	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/lintang-b-s/roadtrack/pkg/rgraph"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type nodeRole int

const (
	roleUnseen nodeRole = iota
	roleEnd
	roleBetween
	roleJunction
)

// acceptedHighway mirrors the reference parser's routable-highway allowlist.
var acceptedHighway = map[string]struct{}{
	"motorway": {}, "motorway_link": {}, "trunk": {}, "trunk_link": {},
	"primary": {}, "primary_link": {}, "secondary": {}, "secondary_link": {},
	"residential": {}, "residential_link": {}, "service": {}, "tertiary": {},
	"tertiary_link": {}, "road": {}, "track": {}, "unclassified": {},
	"living_street": {}, "motorroad": {},
}

func acceptWay(way *osm.Way) bool {
	if len(way.Nodes) < 2 {
		return false
	}
	highway := way.Tags.Find("highway")
	if highway == "" {
		return way.Tags.Find("junction") != ""
	}
	_, ok := acceptedHighway[highway]
	return ok
}

func isOneWay(way *osm.Way) bool {
	v := way.Tags.Find("oneway")
	return v == "yes" || v == "-1" || v == "true" || v == "1"
}

type edgeEnds struct {
	startNode, endNode int64
}

// Import reads pbfPath and returns the built graph. Node coordinates are
// projected onto a local equirectangular plane (pkg/geo.PlanarOrigin)
// centered on the first accepted node encountered, in two PBF passes: the
// first marks which nodes are junctions (shared by more than one accepted
// way, or revisited within one), the second collects coordinates and
// splits ways into edges at those junctions.
//
// Adjacency is undirected by node incidence: any edge touching a node is
// reachable from any other edge touching that node. Candidate generation
// for tracking needs connectivity, not strict one-way routing constraints,
// so this is a deliberate simplification relative to the reference parser's
// directional edge set construction.
func Import(pbfPath string, log *zap.Logger) (*rgraph.Graph, error) {
	f, err := os.Open(pbfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	nodeRoles := make(map[int64]nodeRole)

	firstPass := osmpbf.New(context.Background(), f, 0)
	wayCount := 0
	for firstPass.Scan() {
		obj := firstPass.Object()
		if obj.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := obj.(*osm.Way)
		if !acceptWay(way) {
			continue
		}
		wayCount++
		for i, n := range way.Nodes {
			if nodeRoles[int64(n.ID)] == roleUnseen {
				if i == 0 || i == len(way.Nodes)-1 {
					nodeRoles[int64(n.ID)] = roleEnd
				} else {
					nodeRoles[int64(n.ID)] = roleBetween
				}
			} else {
				nodeRoles[int64(n.ID)] = roleJunction
			}
		}
	}
	firstPass.Close()
	if err := firstPass.Err(); err != nil {
		return nil, err
	}
	log.Sugar().Infof("osm import: %d accepted ways, %d distinct nodes", wayCount, len(nodeRoles))

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	nodeCoords := make(map[int64]geo.Coordinate)
	var origin *geo.PlanarOrigin
	builder := rgraph.NewBuilder()
	edgesByID := make(map[string]*geometry.InferredEdge)
	ends := make(map[string]edgeEnds)
	incidence := make(map[int64][]string)
	edgeSeq := 0

	secondPass := osmpbf.New(context.Background(), f, 0)
	defer secondPass.Close()

	for secondPass.Scan() {
		obj := secondPass.Object()
		switch obj.ObjectID().Type() {
		case osm.TypeNode:
			n := obj.(*osm.Node)
			if _, ok := nodeRoles[int64(n.ID)]; !ok {
				continue
			}
			c := geo.NewCoordinate(n.Lat, n.Lon)
			nodeCoords[int64(n.ID)] = c
			if origin == nil {
				o := geo.NewPlanarOrigin(c)
				origin = &o
			}
		case osm.TypeWay:
			way := obj.(*osm.Way)
			if !acceptWay(way) {
				continue
			}
			reversible := !isOneWay(way)

			var segment []int64
			flushSegment := func() {
				if len(segment) < 2 || origin == nil {
					segment = segment[:0]
					return
				}
				pts := make([]geometry.Point, 0, len(segment))
				for _, nid := range segment {
					c, ok := nodeCoords[nid]
					if !ok {
						continue
					}
					x, y := origin.ToPlanar(c)
					pts = append(pts, geometry.Point{X: x, Y: y})
				}
				if len(pts) < 2 {
					return
				}
				edgeSeq++
				id := fmt.Sprintf("w%d-%d", way.ID, edgeSeq)
				edge := geometry.NewInferredEdge(id, geometry.NewPolyline(pts), reversible)
				builder.AddEdge(edge, nil)
				edgesByID[id] = edge
				ends[id] = edgeEnds{startNode: segment[0], endNode: segment[len(segment)-1]}
				incidence[segment[0]] = append(incidence[segment[0]], id)
				incidence[segment[len(segment)-1]] = append(incidence[segment[len(segment)-1]], id)
			}

			for _, n := range way.Nodes {
				segment = append(segment, int64(n.ID))
				if nodeRoles[int64(n.ID)] == roleJunction && len(segment) > 1 {
					flushSegment()
					segment = []int64{int64(n.ID)}
				}
			}
			flushSegment()
		}
	}
	if err := secondPass.Err(); err != nil {
		return nil, err
	}

	for id, e := range ends {
		seen := map[string]bool{id: true}
		var outgoing []*geometry.InferredEdge
		for _, oid := range append(append([]string{}, incidence[e.startNode]...), incidence[e.endNode]...) {
			if seen[oid] {
				continue
			}
			seen[oid] = true
			if oe, ok := edgesByID[oid]; ok {
				outgoing = append(outgoing, oe)
			}
		}
		builder.AddEdge(edgesByID[id], outgoing)
	}

	graph := builder.Build()
	if origin != nil {
		graph.SetOrigin(*origin)
	}
	log.Sugar().Infof("osm import: built %d edges", graph.NumEdges())
	return graph, nil
}
