// Package rgraph provides a concrete InferenceGraph: an adjacency-list
// directed graph of InferredEdges, with nearby-edge queries backed by a 2D
// R-tree spatial index over planar (projected) bounding boxes. Safe for
// concurrent readers once Build/Load returns; never mutated afterward.
package rgraph

import (
	"math"
	"runtime"

	"github.com/lintang-b-s/roadtrack/pkg/concurrent"
	"github.com/lintang-b-s/roadtrack/pkg/geo"
	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/lintang-b-s/roadtrack/pkg/roaderr"
	"github.com/tidwall/rtree"
)

// Graph is the in-memory, R-tree-indexed InferenceGraph implementation.
type Graph struct {
	edges     map[string]*geometry.InferredEdge
	outgoing  map[string][]*geometry.InferredEdge
	index     rtree.RTreeG[*geometry.InferredEdge]
	radiusMin float64

	// Origin is the planar projection this graph's edge geometry is
	// expressed in, carried alongside the graph so callers converting
	// inbound lat/lon fixes (see cmd/tracker) project into the same frame
	// the OSM importer used. Zero value for graphs built without an
	// osmimport origin (e.g. in tests, where edges are authored directly
	// in planar coordinates).
	Origin geo.PlanarOrigin
}

// New builds an empty graph. Use Builder to populate it before handing it
// to readers; once Build returns, the graph is immutable.
func New() *Graph {
	return &Graph{
		edges:     make(map[string]*geometry.InferredEdge),
		outgoing:  make(map[string][]*geometry.InferredEdge),
		radiusMin: 25, // meters-equivalent planar units; covariance-scaled beyond this
	}
}

// Builder accumulates edges and adjacency before a single Build call
// finalizes the R-tree index, mirroring the reference codebase's
// two-phase (accumulate, then index) graph construction.
type Builder struct {
	g *Graph
}

// NewBuilder starts a fresh graph build.
func NewBuilder() *Builder {
	return &Builder{g: New()}
}

// AddEdge registers edge and its outgoing adjacency (the edges reachable
// immediately after edge).
func (b *Builder) AddEdge(edge *geometry.InferredEdge, outgoing []*geometry.InferredEdge) {
	roaderr.AssertInvariant(!edge.IsNull(), "cannot add the null edge to a graph")
	b.g.edges[edge.ID] = edge
	b.g.outgoing[edge.ID] = outgoing
}

type boxResult struct {
	edge     *geometry.InferredEdge
	min, max [2]float64
}

// Build finalizes the R-tree index over every registered edge's bounding
// box and returns the immutable graph. Bounding-box computation (the only
// part of indexing safe to parallelize - insertion into the R-tree itself
// is not) is fanned out across a worker pool sized to the host, following
// the reference codebase's own worker-pool-based batch precompute pattern.
func (b *Builder) Build() *Graph {
	edges := make([]*geometry.InferredEdge, 0, len(b.g.edges))
	for _, e := range b.g.edges {
		edges = append(edges, e)
	}

	pool := concurrent.NewWorkerPool[*geometry.InferredEdge, boxResult](runtime.GOMAXPROCS(0), len(edges))
	pool.Start(func(e *geometry.InferredEdge) boxResult {
		minP, maxP := boundingBox(e.Geometry)
		return boxResult{edge: e, min: minP, max: maxP}
	})
	for _, e := range edges {
		pool.AddJob(e)
	}
	pool.Close()
	pool.Wait()

	for res := range pool.CollectResults() {
		b.g.index.Insert(res.min, res.max, res.edge)
	}
	return b.g
}

func boundingBox(geom *geometry.Polyline) (min, max [2]float64) {
	min = [2]float64{math.Inf(1), math.Inf(1)}
	max = [2]float64{math.Inf(-1), math.Inf(-1)}
	for _, p := range geom.Points {
		if p.X < min[0] {
			min[0] = p.X
		}
		if p.Y < min[1] {
			min[1] = p.Y
		}
		if p.X > max[0] {
			max[0] = p.X
		}
		if p.Y > max[1] {
			max[1] = p.Y
		}
	}
	return min, max
}

// NearbyEdges returns the edges within a covariance-scaled radius of
// center, per §6's InferenceGraph contract.
// center is a ground-coordinate (x, y) point; radiusScale multiplies
// the base search radius (e.g. derived from the belief covariance's trace).
func (g *Graph) NearbyEdges(center geometry.Point, radiusScale float64) []geometry.InferenceGraphSegment {
	radius := g.radiusMin * math.Max(1, radiusScale)
	min := [2]float64{center.X - radius, center.Y - radius}
	max := [2]float64{center.X + radius, center.Y + radius}

	var out []geometry.InferenceGraphSegment
	g.index.Search(min, max, func(_, _ [2]float64, edge *geometry.InferredEdge) bool {
		arcLen, _, _, _ := edge.Geometry.Project(center)
		foot, _, _ := edge.Geometry.PointAt(arcLen)
		if foot.DistanceTo(center) <= radius {
			out = append(out, geometry.InferenceGraphSegment{Edge: edge})
		}
		return true
	})
	return out
}

// Outgoing returns the edges reachable immediately after edge, or nil for
// the null edge or an edge not present in this graph.
func (g *Graph) Outgoing(edge *geometry.InferredEdge) []*geometry.InferredEdge {
	if edge.IsNull() {
		return nil
	}
	return g.outgoing[edge.ID]
}

// EdgeByID looks up a registered edge by stable identifier.
func (g *Graph) EdgeByID(id string) (*geometry.InferredEdge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// NumEdges returns the number of edges registered in the graph.
func (g *Graph) NumEdges() int { return len(g.edges) }

// SetOrigin records the planar projection origin used to build this
// graph's edge geometry.
func (g *Graph) SetOrigin(o geo.PlanarOrigin) { g.Origin = o }
