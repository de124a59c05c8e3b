package rgraph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/roadtrack/pkg/geo"
	"github.com/lintang-b-s/roadtrack/pkg/geometry"
	"github.com/lintang-b-s/roadtrack/pkg/roaderr"
)

// Save writes the graph to path as a bzip2-compressed, line-oriented text
// format, following the reference codebase's graph-serialization
// convention: one origin line (projection reference point), one line per
// edge (id, reverse flag, point count, points), one line per adjacency
// (edge id, outgoing edge ids).
func Save(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return roaderr.Wrap(err, roaderr.ErrDegenerateEdge, "creating graph file %s: %v", path, err)
	}
	defer f.Close()

	bw, err := bzip2.NewWriter(f, &bzip2.WriterConfig{Level: 6})
	if err != nil {
		return roaderr.Wrap(err, roaderr.ErrDegenerateEdge, "opening bzip2 writer: %v", err)
	}
	defer bw.Close()

	w := bufio.NewWriter(bw)
	defer w.Flush()

	fmt.Fprintf(w, "O\t%.10f\t%.10f\n", g.Origin.LatRad, g.Origin.LonRad)

	for _, e := range g.edges {
		fmt.Fprintf(w, "E\t%s\t%t\t%d", e.ID, e.HasReverse, len(e.Geometry.Points))
		for _, p := range e.Geometry.Points {
			fmt.Fprintf(w, "\t%.8f\t%.8f", p.X, p.Y)
		}
		fmt.Fprintln(w)
	}
	for id, adj := range g.outgoing {
		fmt.Fprintf(w, "A\t%s", id)
		for _, a := range adj {
			fmt.Fprintf(w, "\t%s", a.ID)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// Load reads a graph previously written by Save and returns the finalized,
// indexed Graph.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, roaderr.Wrap(err, roaderr.ErrDegenerateEdge, "opening graph file %s: %v", path, err)
	}
	defer f.Close()

	br, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, roaderr.Wrap(err, roaderr.ErrDegenerateEdge, "opening bzip2 reader: %v", err)
	}
	defer br.Close()

	builder := NewBuilder()
	adjacency := make(map[string][]string)
	var origin geo.PlanarOrigin

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 1<<20), 1<<24)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Split(line, "\t")
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "O":
			if len(fields) < 3 {
				continue
			}
			latRad, errLat := strconv.ParseFloat(fields[1], 64)
			lonRad, errLon := strconv.ParseFloat(fields[2], 64)
			if errLat != nil || errLon != nil {
				return nil, roaderr.Wrap(errLat, roaderr.ErrDegenerateEdge, "parsing origin")
			}
			origin = geo.PlanarOrigin{LatRad: latRad, LonRad: lonRad}
		case "E":
			edge, parseErr := parseEdgeLine(fields)
			if parseErr != nil {
				return nil, parseErr
			}
			builder.AddEdge(edge, nil)
		case "A":
			if len(fields) < 2 {
				continue
			}
			adjacency[fields[1]] = fields[2:]
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, roaderr.Wrap(err, roaderr.ErrDegenerateEdge, "scanning graph file: %v", err)
	}

	for id, neighborIDs := range adjacency {
		edges := make([]*geometry.InferredEdge, 0, len(neighborIDs))
		for _, nid := range neighborIDs {
			if e, ok := builder.g.edges[nid]; ok {
				edges = append(edges, e)
			}
		}
		builder.g.outgoing[id] = edges
	}

	graph := builder.Build()
	graph.SetOrigin(origin)
	return graph, nil
}

func parseEdgeLine(fields []string) (*geometry.InferredEdge, error) {
	roaderr.AssertInvariant(len(fields) >= 4, "malformed edge line")
	id := fields[1]
	hasReverse := fields[2] == "true"
	n, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, roaderr.Wrap(err, roaderr.ErrDegenerateEdge, "parsing point count: %v", err)
	}
	points := make([]geometry.Point, 0, n)
	idx := 4
	for i := 0; i < n; i++ {
		x, errX := strconv.ParseFloat(fields[idx], 64)
		y, errY := strconv.ParseFloat(fields[idx+1], 64)
		if errX != nil || errY != nil {
			return nil, roaderr.Wrap(errX, roaderr.ErrDegenerateEdge, "parsing point coordinates")
		}
		points = append(points, geometry.Point{X: x, Y: y})
		idx += 2
	}
	return geometry.NewInferredEdge(id, geometry.NewPolyline(points), hasReverse), nil
}
