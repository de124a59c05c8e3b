package geometry

import "github.com/twpayne/go-polyline"

// EncodePolyline renders geom as a Google-encoded polyline string, in the
// (lat, lon)-ordered form the encoding expects. Used for the compact edge
// geometry carried in the tracker's outbound fix response rather than for
// persistence (Save/Load round-trip through the bzip2 text format instead,
// at full precision).
func EncodePolyline(geom *Polyline) string {
	coords := make([][]float64, len(geom.Points))
	for i, p := range geom.Points {
		coords[i] = []float64{p.Y, p.X}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline parses a Google-encoded polyline string back into a
// Polyline, the inverse of EncodePolyline.
func DecodePolyline(encoded string) (*Polyline, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = Point{X: c[1], Y: c[0]}
	}
	return NewPolyline(points), nil
}
