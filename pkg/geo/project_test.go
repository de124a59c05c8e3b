package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanarOriginRoundTrip(t *testing.T) {
	t.Parallel()

	origin := NewPlanarOrigin(NewCoordinate(-6.2, 106.8))

	cases := []Coordinate{
		NewCoordinate(-6.2, 106.8),
		NewCoordinate(-6.21, 106.81),
		NewCoordinate(-6.19, 106.79),
		NewCoordinate(-6.205, 106.805),
	}

	for _, c := range cases {
		x, y := origin.ToPlanar(c)
		back := origin.FromPlanar(x, y)
		assert.InDelta(t, c.Lat, back.Lat, 1e-8)
		assert.InDelta(t, c.Lon, back.Lon, 1e-8)
	}
}

func TestPlanarOriginIsZeroAtOrigin(t *testing.T) {
	t.Parallel()

	c := NewCoordinate(10, 20)
	origin := NewPlanarOrigin(c)

	x, y := origin.ToPlanar(c)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
}

func TestPlanarOriginDistancePreservesHaversineApprox(t *testing.T) {
	t.Parallel()

	origin := NewPlanarOrigin(NewCoordinate(0, 0))
	a := NewCoordinate(0, 0)
	b := NewCoordinate(0.01, 0.01)

	ax, ay := origin.ToPlanar(a)
	bx, by := origin.ToPlanar(b)
	planarDist := math.Hypot(bx-ax, by-ay) / 1000 // km

	haversine := CalculateHaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon)
	assert.InDelta(t, haversine, planarDist, haversine*0.01)
}
