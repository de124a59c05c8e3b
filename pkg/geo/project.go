package geo

import (
	"math"

	"github.com/lintang-b-s/roadtrack/pkg/util"
)

// PlanarOrigin is the reference point an equirectangular projection is
// centered on: angles are small enough near it that the projection's
// distance distortion stays within the edge-length tolerances used
// elsewhere in the tracker.
type PlanarOrigin struct {
	LatRad float64
	LonRad float64
}

// NewPlanarOrigin builds a projection origin from a coordinate, typically
// the centroid of the road network being imported.
func NewPlanarOrigin(origin Coordinate) PlanarOrigin {
	return PlanarOrigin{
		LatRad: util.DegreeToRadians(origin.Lat),
		LonRad: util.DegreeToRadians(origin.Lon),
	}
}

// ToPlanar converts a lat/lon coordinate to meters on a local equirectangular
// plane centered at o, generalizing CalculateEuclidianDistanceEquirectangularProj
// from a scalar distance into a coordinate pair usable as graph geometry.
func (o PlanarOrigin) ToPlanar(c Coordinate) (x, y float64) {
	latRad := util.DegreeToRadians(c.Lat)
	lonRad := util.DegreeToRadians(c.Lon)
	x = (lonRad - o.LonRad) * math.Cos(o.LatRad) * earthRadiusKM * 1000
	y = (latRad - o.LatRad) * earthRadiusKM * 1000
	return x, y
}

// FromPlanar inverts ToPlanar, recovering a lat/lon coordinate from a planar
// (x, y) point in meters relative to o.
func (o PlanarOrigin) FromPlanar(x, y float64) Coordinate {
	latRad := o.LatRad + y/(earthRadiusKM*1000)
	lonRad := o.LonRad + x/(earthRadiusKM*1000*math.Cos(o.LatRad))
	return NewCoordinate(util.RadiansToDegree(latRad), util.RadiansToDegree(lonRad))
}
