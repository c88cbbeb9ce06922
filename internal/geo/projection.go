package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Lambert conformal conic projection for NAD83 / Massachusetts Mainland
// (EPSG:26986). Projected coordinates are in meters, so planar Euclidean
// distance approximates ground distance across the state.
//
// GRS80 ellipsoid.
const (
	semiMajorAxis = 6378137.0
	flattening    = 1.0 / 298.257222101

	// Projection parameters: two standard parallels, latitude/longitude of
	// origin, false easting/northing.
	stdParallel1  = 42.0 + 41.0/60.0 + 0.0/3600.0 // 42°41'N
	stdParallel2  = 41.0 + 43.0/60.0 + 0.0/3600.0 // 41°43'N
	latOrigin     = 41.0
	lonOrigin     = -71.5
	falseEasting  = 200000.0
	falseNorthing = 750000.0

	// MetersToMiles converts projected distances to miles.
	MetersToMiles = 0.000621371
)

var maMainland = newLambertConformalConic()

type lambertConformalConic struct {
	e    float64 // eccentricity
	n    float64
	f    float64
	rho0 float64
}

func newLambertConformalConic() *lambertConformalConic {
	e := math.Sqrt(2*flattening - flattening*flattening)

	phi1 := stdParallel1 * math.Pi / 180
	phi2 := stdParallel2 * math.Pi / 180
	phi0 := latOrigin * math.Pi / 180

	m1 := lccM(phi1, e)
	m2 := lccM(phi2, e)
	t0 := lccT(phi0, e)
	t1 := lccT(phi1, e)
	t2 := lccT(phi2, e)

	n := (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	f := m1 / (n * math.Pow(t1, n))

	return &lambertConformalConic{
		e:    e,
		n:    n,
		f:    f,
		rho0: semiMajorAxis * f * math.Pow(t0, n),
	}
}

func lccM(phi, e float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-e*e*s*s)
}

func lccT(phi, e float64) float64 {
	s := math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-e*s)/(1+e*s), e/2)
}

// Project converts a geographic WGS-84 longitude/latitude point into
// state-plane meters.
func Project(p orb.Point) orb.Point {
	phi := p.Lat() * math.Pi / 180
	lambda := p.Lon() * math.Pi / 180
	lambda0 := lonOrigin * math.Pi / 180

	rho := semiMajorAxis * maMainland.f * math.Pow(lccT(phi, maMainland.e), maMainland.n)
	theta := maMainland.n * (lambda - lambda0)

	x := falseEasting + rho*math.Sin(theta)
	y := falseNorthing + maMainland.rho0 - rho*math.Cos(theta)
	return orb.Point{x, y}
}

// ProjectMultiPolygon projects every ring vertex of a geographic
// multipolygon into state-plane meters.
func ProjectMultiPolygon(mp orb.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, len(mp))
	for i, poly := range mp {
		projected := make(orb.Polygon, len(poly))
		for j, ring := range poly {
			r := make(orb.Ring, len(ring))
			for k, pt := range ring {
				r[k] = Project(pt)
			}
			projected[j] = r
		}
		out[i] = projected
	}
	return out
}
