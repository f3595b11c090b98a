package boundary

import (
	"math"

	"github.com/rotisserie/eris"
)

// Pure-Go conversion from British National Grid eastings/northings
// (EPSG:27700, OSGB36 datum, Airy 1830 ellipsoid) to WGS84 lon/lat.
// The inverse transverse Mercator follows the OS projection formulae; the
// datum change is the standard 7-parameter Helmert shift, which is accurate
// to a few metres across Great Britain.

type ellipsoid struct {
	a  float64 // semi-major axis
	b  float64 // semi-minor axis
	e2 float64 // first eccentricity squared
}

func newEllipsoid(a, b float64) ellipsoid {
	return ellipsoid{a: a, b: b, e2: (a*a - b*b) / (a * a)}
}

var (
	ellipsoidAiry1830 = newEllipsoid(6377563.396, 6356256.909)
	ellipsoidWGS84    = newEllipsoid(6378137.0, 6356752.3142)
)

// National Grid projection constants.
const (
	gridScaleF0   = 0.9996012717
	gridLat0Deg   = 49.0
	gridLon0Deg   = -2.0
	gridEasting0  = 400000.0
	gridNorthing0 = -100000.0
)

// britishGridToWGS84 converts an easting/northing pair to WGS84 lon/lat
// in degrees.
func britishGridToWGS84(easting, northing float64) (lng, lat float64, err error) {
	if math.IsNaN(easting) || math.IsNaN(northing) {
		return 0, 0, eris.Wrap(ErrReprojection, "coordinate is NaN")
	}

	lonOSGB, latOSGB, err := inverseTransverseMercator(easting, northing)
	if err != nil {
		return 0, 0, err
	}

	x, y, z := geodeticToECEF(lonOSGB, latOSGB, ellipsoidAiry1830)
	x, y, z = helmertOSGB36ToWGS84(x, y, z)
	lon, lat := ecefToGeodetic(x, y, z, ellipsoidWGS84)

	return radToDeg(lon), radToDeg(lat), nil
}

// inverseTransverseMercator recovers OSGB36 lon/lat (radians) from grid
// coordinates, iterating the meridional arc until it converges.
func inverseTransverseMercator(easting, northing float64) (lon, lat float64, err error) {
	ell := ellipsoidAiry1830
	lat0 := degToRad(gridLat0Deg)
	lon0 := degToRad(gridLon0Deg)

	phi := lat0
	m := 0.0
	for i := 0; ; i++ {
		phi = (northing-gridNorthing0-m)/(ell.a*gridScaleF0) + phi
		m = meridionalArc(phi, lat0, ell)
		if math.Abs(northing-gridNorthing0-m) < 1e-5 {
			break
		}
		if i > 50 {
			return 0, 0, eris.Wrap(ErrReprojection, "meridional arc did not converge")
		}
	}

	sinPhi := math.Sin(phi)
	cosPhi := math.Cos(phi)
	tanPhi := math.Tan(phi)

	nu := ell.a * gridScaleF0 / math.Sqrt(1-ell.e2*sinPhi*sinPhi)
	rho := ell.a * gridScaleF0 * (1 - ell.e2) / math.Pow(1-ell.e2*sinPhi*sinPhi, 1.5)
	eta2 := nu/rho - 1

	tan2 := tanPhi * tanPhi
	tan4 := tan2 * tan2
	tan6 := tan4 * tan2
	sec := 1 / cosPhi

	vii := tanPhi / (2 * rho * nu)
	viii := tanPhi / (24 * rho * nu * nu * nu) * (5 + 3*tan2 + eta2 - 9*tan2*eta2)
	ix := tanPhi / (720 * rho * math.Pow(nu, 5)) * (61 + 90*tan2 + 45*tan4)
	x := sec / nu
	xi := sec / (6 * nu * nu * nu) * (nu/rho + 2*tan2)
	xii := sec / (120 * math.Pow(nu, 5)) * (5 + 28*tan2 + 24*tan4)
	xiia := sec / (5040 * math.Pow(nu, 7)) * (61 + 662*tan2 + 1320*tan4 + 720*tan6)

	de := easting - gridEasting0
	de2 := de * de

	lat = phi - vii*de2 + viii*de2*de2 - ix*de2*de2*de2
	lon = lon0 + x*de - xi*de*de2 + xii*de*de2*de2 - xiia*de*de2*de2*de2
	return lon, lat, nil
}

// meridionalArc computes the developed meridional arc M between lat0 and phi.
func meridionalArc(phi, lat0 float64, ell ellipsoid) float64 {
	n := (ell.a - ell.b) / (ell.a + ell.b)
	n2 := n * n
	n3 := n2 * n

	dPhi := phi - lat0
	sPhi := phi + lat0

	return ell.b * gridScaleF0 * ((1+n+1.25*n2+1.25*n3)*dPhi -
		(3*n+3*n2+21.0/8.0*n3)*math.Sin(dPhi)*math.Cos(sPhi) +
		(15.0/8.0*n2+15.0/8.0*n3)*math.Sin(2*dPhi)*math.Cos(2*sPhi) -
		35.0/24.0*n3*math.Sin(3*dPhi)*math.Cos(3*sPhi))
}

// helmertOSGB36ToWGS84 applies the published 7-parameter shift from the
// OSGB36 datum to WGS84 in geocentric coordinates.
func helmertOSGB36ToWGS84(x, y, z float64) (float64, float64, float64) {
	const (
		tx = 446.448
		ty = -125.157
		tz = 542.060
		rx = 0.1502   // arc-seconds
		ry = 0.2470   // arc-seconds
		rz = 0.8421   // arc-seconds
		s  = -20.4894 // ppm
	)
	secToRad := math.Pi / (180.0 * 3600.0)
	rxr := rx * secToRad
	ryr := ry * secToRad
	rzr := rz * secToRad
	m := 1 + s*1e-6

	x2 := tx + m*x - rzr*y + ryr*z
	y2 := ty + rzr*x + m*y - rxr*z
	z2 := tz - ryr*x + rxr*y + m*z
	return x2, y2, z2
}

func geodeticToECEF(lon, lat float64, ell ellipsoid) (x, y, z float64) {
	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	nu := ell.a / math.Sqrt(1-ell.e2*sinLat*sinLat)
	x = nu * cosLat * math.Cos(lon)
	y = nu * cosLat * math.Sin(lon)
	z = nu * (1 - ell.e2) * sinLat
	return
}

func ecefToGeodetic(x, y, z float64, ell ellipsoid) (lon, lat float64) {
	lon = math.Atan2(y, x)
	p := math.Hypot(x, y)
	lat = math.Atan2(z, p*(1-ell.e2))
	for i := 0; i < 10; i++ {
		sinLat := math.Sin(lat)
		nu := ell.a / math.Sqrt(1-ell.e2*sinLat*sinLat)
		newLat := math.Atan2(z+ell.e2*nu*sinLat, p)
		if math.Abs(newLat-lat) < 1e-12 {
			lat = newLat
			break
		}
		lat = newLat
	}
	return lon, lat
}

func degToRad(v float64) float64 { return v * math.Pi / 180.0 }
func radToDeg(v float64) float64 { return v * 180.0 / math.Pi }
