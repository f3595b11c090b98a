package boundary

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestBritishGridToWGS84_TrueOrigin(t *testing.T) {
	// The grid's false origin maps back to the projection's true origin
	// (49N 2W on OSGB36); the Helmert shift moves it by well under 0.01 deg.
	lng, lat, err := britishGridToWGS84(400000, -100000)
	require.NoError(t, err)
	assert.InDelta(t, 49.0, lat, 0.01)
	assert.InDelta(t, -2.0, lng, 0.01)
}

func TestBritishGridToWGS84_London(t *testing.T) {
	lng, lat, err := britishGridToWGS84(530000, 180000)
	require.NoError(t, err)
	assert.InDelta(t, 51.50, lat, 0.05)
	assert.InDelta(t, -0.13, lng, 0.05)
}

func TestBritishGridToWGS84_NaN(t *testing.T) {
	_, _, err := britishGridToWGS84(400000, -100000)
	require.NoError(t, err)
	_, _, err = britishGridToWGS84(400000, nan())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrReprojection))
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestReproject_BritishGrid(t *testing.T) {
	polygons := []RegionPolygon{
		{Code: "AB", Geometry: gridSquare(380000, 800000, 10000)},
		{Code: "DD", Geometry: gridSquare(330000, 730000, 10000)},
	}

	out, err := Reproject(polygons, SRIDWGS84)
	require.NoError(t, err)
	require.Len(t, out, 2)

	for _, p := range out {
		assert.Equal(t, SRIDWGS84, p.SRID())
		flat := p.Geometry.FlatCoords()
		for i := 0; i+1 < len(flat); i += 2 {
			assert.Greater(t, flat[i+1], 49.0, "latitude in GB range")
			assert.Less(t, flat[i+1], 61.0)
			assert.Greater(t, flat[i], -9.0, "longitude in GB range")
			assert.Less(t, flat[i], 3.0)
		}
	}

	// Inputs keep their original CRS and coordinates.
	assert.Equal(t, SRIDBritishGrid, polygons[0].SRID())
	assert.Equal(t, 380000.0, polygons[0].Geometry.FlatCoords()[0])
}

func TestReproject_IdentityForWGS84(t *testing.T) {
	src := geom.NewMultiPolygonFlat(geom.XY,
		[]float64{-2, 57, -2, 57.1, -1.9, 57.1, -1.9, 57, -2, 57},
		[][]int{{10}}).SetSRID(SRIDWGS84)
	polygons := []RegionPolygon{{Code: "AB", Geometry: src}}

	out, err := Reproject(polygons, SRIDWGS84)
	require.NoError(t, err)
	assert.Equal(t, src.FlatCoords(), out[0].Geometry.FlatCoords())
	assert.Equal(t, SRIDWGS84, out[0].SRID())
}

func TestReproject_UnknownSourceSRID(t *testing.T) {
	polygons := []RegionPolygon{{Code: "AB", Geometry: testMultiPolygon(3857)}}
	_, err := Reproject(polygons, SRIDWGS84)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrReprojection))
	assert.Contains(t, err.Error(), "AB")
}

func TestReproject_UnsupportedTarget(t *testing.T) {
	_, err := Reproject(nil, SRIDBritishGrid)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrReprojection))
}

func TestReproject_UniformSRID(t *testing.T) {
	polygons := []RegionPolygon{
		{Code: "AB", Geometry: gridSquare(380000, 800000, 10000)},
		{Code: "EH", Geometry: testMultiPolygon(SRIDWGS84)},
	}
	out, err := Reproject(polygons, SRIDWGS84)
	require.NoError(t, err)
	for _, p := range out {
		assert.Equal(t, SRIDWGS84, p.SRID())
	}
}

func gridSquare(x, y, size float64) *geom.MultiPolygon {
	flat := []float64{
		x, y,
		x, y + size,
		x + size, y + size,
		x + size, y,
		x, y,
	}
	return geom.NewMultiPolygonFlat(geom.XY, flat, [][]int{{len(flat)}}).SetSRID(SRIDBritishGrid)
}
