package maplayer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/choromap/internal/boundary"
	"github.com/sells-group/choromap/internal/scale"
)

func wgs84Square(lng, lat float64) *geom.MultiPolygon {
	flat := []float64{
		lng, lat,
		lng, lat + 0.1,
		lng + 0.1, lat + 0.1,
		lng + 0.1, lat,
		lng, lat,
	}
	return geom.NewMultiPolygonFlat(geom.XY, flat, [][]int{{len(flat)}}).SetSRID(boundary.SRIDWGS84)
}

func testScale(t *testing.T) *scale.ColorScale {
	t.Helper()
	s, err := scale.Build([]float64{0, 2000}, "YlOrRd", 4, scale.Options{})
	require.NoError(t, err)
	return s
}

func testGroup(t *testing.T, name string) LayerGroup {
	t.Helper()
	features := []Feature{
		{Code: "AB", Name: "Aberdeen", Geometry: wgs84Square(-2.1, 57.1), Value: 500, Valid: true, RawValue: "£500"},
		{Code: "DD", Name: "Dundee", Geometry: wgs84Square(-3.0, 56.5), Value: 1500, Valid: true, RawValue: "£1,500"},
		{Code: "KY", Name: "Kirkcaldy", Geometry: wgs84Square(-3.2, 56.1)},
	}
	return NewLayerGroup(name, features, testScale(t))
}

func TestBuild_Defaults(t *testing.T) {
	m, err := NewBuilder("Metrics", 56.5, -4.0, 6).
		AddBaseLayer(OpenStreetMap()).
		AddBaseLayer(CartoLight()).
		AddLayerGroup(testGroup(t, "Sales")).
		AddLayerGroup(testGroup(t, "Profit")).
		Build()
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID())
	assert.Equal(t, "Metrics", m.Title())
	assert.Equal(t, []string{"Sales", "Profit"}, m.LayerGroups())
	// Exactly one group is visible by default: the first.
	assert.Equal(t, "Sales", m.DefaultGroup())
}

func TestBuild_ExplicitDefaultGroup(t *testing.T) {
	m, err := NewBuilder("Metrics", 56.5, -4.0, 6).
		AddBaseLayer(OpenStreetMap()).
		AddLayerGroup(testGroup(t, "Sales")).
		AddLayerGroup(testGroup(t, "Profit")).
		DefaultGroup("Profit").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "Profit", m.DefaultGroup())
}

func TestBuild_Validation(t *testing.T) {
	_, err := NewBuilder("m", 0, 0, 1).AddLayerGroup(testGroup(t, "Sales")).Build()
	require.Error(t, err, "no base layer")

	_, err = NewBuilder("m", 0, 0, 1).AddBaseLayer(OpenStreetMap()).Build()
	require.Error(t, err, "no layer group")

	_, err = NewBuilder("m", 0, 0, 1).
		AddBaseLayer(OpenStreetMap()).
		AddLayerGroup(testGroup(t, "Sales")).
		DefaultGroup("Bogus").
		Build()
	require.Error(t, err, "unknown default group")
}

func TestBuild_RejectsMixedSRID(t *testing.T) {
	g := testGroup(t, "Sales")
	g.Features[1].Geometry = g.Features[1].Geometry.Clone().SetSRID(boundary.SRIDBritishGrid)

	_, err := NewBuilder("m", 0, 0, 1).
		AddBaseLayer(OpenStreetMap()).
		AddLayerGroup(g).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SRID")
}

func renderHTML(t *testing.T, id string) string {
	t.Helper()
	m, err := NewBuilder("Regional metrics", 56.5, -4.0, 6).
		WidgetID(id).
		AddBaseLayer(OpenStreetMap()).
		AddBaseLayer(CartoLight()).
		AddLayerGroup(testGroup(t, "Sales")).
		AddLayerGroup(testGroup(t, "Profit")).
		Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.WriteHTML(&buf))
	return buf.String()
}

func TestWriteHTML(t *testing.T) {
	out := renderHTML(t, "w1")

	assert.Contains(t, out, "Regional metrics")
	assert.Contains(t, out, `"id":"w1"`)
	assert.Contains(t, out, "OpenStreetMap")
	assert.Contains(t, out, "CARTO Positron")
	assert.Contains(t, out, `"Sales"`)
	assert.Contains(t, out, `"Profit"`)
	// Only the default group is initially visible.
	assert.Equal(t, 1, strings.Count(out, `"visible":true`))
	// Raw formatted value flows into the popup untouched.
	assert.Contains(t, out, "£1,500")
	// Region without a value gets the no-data popup text and color.
	assert.Contains(t, out, "no data")
	assert.Contains(t, out, scale.DefaultNoDataColor)
	// GeoJSON geometry present.
	assert.Contains(t, out, `"MultiPolygon"`)
}

func TestWriteHTML_Deterministic(t *testing.T) {
	assert.Equal(t, renderHTML(t, "w1"), renderHTML(t, "w1"))
}

func TestWriteHTML_EscapesMarkup(t *testing.T) {
	g := testGroup(t, "Sales")
	g.Features[0].Name = `<img src=x>`
	m, err := NewBuilder("m", 0, 0, 1).
		AddBaseLayer(OpenStreetMap()).
		AddLayerGroup(g).
		Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.WriteHTML(&buf))
	assert.NotContains(t, buf.String(), "<img src=x>")
}
