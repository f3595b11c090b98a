// Package maplayer composes styled polygon layers, legends, and base
// imagery into a single interactive map widget.
package maplayer

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/choromap/internal/scale"
)

// TileLayer is one base imagery option. Base layers are mutually exclusive
// in the rendered layer control.
type TileLayer struct {
	Name        string
	URLTemplate string
	Attribution string
	MaxZoom     int
}

// OpenStreetMap returns the standard OSM base layer.
func OpenStreetMap() TileLayer {
	return TileLayer{
		Name:        "OpenStreetMap",
		URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
		MaxZoom:     19,
	}
}

// CartoLight returns the CARTO Positron base layer.
func CartoLight() TileLayer {
	return TileLayer{
		Name:        "CARTO Positron",
		URLTemplate: "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: "© OpenStreetMap contributors © CARTO",
		MaxZoom:     20,
	}
}

// Feature is one region ready for rendering: reprojected geometry plus the
// values driving fill color, label, and popup.
type Feature struct {
	Code     string
	Name     string
	Geometry *geom.MultiPolygon
	Value    float64
	Valid    bool
	RawValue string // original formatted metric text, shown in popups
}

// Style is the polygon paint used at rest and while hovered.
type Style struct {
	StrokeColor   string
	StrokeWeight  float64
	StrokeOpacity float64
	FillOpacity   float64
}

// DefaultStyle is the resting polygon style.
func DefaultStyle() Style {
	return Style{StrokeColor: "#444444", StrokeWeight: 1, StrokeOpacity: 1, FillOpacity: 0.7}
}

// HighlightStyle is applied on pointer-over and reverted on pointer-out.
// The hovered polygon is also raised to the top of the stacking order.
func HighlightStyle() Style {
	return Style{StrokeColor: "#222222", StrokeWeight: 3, StrokeOpacity: 1, FillOpacity: 0.9}
}

// LayerGroup bundles one metric's polygons, scale, and legend under a
// single toggle identity. Groups are independent: showing or hiding one
// never affects another.
type LayerGroup struct {
	Name      string // toggle label, e.g. "Sales"
	Features  []Feature
	Scale     *scale.ColorScale // ascending, shades geometry
	Style     Style
	Highlight Style
}

// NewLayerGroup builds a layer group with the default paint styles.
func NewLayerGroup(name string, features []Feature, s *scale.ColorScale) LayerGroup {
	return LayerGroup{
		Name:      name,
		Features:  features,
		Scale:     s,
		Style:     DefaultStyle(),
		Highlight: HighlightStyle(),
	}
}
