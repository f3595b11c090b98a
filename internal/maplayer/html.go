package maplayer

import (
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// WriteHTML renders the widget as a self-contained HTML document: geometry,
// styling, legends, and the layer-selection control. Rendering is a pure
// function of the composed map, so re-rendering (or toggling a layer off
// and on client-side) always reproduces identical styling and popups.
func (m *Map) WriteHTML(w io.Writer) error {
	cfg, err := m.widgetConfig()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "maplayer: marshal widget config")
	}

	data := struct {
		ID         string
		Title      string
		ConfigJSON template.JS
	}{
		ID:         m.id,
		Title:      m.title,
		ConfigJSON: template.JS(raw),
	}
	if err := widgetTemplate.Execute(w, data); err != nil {
		return eris.Wrap(err, "maplayer: render widget")
	}
	return nil
}

type widgetConfig struct {
	ID     string        `json:"id"`
	Center [2]float64    `json:"center"`
	Zoom   int           `json:"zoom"`
	Bases  []baseConfig  `json:"bases"`
	Groups []groupConfig `json:"groups"`
}

type baseConfig struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"maxZoom"`
}

type styleConfig struct {
	StrokeColor   string  `json:"strokeColor"`
	StrokeWeight  float64 `json:"strokeWeight"`
	StrokeOpacity float64 `json:"strokeOpacity"`
	FillOpacity   float64 `json:"fillOpacity"`
}

type legendConfig struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

type groupConfig struct {
	Name        string                     `json:"name"`
	Visible     bool                       `json:"visible"`
	Style       styleConfig                `json:"style"`
	Highlight   styleConfig                `json:"highlight"`
	NoDataColor string                     `json:"noDataColor"`
	Legend      []legendConfig             `json:"legend"`
	Features    *geojson.FeatureCollection `json:"features"`
}

func (m *Map) widgetConfig() (*widgetConfig, error) {
	cfg := &widgetConfig{
		ID:     m.id,
		Center: [2]float64{m.centerLat, m.centerLng},
		Zoom:   m.zoom,
	}

	for _, b := range m.bases {
		cfg.Bases = append(cfg.Bases, baseConfig{
			Name:        b.Name,
			URL:         b.URLTemplate,
			Attribution: b.Attribution,
			MaxZoom:     b.MaxZoom,
		})
	}

	for _, g := range m.groups {
		fc := featureCollection(g)

		// Legends present magnitude descending, from the reversed scale.
		var legend []legendConfig
		for _, e := range g.Scale.Reversed().LegendEntries() {
			legend = append(legend, legendConfig{Color: e.Color, Label: e.Label})
		}

		cfg.Groups = append(cfg.Groups, groupConfig{
			Name:        g.Name,
			Visible:     g.Name == m.defaultGroup,
			Style:       toStyleConfig(g.Style),
			Highlight:   toStyleConfig(g.Highlight),
			NoDataColor: g.Scale.NoDataColor(),
			Legend:      legend,
			Features:    fc,
		})
	}

	return cfg, nil
}

func toStyleConfig(s Style) styleConfig {
	return styleConfig{
		StrokeColor:   s.StrokeColor,
		StrokeWeight:  s.StrokeWeight,
		StrokeOpacity: s.StrokeOpacity,
		FillOpacity:   s.FillOpacity,
	}
}

// featureCollection encodes a group's regions as GeoJSON, with fill color,
// label, and popup markup precomputed per feature.
func featureCollection(g LayerGroup) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	for _, f := range g.Features {
		rawValue := f.RawValue
		if !f.Valid || rawValue == "" {
			rawValue = "no data"
		}
		popup := fmt.Sprintf("<strong>%s</strong><br/>%s: %s<br/>Code: %s",
			html.EscapeString(f.Name),
			html.EscapeString(g.Name),
			html.EscapeString(rawValue),
			html.EscapeString(f.Code),
		)

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       f.Code,
			Geometry: f.Geometry,
			Properties: map[string]interface{}{
				"code":  f.Code,
				"name":  f.Name,
				"color": g.Scale.ColorFor(f.Value, f.Valid),
				"label": html.EscapeString(f.Name),
				"popup": popup,
			},
		})
	}
	return fc
}

var widgetTemplate = template.Must(template.New("widget").Parse(widgetHTML))

const widgetHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
#map-{{.ID}} { height: 640px; }
.choromap-label { background: transparent; border: none; box-shadow: none; font-weight: 600; }
.choromap-legend { background: #fff; padding: 8px 10px; border-radius: 4px; box-shadow: 0 1px 4px rgba(0,0,0,0.3); line-height: 1.5; }
.choromap-legend i { display: inline-block; width: 14px; height: 14px; margin-right: 6px; vertical-align: middle; }
</style>
</head>
<body>
<div class="choromap-widget" id="widget-{{.ID}}">
<h2>{{.Title}}</h2>
<div id="map-{{.ID}}"></div>
</div>
<script>
(function () {
  var config = {{.ConfigJSON}};
  var map = L.map("map-" + config.id).setView(config.center, config.zoom);

  var baseLayers = {};
  config.bases.forEach(function (b, i) {
    var layer = L.tileLayer(b.url, {attribution: b.attribution, maxZoom: b.maxZoom});
    baseLayers[b.name] = layer;
    if (i === 0) { layer.addTo(map); }
  });

  var overlays = {};
  var legends = {};
  config.groups.forEach(function (g) {
    var restStyle = function (feature) {
      return {
        color: g.style.strokeColor,
        weight: g.style.strokeWeight,
        opacity: g.style.strokeOpacity,
        fillOpacity: g.style.fillOpacity,
        fillColor: feature.properties.color
      };
    };

    var layer = L.geoJSON(g.features, {
      style: restStyle,
      onEachFeature: function (feature, lyr) {
        lyr.bindTooltip(feature.properties.label, {permanent: true, direction: "center", className: "choromap-label"});
        lyr.bindPopup(feature.properties.popup);
        lyr.on("mouseover", function () {
          lyr.setStyle({
            color: g.highlight.strokeColor,
            weight: g.highlight.strokeWeight,
            opacity: g.highlight.strokeOpacity,
            fillOpacity: g.highlight.fillOpacity
          });
          lyr.bringToFront();
        });
        lyr.on("mouseout", function () { lyr.setStyle(restStyle(feature)); });
      }
    });
    overlays[g.name] = layer;

    var legend = L.control({position: "bottomright"});
    legend.onAdd = function () {
      var div = L.DomUtil.create("div", "choromap-legend");
      var inner = "<strong>" + g.name + "</strong>";
      g.legend.forEach(function (e) {
        inner += '<div><i style="background:' + e.color + '"></i>' + e.label + "</div>";
      });
      inner += '<div><i style="background:' + g.noDataColor + '"></i>no data</div>';
      div.innerHTML = inner;
      return div;
    };
    legends[g.name] = legend;

    if (g.visible) {
      layer.addTo(map);
      legend.addTo(map);
    }
  });

  map.on("overlayadd", function (e) { if (legends[e.name]) { legends[e.name].addTo(map); } });
  map.on("overlayremove", function (e) { if (legends[e.name]) { legends[e.name].remove(); } });

  L.control.layers(baseLayers, overlays, {collapsed: false}).addTo(map);
})();
</script>
</body>
</html>
`
