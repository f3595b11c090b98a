package maplayer

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/choromap/internal/boundary"
)

// MapBuilder accumulates base layers and layer groups in order, then
// finalizes them into an immutable Map. Free-form mutation of a built map
// is not possible; compose everything up front.
type MapBuilder struct {
	title        string
	centerLat    float64
	centerLng    float64
	zoom         int
	widgetID     string
	bases        []TileLayer
	groups       []LayerGroup
	defaultGroup string
}

// NewBuilder starts a map centered at the given WGS84 coordinate.
func NewBuilder(title string, centerLat, centerLng float64, zoom int) *MapBuilder {
	return &MapBuilder{
		title:     title,
		centerLat: centerLat,
		centerLng: centerLng,
		zoom:      zoom,
	}
}

// WidgetID pins the widget's DOM identifier. Useful when a host document
// embeds several widgets and needs stable anchors; defaults to a random UUID.
func (b *MapBuilder) WidgetID(id string) *MapBuilder {
	b.widgetID = id
	return b
}

// AddBaseLayer appends a base imagery option. The first becomes the
// initially selected base.
func (b *MapBuilder) AddBaseLayer(t TileLayer) *MapBuilder {
	b.bases = append(b.bases, t)
	return b
}

// AddLayerGroup appends a metric layer group.
func (b *MapBuilder) AddLayerGroup(g LayerGroup) *MapBuilder {
	b.groups = append(b.groups, g)
	return b
}

// DefaultGroup names the single layer group visible when the map first
// renders. Defaults to the first group added.
func (b *MapBuilder) DefaultGroup(name string) *MapBuilder {
	b.defaultGroup = name
	return b
}

// Build validates and finalizes the composition. Every feature geometry
// must already be in WGS84; mixed reference systems are rejected.
func (b *MapBuilder) Build() (*Map, error) {
	if len(b.bases) == 0 {
		return nil, eris.New("maplayer: map needs at least one base layer")
	}
	if len(b.groups) == 0 {
		return nil, eris.New("maplayer: map needs at least one layer group")
	}

	defaultGroup := b.defaultGroup
	if defaultGroup == "" {
		defaultGroup = b.groups[0].Name
	}
	found := false
	for _, g := range b.groups {
		if g.Name == defaultGroup {
			found = true
		}
		if g.Scale == nil {
			return nil, eris.Errorf("maplayer: layer group %q has no color scale", g.Name)
		}
		for _, f := range g.Features {
			if f.Geometry.SRID() != boundary.SRIDWGS84 {
				return nil, eris.Errorf("maplayer: feature %s in group %q has SRID %d, want %d",
					f.Code, g.Name, f.Geometry.SRID(), boundary.SRIDWGS84)
			}
		}
	}
	if !found {
		return nil, eris.Errorf("maplayer: default layer group %q not among composed groups", defaultGroup)
	}

	id := b.widgetID
	if id == "" {
		id = uuid.NewString()
	}

	m := &Map{
		id:           id,
		title:        b.title,
		centerLat:    b.centerLat,
		centerLng:    b.centerLng,
		zoom:         b.zoom,
		bases:        append([]TileLayer(nil), b.bases...),
		groups:       append([]LayerGroup(nil), b.groups...),
		defaultGroup: defaultGroup,
	}

	zap.L().Debug("map composed",
		zap.String("widget_id", m.id),
		zap.Int("base_layers", len(m.bases)),
		zap.Int("layer_groups", len(m.groups)),
		zap.String("default_group", m.defaultGroup),
	)
	return m, nil
}

// Map is a finalized, immutable composition of base layers and layer
// groups. It exclusively owns its layers and legends.
type Map struct {
	id           string
	title        string
	centerLat    float64
	centerLng    float64
	zoom         int
	bases        []TileLayer
	groups       []LayerGroup
	defaultGroup string
}

// ID is the widget's DOM identifier.
func (m *Map) ID() string { return m.id }

// Title is the widget heading.
func (m *Map) Title() string { return m.title }

// LayerGroups lists the composed group names in order.
func (m *Map) LayerGroups() []string {
	names := make([]string, len(m.groups))
	for i, g := range m.groups {
		names[i] = g.Name
	}
	return names
}

// DefaultGroup is the one group visible at first render.
func (m *Map) DefaultGroup() string { return m.defaultGroup }
