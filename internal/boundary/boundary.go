// Package boundary reads region polygons from shapefiles, filters them by
// an allow-list of region codes, and reprojects them onto a common
// coordinate reference system.
package boundary

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Sentinel errors for the boundary stage. Callers match with eris.Is.
var (
	// ErrDataLoad marks an unreadable boundary source or a missing attribute column.
	ErrDataLoad = eris.New("boundary: load failed")
	// ErrReprojection marks an unknown CRS or a failed coordinate transform.
	ErrReprojection = eris.New("boundary: reprojection failed")
)

// RegionPolygon is one region's boundary: a code, a display name, and a
// multi-polygon tagged with the SRID its coordinates are expressed in.
type RegionPolygon struct {
	Code     string
	Name     string
	Geometry *geom.MultiPolygon
}

// SRID reports the coordinate reference system of the polygon's geometry.
func (r RegionPolygon) SRID() int {
	return r.Geometry.SRID()
}

// Filter returns the polygons whose region code appears in the allow-list.
// Comparison is an exact, case-sensitive string match. Geometry and
// attributes travel together; the input slice is not modified.
func Filter(polygons []RegionPolygon, allowlist []string) []RegionPolygon {
	allowed := make(map[string]bool, len(allowlist))
	for _, code := range allowlist {
		allowed[code] = true
	}

	kept := make([]RegionPolygon, 0, len(polygons))
	for _, p := range polygons {
		if allowed[p.Code] {
			kept = append(kept, p)
		}
	}
	return kept
}
