package boundary

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ReadShapefile loads region polygons from an ESRI shapefile. codeCol and
// nameCol name the attribute columns carrying the region code and display
// name; srid declares the CRS the shapefile's coordinates are expressed in.
// Records without usable polygon geometry are skipped.
func ReadShapefile(path, codeCol, nameCol string, srid int) ([]RegionPolygon, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrDataLoad, "open shapefile %s: %v", path, err)
	}
	defer func() { _ = reader.Close() }()

	codeIdx := fieldIndex(reader, codeCol)
	nameIdx := fieldIndex(reader, nameCol)
	if codeIdx < 0 {
		return nil, eris.Wrapf(ErrDataLoad, "shapefile missing attribute column %q", codeCol)
	}
	if nameIdx < 0 {
		return nil, eris.Wrapf(ErrDataLoad, "shapefile missing attribute column %q", nameCol)
	}

	var polygons []RegionPolygon
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		code := attribute(reader, codeIdx)
		name := attribute(reader, nameIdx)
		if code == "" {
			skipped++
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly, srid)
		if mp == nil {
			skipped++
			continue
		}

		polygons = append(polygons, RegionPolygon{
			Code:     code,
			Name:     name,
			Geometry: mp,
		})
	}

	if skipped > 0 {
		zap.L().Debug("skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return polygons, nil
}

// attribute reads a trimmed attribute value; DBF strings are NUL padded.
func attribute(reader *shp.Reader, idx int) string {
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
func polygonToMultiPolygon(p *shp.Polygon, srid int) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(srid)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
