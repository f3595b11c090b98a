package boundary

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// SRIDs understood by the reprojection stage.
const (
	SRIDWGS84       = 4326
	SRIDBritishGrid = 27700
)

// Reproject returns a copy of the polygon collection with every geometry
// expressed in the target CRS. The transform is applied uniformly: the
// output never mixes reference systems. Input polygons are not modified.
func Reproject(polygons []RegionPolygon, targetSRID int) ([]RegionPolygon, error) {
	if targetSRID != SRIDWGS84 {
		return nil, eris.Wrapf(ErrReprojection, "unsupported target SRID %d", targetSRID)
	}

	out := make([]RegionPolygon, 0, len(polygons))
	for _, p := range polygons {
		mp, err := reprojectMultiPolygon(p.Geometry, targetSRID)
		if err != nil {
			return nil, eris.Wrapf(err, "region %s", p.Code)
		}
		out = append(out, RegionPolygon{Code: p.Code, Name: p.Name, Geometry: mp})
	}

	zap.L().Debug("polygons reprojected",
		zap.Int("count", len(out)),
		zap.Int("target_srid", targetSRID),
	)
	return out, nil
}

func reprojectMultiPolygon(mp *geom.MultiPolygon, targetSRID int) (*geom.MultiPolygon, error) {
	srcSRID := mp.SRID()

	flat := mp.FlatCoords()
	coords := make([]float64, len(flat))
	copy(coords, flat)

	switch srcSRID {
	case targetSRID:
		// Already in the target CRS; still copied so callers own fresh geometry.
	case SRIDBritishGrid:
		stride := mp.Stride()
		for i := 0; i+1 < len(coords); i += stride {
			lng, lat, err := britishGridToWGS84(coords[i], coords[i+1])
			if err != nil {
				return nil, err
			}
			coords[i], coords[i+1] = lng, lat
		}
	default:
		return nil, eris.Wrapf(ErrReprojection, "unknown source SRID %d", srcSRID)
	}

	endss := make([][]int, len(mp.Endss()))
	for i, ends := range mp.Endss() {
		endss[i] = append([]int(nil), ends...)
	}

	return geom.NewMultiPolygonFlat(mp.Layout(), coords, endss).SetSRID(targetSRID), nil
}
