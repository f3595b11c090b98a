package region

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/choromap/internal/boundary"
	"github.com/sells-group/choromap/internal/dataset"
)

func poly(code string) boundary.RegionPolygon {
	flat := []float64{0, 0, 0, 1, 1, 1, 1, 0, 0, 0}
	return boundary.RegionPolygon{
		Code:     code,
		Name:     code + " area",
		Geometry: geom.NewMultiPolygonFlat(geom.XY, flat, [][]int{{len(flat)}}).SetSRID(boundary.SRIDWGS84),
	}
}

func record(code string, sales float64) dataset.MetricRecord {
	return dataset.MetricRecord{
		Code:  code,
		Name:  code + " area",
		Sales: dataset.Currency{Raw: "£x", Value: sales, Valid: true},
	}
}

func TestJoin_LeftOuter(t *testing.T) {
	polygons := []boundary.RegionPolygon{poly("AB"), poly("DD"), poly("KY")}
	records := []dataset.MetricRecord{record("AB", 500), record("DD", 1500)}

	enriched, err := Join(polygons, records)
	require.NoError(t, err)

	// Cardinality follows the polygon collection.
	require.Len(t, enriched, 3)

	v, ok := enriched[0].Value("sales")
	require.True(t, ok)
	assert.Equal(t, 500.0, v)

	v, ok = enriched[1].Value("sales")
	require.True(t, ok)
	assert.Equal(t, 1500.0, v)

	// KY has no metric record: present, all metrics absent.
	assert.Nil(t, enriched[2].Metrics)
	_, ok = enriched[2].Value("sales")
	assert.False(t, ok)
	assert.Empty(t, enriched[2].Raw("sales"))
}

func TestJoin_PreservesOrder(t *testing.T) {
	polygons := []boundary.RegionPolygon{poly("DD"), poly("AB")}
	enriched, err := Join(polygons, []dataset.MetricRecord{record("AB", 1)})
	require.NoError(t, err)
	assert.Equal(t, "DD", enriched[0].Code)
	assert.Equal(t, "AB", enriched[1].Code)
}

func TestJoin_DuplicatePolygonCode(t *testing.T) {
	polygons := []boundary.RegionPolygon{poly("AB"), poly("AB")}
	_, err := Join(polygons, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDuplicateRegion))
	assert.Contains(t, err.Error(), "AB")
}

func TestJoin_DuplicateRecordCode(t *testing.T) {
	polygons := []boundary.RegionPolygon{poly("AB")}
	records := []dataset.MetricRecord{record("AB", 1), record("AB", 2)}
	_, err := Join(polygons, records)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDuplicateRegion))
	assert.Contains(t, err.Error(), "AB")
}

func TestJoin_ExtraMetricRecordsIgnored(t *testing.T) {
	polygons := []boundary.RegionPolygon{poly("AB")}
	records := []dataset.MetricRecord{record("AB", 1), record("ZZ", 2)}
	enriched, err := Join(polygons, records)
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	assert.Equal(t, "AB", enriched[0].Code)
}

func TestJoin_Empty(t *testing.T) {
	enriched, err := Join(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, enriched)
}
