// Package region joins metric records onto region polygons by region code.
package region

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/choromap/internal/boundary"
	"github.com/sells-group/choromap/internal/dataset"
)

// ErrDuplicateRegion marks two polygons or two metric records sharing one
// region code; the join assumes one of each per region. Callers match
// with eris.Is.
var ErrDuplicateRegion = eris.New("region: duplicate region code")

// EnrichedRegion is a region polygon carrying its metric record. Metrics is
// nil when no metric row matched the polygon's code; the polygon still
// renders, with every metric treated as absent.
type EnrichedRegion struct {
	boundary.RegionPolygon
	Metrics *dataset.MetricRecord
}

// Value returns the parsed numeric value for a metric column, reporting
// false when the region has no metric record or the value is absent.
func (e EnrichedRegion) Value(column string) (float64, bool) {
	if e.Metrics == nil {
		return 0, false
	}
	return e.Metrics.Value(column)
}

// Raw returns the original formatted text for a metric column, or "" when
// the region has no metric record.
func (e EnrichedRegion) Raw(column string) string {
	if e.Metrics == nil {
		return ""
	}
	return e.Metrics.Raw(column)
}

// Join left-joins metric records onto polygons by region code. Polygons are
// authoritative for membership: the output has exactly one entry per input
// polygon, in input order, whether or not a metric record matched.
func Join(polygons []boundary.RegionPolygon, records []dataset.MetricRecord) ([]EnrichedRegion, error) {
	byCode := make(map[string]*dataset.MetricRecord, len(records))
	for i := range records {
		if byCode[records[i].Code] != nil {
			return nil, eris.Wrapf(ErrDuplicateRegion, "metric record code %q", records[i].Code)
		}
		byCode[records[i].Code] = &records[i]
	}

	seen := make(map[string]bool, len(polygons))
	enriched := make([]EnrichedRegion, 0, len(polygons))
	var unmatched int

	for _, p := range polygons {
		if seen[p.Code] {
			return nil, eris.Wrapf(ErrDuplicateRegion, "code %q", p.Code)
		}
		seen[p.Code] = true

		rec := byCode[p.Code]
		if rec == nil {
			unmatched++
		}
		enriched = append(enriched, EnrichedRegion{RegionPolygon: p, Metrics: rec})
	}

	if unmatched > 0 {
		zap.L().Warn("polygons with no metric record",
			zap.Int("unmatched", unmatched),
		)
	}
	return enriched, nil
}
