// Package pipeline wires the rendering stages: load datasets, filter and
// reproject boundaries, join attributes, build scales, compose the map.
// Each stage completes fully before the next begins; any failure aborts
// the run and is surfaced to the caller.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/choromap/internal/boundary"
	"github.com/sells-group/choromap/internal/config"
	"github.com/sells-group/choromap/internal/dataset"
	"github.com/sells-group/choromap/internal/maplayer"
	"github.com/sells-group/choromap/internal/region"
	"github.com/sells-group/choromap/internal/scale"
)

// Result carries the composed map plus the intermediate collections, which
// the inspect command reports on.
type Result struct {
	Map      *maplayer.Map
	Regions  []region.EnrichedRegion
	Defs     []dataset.MetricDef
	Metrics  []dataset.MetricRecord
	Excluded int // polygons dropped by the allow-list
}

// Run executes the full pipeline described by cfg.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	log := zap.L().With(zap.String("component", "pipeline"))

	regions, excluded, defs, metrics, err := prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}

	builder := maplayer.NewBuilder(cfg.Map.Title, cfg.Map.CenterLat, cfg.Map.CenterLng, cfg.Map.Zoom).
		AddBaseLayer(maplayer.OpenStreetMap()).
		AddBaseLayer(maplayer.CartoLight())

	for _, def := range defs {
		group, err := buildGroup(def, regions)
		if err != nil {
			return nil, err
		}
		builder.AddLayerGroup(group)
	}
	if cfg.Map.DefaultLayer != "" {
		builder.DefaultGroup(cfg.Map.DefaultLayer)
	}

	m, err := builder.Build()
	if err != nil {
		return nil, err
	}

	log.Info("map rendered",
		zap.Int("regions", len(regions)),
		zap.Int("layers", len(defs)),
	)
	return &Result{
		Map:      m,
		Regions:  regions,
		Defs:     defs,
		Metrics:  metrics,
		Excluded: excluded,
	}, nil
}

// Prepare runs the data stages only: load, filter, reproject, join. The
// inspect command stops here.
func Prepare(ctx context.Context, cfg *config.Config) (*Result, error) {
	regions, excluded, defs, metrics, err := prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Regions: regions, Defs: defs, Metrics: metrics, Excluded: excluded}, nil
}

func prepare(ctx context.Context, cfg *config.Config) ([]region.EnrichedRegion, int, []dataset.MetricDef, []dataset.MetricRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, nil, nil, eris.Wrap(err, "pipeline: context cancelled")
	}
	log := zap.L().With(zap.String("component", "pipeline"))

	metrics, err := dataset.LoadMetrics(cfg.Inputs.MetricsPath)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	defs, err := dataset.LoadDefs(cfg.Inputs.MetricDefsPath)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	polygons, err := boundary.ReadShapefile(
		cfg.Inputs.BoundariesPath,
		cfg.Inputs.BoundaryCodeCol,
		cfg.Inputs.BoundaryNameCol,
		cfg.Inputs.SourceSRID,
	)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	kept := boundary.Filter(polygons, cfg.Filter.Regions)
	excluded := len(polygons) - len(kept)
	log.Debug("regions filtered",
		zap.Int("kept", len(kept)),
		zap.Int("excluded", excluded),
	)

	normalized, err := boundary.Reproject(kept, boundary.SRIDWGS84)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	regions, err := region.Join(normalized, metrics)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	return regions, excluded, defs, metrics, nil
}

// buildGroup turns one metric definition into a composed layer group. A
// metric column with no parseable values anywhere is an error: that layer
// cannot be shaded, and a silently empty layer would be worse.
func buildGroup(def dataset.MetricDef, regions []region.EnrichedRegion) (maplayer.LayerGroup, error) {
	var values []float64
	for _, r := range regions {
		if v, ok := r.Value(def.Column); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return maplayer.LayerGroup{}, eris.Errorf("pipeline: metric %q has no values across retained regions", def.Column)
	}

	s, err := scale.Build(values, def.Palette, def.Bins, scale.Options{
		Pretty:    def.Pretty,
		Precision: def.Precision,
	})
	if err != nil {
		return maplayer.LayerGroup{}, err
	}
	if s.Bins() != def.Bins {
		zap.L().Info("pretty breaks adjusted bin count",
			zap.String("metric", def.Column),
			zap.Int("requested", def.Bins),
			zap.Int("effective", s.Bins()),
		)
	}

	features := make([]maplayer.Feature, 0, len(regions))
	for _, r := range regions {
		v, ok := r.Value(def.Column)
		features = append(features, maplayer.Feature{
			Code:     r.Code,
			Name:     r.Name,
			Geometry: r.Geometry,
			Value:    v,
			Valid:    ok,
			RawValue: r.Raw(def.Column),
		})
	}

	return maplayer.NewLayerGroup(def.Label, features, s), nil
}
