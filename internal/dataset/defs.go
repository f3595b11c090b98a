package dataset

import (
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// MetricDef declares how one metric column becomes a map layer: which
// palette shades it, how many bins the scale requests, and how legend
// labels are rounded.
type MetricDef struct {
	Column    string `yaml:"column"`    // metrics table column name
	Label     string `yaml:"label"`     // display name for layer and legend
	Palette   string `yaml:"palette"`   // ColorBrewer palette name
	Bins      int    `yaml:"bins"`      // requested bin count
	Pretty    bool   `yaml:"pretty"`    // use even ("pretty") break points
	Precision int    `yaml:"precision"` // significant digits for legend labels (0 = raw)
}

// LoadDefs reads metric layer definitions from a YAML file. Every
// definition must reference a known metrics table column.
func LoadDefs(path string) ([]MetricDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(ErrDataLoad, "open metric definitions: %v", err)
	}

	var defs []MetricDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, eris.Wrapf(ErrDataLoad, "parse metric definitions: %v", err)
	}
	if len(defs) == 0 {
		return nil, eris.Wrap(ErrDataLoad, "metric definitions file is empty")
	}

	known := MetricColumns()
	for i, def := range defs {
		if !slices.Contains(known, def.Column) {
			return nil, eris.Wrapf(ErrDataLoad, "metric definition %d references unknown column %q", i, def.Column)
		}
		if def.Label == "" {
			return nil, eris.Wrapf(ErrDataLoad, "metric definition for %q has no label", def.Column)
		}
	}
	return defs, nil
}
