// Package scale builds binned color scales over metric value distributions.
//
// Scale construction is a pure function of its inputs: identical values,
// palette, and options always produce an identical scale, and no state is
// shared between calls.
package scale

import (
	"fmt"
	"image/color"
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot/palette/brewer"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultNoDataColor shades regions whose metric value is absent. Absent
// values never fall into the first bin.
const DefaultNoDataColor = "#d9d9d9"

// brewer sequential palettes carry at most nine classes.
const maxPaletteColors = 9

// Options tunes scale construction.
type Options struct {
	// Pretty requests even ("pretty") break points. The effective bin
	// count may then shrink below the requested count; the scale reports
	// the count actually used via Bins. This mirrors the usual behavior
	// of classed-map libraries and is intentional, not an error.
	Pretty bool
	// Precision is the number of significant digits for legend labels.
	// Zero displays raw break values.
	Precision int
	// NoDataColor overrides DefaultNoDataColor when non-empty.
	NoDataColor string
}

// ColorScale is a monotonic mapping from a numeric domain onto a finite
// ordered set of colors. The zero value is not usable; construct with Build.
type ColorScale struct {
	breaks    []float64 // ascending, len = bins+1
	colors    []string  // hex, len = bins
	noData    string
	precision int
	reversed  bool
}

// LegendEntry is one legend line: a bin's color and formatted value range.
type LegendEntry struct {
	Color string
	Label string
}

// Build constructs a binned color scale over the given values using a
// ColorBrewer sequential palette. bins is the requested bin count; consult
// Bins on the result for the count in effect (pretty breaks may change it).
func Build(values []float64, paletteName string, bins int, opts Options) (*ColorScale, error) {
	if len(values) == 0 {
		return nil, eris.New("scale: no values to build scale over")
	}
	if bins < 1 {
		return nil, eris.Errorf("scale: requested bin count %d is not positive", bins)
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var breaks []float64
	if opts.Pretty {
		limit := bins
		if limit > maxPaletteColors {
			limit = maxPaletteColors
		}
		breaks = prettyBreaks(min, max, bins, limit)
	} else {
		breaks = equalBreaks(min, max, bins)
	}

	effective := len(breaks) - 1
	colors, err := paletteColors(paletteName, effective)
	if err != nil {
		return nil, err
	}

	noData := opts.NoDataColor
	if noData == "" {
		noData = DefaultNoDataColor
	}

	return &ColorScale{
		breaks:    breaks,
		colors:    colors,
		noData:    noData,
		precision: opts.Precision,
	}, nil
}

// Bins reports the effective bin count.
func (s *ColorScale) Bins() int {
	return len(s.colors)
}

// Breaks returns a copy of the ascending break points (length Bins+1).
func (s *ColorScale) Breaks() []float64 {
	return append([]float64(nil), s.breaks...)
}

// NoDataColor is the hex color for absent values.
func (s *ColorScale) NoDataColor() string {
	return s.noData
}

// ColorFor maps a value to its bin color. valid=false yields the no-data
// color. Values outside the domain clamp to the outermost bins. The mapping
// is identical for a scale and its Reversed variant.
func (s *ColorScale) ColorFor(v float64, valid bool) string {
	if !valid {
		return s.noData
	}
	if v <= s.breaks[0] {
		return s.colors[0]
	}
	for i := 1; i < len(s.breaks); i++ {
		if v <= s.breaks[i] {
			return s.colors[i-1]
		}
	}
	return s.colors[len(s.colors)-1]
}

// Reversed returns the legend-presentation variant: same value-to-color
// mapping, legend entries ordered largest-first.
func (s *ColorScale) Reversed() *ColorScale {
	r := *s
	r.reversed = true
	return &r
}

// LegendEntries lists one entry per bin. An ascending scale lists the
// smallest range first; a Reversed scale lists the largest range first.
func (s *ColorScale) LegendEntries() []LegendEntry {
	entries := make([]LegendEntry, len(s.colors))
	for i := range s.colors {
		entries[i] = LegendEntry{
			Color: s.colors[i],
			Label: fmt.Sprintf("%s – %s", s.formatValue(s.breaks[i]), s.formatValue(s.breaks[i+1])),
		}
	}
	if s.reversed {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	return entries
}

var legendPrinter = message.NewPrinter(language.BritishEnglish)

// formatValue renders a break value with thousands separators, rounded to
// the configured number of significant digits (0 = raw).
func (s *ColorScale) formatValue(v float64) string {
	if s.precision > 0 {
		return legendPrinter.Sprintf("%v", number.Decimal(v, number.Precision(s.precision)))
	}
	return legendPrinter.Sprintf("%v", number.Decimal(v))
}

// equalBreaks partitions [min, max] into exactly n equal intervals.
func equalBreaks(min, max float64, n int) []float64 {
	if min == max {
		return []float64{min, max}
	}
	breaks := make([]float64, n+1)
	step := (max - min) / float64(n)
	for i := 0; i <= n; i++ {
		breaks[i] = min + float64(i)*step
	}
	breaks[n] = max
	return breaks
}

// paletteColors fetches n hex colors from a ColorBrewer sequential palette.
// Palettes define between 3 and 9 classes, so the lookup is clamped and the
// first n colors are taken when fewer are needed.
func paletteColors(name string, n int) ([]string, error) {
	if n > maxPaletteColors {
		return nil, eris.Errorf("scale: palette %q supports at most %d bins, %d requested", name, maxPaletteColors, n)
	}
	lookup := n
	if lookup < 3 {
		lookup = 3
	}

	pal, err := brewer.GetPalette(brewer.TypeSequential, name, lookup)
	if err != nil {
		return nil, eris.Wrapf(err, "scale: palette %q", name)
	}

	colors := pal.Colors()
	hex := make([]string, n)
	for i := 0; i < n; i++ {
		hex[i] = toHex(colors[i])
	}
	return hex, nil
}

func toHex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// prettyBreaks covers [min, max] with even break points stepped by a value
// from the 1/2/5 x 10^k ladder nearest to the equal-interval step. Flooring
// and ceiling the domain outward can add bins, so the step is widened until
// the count fits within limit: the effective count only ever shrinks, and
// never produces more bins than a palette can shade.
func prettyBreaks(min, max float64, n, limit int) []float64 {
	if min == max {
		return []float64{min, max}
	}

	step := niceStep((max - min) / float64(n))
	for {
		breaks := stepBreaks(min, max, step)
		if len(breaks)-1 <= limit {
			return breaks
		}
		step = nextStep(step)
	}
}

// stepBreaks lays even break points of the given step across [min, max],
// extended outward to step multiples.
func stepBreaks(min, max, step float64) []float64 {
	lo := math.Floor(min/step) * step
	hi := math.Ceil(max/step) * step

	var breaks []float64
	for v := lo; v < hi+step/2; v += step {
		breaks = append(breaks, v)
	}
	breaks[len(breaks)-1] = hi
	return breaks
}

// niceStep rounds a raw step up to the nearest 1, 2, or 5 times a power of ten.
func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch frac := raw / mag; {
	case frac <= 1:
		return mag
	case frac <= 2:
		return 2 * mag
	case frac <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// nextStep moves one rung up the 1/2/5 x 10^k ladder.
func nextStep(step float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(step)))
	switch frac := step / mag; {
	case frac < 1.5:
		return 2 * mag
	case frac < 3.5:
		return 5 * mag
	default:
		return 10 * mag
	}
}
