// Package dataset loads the regional metrics table from CSV or XLSX sources.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Sentinel errors for the load stage. Callers match with eris.Is.
var (
	// ErrDataLoad marks an unreadable source or a missing expected column.
	ErrDataLoad = eris.New("dataset: load failed")
	// ErrValueParse marks a metric token that could not be converted to a number.
	ErrValueParse = eris.New("dataset: value parse failed")
)

// MetricRecord is one row of the metrics table, keyed by region code.
// Currency columns carry their raw formatted text alongside the parsed value.
type MetricRecord struct {
	Code       string   `csv:"pc_area"`
	Name       string   `csv:"name"`
	Population Number   `csv:"population"`
	Sales      Currency `csv:"sales"`
	Costs      Currency `csv:"costs"`
	Overheads  Currency `csv:"overheads"`
	Tax        Currency `csv:"tax"`
	Profit     Currency `csv:"profit"`
}

// MetricColumns lists the metric column names in presentation order.
func MetricColumns() []string {
	return []string{"population", "sales", "costs", "overheads", "tax", "profit"}
}

// Value returns the parsed numeric value for a metric column.
// The second return is false for absent values or unknown columns.
func (r MetricRecord) Value(column string) (float64, bool) {
	switch column {
	case "population":
		return r.Population.Value, r.Population.Valid
	case "sales":
		return r.Sales.Value, r.Sales.Valid
	case "costs":
		return r.Costs.Value, r.Costs.Valid
	case "overheads":
		return r.Overheads.Value, r.Overheads.Valid
	case "tax":
		return r.Tax.Value, r.Tax.Valid
	case "profit":
		return r.Profit.Value, r.Profit.Valid
	}
	return 0, false
}

// Raw returns the original formatted text for a metric column, as it
// appeared in the source file. Popups display this, never the parsed value.
func (r MetricRecord) Raw(column string) string {
	switch column {
	case "population":
		return r.Population.Raw
	case "sales":
		return r.Sales.Raw
	case "costs":
		return r.Costs.Raw
	case "overheads":
		return r.Overheads.Raw
	case "tax":
		return r.Tax.Raw
	case "profit":
		return r.Profit.Raw
	}
	return ""
}

// requiredColumns must all be present in the source header.
var requiredColumns = []string{"pc_area", "name", "population", "sales", "costs", "overheads", "tax", "profit"}

// LoadMetrics reads the metrics table from path, dispatching on extension
// (.xlsx for spreadsheets, anything else is parsed as CSV). Region codes
// must be unique; a duplicate is a data-integrity failure.
func LoadMetrics(path string) ([]MetricRecord, error) {
	var (
		records []MetricRecord
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = loadXLSX(path)
	} else {
		records, err = loadCSV(path)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.Code] {
			return nil, eris.Wrapf(ErrDataLoad, "duplicate region code %q in metrics table", rec.Code)
		}
		seen[rec.Code] = true
	}

	zap.L().Debug("metrics table loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// loadCSV parses a delimited metrics file. The text encoding is explicit:
// UTF-8 with an optional BOM, so non-ASCII region names survive intact.
func loadCSV(path string) ([]MetricRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrDataLoad, "open metrics file: %v", err)
	}
	defer func() { _ = f.Close() }()

	utf8 := transform.NewReader(f, unicode.UTF8BOM.NewDecoder())
	reader := csv.NewReader(utf8)
	reader.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		return nil, eris.Wrapf(ErrDataLoad, "read metrics header: %v", err)
	}
	if err := checkHeader(dec.Header()); err != nil {
		return nil, err
	}

	return decodeRecords(dec)
}

// loadXLSX parses the first sheet of an XLSX workbook through the same
// decoder as the CSV path.
func loadXLSX(path string) ([]MetricRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(ErrDataLoad, "open metrics workbook: %v", err)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Wrap(ErrDataLoad, "metrics workbook has no sheets")
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	width := 0
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		empty := true
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
			if cells[j] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		if width == 0 {
			width = len(cells)
		}
		// Trailing empty cells are not stored in the sheet; pad rows out to
		// the header width so the decoder sees a rectangular table.
		for len(cells) < width {
			cells = append(cells, "")
		}
		rows = append(rows, cells)
	}

	dec, err := csvutil.NewDecoder(&rowReader{rows: rows})
	if err != nil {
		return nil, eris.Wrapf(ErrDataLoad, "read metrics header: %v", err)
	}
	if err := checkHeader(dec.Header()); err != nil {
		return nil, err
	}

	return decodeRecords(dec)
}

func decodeRecords(dec *csvutil.Decoder) ([]MetricRecord, error) {
	var records []MetricRecord
	for {
		var rec MetricRecord
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			if eris.Is(err, ErrValueParse) {
				return nil, err
			}
			return nil, eris.Wrapf(ErrDataLoad, "decode metrics row: %v", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	for _, col := range requiredColumns {
		if !present[col] {
			return eris.Wrapf(ErrDataLoad, "metrics table missing column %q", col)
		}
	}
	return nil
}

// rowReader adapts in-memory rows to the csvutil reader contract, so the
// XLSX path reuses the CSV decoding rules.
type rowReader struct {
	rows [][]string
	pos  int
}

func (r *rowReader) Read() ([]string, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}
