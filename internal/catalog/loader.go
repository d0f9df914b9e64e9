package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"dermo-chatbot-platform/internal/normalizer"
)

// Load reads the brand's workbook and returns one Sheet per schema entry,
// with cells cleaned and mapped positionally onto the schema columns.
func Load(spec *BrandSpec, path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) < len(spec.Sheets) {
		return nil, fmt.Errorf("workbook %s: want %d sheets, have %d", path, len(spec.Sheets), len(names))
	}

	sheets := make([]Sheet, len(spec.Sheets))
	for i, schema := range spec.Sheets {
		rows, err := f.GetRows(names[i])
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", names[i], err)
		}
		sheets[i] = mapRows(schema, rows)
	}
	return sheets, nil
}

// mapRows maps raw worksheet rows onto the schema. The first row is the
// header and is discarded; SkipRows drops additional leading rows after it.
func mapRows(schema SheetSchema, raw [][]string) Sheet {
	start := 1 + schema.SkipRows
	if start > len(raw) {
		start = len(raw)
	}

	sheet := Sheet{Columns: schema.Columns}
	for _, cells := range raw[start:] {
		row := make(Row, len(schema.Columns))
		for j, col := range schema.Columns {
			var cell string
			if j < len(cells) {
				cell = cells[j]
			}
			row[col] = normalizer.CleanCell(normalizeNumeric(cell))
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

// normalizeNumeric rewrites integral floats ("7790520001234.0", "7.79052e+12")
// as plain integers so codes survive spreadsheet number formatting.
func normalizeNumeric(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return cell
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return cell
	}
	// ParseFloat accepts "nan" and "inf", the markers pandas leaves in blank
	// cells. Those are empty cells, not numbers.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
