// Package catalog maps the nine per-brand product spreadsheets, each with its
// own column layout, onto the canonical {Producto, Código, Descripción} record
// shape used to build the retrieval corpus.
package catalog

import (
	"fmt"
	"strings"

	"dermo-chatbot-platform/internal/normalizer"
)

// Row holds one spreadsheet row keyed by canonical column name.
// Missing cells are empty strings.
type Row map[string]string

// Sheet is one worksheet after loading: schema column order plus cleaned rows.
type Sheet struct {
	Columns []string
	Rows    []Row
}

// SheetSchema declares the canonical column names of one worksheet, the
// columns that carry no product information, and how many leading rows to
// skip beyond the header (some exports repeat headers on the first data row).
type SheetSchema struct {
	Columns  []string
	Drop     []string
	SkipRows int
}

func (s SheetSchema) dropped(col string) bool {
	for _, d := range s.Drop {
		if d == col {
			return true
		}
	}
	return false
}

// Record is the canonical product representation shared across brands.
// EAN is the join key against the stock snapshot.
type Record struct {
	Product     string
	Code        string
	Description string
	Brand       string
	EAN         string
}

// Line renders the record as one corpus line.
func (r Record) Line() string {
	return fmt.Sprintf("%s %s %s", r.Product, r.Code, r.Description)
}

// composeFunc builds the three canonical fields from one row of one sheet.
type composeFunc func(sheet int, row Row) (product, code, description string)

// BrandSpec is the declarative description of one brand's spreadsheet:
// per-sheet schemas plus the field-composition recipe.
type BrandSpec struct {
	Name    string // display casing, e.g. "La Roche-Posay"
	Lower   string // file key, e.g. "la roche-posay"
	Sheets  []SheetSchema
	compose composeFunc
}

// Adapt converts the loaded sheets into canonical records, concatenating
// multi-sheet brands in sheet order. Rows where both product and code compose
// to empty strings are schema-alignment artifacts and are dropped, as are
// fully blank and duplicate rows.
func (b *BrandSpec) Adapt(sheets []Sheet) []Record {
	var records []Record
	for i, sheet := range sheets {
		if i >= len(b.Sheets) {
			break
		}
		seen := make(map[string]bool)
		for _, row := range sheet.Rows {
			if rowEmpty(row) {
				continue
			}
			fp := fingerprint(sheet.Columns, row)
			if seen[fp] {
				continue
			}
			seen[fp] = true

			product, code, description := b.compose(i, row)
			if product == "" && code == "" {
				continue
			}
			records = append(records, Record{
				Product:     product,
				Code:        code,
				Description: description,
				Brand:       b.Name,
				EAN:         row["ean"],
			})
		}
	}
	return records
}

// featureColumns returns the sheet's columns minus the excluded and dropped
// ones, preserving schema order.
func (b *BrandSpec) featureColumns(sheet int, exclude []string) []string {
	schema := b.Sheets[sheet]
	var cols []string
	for _, col := range schema.Columns {
		if schema.dropped(col) || contains(exclude, col) {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func rowEmpty(row Row) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func fingerprint(columns []string, row Row) string {
	vals := make([]string, len(columns))
	for i, col := range columns {
		vals[i] = row[col]
	}
	return strings.Join(vals, "\x1f")
}

// labelIf renders "Label value." only when the value is non-empty, mirroring
// the conditional sentence assembly used in every brand recipe.
func labelIf(format, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return fmt.Sprintf(format, value)
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// labeledFeatures renders "Column: value. " fragments for every non-empty
// feature column, in schema order.
func labeledFeatures(cols []string, row Row) string {
	var sb strings.Builder
	for _, col := range cols {
		if v := row[col]; v != "" {
			fmt.Fprintf(&sb, "%s: %s. ", capitalize(col), v)
		}
	}
	return sb.String()
}

// keywordsFragment builds the "Keywords: …" sentence from the given cells,
// or "" when no keyword survives deduplication.
func keywordsFragment(row Row, cols ...string) string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		cells[i] = row[col]
	}
	kws := normalizer.MakeKeywords(cells)
	if kws == "" {
		return ""
	}
	return "Keywords: " + kws
}
