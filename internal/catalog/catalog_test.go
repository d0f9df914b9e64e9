package catalog

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestCepageAdapt(t *testing.T) {
	spec := Cepage()
	sheet := Sheet{
		Columns: spec.Sheets[0].Columns,
		Rows: []Row{
			{
				"producto": "Crema X", "ean": "123", "sku": "S1",
				"descripcion": "Hidrata la piel",
			},
			{
				"producto": "Crema X", "ean": "123", "sku": "S1",
				"descripcion": "Hidrata la piel",
			},
			{},
		},
	}

	records := spec.Adapt([]Sheet{sheet})
	if len(records) != 1 {
		t.Fatalf("want 1 record after dedupe and blank-row skip, got %d", len(records))
	}

	r := records[0]
	if r.Product != "Producto Crema X. Marca Cepage." {
		t.Errorf("product = %q", r.Product)
	}
	if r.Code != "Código EAN 123. Código SKU S1." {
		t.Errorf("code = %q", r.Code)
	}
	if r.Description != "Descripción: Hidrata la piel." {
		t.Errorf("description = %q", r.Description)
	}
	if r.EAN != "123" {
		t.Errorf("ean = %q", r.EAN)
	}
	if r.Brand != "Cepage" {
		t.Errorf("brand = %q", r.Brand)
	}

	want := "Producto Crema X. Marca Cepage. Código EAN 123. Código SKU S1. Descripción: Hidrata la piel."
	if got := r.Line(); got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestCepageDimensions(t *testing.T) {
	spec := Cepage()
	sheet := Sheet{
		Columns: spec.Sheets[0].Columns,
		Rows: []Row{{
			"producto": "Serum Y", "ean": "456", "sku": "S2",
			"ancho": "40", "profundidad": "40", "alto": "120", "peso": "95",
			"presentacion": "Pomo",
		}},
	}

	records := spec.Adapt([]Sheet{sheet})
	if len(records) != 1 {
		t.Fatalf("want 1 record, got %d", len(records))
	}
	want := "Presentación Pomo. Dimensiones 40mm x 40mm x 120mm. Peso 95gr."
	if records[0].Description != want {
		t.Errorf("description = %q, want %q", records[0].Description, want)
	}
}

func TestCetaphilKeywords(t *testing.T) {
	spec := Cetaphil()
	sheet := Sheet{
		Columns: spec.Sheets[0].Columns,
		Rows: []Row{{
			"nombre": "Gentle Cleanser", "ean": "789",
			"categoria": "Facial", "subcategoria": "Crema",
			"keywords": "crema, solar", "descripcion": "Limpia suavemente",
			"presentacion": "120ml",
		}},
	}

	records := spec.Adapt([]Sheet{sheet})
	if len(records) != 1 {
		t.Fatalf("want 1 record, got %d", len(records))
	}
	want := "Descripción: Limpia suavemente. Keywords: facial; crema; solar. Presentación 120ml."
	if records[0].Description != want {
		t.Errorf("description = %q, want %q", records[0].Description, want)
	}
}

func TestIsdinOptionalProduct(t *testing.T) {
	spec := Isdin()
	sheet := Sheet{
		Columns: spec.Sheets[0].Columns,
		Rows: []Row{
			{"nombre": "Fotoprotector", "ean": "111", "descripcion": "Protege"},
			{"codigo": "C9", "variante": "50ml"},
		},
	}

	records := spec.Adapt([]Sheet{sheet})
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
	if records[0].Product != "Producto Fotoprotector. Marca Isdin." {
		t.Errorf("product = %q", records[0].Product)
	}
	if records[1].Product != "Marca Isdin." {
		t.Errorf("fallback product = %q", records[1].Product)
	}
	if records[1].Code != "Código C9." {
		t.Errorf("code = %q", records[1].Code)
	}
	if records[1].Description != "50ml." {
		t.Errorf("description = %q", records[1].Description)
	}
}

func TestRevlonMerchCodePerSheet(t *testing.T) {
	spec := Revlon()

	withMerch := Sheet{
		Columns: spec.Sheets[0].Columns,
		Rows:    []Row{{"producto": "Labial", "codigo sap": "77", "ean": "22", "merch code": "M1"}},
	}
	records := spec.Adapt([]Sheet{withMerch})
	if len(records) != 1 {
		t.Fatalf("want 1 record, got %d", len(records))
	}
	if want := "Código SAP 77. Código EAN 22. Merch code M1."; records[0].Code != want {
		t.Errorf("code = %q, want %q", records[0].Code, want)
	}

	// Sheet 4 has no merch code column at all.
	sheets := make([]Sheet, len(spec.Sheets))
	for i, schema := range spec.Sheets {
		sheets[i] = Sheet{Columns: schema.Columns}
	}
	sheets[4].Rows = []Row{{"producto": "Esmalte", "codigo sap": "88", "ean": "33"}}
	records = spec.Adapt(sheets)
	if len(records) != 1 {
		t.Fatalf("want 1 record, got %d", len(records))
	}
	if want := "Código SAP 88. Código EAN 33."; records[0].Code != want {
		t.Errorf("code = %q, want %q", records[0].Code, want)
	}
}

func TestVichyCodePrefersEAN(t *testing.T) {
	spec := Vichy()
	sheet := Sheet{
		Columns: spec.Sheets[0].Columns,
		Rows: []Row{{
			"producto": "Mineral 89", "marca": "Vichy",
			"codigo": "V1", "sku": "SK2", "ean": "999",
			"uso": "Diario", "descripcion": "Refuerza la barrera",
		}},
	}

	records := spec.Adapt([]Sheet{sheet})
	if len(records) != 1 {
		t.Fatalf("want 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Product != "Product Mineral 89. Marca Vichy." {
		t.Errorf("product = %q", r.Product)
	}
	if r.Code != "Código V1. Código SKU SK2. Código EAN 999." {
		t.Errorf("code = %q", r.Code)
	}
	if r.EAN != "999" {
		t.Errorf("ean = %q, want the ean column value", r.EAN)
	}
	if r.Description != "Uso: Diario. Descripcion: Refuerza la barrera." {
		t.Errorf("description = %q", r.Description)
	}
}

func TestLorealPresentation(t *testing.T) {
	spec := Loreal()
	sheets := make([]Sheet, len(spec.Sheets))
	for i, schema := range spec.Sheets {
		sheets[i] = Sheet{Columns: schema.Columns}
	}
	sheets[0].Rows = []Row{{
		"marca": "Garnier", "titulo": "Agua Micelar", "ean": "555",
		"descripcion": "Desmaquilla", "tamaño": "400", "unidades": "ml",
		"keywords": "micelar; limpieza",
	}}

	records := spec.Adapt(sheets)
	if len(records) != 1 {
		t.Fatalf("want 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Product != "Marca Garnier. Título: Agua Micelar." {
		t.Errorf("product = %q", r.Product)
	}
	if !strings.Contains(r.Description, "Descripcion: Desmaquilla.") {
		t.Errorf("description missing feature: %q", r.Description)
	}
	if !strings.Contains(r.Description, "Presentación 400ml.") {
		t.Errorf("description missing presentation: %q", r.Description)
	}
	if !strings.Contains(r.Description, "Keywords: limpieza; micelar.") {
		t.Errorf("description missing keywords: %q", r.Description)
	}
}

func TestBrandNames(t *testing.T) {
	want := []string{
		"Cepage", "Cetaphil", "Eucerin", "Eximia", "Isdin",
		"Loreal", "La Roche-Posay", "Revlon", "Vichy",
	}
	got := BrandNames()
	if len(got) != len(want) {
		t.Fatalf("want %d brands, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("brand[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadWorkbook(t *testing.T) {
	spec := Cetaphil()

	f := excelize.NewFile()
	header := make([]interface{}, len(spec.Sheets[0].Columns))
	for i, c := range spec.Sheets[0].Columns {
		header[i] = c
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	row := []interface{}{
		"x", "Cetaphil", "Gentle Cleanser", "120 ml", "7790520001234.0",
		"Facial", "", "", "Limpia suavemente la piel.", "nan",
	}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "cetaphil.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	sheets, err := Load(spec, path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 1 || len(sheets[0].Rows) != 1 {
		t.Fatalf("want 1 sheet with 1 row, got %+v", sheets)
	}

	got := sheets[0].Rows[0]
	if got["ean"] != "7790520001234" {
		t.Errorf("ean = %q, want float formatting stripped", got["ean"])
	}
	if got["presentacion"] != "120ml" {
		t.Errorf("presentacion = %q", got["presentacion"])
	}
	if got["descripcion"] != "Limpia suavemente la piel" {
		t.Errorf("descripcion = %q", got["descripcion"])
	}
	if got["keywords"] != "" {
		t.Errorf("keywords = %q, want nan stripped", got["keywords"])
	}
}

func TestMapRowsDropsBlankCellMarkers(t *testing.T) {
	schema := SheetSchema{Columns: []string{"producto", "keywords", "descripcion"}}
	sheet := mapRows(schema, [][]string{
		{"producto", "keywords", "descripcion"},
		{"Crema X", "nan", "inf"},
		{"Crema Y", "NaN", "-Inf"},
	})

	if len(sheet.Rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(sheet.Rows))
	}
	for i, row := range sheet.Rows {
		if row["keywords"] != "" {
			t.Errorf("row %d keywords = %q, want blank marker dropped", i, row["keywords"])
		}
		if row["descripcion"] != "" {
			t.Errorf("row %d descripcion = %q, want blank marker dropped", i, row["descripcion"])
		}
	}
}

func TestNormalizeNumeric(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"7790520001234.0", "7790520001234"},
		{"7.79052e+12", "7790520000000"},
		{"779", "779"},
		{"120 ml", "120 ml"},
		{"nan", ""},
		{"NaN", ""},
		{"inf", ""},
		{"-inf", ""},
		{"+Inf", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeNumeric(tt.in); got != tt.want {
			t.Errorf("normalizeNumeric(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(Cepage(), filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Fatal("want error for missing workbook")
	}
}
