package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"dermo-chatbot-platform/internal/catalog"
)

func writeWorkbook(t *testing.T, dir, brand string, header []string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	h := make([]interface{}, len(header))
	for i, c := range header {
		h[i] = c
	}
	if err := f.SetSheetRow("Sheet1", "A1", &h); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(filepath.Join(dir, brand+".xlsx")); err != nil {
		t.Fatal(err)
	}
}

func TestBuildWritesCorpusFiles(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	spec := catalog.Cetaphil()
	writeWorkbook(t, src, "cetaphil", spec.Sheets[0].Columns, [][]interface{}{
		{"x", "Cetaphil", "Gentle Cleanser", "120ml", "111", "Facial", "", "", "Limpia suavemente", ""},
		{"x", "Cetaphil", "Moisturizing Lotion", "200ml", "222", "Corporal", "", "", "Hidrata", ""},
	})

	b := &Builder{SourceDir: src, OutDir: out}
	docs, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("want 2 documents, got %d", len(docs))
	}
	if docs[0].Brand != "cetaphil" || docs[0].EAN != "111" {
		t.Errorf("doc[0] = %+v", docs[0])
	}
	if !strings.HasPrefix(docs[0].Text, "Producto Gentle Cleanser. Marca Cetaphil.") {
		t.Errorf("text = %q", docs[0].Text)
	}

	raw, err := os.ReadFile(filepath.Join(out, "cetaphil_all.txt"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(raw), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 txt lines without trailing newline, got %d: %q", len(lines), raw)
	}

	roundTrip, err := ReadDocuments(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(roundTrip) != 2 || roundTrip[1].EAN != "222" {
		t.Errorf("round trip = %+v", roundTrip)
	}
}

func TestBuildSkipsMissingBrands(t *testing.T) {
	// Only one of the nine workbooks exists; the rest are skipped, not fatal.
	src := t.TempDir()
	spec := catalog.Vichy()
	writeWorkbook(t, src, "vichy", spec.Sheets[0].Columns, [][]interface{}{
		{"V1", "SK2", "999", "Mineral 89", "Diario", "Vichy", "", "Refuerza"},
	})

	b := &Builder{SourceDir: src, OutDir: t.TempDir()}
	docs, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Brand != "vichy" {
		t.Fatalf("docs = %+v", docs)
	}
}

func TestBuildFailsWithNoWorkbooks(t *testing.T) {
	b := &Builder{SourceDir: t.TempDir(), OutDir: t.TempDir()}
	if _, err := b.Build(); err == nil {
		t.Fatal("want error when no workbook loads")
	}
}
