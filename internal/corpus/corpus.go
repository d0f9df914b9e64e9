// Package corpus turns the per-brand spreadsheets into the flat text and CSV
// files that feed the vector index.
package corpus

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dermo-chatbot-platform/internal/catalog"
	"dermo-chatbot-platform/internal/logger"
)

// Document is one embeddable product entry.
type Document struct {
	Brand string
	EAN   string
	Text  string
}

// Builder assembles the corpus out of brand workbooks found in SourceDir
// ("{brand}.xlsx") and writes the derived files into OutDir.
type Builder struct {
	SourceDir string
	OutDir    string
}

// Build loads every brand workbook, adapts it and writes the per-brand
// "{brand}_all.txt" and "{brand}_all.csv" files. A brand whose workbook is
// missing or malformed is logged and skipped so one bad export does not take
// the whole corpus down. The returned documents cover all brands that loaded.
func (b *Builder) Build() ([]Document, error) {
	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create corpus dir: %w", err)
	}

	var docs []Document
	var loaded int
	for _, spec := range catalog.Brands() {
		path := filepath.Join(b.SourceDir, spec.Lower+".xlsx")
		sheets, err := catalog.Load(spec, path)
		if err != nil {
			logger.Warn("Skipping brand workbook", "brand", spec.Name, "error", err)
			continue
		}

		records := spec.Adapt(sheets)
		if err := b.writeBrand(spec.Lower, records); err != nil {
			return nil, err
		}
		for _, r := range records {
			docs = append(docs, Document{Brand: spec.Lower, EAN: r.EAN, Text: r.Line()})
		}
		loaded++
		logger.Info("Brand adapted", "brand", spec.Name, "products", len(records))
	}

	if loaded == 0 {
		return nil, fmt.Errorf("no brand workbooks found under %s", b.SourceDir)
	}
	return docs, nil
}

func (b *Builder) writeBrand(brand string, records []catalog.Record) error {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.Line()
	}
	txtPath := filepath.Join(b.OutDir, brand+"_all.txt")
	if err := os.WriteFile(txtPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", txtPath, err)
	}

	csvPath := filepath.Join(b.OutDir, brand+"_all.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"marca", "ean", "texto"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write([]string{brand, r.EAN, r.Line()}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}
	return nil
}

// ReadDocuments loads a previously written "{brand}_all.csv" set back into
// memory, for indexing runs that reuse an existing corpus.
func ReadDocuments(dir string) ([]Document, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_all.csv"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no corpus CSV files under %s", dir)
	}

	var docs []Document
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		rows, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for i, row := range rows {
			if i == 0 || len(row) < 3 {
				continue
			}
			docs = append(docs, Document{Brand: row[0], EAN: row[1], Text: row[2]})
		}
	}
	return docs, nil
}
