package stock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type fakeSheet struct {
	values      [][]interface{}
	updated     [][]interface{}
	updateCalls int
	failUpdates int // fail this many Update calls before succeeding
}

func (f *fakeSheet) Get(ctx context.Context) ([][]interface{}, error) {
	return f.values, nil
}

func (f *fakeSheet) Update(ctx context.Context, values [][]interface{}) error {
	f.updateCalls++
	if f.updateCalls <= f.failUpdates {
		return errors.New("quota exceeded")
	}
	f.updated = values
	return nil
}

func sheetFixture() [][]interface{} {
	return [][]interface{}{
		{"codigo_fcia", "ean", "stock", "precio_vta", "promocion", "descrip"},
		{"F1", "111", "1.250", "100.5", "2x1", "Crema facial"},
		{"F2", "222", "0", "50", "", "Serum"},
		{"F3", "333", "7", "80", "", "Protector solar"},
	}
}

func TestPullFiltersAndWritesCSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "stock.csv")
	s := &Syncer{api: &fakeSheet{values: sheetFixture()}, csvPath: csvPath, maxRetries: 3}

	n, err := s.Pull(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("want 2 in-stock products, got %d", n)
	}

	snap, err := LoadSnapshot(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 2 {
		t.Fatalf("snapshot len = %d", snap.Len())
	}

	item, ok := snap.FindByEAN("111")
	if !ok {
		t.Fatal("EAN 111 missing from snapshot")
	}
	if item.Stock != 1250 {
		t.Errorf("stock = %d, want thousands separator stripped", item.Stock)
	}
	if item.Price != 100.5 {
		t.Errorf("price = %v", item.Price)
	}
	if _, ok := snap.FindByEAN("222"); ok {
		t.Error("out-of-stock EAN 222 should be dropped")
	}
}

func TestPullRejectsEmptySheet(t *testing.T) {
	s := &Syncer{
		api:     &fakeSheet{values: [][]interface{}{{"codigo_fcia"}}},
		csvPath: filepath.Join(t.TempDir(), "stock.csv"),
	}
	if _, err := s.Pull(context.Background()); err == nil {
		t.Fatal("want error for sheet without data rows")
	}
}

func TestPushAppliesMultiplierAndKeepsHeader(t *testing.T) {
	sheet := &fakeSheet{values: sheetFixture()}
	s := &Syncer{api: sheet, maxRetries: 3}

	if err := s.Push(context.Background(), 0.9); err != nil {
		t.Fatal(err)
	}
	if len(sheet.updated) != 4 {
		t.Fatalf("updated rows = %d", len(sheet.updated))
	}
	if sheet.updated[0][0] != "codigo_fcia" {
		t.Errorf("header row not preserved: %v", sheet.updated[0])
	}
	if got := sheet.updated[3][3]; got != "72" {
		t.Errorf("price = %v, want 72", got)
	}
	if got := sheet.updated[1][2]; got != "1250" {
		t.Errorf("stock = %v, want 1250", got)
	}
}

func TestPushRetriesThenSucceeds(t *testing.T) {
	sheet := &fakeSheet{values: sheetFixture(), failUpdates: 2}
	s := &Syncer{api: sheet, maxRetries: 3}

	if err := s.Push(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if sheet.updateCalls != 3 {
		t.Errorf("update calls = %d, want 3", sheet.updateCalls)
	}
}

func TestPushGivesUpAfterMaxRetries(t *testing.T) {
	sheet := &fakeSheet{values: sheetFixture(), failUpdates: 10}
	s := &Syncer{api: sheet, maxRetries: 3}

	if err := s.Push(context.Background(), 1); err == nil {
		t.Fatal("want error after retries exhausted")
	}
	if sheet.updateCalls != 3 {
		t.Errorf("update calls = %d, want exactly 3", sheet.updateCalls)
	}
}

func TestSnapshotCounts(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "stock.csv")
	items := []Item{
		{Code: "F1", EAN: "1", Stock: 0, Price: 10},
		{Code: "F2", EAN: "2", Stock: 3, Price: 20},
		{Code: "F3", EAN: "3", Stock: 10, Price: 30},
		{Code: "F4", EAN: "4", Stock: 25, Price: 40},
	}
	if err := writeCSV(csvPath, items); err != nil {
		t.Fatal(err)
	}

	snap, err := LoadSnapshot(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := snap.CountInStock(); got != 3 {
		t.Errorf("CountInStock = %d, want 3", got)
	}
	if got := snap.CountBelow(10); got != 2 {
		t.Errorf("CountBelow(10) = %d, want 2", got)
	}
	if got := snap.CountAbove(10); got != 1 {
		t.Errorf("CountAbove(10) = %d, want 1", got)
	}
	if got := snap.CountBetween(3, 10); got != 2 {
		t.Errorf("CountBetween(3, 10) = %d, want 2", got)
	}
}
