package stock

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// Snapshot is the stock CSV loaded into memory, keyed by EAN for the join
// against vector search results.
type Snapshot struct {
	items []Item
	byEAN map[string]Item
}

// LoadSnapshot reads the stock CSV written by Pull. Stock values are rounded
// to integers; the spreadsheet occasionally carries them as decimals.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stock snapshot: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read stock snapshot: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("stock snapshot %s is empty", path)
	}

	snap := &Snapshot{byEAN: make(map[string]Item, len(rows)-1)}
	for i, row := range rows[1:] {
		if len(row) < 6 {
			return nil, fmt.Errorf("stock snapshot row %d: want 6 columns, got %d", i+2, len(row))
		}
		rawStock, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("stock snapshot row %d: bad stock %q", i+2, row[2])
		}
		price, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("stock snapshot row %d: bad price %q", i+2, row[3])
		}

		item := Item{
			Code:        row[0],
			EAN:         row[1],
			Stock:       int(math.Round(rawStock)),
			Price:       price,
			Promo:       row[4],
			Description: row[5],
		}
		snap.items = append(snap.items, item)
		snap.byEAN[item.EAN] = item
	}
	return snap, nil
}

func (s *Snapshot) FindByEAN(ean string) (Item, bool) {
	item, ok := s.byEAN[ean]
	return item, ok
}

func (s *Snapshot) Len() int {
	return len(s.items)
}

// CountInStock counts products with at least one unit available.
func (s *Snapshot) CountInStock() int {
	n := 0
	for _, it := range s.items {
		if it.Stock > 0 {
			n++
		}
	}
	return n
}

// CountBelow counts products with stock strictly under threshold.
func (s *Snapshot) CountBelow(threshold int) int {
	n := 0
	for _, it := range s.items {
		if it.Stock < threshold {
			n++
		}
	}
	return n
}

// CountAbove counts products with stock strictly over threshold.
func (s *Snapshot) CountAbove(threshold int) int {
	n := 0
	for _, it := range s.items {
		if it.Stock > threshold {
			n++
		}
	}
	return n
}

// CountBetween counts products with stock in [lower, upper].
func (s *Snapshot) CountBetween(lower, upper int) int {
	n := 0
	for _, it := range s.items {
		if it.Stock >= lower && it.Stock <= upper {
			n++
		}
	}
	return n
}
