// Package stock pulls the retailer's live inventory from Google Sheets,
// materializes it as the local CSV the chat tools read, and can push adjusted
// prices back to the spreadsheet.
package stock

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/internal/logger"
)

// Item is one inventory row.
type Item struct {
	Code        string
	EAN         string
	Stock       int
	Price       float64
	Promo       string
	Description string
}

// valuesAPI is the slice of the Sheets API the syncer needs. Kept narrow so
// tests can stand in for the remote spreadsheet.
type valuesAPI interface {
	Get(ctx context.Context) ([][]interface{}, error)
	Update(ctx context.Context, values [][]interface{}) error
}

type sheetValues struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
}

func (s *sheetValues) Get(ctx context.Context) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *sheetValues) Update(ctx context.Context, values [][]interface{}) error {
	body := &sheets.ValueRange{Values: values}
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.readRange, body).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

type Syncer struct {
	api        valuesAPI
	csvPath    string
	maxRetries int
	retryDelay time.Duration
}

func NewSyncer(ctx context.Context, cfg *config.Config) (*Syncer, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.SheetsCredentials))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Syncer{
		api: &sheetValues{
			service:       service,
			spreadsheetID: cfg.SheetsID,
			readRange:     cfg.SheetsRange,
		},
		csvPath:    cfg.StockCSVPath,
		maxRetries: cfg.StockMaxRetries,
		retryDelay: time.Duration(cfg.StockRetryDelay) * time.Second,
	}, nil
}

// Pull fetches the spreadsheet, drops rows without stock and rewrites the
// local CSV atomically. Returns how many in-stock products were written.
func (s *Syncer) Pull(ctx context.Context) (int, error) {
	values, err := s.api.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet: %w", err)
	}
	if len(values) < 2 {
		return 0, fmt.Errorf("no stock data found in spreadsheet")
	}

	items, err := parseRows(values[1:])
	if err != nil {
		return 0, err
	}

	inStock := items[:0]
	for _, it := range items {
		if it.Stock > 0 {
			inStock = append(inStock, it)
		}
	}

	if err := writeCSV(s.csvPath, inStock); err != nil {
		return 0, err
	}
	logger.Info("Stock snapshot updated", "path", s.csvPath, "products", len(inStock))
	return len(inStock), nil
}

// Push applies the price multiplier to every row and writes the sheet back,
// retrying transient API failures with a fixed delay.
func (s *Syncer) Push(ctx context.Context, multiplier float64) error {
	values, err := s.api.Get(ctx)
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	if len(values) < 2 {
		return fmt.Errorf("no stock data found in spreadsheet")
	}

	items, err := parseRows(values[1:])
	if err != nil {
		return err
	}

	updated := make([][]interface{}, 0, len(items)+1)
	updated = append(updated, values[0]) // keep the sheet's own header row
	for _, it := range items {
		it.Price *= multiplier
		updated = append(updated, []interface{}{
			it.Code, it.EAN, strconv.Itoa(it.Stock), formatPrice(it.Price), it.Promo, it.Description,
		})
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		lastErr = s.api.Update(ctx, updated)
		if lastErr == nil {
			logger.Info("Spreadsheet updated", "rows", len(updated)-1, "attempt", attempt)
			return nil
		}
		logger.Warn("Spreadsheet update failed", "attempt", attempt, "error", lastErr)
		if attempt < s.maxRetries {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("update spreadsheet after %d attempts: %w", s.maxRetries, lastErr)
}

// parseRows coerces raw sheet rows into items. Stock values arrive with
// thousands separators ("1.250") and prices as plain decimals.
func parseRows(rows [][]interface{}) ([]Item, error) {
	items := make([]Item, 0, len(rows))
	for i, row := range rows {
		cells := make([]string, 6)
		for j := 0; j < 6 && j < len(row); j++ {
			cells[j] = strings.TrimSpace(fmt.Sprint(row[j]))
		}

		stock, err := strconv.Atoi(strings.ReplaceAll(cells[2], ".", ""))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad stock value %q: %v", i+2, cells[2], err)
		}
		price, err := strconv.ParseFloat(cells[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad price value %q: %v", i+2, cells[3], err)
		}

		items = append(items, Item{
			Code:        cells[0],
			EAN:         cells[1],
			Stock:       stock,
			Price:       price,
			Promo:       cells[4],
			Description: cells[5],
		})
	}
	return items, nil
}

// writeCSV replaces the snapshot via temp file and rename so tool readers
// never see a half-written file.
func writeCSV(path string, items []Item) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "stock-*.csv")
	if err != nil {
		return fmt.Errorf("write stock snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"codigo", "ean", "stock", "precio", "promo", "descripcion"}); err != nil {
		return err
	}
	for _, it := range items {
		record := []string{it.Code, it.EAN, strconv.Itoa(it.Stock), formatPrice(it.Price), it.Promo, it.Description}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write stock snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace stock snapshot: %w", err)
	}
	return nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
