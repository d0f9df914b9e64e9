package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"dermo-chatbot-platform/internal/ai"
	"dermo-chatbot-platform/internal/catalog"
	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/internal/index"
	"dermo-chatbot-platform/internal/stock"
)

// noProductsFound is returned when the vector hits have no stock coverage.
const noProductsFound = "No se encontraron productos en la base de datos."

// Searcher answers nearest-neighbor queries over the product index.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]index.Hit, error)
}

// QueryEmbedder embeds a single user query.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ToolService implements the assistant's callable functions over the product
// index and the stock snapshot.
type ToolService struct {
	cfg      *config.Config
	store    Searcher
	embedder QueryEmbedder

	// loadSnapshot re-reads the CSV on every call so tools always see the
	// latest stock refresh. Swappable in tests.
	loadSnapshot func() (*stock.Snapshot, error)
}

func NewToolService(cfg *config.Config, store Searcher, embedder QueryEmbedder) *ToolService {
	return &ToolService{
		cfg:      cfg,
		store:    store,
		embedder: embedder,
		loadSnapshot: func() (*stock.Snapshot, error) {
			return stock.LoadSnapshot(cfg.StockCSVPath)
		},
	}
}

// Tools lists every function the assistant may call.
func (t *ToolService) Tools() []ai.Tool {
	return []ai.Tool{
		{
			Name:        "search_in_database",
			Description: "Busca productos dermocosméticos relevantes para el problema o la necesidad del usuario y devuelve su descripción, stock, precio y promoción.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"problem": map[string]any{
						"type":        "string",
						"description": "El problema, necesidad o producto que describe el usuario.",
					},
				},
				"required": []string{"problem"},
			},
			Handler: t.searchInDatabase,
		},
		{
			Name:        "how_many_brands",
			Description: "Indica cuántas marcas hay en la base de datos.",
			Parameters:  emptyParams(),
			Handler: func(context.Context, json.RawMessage) (string, error) {
				return fmt.Sprintf("Hay %d marcas en total.", len(catalog.BrandNames())), nil
			},
		},
		{
			Name:        "which_brands",
			Description: "Lista las marcas disponibles en la base de datos.",
			Parameters:  emptyParams(),
			Handler: func(context.Context, json.RawMessage) (string, error) {
				return fmt.Sprintf("Las marcas son: %s.", strings.Join(catalog.BrandNames(), ", ")), nil
			},
		},
		{
			Name:        "is_brand_in_database",
			Description: "Indica si una marca está en la base de datos.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"marca": map[string]any{
						"type":        "string",
						"description": "El nombre de la marca a consultar.",
					},
				},
				"required": []string{"marca"},
			},
			Handler: t.isBrandInDatabase,
		},
		{
			Name:        "how_many_products_in_stock",
			Description: "Indica cuántos productos hay en stock.",
			Parameters:  emptyParams(),
			Handler:     t.productsInStock,
		},
		{
			Name:        "how_many_products_with_stock_below_threshold",
			Description: "Cuenta los productos con stock por debajo de un umbral.",
			Parameters:  thresholdParams("threshold", "Umbral de unidades de stock."),
			Handler:     t.stockBelowThreshold,
		},
		{
			Name:        "how_many_products_with_stock_above_threshold",
			Description: "Cuenta los productos con stock por encima de un umbral.",
			Parameters:  thresholdParams("threshold", "Umbral de unidades de stock."),
			Handler:     t.stockAboveThreshold,
		},
		{
			Name:        "how_many_products_with_stock_between_thresholds",
			Description: "Cuenta los productos con stock entre dos umbrales.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"lower_threshold": map[string]any{
						"type":        "number",
						"description": "Umbral inferior de unidades de stock.",
					},
					"upper_threshold": map[string]any{
						"type":        "number",
						"description": "Umbral superior de unidades de stock.",
					},
				},
				"required": []string{"lower_threshold", "upper_threshold"},
			},
			Handler: t.stockBetweenThresholds,
		},
	}
}

// searchInDatabase embeds the user's problem, pulls SearchK candidates from
// the index, joins them against the stock snapshot by EAN and keeps the first
// SearchTopK that are actually purchasable.
func (t *ToolService) searchInDatabase(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Problem string `json:"problem"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("bad search arguments: %w", err)
	}

	vector, err := t.embedder.Embed(ctx, params.Problem)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	hits, err := t.store.Search(ctx, vector, t.cfg.SearchK)
	if err != nil {
		return "", fmt.Errorf("vector search: %w", err)
	}

	snap, err := t.loadSnapshot()
	if err != nil {
		return "", err
	}

	var lines []string
	for _, hit := range hits {
		item, ok := snap.FindByEAN(hit.EAN)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s Stock: %d. Precio: $%s. Promoción: %s.",
			hit.Text, item.Stock, formatPrice(item.Price), item.Promo))
		if len(lines) >= t.cfg.SearchTopK {
			break
		}
	}

	if len(lines) == 0 {
		return "Contexto: " + noProductsFound, nil
	}
	return "Contexto: " + strings.Join(lines, "\n"), nil
}

func (t *ToolService) isBrandInDatabase(_ context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Marca string `json:"marca"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("bad brand arguments: %w", err)
	}

	brand := strings.ToLower(params.Marca)
	known := false
	for _, name := range catalog.BrandNames() {
		if strings.ToLower(name) == brand {
			known = true
			break
		}
	}

	verdict := "no"
	if known {
		verdict = "sí"
	}
	return fmt.Sprintf("La marca %s %s está en la base de datos.", capitalizeFirst(brand), verdict), nil
}

func (t *ToolService) productsInStock(context.Context, json.RawMessage) (string, error) {
	snap, err := t.loadSnapshot()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Hay %d productos en stock.", snap.CountInStock()), nil
}

func (t *ToolService) stockBelowThreshold(_ context.Context, args json.RawMessage) (string, error) {
	threshold, err := intArg(args, "threshold")
	if err != nil {
		return "", err
	}
	snap, err := t.loadSnapshot()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Hay %d productos con stock por debajo de %d unidades.", snap.CountBelow(threshold), threshold), nil
}

func (t *ToolService) stockAboveThreshold(_ context.Context, args json.RawMessage) (string, error) {
	threshold, err := intArg(args, "threshold")
	if err != nil {
		return "", err
	}
	snap, err := t.loadSnapshot()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Hay %d productos con stock por encima de %d unidades.", snap.CountAbove(threshold), threshold), nil
}

func (t *ToolService) stockBetweenThresholds(_ context.Context, args json.RawMessage) (string, error) {
	lower, err := intArg(args, "lower_threshold")
	if err != nil {
		return "", err
	}
	upper, err := intArg(args, "upper_threshold")
	if err != nil {
		return "", err
	}
	snap, err := t.loadSnapshot()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Hay %d productos con stock entre %d y %d unidades.", snap.CountBetween(lower, upper), lower, upper), nil
}

func emptyParams() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func thresholdParams(name, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			name: map[string]any{
				"type":        "number",
				"description": description,
			},
		},
		"required": []string{name},
	}
}

// intArg truncates a numeric argument that models sometimes send as a string.
func intArg(raw json.RawMessage, name string) (int, error) {
	var args map[string]json.RawMessage
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("bad arguments: %w", err)
	}
	value, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}

	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		return int(f), nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), nil
		}
	}
	return 0, fmt.Errorf("argument %q is not numeric", name)
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
