package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"dermo-chatbot-platform/internal/ai"
	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/internal/index"
	"dermo-chatbot-platform/internal/stock"
)

type fakeSearcher struct {
	hits []index.Hit
}

func (f *fakeSearcher) Search(ctx context.Context, vector []float32, k int) ([]index.Hit, error) {
	if len(f.hits) > k {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func writeStockCSV(t *testing.T, items []stock.Item) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stock.csv")

	records := [][]string{{"codigo", "ean", "stock", "precio", "promo", "descripcion"}}
	for _, it := range items {
		records = append(records, []string{
			it.Code, it.EAN, strconv.Itoa(it.Stock),
			strconv.FormatFloat(it.Price, 'f', -1, 64), it.Promo, it.Description,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func newToolService(t *testing.T, hits []index.Hit, items []stock.Item) *ToolService {
	t.Helper()
	cfg := &config.Config{SearchK: 30, SearchTopK: 5}
	ts := NewToolService(cfg, &fakeSearcher{hits: hits}, fakeEmbedder{})
	path := writeStockCSV(t, items)
	ts.loadSnapshot = func() (*stock.Snapshot, error) {
		return stock.LoadSnapshot(path)
	}
	return ts
}

func toolByName(t *testing.T, ts *ToolService, name string) ai.Tool {
	t.Helper()
	for _, tool := range ts.Tools() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not registered", name)
	return ai.Tool{}
}

func call(t *testing.T, ts *ToolService, name, args string) string {
	t.Helper()
	tool := toolByName(t, ts, name)
	out, err := tool.Handler(context.Background(), json.RawMessage(args))
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return out
}

func defaultItems() []stock.Item {
	return []stock.Item{
		{Code: "F1", EAN: "1", Stock: 4, Price: 100, Promo: "2x1", Description: "Crema"},
		{Code: "F2", EAN: "3", Stock: 12, Price: 55.5, Promo: "", Description: "Serum"},
	}
}

func TestSearchInDatabaseJoinsStock(t *testing.T) {
	hits := []index.Hit{
		{EAN: "1", Text: "Producto Crema X. Marca Cepage."},
		{EAN: "2", Text: "Producto Sin Stock. Marca Vichy."},
		{EAN: "3", Text: "Producto Serum Y. Marca Eximia."},
	}
	ts := newToolService(t, hits, defaultItems())

	out := call(t, ts, "search_in_database", `{"problem":"piel seca"}`)
	if !strings.HasPrefix(out, "Contexto: ") {
		t.Fatalf("output = %q", out)
	}
	lines := strings.Split(strings.TrimPrefix(out, "Contexto: "), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 context lines (EAN 2 has no stock), got %d: %q", len(lines), out)
	}
	if lines[0] != "Producto Crema X. Marca Cepage. Stock: 4. Precio: $100. Promoción: 2x1." {
		t.Errorf("line[0] = %q", lines[0])
	}
	if lines[1] != "Producto Serum Y. Marca Eximia. Stock: 12. Precio: $55.5. Promoción: ." {
		t.Errorf("line[1] = %q", lines[1])
	}
}

func TestSearchInDatabaseCapsAtTopK(t *testing.T) {
	var hits []index.Hit
	var items []stock.Item
	for i := 0; i < 10; i++ {
		ean := string(rune('a' + i))
		hits = append(hits, index.Hit{EAN: ean, Text: "Producto."})
		items = append(items, stock.Item{Code: "F", EAN: ean, Stock: 1, Price: 1})
	}
	ts := newToolService(t, hits, items)

	out := call(t, ts, "search_in_database", `{"problem":"algo"}`)
	lines := strings.Split(strings.TrimPrefix(out, "Contexto: "), "\n")
	if len(lines) != 5 {
		t.Errorf("want 5 lines, got %d", len(lines))
	}
}

func TestSearchInDatabaseNoMatches(t *testing.T) {
	ts := newToolService(t, []index.Hit{{EAN: "404", Text: "Producto."}}, defaultItems())
	out := call(t, ts, "search_in_database", `{"problem":"algo"}`)
	if out != "Contexto: No se encontraron productos en la base de datos." {
		t.Errorf("output = %q", out)
	}
}

func TestBrandTools(t *testing.T) {
	ts := newToolService(t, nil, defaultItems())

	if out := call(t, ts, "how_many_brands", `{}`); out != "Hay 9 marcas en total." {
		t.Errorf("how_many_brands = %q", out)
	}

	want := "Las marcas son: Cepage, Cetaphil, Eucerin, Eximia, Isdin, Loreal, La Roche-Posay, Revlon, Vichy."
	if out := call(t, ts, "which_brands", `{}`); out != want {
		t.Errorf("which_brands = %q", out)
	}

	if out := call(t, ts, "is_brand_in_database", `{"marca":"VICHY"}`); out != "La marca Vichy sí está en la base de datos." {
		t.Errorf("is_brand_in_database = %q", out)
	}
	if out := call(t, ts, "is_brand_in_database", `{"marca":"nivea"}`); out != "La marca Nivea no está en la base de datos." {
		t.Errorf("is_brand_in_database = %q", out)
	}
}

func TestStockCountTools(t *testing.T) {
	ts := newToolService(t, nil, defaultItems())

	if out := call(t, ts, "how_many_products_in_stock", `{}`); out != "Hay 2 productos en stock." {
		t.Errorf("in_stock = %q", out)
	}
	if out := call(t, ts, "how_many_products_with_stock_below_threshold", `{"threshold":10}`); out != "Hay 1 productos con stock por debajo de 10 unidades." {
		t.Errorf("below = %q", out)
	}
	if out := call(t, ts, "how_many_products_with_stock_above_threshold", `{"threshold":10}`); out != "Hay 1 productos con stock por encima de 10 unidades." {
		t.Errorf("above = %q", out)
	}
	if out := call(t, ts, "how_many_products_with_stock_between_thresholds", `{"lower_threshold":1,"upper_threshold":20}`); out != "Hay 2 productos con stock entre 1 y 20 unidades." {
		t.Errorf("between = %q", out)
	}
	// Models sometimes send thresholds as strings.
	if out := call(t, ts, "how_many_products_with_stock_below_threshold", `{"threshold":"10.0"}`); out != "Hay 1 productos con stock por debajo de 10 unidades." {
		t.Errorf("string threshold = %q", out)
	}
}
