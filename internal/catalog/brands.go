package catalog

import (
	"fmt"
	"strings"

	"dermo-chatbot-platform/internal/normalizer"
)

// Brands returns the specs for all nine supported brands, in corpus order.
func Brands() []*BrandSpec {
	return []*BrandSpec{
		Cepage(), Cetaphil(), Eucerin(), Eximia(), Isdin(),
		Loreal(), LaRochePosay(), Revlon(), Vichy(),
	}
}

// BrandNames returns the display names of the supported brands.
func BrandNames() []string {
	specs := Brands()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

func Cepage() *BrandSpec {
	b := &BrandSpec{
		Name:  "Cepage",
		Lower: "cepage",
		Sheets: []SheetSchema{{
			Columns: []string{
				"categoria", "nombre de linea", "tipo de linea", "necesidades",
				"sku", "ean", "producto", "descripcion", "indicacion", "uso",
				"inci", "activos", "beneficios", "generales", "presentacion",
				"ancho", "profundidad", "alto", "peso",
			},
		}},
	}
	b.compose = func(_ int, row Row) (string, string, string) {
		product := normalizer.ReduceDots(fmt.Sprintf("Producto %s. Marca Cepage.", row["producto"]))
		code := normalizer.ReduceDots(fmt.Sprintf("Código EAN %s. Código SKU %s.", row["ean"], row["sku"]))

		features := labelIf("Descripción: %s. ", row["descripcion"]) +
			labelIf("Indicaciones: %s. ", row["indicacion"]) +
			labelIf("Uso: %s. ", row["uso"]) +
			labelIf("Beneficios: %s. ", row["beneficios"])
		features = strings.TrimSuffix(features, " ")

		var dims string
		if row["ancho"] != "" || row["profundidad"] != "" || row["alto"] != "" {
			dims = fmt.Sprintf("Dimensiones %smm x %smm x %smm.", row["ancho"], row["profundidad"], row["alto"])
		}

		description := labelIf("%s ", features) +
			labelIf("%s ", keywordsFragment(row, "categoria", "nombre de linea", "tipo de linea", "necesidades", "generales")) +
			labelIf("Presentación %s. ", row["presentacion"]) +
			labelIf("%s ", dims) +
			labelIf("Peso %sgr.", row["peso"])
		return product, code, normalizer.ReduceDots(strings.TrimSpace(description))
	}
	return b
}

func Cetaphil() *BrandSpec {
	b := &BrandSpec{
		Name:  "Cetaphil",
		Lower: "cetaphil",
		Sheets: []SheetSchema{{
			Columns: []string{
				"producto", "marca", "nombre", "presentacion", "ean",
				"categoria", "subcategoria", "zona", "descripcion", "keywords",
			},
			Drop: []string{"producto", "marca"},
		}},
	}
	b.compose = func(_ int, row Row) (string, string, string) {
		product := fmt.Sprintf("Producto %s. Marca Cetaphil.", row["nombre"])
		code := fmt.Sprintf("Código EAN %s.", row["ean"])

		description := labelIf("Descripción: %s. ", row["descripcion"]) +
			labelIf("%s ", keywordsFragment(row, "categoria", "subcategoria", "zona", "keywords")) +
			labelIf("Presentación %s. ", row["presentacion"])
		return product, code, normalizer.ReduceDots(strings.TrimSpace(description))
	}
	return b
}

func Eucerin() *BrandSpec {
	b := &BrandSpec{
		Name:  "Eucerin",
		Lower: "eucerin",
		Sheets: []SheetSchema{{
			Columns: []string{
				"fecha", "estado", "ean", "producto", "linea", "categoria",
				"segmento", "contenido", "zona", "nombre", "nombre corto",
				"descripcion", "descripcion corta", "beneficios 1", "beneficios 2",
				"beneficios 3", "beneficios 4", "beneficios 5", "piel",
				"propiedades", "ingredientes", "uso", "keywords",
			},
			Drop: []string{"fecha", "estado"},
		}},
	}
	b.compose = func(_ int, row Row) (string, string, string) {
		product := fmt.Sprintf("Producto %s. Marca Eucerin.", row["producto"])
		code := fmt.Sprintf("Código EAN %s.", row["ean"])

		benefits := normalizer.JoinNonEmpty([]string{
			row["beneficios 1"], row["beneficios 2"], row["beneficios 3"],
			row["beneficios 4"], row["beneficios 5"],
		})

		description := labelIf("Descripción: %s. ", row["descripcion"]) +
			labelIf("Contenido: %s. ", row["contenido"]) +
			labelIf("Propiedades: %s. ", row["propiedades"]) +
			labelIf("Beneficios: %s. ", benefits) +
			labelIf("Modo de uso: %s. ", row["uso"]) +
			labelIf("%s ", keywordsFragment(row, "linea", "categoria", "segmento", "zona", "piel", "keywords"))
		return product, code, normalizer.ReduceDots(strings.TrimSpace(description))
	}
	return b
}

func Eximia() *BrandSpec {
	b := &BrandSpec{
		Name:  "Eximia",
		Lower: "eximia",
		Sheets: []SheetSchema{{
			Columns: []string{
				"ean", "nombre", "necesidad", "linea", "piel", "titulo",
				"bajada", "descripcion", "uso", "activos", "beneficios",
				"comentarios", "inci", "keywords", "presentacion", "contenido",
				"unidades", "ancho", "profundidad", "alto", "peso",
			},
			SkipRows: 1,
		}},
	}
	b.compose = func(_ int, row Row) (string, string, string) {
		product := normalizer.ReduceDots(fmt.Sprintf("Producto %s. Marca Eximia.", row["nombre"]))
		code := normalizer.ReduceDots(fmt.Sprintf("Código EAN %s.", row["ean"]))

		features := normalizer.JoinNonEmpty([]string{
			row["titulo"], row["bajada"], row["descripcion"], row["uso"],
			row["activos"], row["beneficios"], row["comentarios"], row["inci"],
		})

		presentation := normalizer.SquashUnits(strings.TrimSpace(strings.Join(
			[]string{row["presentacion"], row["contenido"], row["unidades"]}, " ")))
		presentation = strings.Join(strings.Fields(presentation), " ")
		if presentation != "" && !strings.HasSuffix(presentation, ".") {
			presentation += "."
		}

		var dims string
		if row["ancho"] != "" && row["profundidad"] != "" && row["alto"] != "" {
			dims = fmt.Sprintf("%smm x %smm x %smm", row["ancho"], row["profundidad"], row["alto"])
		}

		description := labelIf("Descripción: %s. ", features) +
			labelIf("%s ", keywordsFragment(row, "necesidad", "linea", "piel", "keywords")) +
			labelIf("Presentación: %s. ", presentation) +
			labelIf("Dimensiones %s. ", dims) +
			labelIf("Peso %sgr.", row["peso"])
		return product, code, normalizer.ReduceDots(strings.TrimSpace(description))
	}
	return b
}

func Isdin() *BrandSpec {
	b := &BrandSpec{
		Name:  "Isdin",
		Lower: "isdin",
		Sheets: []SheetSchema{{
			Columns: []string{
				"id", "codigo", "sku", "ean", "nombre", "variante",
				"marca", "generales", "id_ml", "descripcion",
			},
			Drop:     []string{"id_ml"},
			SkipRows: 1,
		}},
	}
	b.compose = func(_ int, row Row) (string, string, string) {
		product := "Marca Isdin."
		if row["nombre"] != "" {
			product = fmt.Sprintf("Producto %s. Marca Isdin.", row["nombre"])
		}

		code := labelIf("Id %s. ", row["id"]) +
			labelIf("Código %s. ", row["codigo"]) +
			labelIf("Código SKU %s. ", row["sku"]) +
			labelIf("Código EAN %s.", row["ean"])
		code = normalizer.ReduceDots(strings.TrimSpace(code))

		description := labelIf("Descripción: %s. ", row["descripcion"]) +
			labelIf("%s. ", row["generales"]) +
			labelIf("%s.", row["variante"])
		return product, code, normalizer.ReduceDots(strings.TrimSpace(description))
	}
	return b
}

// Loreal ships five worksheets with five distinct column layouts.
func Loreal() *BrandSpec {
	b := &BrandSpec{
		Name:  "Loreal",
		Lower: "loreal",
		Sheets: []SheetSchema{
			{
				Columns: []string{
					"categoria", "marca", "franquicia", "subfranquicia", "ean",
					"titulo", "tipo", "descripcion", "beneficios", "aplicacion",
					"piel", "uso", "zona", "efecto", "hipoalergenico",
					"crosselling", "keywords", "tamaño", "unidades", "link", "0", "1",
				},
				Drop: []string{"crosselling", "link", "0", "1"},
			},
			{
				Columns: []string{
					"categoria", "marca", "franquicia", "subfranquicia", "ean",
					"titulo", "tipo", "descripcion", "beneficios", "aplicacion",
					"crosselling", "keywords", "hipoalergenico", "pelo", "uso",
					"tamaño", "unidades", "link", "0",
				},
				Drop: []string{"crosselling", "link", "0"},
			},
			{
				Columns: []string{
					"categoria", "marca", "franquicia", "subfranquicia", "ean",
					"titulo", "color", "numero", "nombre", "tipo de producto",
					"descripcion", "presentacion", "beneficios", "aplicacion",
					"crosselling", "keywords", "hipoalergenico", "tamaño",
					"unidades", "link",
				},
				Drop: []string{"color", "numero", "nombre", "crosselling", "link"},
			},
			{
				Columns: []string{
					"categoria", "ean", "marca", "franquicia", "subfranquicia",
					"titulo", "tipo de producto", "resumen", "descripcion",
					"adicionales", "presentacion", "beneficio 1", "beneficio 2",
					"beneficio 3", "aplicacion", "crosselling", "keywords",
					"hipoalergenico", "piel", "uso", "zona", "efecto",
					"codigo hexa", "tamaño", "unidades",
				},
				Drop: []string{"efecto", "codigo hexa"},
			},
			{
				Columns: []string{
					"categoria", "marca", "ean", "franquicia", "subfranquicia",
					"zona", "titulo", "color", "numero", "nombre",
					"tipo de producto", "descripcion", "beneficios", "aplicacion",
					"piel", "uso", "efecto", "hipoalergenico", "crosselling",
					"keywords", "tamaño", "unidades", "link",
				},
				Drop: []string{"color", "numero", "nombre", "crosselling", "link"},
			},
		},
	}
	b.compose = func(sheet int, row Row) (string, string, string) {
		product := labelIf("Marca %s. ", row["marca"]) + labelIf("Título: %s.", row["titulo"])
		product = normalizer.ReduceDots(strings.TrimSpace(product))

		code := normalizer.ReduceDots(labelIf("Código EAN %s.", row["ean"]))

		featureCols := b.featureColumns(sheet, []string{
			"marca", "titulo", "ean", "tamaño", "unidades", "keywords", "crosselling",
		})
		description := labeledFeatures(featureCols, row) +
			labelIf("%s ", presentationFragment(row)) +
			labelIf("%s", keywordsFragment(row, "keywords"))
		return product, code, normalizer.ReduceDots(strings.TrimSpace(description))
	}
	return b
}

func LaRochePosay() *BrandSpec {
	b := &BrandSpec{
		Name:  "La Roche-Posay",
		Lower: "la roche-posay",
		Sheets: []SheetSchema{{
			Columns: []string{
				"ean", "producto", "descripcion", "tamaño", "unidades",
				"composicion", "beneficio 1", "beneficio 2", "beneficio 3",
				"uso", "keywords",
			},
		}},
	}
	b.compose = func(sheet int, row Row) (string, string, string) {
		product := "Marca La Roche-Posay."
		if row["producto"] != "" {
			product = fmt.Sprintf("Producto %s. Marca La Roche-Posay.", row["producto"])
		}
		product = normalizer.ReduceDots(product)

		code := normalizer.ReduceDots(labelIf("Código EAN %s.", row["ean"]))

		featureCols := b.featureColumns(sheet, []string{
			"producto", "ean", "tamaño", "unidades", "keywords",
		})
		description := labeledFeatures(featureCols, row) +
			labelIf("%s ", presentationFragment(row)) +
			labelIf("%s", keywordsFragment(row, "keywords"))
		return product, code, normalizer.ReduceDots(strings.TrimSpace(description))
	}
	return b
}

// Revlon ships five worksheets; sheets 2 and 4 lack some code columns.
func Revlon() *BrandSpec {
	full := []string{
		"tipo", "categoria", "subcategoria", "familia", "product", "producto",
		"descripcion mkt", "caracteristicas", "codigo sap", "ean",
		"merch code", "tono", "stock",
	}
	noTono := []string{
		"tipo", "categoria", "subcategoria", "familia", "product", "producto",
		"descripcion mkt", "caracteristicas", "codigo sap", "ean",
		"merch code", "stock",
	}
	short := []string{
		"tipo", "categoria", "subcategoria", "familia", "product", "producto",
		"descripcion mkt", "caracteristicas", "codigo sap", "ean", "stock",
	}
	drop := []string{"stock"}
	b := &BrandSpec{
		Name:  "Revlon",
		Lower: "revlon",
		Sheets: []SheetSchema{
			{Columns: full, Drop: drop},
			{Columns: full, Drop: drop},
			{Columns: noTono, Drop: drop},
			{Columns: full, Drop: drop},
			{Columns: short, Drop: drop},
		},
	}
	b.compose = func(sheet int, row Row) (string, string, string) {
		product := "Marca Revlon. " +
			labelIf("Product %s. ", row["product"]) +
			labelIf("Producto %s.", row["producto"])
		product = normalizer.ReduceDots(strings.TrimSpace(product))

		hasMerch := contains(b.Sheets[sheet].Columns, "merch code")
		code := labelIf("Código SAP %s. ", row["codigo sap"]) +
			labelIf("Código EAN %s. ", row["ean"])
		if hasMerch {
			code += labelIf("Merch code %s.", row["merch code"])
		}
		code = normalizer.ReduceDots(strings.TrimSpace(code))

		featureCols := b.featureColumns(sheet, []string{
			"product", "producto", "codigo sap", "ean", "merch code",
		})
		description := labeledFeatures(featureCols, row)
		return product, code, normalizer.ReduceDots(strings.TrimSpace(description))
	}
	return b
}

func Vichy() *BrandSpec {
	b := &BrandSpec{
		Name:  "Vichy",
		Lower: "vichy",
		Sheets: []SheetSchema{{
			Columns: []string{
				"codigo", "sku", "ean", "producto", "uso", "marca",
				"ml_code", "descripcion",
			},
			Drop: []string{"ml_code"},
		}},
	}
	b.compose = func(sheet int, row Row) (string, string, string) {
		product := labelIf("Product %s. ", row["producto"]) + labelIf("Marca %s.", row["marca"])
		product = normalizer.ReduceDots(strings.TrimSpace(product))

		code := labelIf("Código %s. ", row["codigo"]) +
			labelIf("Código SKU %s. ", row["sku"]) +
			labelIf("Código EAN %s.", row["ean"])
		code = normalizer.ReduceDots(strings.TrimSpace(code))

		featureCols := b.featureColumns(sheet, []string{
			"producto", "marca", "codigo", "sku", "ean",
		})
		description := labeledFeatures(featureCols, row)
		return product, code, normalizer.ReduceDots(strings.TrimSpace(description))
	}
	return b
}

// presentationFragment renders "Presentación {tamaño}{unidades}." when both
// cells are present, e.g. "Presentación 120ml.".
func presentationFragment(row Row) string {
	if row["tamaño"] == "" || row["unidades"] == "" {
		return ""
	}
	return fmt.Sprintf("Presentación %s%s.", row["tamaño"], row["unidades"])
}
