package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"catnorm/internal"
	"catnorm/internal/catalog"
)

const jsonIndent = "    "

// Documents holds the three encoded outputs of a run.
type Documents struct {
	Categories []byte
	Brands     []byte
	Products   []byte
}

func EncodeCategories(entries []internal.DictionaryEntry) ([]byte, error) {
	rows := make([]internal.CategoryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, internal.CategoryRow{CategoryID: e.ID, CategoryName: e.Name})
	}
	return encodeIndented(rows)
}

func EncodeBrands(entries []internal.DictionaryEntry) ([]byte, error) {
	rows := make([]internal.BrandRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, internal.BrandRow{BrandID: e.ID, BrandName: e.Name})
	}
	return encodeIndented(rows)
}

func EncodeProducts(products []internal.Product) ([]byte, error) {
	if products == nil {
		products = []internal.Product{}
	}
	return encodeIndented(products)
}

func EncodeResolved(resolved []internal.ResolvedProduct) ([]byte, error) {
	docs := make([]internal.Product, 0, len(resolved))
	for _, r := range resolved {
		docs = append(docs, r.Raw)
	}
	return encodeIndented(docs)
}

// WriteFiles overwrites the three output paths with already encoded documents.
func WriteFiles(docs Documents, categoriesPath, brandsPath, productsPath string) error {
	targets := []struct {
		path string
		blob []byte
	}{
		{categoriesPath, docs.Categories},
		{brandsPath, docs.Brands},
		{productsPath, docs.Products},
	}
	for _, t := range targets {
		if err := WriteJSON(t.path, t.blob); err != nil {
			return err
		}
	}
	return nil
}

func WriteJSON(path string, blob []byte) error {
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrWrite, err)
	}
	return nil
}

func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
