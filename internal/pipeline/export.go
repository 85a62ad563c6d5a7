package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"catnorm/internal"
)

const (
	sheetCategories = "categories"
	sheetBrands     = "brands"
	sheetProducts   = "products"
)

// ExportWorkbook writes the dictionaries and the resolved product view to a
// single xlsx file, one sheet each.
func ExportWorkbook(categories, brands []internal.DictionaryEntry, resolved []internal.ResolvedProduct, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetCategories); err != nil {
		return err
	}
	for _, name := range []string{sheetBrands, sheetProducts} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	writeEntries(f, sheetCategories, []string{"category_id", "category_name"}, categories)
	writeEntries(f, sheetBrands, []string{"brand_id", "brand_name"}, brands)

	writeRow(f, sheetProducts, 1, []any{"position", "category_id", "category_name", "brand_id", "brand_name", "search_keywords"})
	for i, r := range resolved {
		writeRow(f, sheetProducts, i+2, []any{
			r.Position,
			r.CategoryID,
			derefString(r.CategoryName),
			r.BrandID,
			derefString(r.BrandName),
			r.SearchKeywords,
		})
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeEntries(f *excelize.File, sheet string, headers []string, entries []internal.DictionaryEntry) {
	header := make([]any, 0, len(headers))
	for _, h := range headers {
		header = append(header, h)
	}
	writeRow(f, sheet, 1, header)
	for i, e := range entries {
		writeRow(f, sheet, i+2, []any{e.ID, e.Name})
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
