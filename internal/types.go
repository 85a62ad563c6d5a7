package internal

import "encoding/json"

type Field string

const (
	FieldCategory Field = "category"
	FieldBrand    Field = "brand"
)

// Product is one catalog record as it appeared in the input document. The raw
// bytes are kept so unknown fields and their order survive a rewrite.
type Product json.RawMessage

func (p Product) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *Product) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}

type DictionaryEntry struct {
	ID   string
	Name string
}

type CategoryRow struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type BrandRow struct {
	BrandID   string `json:"brand_id"`
	BrandName string `json:"brand_name"`
}

// ResolvedProduct is a rewritten record joined back with both dictionaries.
type ResolvedProduct struct {
	Position       int
	CategoryID     string
	CategoryName   *string
	BrandID        string
	BrandName      *string
	SearchKeywords string
	Raw            Product
}

type ProductRow struct {
	Position   int
	CategoryID string
	BrandID    string
	RawJSON    string
}
