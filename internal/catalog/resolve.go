package catalog

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"catnorm/internal"
)

// Resolve joins rewritten products back with both dictionaries, the shape the
// search indexer consumes. Identifiers without a dictionary entry leave the
// name unset instead of failing.
func Resolve(products []internal.Product, dicts Dictionaries) ([]internal.ResolvedProduct, error) {
	categoryNames := dicts.Categories.Names()
	brandNames := dicts.Brands.Names()

	out := make([]internal.ResolvedProduct, 0, len(products))
	for i, p := range products {
		categoryID, brandID := IDs(p)
		r, err := ResolveOne(i, p, lookupName(categoryNames, categoryID), lookupName(brandNames, brandID))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ResolveOne builds the joined view of a single rewritten record.
func ResolveOne(position int, p internal.Product, categoryName, brandName *string) (internal.ResolvedProduct, error) {
	categoryID, brandID := IDs(p)
	r := internal.ResolvedProduct{
		Position:     position,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		BrandID:      brandID,
		BrandName:    brandName,
	}
	r.SearchKeywords = joinPresent(nameOf(p), brandName, categoryName)

	blob := append([]byte(nil), p...)
	var err error
	for _, path := range []string{string(internal.FieldCategory), string(internal.FieldBrand)} {
		if blob, err = sjson.DeleteBytes(blob, path); err != nil {
			return internal.ResolvedProduct{}, fmt.Errorf("product %d: drop %s: %w", position, path, err)
		}
	}
	set := []struct {
		path  string
		value *string
	}{
		{"brand_name", brandName},
		{"category_name", categoryName},
		{"search_keywords", &r.SearchKeywords},
	}
	for _, s := range set {
		if s.value == nil {
			continue
		}
		if blob, err = sjson.SetBytes(blob, s.path, *s.value); err != nil {
			return internal.ResolvedProduct{}, fmt.Errorf("product %d: set %s: %w", position, s.path, err)
		}
	}
	r.Raw = internal.Product(blob)
	return r, nil
}

// IDs reads the category and brand identifiers of a rewritten record.
func IDs(p internal.Product) (categoryID, brandID string) {
	return gjson.GetBytes(p, string(internal.FieldCategory)).String(), gjson.GetBytes(p, string(internal.FieldBrand)).String()
}

func lookupName(names map[string]string, id string) *string {
	name, ok := names[id]
	if !ok {
		return nil
	}
	return &name
}

func nameOf(p internal.Product) *string {
	res := gjson.GetBytes(p, "name")
	if !res.Exists() || res.Type == gjson.Null {
		return nil
	}
	name := res.String()
	return &name
}

// joinPresent joins with single spaces, skipping only absent values. Empty
// strings still take a slot.
func joinPresent(values ...*string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil {
			parts = append(parts, *v)
		}
	}
	return strings.Join(parts, " ")
}
