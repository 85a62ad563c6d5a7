package catalog

import (
	"fmt"

	"github.com/tidwall/sjson"

	"catnorm/internal"
)

// Rewrite returns a new collection where category and brand hold dictionary
// identifiers. Input records are left untouched and every other field keeps its
// position.
func Rewrite(products []internal.Product, dicts Dictionaries) ([]internal.Product, error) {
	out := make([]internal.Product, 0, len(products))
	for i, p := range products {
		rewritten, err := rewriteField(p, i, dicts.Categories)
		if err != nil {
			return nil, err
		}
		rewritten, err = rewriteField(rewritten, i, dicts.Brands)
		if err != nil {
			return nil, err
		}
		out = append(out, rewritten)
	}
	return out, nil
}

func rewriteField(p internal.Product, index int, dict *Dictionary) (internal.Product, error) {
	name, err := fieldValue(p, index, dict.Field())
	if err != nil {
		return nil, err
	}
	id, ok := dict.Lookup(name)
	if !ok {
		return nil, &FieldError{Index: index, Field: dict.Field(), Value: name, Err: ErrLookup}
	}
	blob, err := sjson.SetBytes(p, string(dict.Field()), id)
	if err != nil {
		return nil, fmt.Errorf("product %d: set %s: %w", index, dict.Field(), err)
	}
	return internal.Product(blob), nil
}
