package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"catnorm/internal"
)

// LoadProducts reads the whole input document at path.
func LoadProducts(path string) ([]internal.Product, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	products, err := DecodeProducts(blob)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return products, nil
}

// DecodeProducts parses a JSON array. Elements are kept verbatim.
func DecodeProducts(blob []byte) ([]internal.Product, error) {
	if !utf8.Valid(blob) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrParse)
	}
	var products []internal.Product
	if err := json.Unmarshal(blob, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	// "null" decodes to a nil slice without error.
	if products == nil {
		return nil, fmt.Errorf("%w: document is not an array", ErrParse)
	}
	for i, p := range products {
		if err := checkDuplicateKeys(p, i); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// checkDuplicateKeys rejects a record naming category or brand more than once;
// the rewrite would otherwise leave the second copy untouched.
func checkDuplicateKeys(p internal.Product, index int) error {
	doc := gjson.ParseBytes(p)
	if !doc.IsObject() {
		return nil
	}
	seen := map[string]int{}
	var err error
	doc.ForEach(func(key, _ gjson.Result) bool {
		field := internal.Field(key.String())
		if field != internal.FieldCategory && field != internal.FieldBrand {
			return true
		}
		seen[key.String()]++
		if seen[key.String()] > 1 {
			err = fmt.Errorf("%w: product %d: duplicate %s key", ErrParse, index, field)
			return false
		}
		return true
	})
	return err
}
