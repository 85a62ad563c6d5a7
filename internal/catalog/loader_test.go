package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProducts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	doc := `[
  {"id": 1, "name": "Hammer", "category": "Tools", "brand": "Acme", "price": 9.50},
  {"id": 2, "name": "Robot", "category": "Toys", "brand": "Zeta", "tags": ["new"]}
]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	products, err := LoadProducts(path)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.JSONEq(t, `{"id": 1, "name": "Hammer", "category": "Tools", "brand": "Acme", "price": 9.50}`, string(products[0]))
	// Numbers are kept as written.
	assert.Contains(t, string(products[0]), "9.50")
}

func TestLoadProductsNotFound(t *testing.T) {
	_, err := LoadProducts(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDecodeProductsErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: ``},
		{name: "truncated", doc: `[{"category":"Tools"`},
		{name: "object", doc: `{"category":"Tools","brand":"Acme"}`},
		{name: "null", doc: `null`},
		{name: "string", doc: `"products"`},
		{name: "invalid utf8", doc: "[{\"category\":\"\xff\",\"brand\":\"a\"},{\"category\":\"\xfe\",\"brand\":\"a\"}]"},
		{name: "duplicate category key", doc: `[{"category":"A","brand":"b","category":"B"}]`},
		{name: "duplicate brand key", doc: `[{"category":"A","brand":"b"},{"brand":"x","category":"A","brand":"y"}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeProducts([]byte(tc.doc))
			require.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestDecodeProductsEmptyArray(t *testing.T) {
	products, err := DecodeProducts([]byte(" [ ] "))
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestDecodeProductsDuplicateOtherKeys(t *testing.T) {
	products, err := DecodeProducts([]byte(`[{"category":"A","brand":"b","tag":1,"tag":2,"attrs":{"category":"x"}}]`))
	require.NoError(t, err)
	assert.Len(t, products, 1)
}
