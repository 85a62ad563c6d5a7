package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catnorm/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReplaceCatalog(t *testing.T) {
	db := openTestDB(t)

	categories := []internal.DictionaryEntry{{ID: "cat1", Name: "Tools"}, {ID: "cat2", Name: "Toys"}}
	brands := []internal.DictionaryEntry{{ID: "b1", Name: "Acme"}, {ID: "b2", Name: "Zeta"}}
	products := []internal.ProductRow{
		{Position: 0, CategoryID: "cat1", BrandID: "b1", RawJSON: `{"category":"cat1","brand":"b1"}`},
		{Position: 1, CategoryID: "cat2", BrandID: "b9", RawJSON: `{"category":"cat2","brand":"b9"}`},
	}
	require.NoError(t, db.ReplaceCatalog(categories, brands, products))

	gotCategories, err := db.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, categories, gotCategories)

	gotBrands, err := db.ListBrands()
	require.NoError(t, err)
	assert.Equal(t, brands, gotBrands)

	gotProducts, err := db.ListProducts()
	require.NoError(t, err)
	assert.Equal(t, products, gotProducts)

	resolved, err := db.ResolvedRows()
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	require.NotNil(t, resolved[0].CategoryName)
	assert.Equal(t, "Tools", *resolved[0].CategoryName)
	require.NotNil(t, resolved[0].BrandName)
	assert.Equal(t, "Acme", *resolved[0].BrandName)
	assert.Nil(t, resolved[1].BrandName)
	assert.Equal(t, `{"category":"cat2","brand":"b9"}`, string(resolved[1].Raw))
}

func TestReplaceCatalogOverwritesPreviousRun(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.ReplaceCatalog(
		[]internal.DictionaryEntry{{ID: "cat1", Name: "Garden"}, {ID: "cat2", Name: "Tools"}},
		[]internal.DictionaryEntry{{ID: "b1", Name: "Acme"}},
		[]internal.ProductRow{{Position: 0, CategoryID: "cat1", BrandID: "b1", RawJSON: `{}`}},
	))
	require.NoError(t, db.ReplaceCatalog(
		[]internal.DictionaryEntry{{ID: "cat1", Name: "Tools"}},
		[]internal.DictionaryEntry{},
		nil,
	))

	categories, err := db.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, []internal.DictionaryEntry{{ID: "cat1", Name: "Tools"}}, categories)

	brands, err := db.ListBrands()
	require.NoError(t, err)
	assert.Empty(t, brands)

	products, err := db.ListProducts()
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRunsAndMetadata(t *testing.T) {
	db := openTestDB(t)

	traceID, counts, err := db.LastRun()
	require.NoError(t, err)
	assert.Empty(t, traceID)
	assert.Nil(t, counts)

	require.NoError(t, db.InsertRun("first", map[string]float64{"totalMs": 1}, map[string]int{"products": 1}))
	require.NoError(t, db.InsertRun("second", map[string]float64{"totalMs": 2}, map[string]int{"products": 3, "categories": 2}))

	traceID, counts, err = db.LastRun()
	require.NoError(t, err)
	assert.Equal(t, "second", traceID)
	assert.Equal(t, map[string]int{"products": 3, "categories": 2}, counts)

	value, err := db.GetMetadata("catalog.last_run")
	require.NoError(t, err)
	assert.Nil(t, value)

	require.NoError(t, db.SetMetadata("catalog.last_run", "2026-01-01T00:00:00Z"))
	require.NoError(t, db.SetMetadata("catalog.last_run", "2026-01-02T00:00:00Z"))
	value, err = db.GetMetadata("catalog.last_run")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "2026-01-02T00:00:00Z", *value)
}
