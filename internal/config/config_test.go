package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "products.json", filepath.Base(cfg.InputPath))
	assert.Equal(t, "categories.json", filepath.Base(cfg.CategoriesPath))
	assert.Equal(t, "brands.json", filepath.Base(cfg.BrandsPath))
	assert.Equal(t, "products_with_ids.json", filepath.Base(cfg.ProductsPath))
	assert.Equal(t, "cat", cfg.CategoryPrefix)
	assert.Equal(t, "b", cfg.BrandPrefix)
	assert.Empty(t, cfg.DBPath)
	assert.Empty(t, cfg.WorkbookPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CATALOG_INPUT_PATH", "/tmp/in.json")
	t.Setenv("CATALOG_CATEGORY_PREFIX", "c")
	t.Setenv("DB_PATH", "/tmp/catalog.db")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/in.json", cfg.InputPath)
	assert.Equal(t, "c", cfg.CategoryPrefix)
	assert.Equal(t, "/tmp/catalog.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	base := Config{
		InputPath:      "in.json",
		CategoriesPath: "c.json",
		BrandsPath:     "b.json",
		ProductsPath:   "p.json",
		CategoryPrefix: "cat",
		BrandPrefix:    "b",
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing input", mutate: func(c *Config) { c.InputPath = " " }, wantErr: "CATALOG_INPUT_PATH"},
		{name: "missing brand prefix", mutate: func(c *Config) { c.BrandPrefix = "" }, wantErr: "CATALOG_BRAND_PREFIX"},
		{name: "same prefixes", mutate: func(c *Config) { c.BrandPrefix = "cat" }, wantErr: "must differ"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
