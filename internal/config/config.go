package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	InputPath      string
	CategoriesPath string
	BrandsPath     string
	ProductsPath   string

	CategoryPrefix string
	BrandPrefix    string

	DBPath       string
	WorkbookPath string

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}
	dataDir := filepath.Join(cwd, "data")

	cfg := Config{
		InputPath:      getEnv("CATALOG_INPUT_PATH", filepath.Join(dataDir, "products.json")),
		CategoriesPath: getEnv("CATALOG_CATEGORIES_PATH", filepath.Join(dataDir, "categories.json")),
		BrandsPath:     getEnv("CATALOG_BRANDS_PATH", filepath.Join(dataDir, "brands.json")),
		ProductsPath:   getEnv("CATALOG_PRODUCTS_PATH", filepath.Join(dataDir, "products_with_ids.json")),

		CategoryPrefix: getEnv("CATALOG_CATEGORY_PREFIX", "cat"),
		BrandPrefix:    getEnv("CATALOG_BRAND_PREFIX", "b"),

		DBPath:       getEnv("DB_PATH", ""),
		WorkbookPath: getEnv("XLSX_PATH", ""),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	return cfg, nil
}

// Validate checks the settings every run needs. Optional sinks may stay empty.
func (c Config) Validate() error {
	required := []struct{ name, value string }{
		{"CATALOG_INPUT_PATH", c.InputPath},
		{"CATALOG_CATEGORIES_PATH", c.CategoriesPath},
		{"CATALOG_BRANDS_PATH", c.BrandsPath},
		{"CATALOG_PRODUCTS_PATH", c.ProductsPath},
		{"CATALOG_CATEGORY_PREFIX", c.CategoryPrefix},
		{"CATALOG_BRAND_PREFIX", c.BrandPrefix},
	}
	for _, r := range required {
		if err := c.Require(r.name, r.value); err != nil {
			return err
		}
	}
	if c.CategoryPrefix == c.BrandPrefix {
		return fmt.Errorf("category and brand prefixes must differ: %q", c.CategoryPrefix)
	}
	return nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required setting: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
