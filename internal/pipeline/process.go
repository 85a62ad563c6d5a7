package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"catnorm/internal"
	"catnorm/internal/catalog"
	"catnorm/internal/config"
	"catnorm/internal/storage"
)

const metadataLastRun = "catalog.last_run"

type Service struct {
	cfg   config.Config
	store *storage.DB
}

func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// WithStore mirrors every successful run into db.
func (s *Service) WithStore(db *storage.DB) *Service {
	s.store = db
	return s
}

type Result struct {
	TraceID    string
	Categories []internal.DictionaryEntry
	Brands     []internal.DictionaryEntry
	Products   []internal.Product
	Timings    map[string]float64
}

func (r Result) Counts() map[string]int {
	return map[string]int{
		"products":   len(r.Products),
		"categories": len(r.Categories),
		"brands":     len(r.Brands),
	}
}

// Run loads the input, assigns identifiers, rewrites the products and writes
// the three JSON documents. Optional sinks run only after the documents are on
// disk.
func (s *Service) Run() (Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{TraceID: uuid.NewString(), Timings: map[string]float64{}}
	logger := log.With().Str("trace_id", res.TraceID).Logger()
	start := time.Now()
	stage := func(name string, began time.Time) {
		ms := float64(time.Since(began).Microseconds()) / 1000
		res.Timings[name+"Ms"] = ms
		logger.Debug().Str("stage", name).Float64("ms", ms).Msg("stage done")
	}

	began := time.Now()
	products, err := catalog.LoadProducts(s.cfg.InputPath)
	if err != nil {
		return Result{}, err
	}
	stage("load", began)
	logger.Info().Str("input", s.cfg.InputPath).Int("products", len(products)).Msg("catalog loaded")

	began = time.Now()
	dicts, err := catalog.BuildDictionaries(products, s.cfg.CategoryPrefix, s.cfg.BrandPrefix)
	if err != nil {
		return Result{}, err
	}
	res.Categories = dicts.Categories.Entries()
	res.Brands = dicts.Brands.Entries()
	stage("dictionaries", began)

	began = time.Now()
	res.Products, err = catalog.Rewrite(products, dicts)
	if err != nil {
		return Result{}, err
	}
	stage("rewrite", began)

	began = time.Now()
	docs, err := encodeDocuments(res)
	if err != nil {
		return Result{}, err
	}
	if err := WriteFiles(docs, s.cfg.CategoriesPath, s.cfg.BrandsPath, s.cfg.ProductsPath); err != nil {
		return Result{}, err
	}
	stage("write", began)

	if s.store != nil {
		began = time.Now()
		if err := s.persist(res); err != nil {
			return Result{}, fmt.Errorf("store catalog: %w", err)
		}
		stage("store", began)
	}

	if s.cfg.WorkbookPath != "" {
		began = time.Now()
		resolved, err := catalog.Resolve(res.Products, dicts)
		if err != nil {
			return Result{}, err
		}
		if err := ExportWorkbook(res.Categories, res.Brands, resolved, s.cfg.WorkbookPath); err != nil {
			return Result{}, fmt.Errorf("export workbook: %w", err)
		}
		stage("workbook", began)
	}

	res.Timings["totalMs"] = float64(time.Since(start).Microseconds()) / 1000
	if s.store != nil {
		_ = s.store.InsertRun(res.TraceID, res.Timings, res.Counts())
	}

	logger.Info().
		Int("categories", len(res.Categories)).
		Int("brands", len(res.Brands)).
		Int("products", len(res.Products)).
		Str("categories_path", s.cfg.CategoriesPath).
		Str("brands_path", s.cfg.BrandsPath).
		Str("products_path", s.cfg.ProductsPath).
		Msg("catalog normalized")

	return res, nil
}

func (s *Service) persist(res Result) error {
	rows := productRows(res.Products)
	if err := s.store.ReplaceCatalog(res.Categories, res.Brands, rows); err != nil {
		return err
	}
	return s.store.SetMetadata(metadataLastRun, time.Now().UTC().Format(time.RFC3339))
}

// ResolveFromStore rebuilds the resolved product view from the last stored run.
func ResolveFromStore(db *storage.DB) ([]internal.ResolvedProduct, error) {
	rows, err := db.ResolvedRows()
	if err != nil {
		return nil, err
	}
	out := make([]internal.ResolvedProduct, 0, len(rows))
	for _, row := range rows {
		r, err := catalog.ResolveOne(row.Position, row.Raw, row.CategoryName, row.BrandName)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ExportStoreWorkbook writes the workbook for the last stored run.
func ExportStoreWorkbook(db *storage.DB, outputPath string) (int, error) {
	categories, err := db.ListCategories()
	if err != nil {
		return 0, err
	}
	brands, err := db.ListBrands()
	if err != nil {
		return 0, err
	}
	resolved, err := ResolveFromStore(db)
	if err != nil {
		return 0, err
	}
	if err := ExportWorkbook(categories, brands, resolved, outputPath); err != nil {
		return 0, err
	}
	return len(resolved), nil
}

// StoreSummary describes what a store currently holds.
type StoreSummary struct {
	TraceID  string
	Counts   map[string]int
	StoredAt string
	Products int
}

// SummarizeStore reports the last recorded run and the stored product count.
// An empty store gives a zero summary.
func SummarizeStore(db *storage.DB) (StoreSummary, error) {
	var sum StoreSummary
	var err error
	if sum.TraceID, sum.Counts, err = db.LastRun(); err != nil {
		return StoreSummary{}, fmt.Errorf("last run: %w", err)
	}
	storedAt, err := db.GetMetadata(metadataLastRun)
	if err != nil {
		return StoreSummary{}, fmt.Errorf("metadata: %w", err)
	}
	if storedAt != nil {
		sum.StoredAt = *storedAt
	}
	rows, err := db.ListProducts()
	if err != nil {
		return StoreSummary{}, fmt.Errorf("list products: %w", err)
	}
	sum.Products = len(rows)
	return sum, nil
}

func encodeDocuments(res Result) (Documents, error) {
	var docs Documents
	var err error
	if docs.Categories, err = EncodeCategories(res.Categories); err != nil {
		return Documents{}, fmt.Errorf("encode categories: %w", err)
	}
	if docs.Brands, err = EncodeBrands(res.Brands); err != nil {
		return Documents{}, fmt.Errorf("encode brands: %w", err)
	}
	if docs.Products, err = EncodeProducts(res.Products); err != nil {
		return Documents{}, fmt.Errorf("encode products: %w", err)
	}
	return docs, nil
}

func productRows(products []internal.Product) []internal.ProductRow {
	rows := make([]internal.ProductRow, 0, len(products))
	for i, p := range products {
		categoryID, brandID := catalog.IDs(p)
		rows = append(rows, internal.ProductRow{
			Position:   i,
			CategoryID: categoryID,
			BrandID:    brandID,
			RawJSON:    string(p),
		})
	}
	return rows
}
