package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"catnorm/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  sortOrder INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS brands (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  sortOrder INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
  position INTEGER PRIMARY KEY,
  categoryId TEXT NOT NULL,
  brandId TEXT NOT NULL,
  raw_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_categoryId ON products(categoryId);
CREATE INDEX IF NOT EXISTS idx_products_brandId ON products(brandId);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceCatalog swaps the stored dictionaries and products for a new run's
// output in one transaction.
func (d *DB) ReplaceCatalog(categories, brands []internal.DictionaryEntry, products []internal.ProductRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"products", "categories", "brands"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}
	}

	insertEntries := func(table string, entries []internal.DictionaryEntry) error {
		stmt, err := tx.Prepare(`INSERT INTO ` + table + ` (id, name, sortOrder) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, e := range entries {
			if _, err := stmt.Exec(e.ID, e.Name, i+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insertEntries("categories", categories); err != nil {
		return err
	}
	if err := insertEntries("brands", brands); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO products (position, categoryId, brandId, raw_json) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range products {
		if _, err := stmt.Exec(p.Position, p.CategoryID, p.BrandID, p.RawJSON); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListCategories() ([]internal.DictionaryEntry, error) {
	return d.listEntries(`SELECT id, name FROM categories ORDER BY sortOrder ASC`)
}

func (d *DB) ListBrands() ([]internal.DictionaryEntry, error) {
	return d.listEntries(`SELECT id, name FROM brands ORDER BY sortOrder ASC`)
}

func (d *DB) listEntries(query string) ([]internal.DictionaryEntry, error) {
	rows, err := d.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]internal.DictionaryEntry, 0)
	for rows.Next() {
		var e internal.DictionaryEntry
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) ListProducts() ([]internal.ProductRow, error) {
	rows, err := d.conn.Query(`SELECT position, categoryId, brandId, raw_json FROM products ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]internal.ProductRow, 0)
	for rows.Next() {
		var p internal.ProductRow
		if err := rows.Scan(&p.Position, &p.CategoryID, &p.BrandID, &p.RawJSON); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ResolvedRows joins every stored product with its category and brand names.
// Search keywords and the joined document are left to the caller.
func (d *DB) ResolvedRows() ([]internal.ResolvedProduct, error) {
	rows, err := d.conn.Query(`
SELECT
  p.position,
  p.categoryId,
  c.name,
  p.brandId,
  b.name,
  p.raw_json
FROM products p
LEFT JOIN categories c ON c.id = p.categoryId
LEFT JOIN brands b ON b.id = p.brandId
ORDER BY p.position ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]internal.ResolvedProduct, 0)
	for rows.Next() {
		var row internal.ResolvedProduct
		var rawJSON string
		if err := rows.Scan(&row.Position, &row.CategoryID, &row.CategoryName, &row.BrandID, &row.BrandName, &rawJSON); err != nil {
			return nil, err
		}
		row.Raw = internal.Product(rawJSON)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, timingsJson, countsJson) VALUES (?, ?, ?)`, traceID, string(timingsJSON), string(countsJSON))
	return err
}

// LastRun returns the trace id and counts of the most recent run.
func (d *DB) LastRun() (string, map[string]int, error) {
	var traceID, countsJSON string
	err := d.conn.QueryRow(`SELECT traceId, countsJson FROM runs ORDER BY id DESC LIMIT 1`).Scan(&traceID, &countsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	counts := map[string]int{}
	_ = json.Unmarshal([]byte(countsJSON), &counts)
	return traceID, counts, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
