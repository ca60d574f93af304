package inventory

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Snapshot is a local sqlite mirror of the last-seen product set. It backs
// the deleted-products view and the client-side restore fallback; the remote
// API remains the canonical copy and overwrites the mirror on every list.
type Snapshot struct {
	db *sql.DB
}

// DefaultSnapshotPath returns ~/.pawstock/snapshot.db.
func DefaultSnapshotPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".pawstock", "snapshot.db"), nil
}

// OpenSnapshot opens or creates the snapshot database.
func OpenSnapshot(path string) (*Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to snapshot: %w", err)
	}

	s := &Snapshot{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run snapshot migrations: %w", err)
	}
	return s, nil
}

func (s *Snapshot) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS products (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    supplier TEXT,
    price REAL NOT NULL DEFAULT 0,
    stock INTEGER NOT NULL DEFAULT 0,
    min_stock INTEGER NOT NULL DEFAULT 0,
    image TEXT,
    characteristics TEXT,
    low_stock INTEGER NOT NULL DEFAULT 0,
    is_deleted INTEGER NOT NULL DEFAULT 0,
    created_at TEXT,
    updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_deleted ON products(is_deleted);
`)
	return err
}

// Close closes the underlying database.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

// Update upserts the products of an authoritative active listing. Records the
// listing no longer contains keep their previous state, so locally-known
// deleted products survive a refresh.
func (s *Snapshot) Update(products []Product) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range products {
		if err := upsert(tx, &products[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Put upserts a single product, typically a server-confirmed mutation result.
func (s *Snapshot) Put(p Product) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsert(tx, &p); err != nil {
		return err
	}
	return tx.Commit()
}

func upsert(tx *sql.Tx, p *Product) error {
	_, err := tx.Exec(`
INSERT INTO products (id, name, supplier, price, stock, min_stock, image, characteristics, low_stock, is_deleted, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    supplier = excluded.supplier,
    price = excluded.price,
    stock = excluded.stock,
    min_stock = excluded.min_stock,
    image = excluded.image,
    characteristics = excluded.characteristics,
    low_stock = excluded.low_stock,
    is_deleted = excluded.is_deleted,
    created_at = excluded.created_at,
    updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Supplier, p.Price, p.Stock, p.MinStock,
		p.Image, p.Characteristics, boolInt(p.LowStock), boolInt(p.IsDeleted),
		stampString(p.CreatedAt), stampString(p.UpdatedAt),
	)
	return err
}

// MarkDeleted flags a record as soft-deleted.
func (s *Snapshot) MarkDeleted(id string) error {
	res, err := s.db.Exec(
		`UPDATE products SET is_deleted = 1, updated_at = ? WHERE id = ?`,
		time.Now().Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore flips a soft-deleted record back to active and returns it.
func (s *Snapshot) Restore(id string) (Product, error) {
	res, err := s.db.Exec(
		`UPDATE products SET is_deleted = 0, updated_at = ? WHERE id = ? AND is_deleted = 1`,
		time.Now().Format(time.RFC3339), id,
	)
	if err != nil {
		return Product{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Product{}, ErrNotFound
	}
	return s.Get(id)
}

// Get returns a single record by id.
func (s *Snapshot) Get(id string) (Product, error) {
	row := s.db.QueryRow(selectColumns+` WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	return p, err
}

// Deleted lists all soft-deleted records.
func (s *Snapshot) Deleted() ([]Product, error) {
	return s.query(selectColumns + ` WHERE is_deleted = 1 ORDER BY name`)
}

// Active lists all non-deleted records, for offline display.
func (s *Snapshot) Active() ([]Product, error) {
	return s.query(selectColumns + ` WHERE is_deleted = 0 ORDER BY name`)
}

const selectColumns = `SELECT id, name, supplier, price, stock, min_stock, image, characteristics, low_stock, is_deleted, created_at, updated_at FROM products`

func (s *Snapshot) query(q string, args ...interface{}) ([]Product, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row scanner) (Product, error) {
	var p Product
	var lowStock, isDeleted int
	var createdAt, updatedAt sql.NullString

	err := row.Scan(&p.ID, &p.Name, &p.Supplier, &p.Price, &p.Stock, &p.MinStock,
		&p.Image, &p.Characteristics, &lowStock, &isDeleted, &createdAt, &updatedAt)
	if err != nil {
		return Product{}, err
	}

	p.LowStock = lowStock != 0
	p.IsDeleted = isDeleted != 0
	if createdAt.Valid {
		p.CreatedAt = parseStamp(createdAt.String)
	}
	if updatedAt.Valid {
		p.UpdatedAt = parseStamp(updatedAt.String)
	}
	return p, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func stampString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
