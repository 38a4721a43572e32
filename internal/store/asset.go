package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/gayaku/internal/catalog"
)

// Asset is a catalog asset as stored in the database.
type Asset struct {
	ID          string
	Name        string
	ImageRef    string
	Category    catalog.Category
	Description string
	BaseScale   float64
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Catalog returns the asset as a catalog entry.
func (a *Asset) Catalog() catalog.Asset {
	return catalog.Asset{
		ID:          a.ID,
		Name:        a.Name,
		ImageRef:    a.ImageRef,
		Category:    a.Category,
		Description: a.Description,
		BaseScale:   a.BaseScale,
	}
}

// FromCatalog converts a catalog entry for storage at the given position.
func FromCatalog(c catalog.Asset, position int) *Asset {
	return &Asset{
		ID:          c.ID,
		Name:        c.Name,
		ImageRef:    c.ImageRef,
		Category:    c.Category,
		Description: c.Description,
		BaseScale:   c.BaseScale,
		Position:    position,
	}
}

// AssetRepository provides CRUD operations for catalog assets.
type AssetRepository struct {
	db *sql.DB
}

// Assets returns the asset repository for this store.
func (s *Store) Assets() *AssetRepository {
	return &AssetRepository{db: s.db}
}

const assetColumns = `id, name, image_ref, category, description, base_scale, position, created_at, updated_at`

// Create inserts a new asset into the database.
func (r *AssetRepository) Create(a *Asset) error {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO assets (`+assetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.ImageRef, string(a.Category), a.Description, a.BaseScale, a.Position, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

// GetByID retrieves an asset by its ID.
func (r *AssetRepository) GetByID(id string) (*Asset, error) {
	a, err := scanAsset(r.db.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List retrieves all assets in gallery order.
func (r *AssetRepository) List() ([]*Asset, error) {
	rows, err := r.db.Query(`SELECT ` + assetColumns + ` FROM assets ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assets, nil
}

// Count returns the number of stored assets.
func (r *AssetRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM assets`).Scan(&n)
	return n, err
}

// NextPosition returns the position after the last asset.
func (r *AssetRepository) NextPosition() (int, error) {
	var n sql.NullInt64
	if err := r.db.QueryRow(`SELECT MAX(position) FROM assets`).Scan(&n); err != nil {
		return 0, err
	}
	if !n.Valid {
		return 0, nil
	}
	return int(n.Int64) + 1, nil
}

// Update updates an existing asset in the database.
func (r *AssetRepository) Update(a *Asset) error {
	a.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE assets SET name = ?, image_ref = ?, category = ?, description = ?, base_scale = ?, position = ?, updated_at = ?
		 WHERE id = ?`,
		a.Name, a.ImageRef, string(a.Category), a.Description, a.BaseScale, a.Position, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an asset from the database by its ID.
func (r *AssetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Seed inserts assets in order when the table is empty. It reports how many
// were inserted.
func (r *AssetRepository) Seed(assets []catalog.Asset) (int, error) {
	n, err := r.Count()
	if err != nil || n > 0 {
		return 0, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now()
	for i, c := range assets {
		a := FromCatalog(c, i)
		if _, err := tx.Exec(
			`INSERT INTO assets (`+assetColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.ImageRef, string(a.Category), a.Description, a.BaseScale, a.Position, now, now,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(assets), nil
}

// Catalog loads every asset into a catalog.
func (r *AssetRepository) Catalog() (*catalog.Catalog, error) {
	stored, err := r.List()
	if err != nil {
		return nil, err
	}
	assets := make([]catalog.Asset, 0, len(stored))
	for _, a := range stored {
		assets = append(assets, a.Catalog())
	}
	return catalog.New(assets), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (*Asset, error) {
	a := &Asset{}
	var category string
	err := row.Scan(&a.ID, &a.Name, &a.ImageRef, &category, &a.Description, &a.BaseScale, &a.Position, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Category = catalog.Category(category)
	return a, nil
}
