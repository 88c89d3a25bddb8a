package repository

import (
	"context"
	"database/sql"
)

// CatalogueEntry is one row of static reference data, grouped by category.
type CatalogueEntry struct {
	ID       uint64 `json:"id"`
	Category string `json:"category"`
	Label    string `json:"label"`
}

// CatalogueRepo reads the static catalogue.
type CatalogueRepo struct {
	db *sql.DB
}

func NewCatalogueRepo(db *sql.DB) *CatalogueRepo { return &CatalogueRepo{db: db} }

// ListByCategory returns every entry in a category. An unknown category is
// a valid empty result, not an error.
func (r *CatalogueRepo) ListByCategory(ctx context.Context, category string) ([]CatalogueEntry, error) {
	const q = `SELECT id, category, label FROM catalogue WHERE category = ? ORDER BY label ASC`
	rows, err := r.db.QueryContext(ctx, q, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []CatalogueEntry
	for rows.Next() {
		var e CatalogueEntry
		if err := rows.Scan(&e.ID, &e.Category, &e.Label); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
