// Package repository reads product publication state from the catalog.
// Product CRUD lives in the storefront; this side only reads.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"koppara_backend/platform/apperr"
)

const (
	opIsPublished    = "catalog.repository.is_published"
	opPublishedNames = "catalog.repository.published_names"
)

// Repository reads product publication state.
type Repository interface {
	IsPublished(ctx context.Context, productName string) (bool, error)
	PublishedNames(ctx context.Context) (map[string]struct{}, error)
}

// Repo implements Repository with PostgreSQL. A product is published unless
// its status is draft.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// IsPublished reports whether a product with this name is published.
func (r *Repo) IsPublished(ctx context.Context, productName string) (bool, error) {
	var published bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM products WHERE name = $1 AND status <> 'draft')`, productName,
	).Scan(&published)
	if err != nil {
		return false, apperr.StorageFailure(opIsPublished, err)
	}
	return published, nil
}

// PublishedNames returns the set of published product names.
func (r *Repo) PublishedNames(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM products WHERE status <> 'draft'`)
	if err != nil {
		return nil, apperr.StorageFailure(opPublishedNames, err)
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperr.StorageFailure(opPublishedNames, err)
		}
		names[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageFailure(opPublishedNames, err)
	}
	return names, nil
}
