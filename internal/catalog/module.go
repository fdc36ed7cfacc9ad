// Package catalog exposes the product publication lookups used by
// reporting. It registers no routes.
package catalog

import (
	"koppara_backend/internal/catalog/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the catalog repository.
type Module struct {
	repo repository.Repository
}

// NewModule creates the catalog module.
func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{repo: repository.New(pool)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Repository returns the publication lookups.
func (m *Module) Repository() repository.Repository {
	return m.repo
}
