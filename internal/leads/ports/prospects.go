// Package ports defines the interfaces that the lead history requires from
// other modules. Implementations are wired by the composition root.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// Prospect is the part of a prospect the lead history needs.
type Prospect struct {
	ID      uuid.UUID
	Name    string
	Phone   string
	State   string
	Created bool
}

// ProspectLedger gives the lead history get-or-create and ownership checks.
type ProspectLedger interface {
	UpsertProspect(ctx context.Context, distributorID uuid.UUID, name, phone string) (Prospect, error)
	Owns(ctx context.Context, distributorID, prospectID uuid.UUID) (bool, error)
}
