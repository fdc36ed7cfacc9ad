package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Prospect is a potential customer tracked by one distributor.
type Prospect struct {
	ID                uuid.UUID
	DistributorID     uuid.UUID
	Phone             string
	Name              string
	State             string
	LastInteractionAt time.Time
	CreatedAt         time.Time
}

// UpsertParams identifies a prospect by (DistributorID, Phone).
type UpsertParams struct {
	DistributorID uuid.UUID
	Name          string
	Phone         string
	At            time.Time
}

// Repository provides prospect storage operations.
type Repository interface {
	// Upsert creates the prospect or refreshes its name and last interaction.
	// created reports whether a new row was inserted.
	Upsert(ctx context.Context, params UpsertParams) (Prospect, bool, error)
	Get(ctx context.Context, distributorID, id uuid.UUID) (Prospect, error)
	// UpdateState moves the prospect from one state to another. It reports
	// false when the prospect is no longer in state from.
	UpdateState(ctx context.Context, distributorID, id uuid.UUID, from, to string) (bool, error)
	Touch(ctx context.Context, distributorID, id uuid.UUID, at time.Time) (Prospect, error)
	ListByDistributor(ctx context.Context, distributorID uuid.UUID) ([]Prospect, error)
	ListAll(ctx context.Context) ([]Prospect, error)
	Owns(ctx context.Context, distributorID, id uuid.UUID) (bool, error)
}
