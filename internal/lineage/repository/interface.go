package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"koppara_backend/internal/lineage/domain"
)

// Node is a distributor as seen by the sponsor graph.
type Node struct {
	ID            uuid.UUID
	Name          string
	Tier          string
	ReferralCode  string
	SponsorID     *uuid.UUID
	IsOrganicLead bool
}

// AuditEntry is one immutable row of audit_log_lineage.
type AuditEntry struct {
	ID                uuid.UUID
	Actor             string
	DistributorID     uuid.UUID
	PreviousSponsorID *uuid.UUID
	NewSponsorID      *uuid.UUID
	Reason            string
	CreatedAt         time.Time
}

// InsertAuditParams contains the fields of a new audit entry.
type InsertAuditParams struct {
	Actor             string
	DistributorID     uuid.UUID
	PreviousSponsorID *uuid.UUID
	NewSponsorID      *uuid.UUID
	Reason            string
}

// AuditFilter selects a page of audit entries, newest first.
type AuditFilter struct {
	DistributorID *uuid.UUID
	Offset        int
	Limit         int
}

// MutationTx is the set of operations available inside a lineage mutation
// transaction. Every write made through it commits or rolls back together.
type MutationTx interface {
	// LockGraph serializes lineage mutations for the rest of the transaction.
	LockGraph(ctx context.Context) error
	// LockNode loads a distributor and holds a row lock on it.
	LockNode(ctx context.Context, id uuid.UUID) (Node, error)
	GetNode(ctx context.Context, id uuid.UUID) (Node, error)
	SponsorOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, bool, error)
	CountNodes(ctx context.Context) (int, error)
	// SetSponsor replaces the sponsor edge and clears the organic flag.
	SetSponsor(ctx context.Context, id uuid.UUID, sponsorID *uuid.UUID) error
	InsertAudit(ctx context.Context, params InsertAuditParams) (AuditEntry, error)
}

// GraphReader provides read-committed queries over the sponsor graph.
type GraphReader interface {
	GetNode(ctx context.Context, id uuid.UUID) (Node, error)
	ListChildren(ctx context.Context, id uuid.UUID) ([]Node, error)
	CountNodes(ctx context.Context) (int, error)
	ListEdges(ctx context.Context) ([]domain.Edge, error)
}

// AuditReader lists audit entries.
type AuditReader interface {
	ListAudit(ctx context.Context, filter AuditFilter) ([]AuditEntry, int, error)
}

// Store combines all lineage storage operations.
type Store interface {
	GraphReader
	AuditReader
	// WithinTx runs fn in a SERIALIZABLE transaction. fn's error rolls the
	// transaction back and is returned unchanged.
	WithinTx(ctx context.Context, fn func(tx MutationTx) error) error
}
