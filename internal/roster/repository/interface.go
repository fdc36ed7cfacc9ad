package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Distributor is a roster row.
type Distributor struct {
	ID            uuid.UUID
	Name          string
	Email         string
	Phone         string
	Tier          string
	ReferralCode  string
	SponsorID     *uuid.UUID
	IsOrganicLead bool
	CreatedAt     time.Time
}

// SponsorSummary is the joined sponsor of a distributor listing row.
type SponsorSummary struct {
	ID           uuid.UUID
	Name         string
	ReferralCode string
}

// DistributorWithSponsor is a roster row joined with its sponsor.
type DistributorWithSponsor struct {
	Distributor
	Sponsor *SponsorSummary
}

// CreateParams contains parameters for creating a distributor.
type CreateParams struct {
	Name         string
	Email        string
	Phone        string
	Tier         string
	ReferralCode string
}

// UpdateProfileParams holds the editable profile fields. Nil fields are kept.
type UpdateProfileParams struct {
	Name  *string
	Phone *string
}

// DistributorReader provides read operations for the roster.
type DistributorReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Distributor, error)
	GetByReferralCode(ctx context.Context, code string) (Distributor, error)
	List(ctx context.Context) ([]Distributor, error)
	ListWithSponsor(ctx context.Context) ([]DistributorWithSponsor, error)
	// ListTargeted returns distributors matching the tier ("all" matches every
	// tier) and, when distributorID is set, only that distributor.
	ListTargeted(ctx context.Context, tier string, distributorID *uuid.UUID) ([]Distributor, error)
}

// DistributorWriter provides write operations for the roster.
type DistributorWriter interface {
	Create(ctx context.Context, params CreateParams) (Distributor, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (Distributor, error)
	// DeleteUnattached removes a root distributor with no downline. It backs
	// out a registration whose sponsor assignment failed.
	DeleteUnattached(ctx context.Context, id uuid.UUID) error
}

// Repository combines all roster repository operations.
type Repository interface {
	DistributorReader
	DistributorWriter
}
