// Package ports defines the read models the analytics aggregator needs from
// the roster, the prospect ledger, the lead history and the catalog.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Distributor is a roster entry as seen by reporting.
type Distributor struct {
	ID           uuid.UUID
	Name         string
	Tier         string
	ReferralCode string
}

// Prospect is the funnel position of one prospect.
type Prospect struct {
	DistributorID     uuid.UUID
	State             string
	LastInteractionAt time.Time
}

// LineItem is one product line of a lead.
type LineItem struct {
	ProductName string
	Quantity    int
}

// Lead is one shared quote.
type Lead struct {
	DistributorID uuid.UUID
	LineItems     []LineItem
	AmountCents   int64
}

// RosterReader lists distributors.
type RosterReader interface {
	ListDistributors(ctx context.Context) ([]Distributor, error)
}

// ProspectReader lists every prospect.
type ProspectReader interface {
	ListProspects(ctx context.Context) ([]Prospect, error)
}

// LeadReader lists every lead.
type LeadReader interface {
	ListLeads(ctx context.Context) ([]Lead, error)
}

// CatalogReader returns the names of published products.
type CatalogReader interface {
	PublishedNames(ctx context.Context) (map[string]struct{}, error)
}
