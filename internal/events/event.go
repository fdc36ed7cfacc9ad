// Package events defines the facts the network modules publish to each
// other. The bus itself lives in platform/events.
package events

import (
	"koppara_backend/platform/events"
	"koppara_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus returns the process-local bus shared by all modules.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Roster Domain Events
// =============================================================================

// DistributorRegistered is published when a membership is activated.
type DistributorRegistered struct {
	BaseEvent
	DistributorID uuid.UUID  `json:"distributorId"`
	Name          string     `json:"name"`
	Tier          string     `json:"tier"`
	ReferralCode  string     `json:"referralCode"`
	SponsorID     *uuid.UUID `json:"sponsorId,omitempty"`
}

func (e DistributorRegistered) EventName() string { return "roster.distributor.registered" }

// =============================================================================
// Lineage Domain Events
// =============================================================================

// SponsorReassigned is published after a sponsor change has been committed
// together with its audit entry.
type SponsorReassigned struct {
	BaseEvent
	AuditID           uuid.UUID  `json:"auditId"`
	Actor             string     `json:"actor"`
	DistributorID     uuid.UUID  `json:"distributorId"`
	PreviousSponsorID *uuid.UUID `json:"previousSponsorId,omitempty"`
	NewSponsorID      *uuid.UUID `json:"newSponsorId,omitempty"`
	Reason            string     `json:"reason"`
}

func (e SponsorReassigned) EventName() string { return "lineage.sponsor.reassigned" }
