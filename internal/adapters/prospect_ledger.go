package adapters

import (
	"context"

	"koppara_backend/internal/leads/ports"
	prospectsservice "koppara_backend/internal/prospects/service"

	"github.com/google/uuid"
)

// ProspectLedgerAdapter gives the lead history access to the prospect ledger.
type ProspectLedgerAdapter struct {
	svc *prospectsservice.Service
}

func NewProspectLedgerAdapter(svc *prospectsservice.Service) *ProspectLedgerAdapter {
	return &ProspectLedgerAdapter{svc: svc}
}

func (a *ProspectLedgerAdapter) UpsertProspect(ctx context.Context, distributorID uuid.UUID, name, phone string) (ports.Prospect, error) {
	p, created, err := a.svc.UpsertProspect(ctx, distributorID, name, phone)
	if err != nil {
		return ports.Prospect{}, err
	}
	return ports.Prospect{
		ID:      p.ID,
		Name:    p.Name,
		Phone:   p.Phone,
		State:   p.State,
		Created: created,
	}, nil
}

func (a *ProspectLedgerAdapter) Owns(ctx context.Context, distributorID, prospectID uuid.UUID) (bool, error) {
	return a.svc.Owns(ctx, distributorID, prospectID)
}

var _ ports.ProspectLedger = (*ProspectLedgerAdapter)(nil)
