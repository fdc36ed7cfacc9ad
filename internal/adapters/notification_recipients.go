package adapters

import (
	"context"

	notificationports "koppara_backend/internal/notification/ports"
	rosterrepo "koppara_backend/internal/roster/repository"

	"github.com/google/uuid"
)

// RecipientDirectoryAdapter resolves notification audiences over the roster.
type RecipientDirectoryAdapter struct {
	repo rosterrepo.DistributorReader
}

func NewRecipientDirectoryAdapter(repo rosterrepo.DistributorReader) *RecipientDirectoryAdapter {
	return &RecipientDirectoryAdapter{repo: repo}
}

func (a *RecipientDirectoryAdapter) ListRecipients(ctx context.Context, tier string, distributorID *uuid.UUID) ([]uuid.UUID, error) {
	rows, err := a.repo.ListTargeted(ctx, tier, distributorID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, d := range rows {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (a *RecipientDirectoryAdapter) TierOf(ctx context.Context, distributorID uuid.UUID) (string, error) {
	d, err := a.repo.GetByID(ctx, distributorID)
	if err != nil {
		return "", err
	}
	return d.Tier, nil
}

var _ notificationports.RecipientDirectory = (*RecipientDirectoryAdapter)(nil)
