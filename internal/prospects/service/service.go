package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"koppara_backend/internal/prospects/domain"
	"koppara_backend/internal/prospects/repository"
	"koppara_backend/internal/prospects/transport"
	"koppara_backend/platform/apperr"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/phone"
	"koppara_backend/platform/sanitize"
)

// Service is the prospect ledger.
type Service struct {
	repo   repository.Repository
	policy domain.TransitionPolicy
	region string
	now    func() time.Time
	log    *logger.Logger
}

// New creates a new prospect ledger. strict enables forward-only transitions.
func New(repo repository.Repository, strict bool, region string, log *logger.Logger) *Service {
	if region == "" {
		region = phone.DefaultRegion
	}
	return &Service{
		repo:   repo,
		policy: domain.TransitionPolicy{Strict: strict},
		region: region,
		now:    time.Now,
		log:    log,
	}
}

// UpsertProspect gets or creates the prospect keyed by distributor and
// normalized phone, refreshing its name and last interaction.
func (s *Service) UpsertProspect(ctx context.Context, distributorID uuid.UUID, name, rawPhone string) (repository.Prospect, bool, error) {
	key := phone.NormalizeE164(rawPhone, s.region)
	if key == "" || key == "+" {
		return repository.Prospect{}, false, apperr.Validation("phone is required")
	}
	name = sanitize.Text(name)
	if name == "" {
		return repository.Prospect{}, false, apperr.Validation("name is required")
	}

	p, created, err := s.repo.Upsert(ctx, repository.UpsertParams{
		DistributorID: distributorID,
		Name:          name,
		Phone:         key,
		At:            s.now(),
	})
	if err != nil {
		return repository.Prospect{}, false, err
	}
	if created {
		s.log.Info("prospect created", "prospectId", p.ID, "distributorId", distributorID)
	}
	return p, created, nil
}

// SetState moves an owned prospect to a new state under the configured
// transition policy.
func (s *Service) SetState(ctx context.Context, distributorID, prospectID uuid.UUID, state string) (transport.ProspectResponse, error) {
	to, err := domain.ParseState(state)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	p, err := s.repo.Get(ctx, distributorID, prospectID)
	if err != nil {
		return transport.ProspectResponse{}, err
	}

	from := domain.State(p.State)
	if err := s.policy.Check(from, to); err != nil {
		return transport.ProspectResponse{}, err
	}
	if from != to {
		updated, err := s.repo.UpdateState(ctx, distributorID, prospectID, string(from), string(to))
		if err != nil {
			return transport.ProspectResponse{}, err
		}
		if !updated {
			return transport.ProspectResponse{}, apperr.Conflict("prospect state changed concurrently")
		}
		p.State = string(to)
	}
	return toResponse(p, s.now()), nil
}

// Touch records a manual follow-up.
func (s *Service) Touch(ctx context.Context, distributorID, prospectID uuid.UUID) (transport.ProspectResponse, error) {
	p, err := s.repo.Touch(ctx, distributorID, prospectID, s.now())
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	return toResponse(p, s.now()), nil
}

// Get retrieves an owned prospect.
func (s *Service) Get(ctx context.Context, distributorID, prospectID uuid.UUID) (repository.Prospect, error) {
	return s.repo.Get(ctx, distributorID, prospectID)
}

// List returns a distributor's prospects with their follow-up window.
func (s *Service) List(ctx context.Context, distributorID uuid.UUID) (transport.ProspectListResponse, error) {
	items, err := s.repo.ListByDistributor(ctx, distributorID)
	if err != nil {
		return transport.ProspectListResponse{}, err
	}

	now := s.now()
	resp := transport.ProspectListResponse{
		Items: make([]transport.ProspectResponse, 0, len(items)),
		Total: len(items),
	}
	for _, p := range items {
		r := toResponse(p, now)
		if r.NeedsFollowUp {
			resp.NeedsFollowUp++
		}
		resp.Items = append(resp.Items, r)
	}
	return resp, nil
}

// ListAll returns every prospect for reporting.
func (s *Service) ListAll(ctx context.Context) ([]repository.Prospect, error) {
	return s.repo.ListAll(ctx)
}

// Owns reports whether the prospect belongs to the distributor.
func (s *Service) Owns(ctx context.Context, distributorID, prospectID uuid.UUID) (bool, error) {
	return s.repo.Owns(ctx, distributorID, prospectID)
}

func toResponse(p repository.Prospect, now time.Time) transport.ProspectResponse {
	followUp := domain.ClassifyFollowUp(now.Sub(p.LastInteractionAt))
	if domain.State(p.State) == domain.StateClosed {
		followUp = domain.FollowUpWithinSLA
	}
	return transport.ProspectResponse{
		ID:                p.ID,
		Name:              p.Name,
		Phone:             p.Phone,
		State:             p.State,
		FollowUp:          string(followUp),
		NeedsFollowUp:     followUp == domain.FollowUpNeeded,
		LastInteractionAt: p.LastInteractionAt.Format(time.RFC3339),
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
	}
}
