package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"koppara_backend/internal/events"
	"koppara_backend/internal/roster/domain"
	"koppara_backend/internal/roster/repository"
	"koppara_backend/internal/roster/transport"
	"koppara_backend/platform/apperr"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/phone"
	"koppara_backend/platform/sanitize"
)

const (
	maxReferralAttempts = 5
	referralSignupActor = "system:referral-signup"
	referralSignupNote  = "referral signup"
)

// SponsorAssigner applies the first sponsor edge of a referred distributor.
// Sponsor edges are owned by the lineage module.
type SponsorAssigner interface {
	AssignSponsor(ctx context.Context, actor string, distributorID, sponsorID uuid.UUID, reason string) error
}

// Service provides business logic for the distributor roster.
type Service struct {
	repo     repository.Repository
	sponsors SponsorAssigner
	eventBus events.Bus
	region   string
	intn     func(n int) int
	log      *logger.Logger
}

// New creates a new roster service.
func New(repo repository.Repository, eventBus events.Bus, region string, log *logger.Logger) *Service {
	if region == "" {
		region = phone.DefaultRegion
	}
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		region:   region,
		intn:     rand.IntN,
		log:      log,
	}
}

// SetSponsorAssigner wires the lineage module. It is set after construction
// because lineage depends on the roster for lookups.
func (s *Service) SetSponsorAssigner(assigner SponsorAssigner) {
	s.sponsors = assigner
}

// Register activates a membership and issues a unique referral code. When a
// sponsor referral code is supplied the new distributor is attached to that
// sponsor through the lineage module.
func (s *Service) Register(ctx context.Context, req transport.RegisterDistributorRequest) (transport.DistributorResponse, error) {
	tier, err := domain.ParseTier(req.Tier)
	if err != nil {
		return transport.DistributorResponse{}, apperr.Validation(err.Error())
	}
	name := sanitize.Text(req.Name)
	if name == "" {
		return transport.DistributorResponse{}, apperr.Validation("name is required")
	}

	var sponsor *repository.Distributor
	if req.SponsorReferralCode != nil && *req.SponsorReferralCode != "" {
		found, err := s.repo.GetByReferralCode(ctx, *req.SponsorReferralCode)
		if err != nil {
			return transport.DistributorResponse{}, err
		}
		if s.sponsors == nil {
			return transport.DistributorResponse{}, apperr.Internal("sponsor assignment is not configured")
		}
		sponsor = &found
	}

	created, err := s.createWithReferralCode(ctx, repository.CreateParams{
		Name:  name,
		Email: sanitize.Text(req.Email),
		Phone: phone.NormalizeE164(req.Phone, s.region),
		Tier:  string(tier),
	})
	if err != nil {
		return transport.DistributorResponse{}, err
	}

	if sponsor != nil {
		if err := s.sponsors.AssignSponsor(ctx, referralSignupActor, created.ID, sponsor.ID, referralSignupNote); err != nil {
			s.discardRegistration(ctx, created.ID)
			return transport.DistributorResponse{}, err
		}
		created.SponsorID = &sponsor.ID
		created.IsOrganicLead = false
	}

	s.log.Info("distributor registered", "distributorId", created.ID, "tier", created.Tier, "referralCode", created.ReferralCode)
	s.eventBus.Publish(ctx, events.DistributorRegistered{
		BaseEvent:     events.NewBaseEvent(),
		DistributorID: created.ID,
		Name:          created.Name,
		Tier:          created.Tier,
		ReferralCode:  created.ReferralCode,
		SponsorID:     created.SponsorID,
	})

	resp := toResponse(created)
	if sponsor != nil {
		resp.Sponsor = &transport.SponsorSummary{ID: sponsor.ID, Name: sponsor.Name, ReferralCode: sponsor.ReferralCode}
	}
	return resp, nil
}

// discardRegistration removes a distributor whose sponsor edge could not be
// applied so a retried signup does not leave a second row behind.
func (s *Service) discardRegistration(ctx context.Context, id uuid.UUID) {
	if err := s.repo.DeleteUnattached(context.WithoutCancel(ctx), id); err != nil {
		s.log.Error("failed to discard registration after sponsor assignment failure", "distributorId", id, "error", err)
	}
}

func (s *Service) createWithReferralCode(ctx context.Context, params repository.CreateParams) (repository.Distributor, error) {
	for attempt := 0; attempt < maxReferralAttempts; attempt++ {
		params.ReferralCode = domain.ReferralCode(params.Name, s.intn)
		created, err := s.repo.Create(ctx, params)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repository.ErrReferralCodeTaken) {
			return repository.Distributor{}, err
		}
		s.log.Debug("referral code collision", "code", params.ReferralCode, "attempt", attempt+1)
	}
	return repository.Distributor{}, apperr.Conflict("could not issue a unique referral code")
}

// Get retrieves a distributor by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.DistributorResponse, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.DistributorResponse{}, err
	}
	return toResponse(d), nil
}

// UpdateProfile edits a distributor's name and phone.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req transport.UpdateProfileRequest) (transport.DistributorResponse, error) {
	var params repository.UpdateProfileParams
	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		if name == "" {
			return transport.DistributorResponse{}, apperr.Validation("name must not be blank")
		}
		params.Name = &name
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone, s.region)
		if normalized == "" {
			return transport.DistributorResponse{}, apperr.Validation("phone must not be blank")
		}
		params.Phone = &normalized
	}
	if params.Name == nil && params.Phone == nil {
		return transport.DistributorResponse{}, apperr.Validation("name or phone is required")
	}

	d, err := s.repo.UpdateProfile(ctx, id, params)
	if err != nil {
		return transport.DistributorResponse{}, err
	}
	s.log.Info("distributor profile updated", "distributorId", id)
	return toResponse(d), nil
}

// LookupReferral resolves a referral code to its public owner summary.
func (s *Service) LookupReferral(ctx context.Context, code string) (transport.ReferralLookupResponse, error) {
	d, err := s.repo.GetByReferralCode(ctx, code)
	if err != nil {
		return transport.ReferralLookupResponse{}, err
	}
	return transport.ReferralLookupResponse{ReferralCode: d.ReferralCode, Name: d.Name, Tier: d.Tier}, nil
}

// List retrieves every distributor with its sponsor, newest first.
func (s *Service) List(ctx context.Context) (transport.DistributorListResponse, error) {
	items, err := s.repo.ListWithSponsor(ctx)
	if err != nil {
		return transport.DistributorListResponse{}, err
	}

	resp := transport.DistributorListResponse{
		Items: make([]transport.DistributorResponse, 0, len(items)),
		Total: len(items),
	}
	for _, item := range items {
		r := toResponse(item.Distributor)
		if item.Sponsor != nil {
			r.Sponsor = &transport.SponsorSummary{
				ID:           item.Sponsor.ID,
				Name:         item.Sponsor.Name,
				ReferralCode: item.Sponsor.ReferralCode,
			}
		}
		resp.Items = append(resp.Items, r)
	}
	return resp, nil
}

func toResponse(d repository.Distributor) transport.DistributorResponse {
	return transport.DistributorResponse{
		ID:            d.ID,
		Name:          d.Name,
		Email:         d.Email,
		Phone:         d.Phone,
		Tier:          d.Tier,
		ReferralCode:  d.ReferralCode,
		SponsorID:     d.SponsorID,
		IsOrganicLead: d.IsOrganicLead,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
	}
}
