package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"koppara_backend/internal/leads/domain"
	"koppara_backend/internal/leads/ports"
	"koppara_backend/internal/leads/repository"
	"koppara_backend/internal/leads/transport"
	"koppara_backend/platform/apperr"
	"koppara_backend/platform/logger"
)

// Service is the lead history.
type Service struct {
	repo      repository.Repository
	prospects ports.ProspectLedger
	catalog   ports.ProductCatalog
	now       func() time.Time
	log       *logger.Logger
}

// New creates a new lead history service.
func New(repo repository.Repository, prospects ports.ProspectLedger, log *logger.Logger) *Service {
	return &Service{repo: repo, prospects: prospects, now: time.Now, log: log}
}

// SetProductCatalog enables the published-product check on shared quotes.
func (s *Service) SetProductCatalog(catalog ports.ProductCatalog) {
	s.catalog = catalog
}

// RecordLead appends a shared quote for a prospect the distributor owns and
// refreshes the prospect's last interaction.
func (s *Service) RecordLead(ctx context.Context, distributorID, prospectID uuid.UUID, items []domain.LineItem, amountCents int64) (repository.Lead, error) {
	normalized, err := validateLead(items, amountCents)
	if err != nil {
		return repository.Lead{}, err
	}

	owns, err := s.prospects.Owns(ctx, distributorID, prospectID)
	if err != nil {
		return repository.Lead{}, err
	}
	if !owns {
		return repository.Lead{}, domain.ForeignKeyViolation()
	}

	lead, err := s.repo.Record(ctx, repository.RecordParams{
		DistributorID: distributorID,
		ProspectID:    prospectID,
		LineItems:     normalized,
		AmountCents:   amountCents,
		At:            s.now(),
	})
	if err != nil {
		return repository.Lead{}, err
	}
	s.log.Info("lead recorded", "leadId", lead.ID, "distributorId", distributorID, "prospectId", prospectID, "items", len(normalized))
	return lead, nil
}

// ShareQuote gets or creates the customer's prospect and records the quote
// against it.
func (s *Service) ShareQuote(ctx context.Context, distributorID uuid.UUID, req transport.ShareQuoteRequest) (transport.ShareQuoteResponse, error) {
	items := make([]domain.LineItem, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		items = append(items, domain.LineItem{ProductName: item.ProductName, Quantity: item.Quantity})
	}
	normalized, err := validateLead(items, req.AmountCents)
	if err != nil {
		return transport.ShareQuoteResponse{}, err
	}
	if err := s.checkPublished(ctx, normalized); err != nil {
		return transport.ShareQuoteResponse{}, err
	}

	prospect, err := s.prospects.UpsertProspect(ctx, distributorID, req.CustomerName, req.Phone)
	if err != nil {
		return transport.ShareQuoteResponse{}, err
	}

	lead, err := s.RecordLead(ctx, distributorID, prospect.ID, normalized, req.AmountCents)
	if err != nil {
		return transport.ShareQuoteResponse{}, err
	}

	return transport.ShareQuoteResponse{
		Lead:            ToResponse(lead),
		ProspectID:      prospect.ID,
		ProspectState:   prospect.State,
		ProspectCreated: prospect.Created,
	}, nil
}

func validateLead(items []domain.LineItem, amountCents int64) ([]domain.LineItem, error) {
	normalized, err := domain.NormalizeLineItems(items)
	if err != nil {
		return nil, err
	}
	if amountCents < 0 {
		return nil, apperr.Validation("amount must not be negative")
	}
	return normalized, nil
}

func (s *Service) checkPublished(ctx context.Context, items []domain.LineItem) error {
	if s.catalog == nil {
		return nil
	}
	for _, item := range items {
		ok, err := s.catalog.IsPublished(ctx, item.ProductName)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Validation(fmt.Sprintf("product %q is not published", item.ProductName))
		}
	}
	return nil
}

// ListByDistributor returns a page of the distributor's leads, newest first.
func (s *Service) ListByDistributor(ctx context.Context, distributorID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.repo.ListByDistributor(ctx, distributorID, pageSize, (page-1)*pageSize)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	resp := transport.LeadListResponse{
		Items:      make([]transport.LeadResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, l := range items {
		resp.Items = append(resp.Items, ToResponse(l))
	}
	return resp, nil
}

// ListAll returns every lead for reporting.
func (s *Service) ListAll(ctx context.Context) ([]repository.Lead, error) {
	return s.repo.ListAll(ctx)
}

// ToResponse converts a lead for API output.
func ToResponse(l repository.Lead) transport.LeadResponse {
	items := make([]transport.LineItemResponse, 0, len(l.LineItems))
	for _, item := range l.LineItems {
		items = append(items, transport.LineItemResponse{ProductName: item.ProductName, Quantity: item.Quantity})
	}
	return transport.LeadResponse{
		ID:          l.ID,
		ProspectID:  l.ProspectID,
		LineItems:   items,
		AmountCents: l.AmountCents,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
}
