package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"koppara_backend/internal/events"
	"koppara_backend/internal/notification/domain"
	"koppara_backend/internal/notification/ports"
	"koppara_backend/internal/notification/repository"
	"koppara_backend/internal/notification/transport"
	"koppara_backend/platform/apperr"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/sanitize"
)

const defaultFeedLimit = 50

// Service routes notifications to their audience.
type Service struct {
	repo      repository.Repository
	directory ports.RecipientDirectory
	scheduler ports.DispatchScheduler
	log       *logger.Logger
	now       func() time.Time
}

// New creates a notification service. A nil scheduler dispatches inline.
func New(repo repository.Repository, directory ports.RecipientDirectory, scheduler ports.DispatchScheduler, log *logger.Logger) *Service {
	return &Service{repo: repo, directory: directory, scheduler: scheduler, log: log, now: time.Now}
}

// Enqueue persists a notification and hands it to the dispatch queue.
func (s *Service) Enqueue(ctx context.Context, req transport.CreateNotificationRequest) (transport.NotificationResponse, error) {
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return transport.NotificationResponse{}, err
	}
	tier, err := domain.ParseTargetTier(req.TargetTier)
	if err != nil {
		return transport.NotificationResponse{}, err
	}
	title := sanitize.Text(req.Title)
	body := sanitize.Body(req.Body)
	if title == "" || body == "" {
		return transport.NotificationResponse{}, apperr.Validation("title and body are required")
	}
	if req.TargetDistributorID != nil {
		if _, err := s.directory.TierOf(ctx, *req.TargetDistributorID); err != nil {
			return transport.NotificationResponse{}, err
		}
	}

	n, err := s.repo.Create(ctx, repository.CreateParams{
		Title:               title,
		Body:                body,
		Category:            string(category),
		TargetTier:          string(tier),
		TargetDistributorID: req.TargetDistributorID,
	})
	if err != nil {
		return transport.NotificationResponse{}, err
	}

	if s.scheduler != nil {
		err := s.scheduler.ScheduleNotificationDispatch(ctx, n.ID)
		if err == nil {
			return ToResponse(n), nil
		}
		s.log.Error("failed to schedule notification dispatch, dispatching inline", "notificationId", n.ID, "error", err)
	}

	count, err := s.Dispatch(ctx, n.ID)
	if err != nil {
		return transport.NotificationResponse{}, err
	}
	n.RecipientCount = count
	return ToResponse(n), nil
}

// Dispatch resolves the audience of a stored notification and marks it
// dispatched. Repeated calls return the recorded count.
func (s *Service) Dispatch(ctx context.Context, id uuid.UUID) (int, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if n.DispatchedAt != nil {
		return n.RecipientCount, nil
	}

	recipients, err := s.ResolveRecipients(ctx, domain.TargetTier(n.TargetTier), n.TargetDistributorID)
	if err != nil {
		return 0, err
	}
	if err := s.repo.MarkDispatched(ctx, id, len(recipients), s.now()); err != nil {
		return 0, err
	}

	s.log.Info("notification dispatched",
		"notificationId", id,
		"category", n.Category,
		"targetTier", n.TargetTier,
		"recipients", len(recipients),
	)
	return len(recipients), nil
}

// ResolveRecipients lists the distributors a notification reaches.
func (s *Service) ResolveRecipients(ctx context.Context, tier domain.TargetTier, distributorID *uuid.UUID) ([]uuid.UUID, error) {
	if tier == "" {
		tier = domain.TargetAll
	}
	return s.directory.ListRecipients(ctx, string(tier), distributorID)
}

// ListFeed returns the notifications addressed to a distributor.
func (s *Service) ListFeed(ctx context.Context, distributorID uuid.UUID, req transport.ListFeedRequest) (transport.FeedResponse, error) {
	tier, err := s.directory.TierOf(ctx, distributorID)
	if err != nil {
		return transport.FeedResponse{}, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	items, err := s.repo.ListFeed(ctx, distributorID, tier, limit)
	if err != nil {
		return transport.FeedResponse{}, err
	}
	resp := transport.FeedResponse{Items: make([]transport.NotificationResponse, 0, len(items))}
	for _, n := range items {
		resp.Items = append(resp.Items, ToResponse(n))
	}
	return resp, nil
}

// NotifySponsorReassigned tells a distributor their upline changed.
func (s *Service) NotifySponsorReassigned(ctx context.Context, e events.SponsorReassigned) error {
	body := "Your sponsor has been removed. You are now at the top of your line."
	if e.NewSponsorID != nil {
		body = fmt.Sprintf("Your sponsor has been changed to %s.", e.NewSponsorID)
	}
	target := e.DistributorID
	_, err := s.Enqueue(ctx, transport.CreateNotificationRequest{
		Title:               "Sponsor updated",
		Body:                body,
		Category:            string(domain.CategoryUrgent),
		TargetTier:          string(domain.TargetAll),
		TargetDistributorID: &target,
	})
	return err
}

// NotifyDistributorRegistered welcomes a new distributor.
func (s *Service) NotifyDistributorRegistered(ctx context.Context, e events.DistributorRegistered) error {
	target := e.DistributorID
	_, err := s.Enqueue(ctx, transport.CreateNotificationRequest{
		Title:               "Welcome to the network",
		Body:                fmt.Sprintf("Hi %s, share your referral code %s to grow your team.", e.Name, e.ReferralCode),
		Category:            string(domain.CategoryLaunch),
		TargetTier:          string(domain.TargetAll),
		TargetDistributorID: &target,
	})
	return err
}

// ToResponse converts a stored notification for API output.
func ToResponse(n repository.Notification) transport.NotificationResponse {
	return transport.NotificationResponse{
		ID:                  n.ID,
		Title:               n.Title,
		Body:                n.Body,
		Category:            n.Category,
		TargetTier:          n.TargetTier,
		TargetDistributorID: n.TargetDistributorID,
		RecipientCount:      n.RecipientCount,
		DispatchedAt:        n.DispatchedAt,
		CreatedAt:           n.CreatedAt,
	}
}
