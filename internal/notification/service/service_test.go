package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"koppara_backend/internal/events"
	"koppara_backend/internal/notification/domain"
	"koppara_backend/internal/notification/repository"
	"koppara_backend/internal/notification/transport"
	"koppara_backend/platform/apperr"
	"koppara_backend/platform/logger"
)

type fakeRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]repository.Notification
	order []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]repository.Notification{}}
}

func (f *fakeRepo) Create(_ context.Context, p repository.CreateParams) (repository.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := repository.Notification{
		ID:                  uuid.New(),
		Title:               p.Title,
		Body:                p.Body,
		Category:            p.Category,
		TargetTier:          p.TargetTier,
		TargetDistributorID: p.TargetDistributorID,
		CreatedAt:           time.Now(),
	}
	f.items[n.ID] = n
	f.order = append(f.order, n.ID)
	return n, nil
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (repository.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.items[id]
	if !ok {
		return repository.Notification{}, apperr.NotFound("notification not found")
	}
	return n, nil
}

func (f *fakeRepo) ListFeed(_ context.Context, distributorID uuid.UUID, tier string, limit int) ([]repository.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Notification
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		n := f.items[f.order[i]]
		target := domain.Target{Tier: domain.TargetTier(n.TargetTier), DistributorID: n.TargetDistributorID}
		if target.Matches(distributorID, tier) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkDispatched(_ context.Context, id uuid.UUID, recipients int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.items[id]
	if n.DispatchedAt != nil {
		return nil
	}
	n.RecipientCount = recipients
	n.DispatchedAt = &at
	f.items[id] = n
	return nil
}

type member struct {
	id   uuid.UUID
	tier string
}

type fakeDirectory struct {
	members []member
}

func (f *fakeDirectory) ListRecipients(_ context.Context, tier string, distributorID *uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, m := range f.members {
		if tier != "all" && m.tier != tier {
			continue
		}
		if distributorID != nil && *distributorID != m.id {
			continue
		}
		out = append(out, m.id)
	}
	return out, nil
}

func (f *fakeDirectory) TierOf(_ context.Context, id uuid.UUID) (string, error) {
	for _, m := range f.members {
		if m.id == id {
			return m.tier, nil
		}
	}
	return "", apperr.NotFound("distributor not found")
}

type fakeScheduler struct {
	scheduled []uuid.UUID
	err       error
}

func (f *fakeScheduler) ScheduleNotificationDispatch(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.scheduled = append(f.scheduled, id)
	return nil
}

func newDirectory() (*fakeDirectory, []uuid.UUID) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	return &fakeDirectory{members: []member{
		{ids[0], "basic"},
		{ids[1], "luxury"},
		{ids[2], "elite"},
		{ids[3], "elite"},
	}}, ids
}

func TestResolveRecipients(t *testing.T) {
	dir, ids := newDirectory()
	svc := New(newFakeRepo(), dir, nil, logger.New("test"))
	ctx := context.Background()

	all, _ := svc.ResolveRecipients(ctx, domain.TargetAll, nil)
	if len(all) != 4 {
		t.Fatalf("expected 4 recipients, got %d", len(all))
	}
	elite, _ := svc.ResolveRecipients(ctx, domain.TargetElite, nil)
	if len(elite) != 2 {
		t.Fatalf("expected 2 elite recipients, got %d", len(elite))
	}
	one, _ := svc.ResolveRecipients(ctx, domain.TargetAll, &ids[1])
	if len(one) != 1 || one[0] != ids[1] {
		t.Fatalf("expected only the target, got %v", one)
	}
	none, _ := svc.ResolveRecipients(ctx, domain.TargetElite, &ids[1])
	if len(none) != 0 {
		t.Fatalf("tier and target must both match, got %v", none)
	}
}

func TestEnqueueSchedulesDispatch(t *testing.T) {
	dir, _ := newDirectory()
	repo := newFakeRepo()
	sched := &fakeScheduler{}
	svc := New(repo, dir, sched, logger.New("test"))

	resp, err := svc.Enqueue(context.Background(), transport.CreateNotificationRequest{
		Title:      "<b>New serum</b>",
		Body:       "Available today",
		Category:   "launch",
		TargetTier: "elite",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "New serum" {
		t.Fatalf("expected sanitized title, got %q", resp.Title)
	}
	if len(sched.scheduled) != 1 || sched.scheduled[0] != resp.ID {
		t.Fatalf("expected dispatch to be scheduled, got %v", sched.scheduled)
	}
	if resp.DispatchedAt != nil {
		t.Fatalf("scheduled notification must not be dispatched yet")
	}

	count, err := svc.Dispatch(context.Background(), resp.ID)
	if err != nil || count != 2 {
		t.Fatalf("expected 2 recipients, got %d %v", count, err)
	}
	again, err := svc.Dispatch(context.Background(), resp.ID)
	if err != nil || again != 2 {
		t.Fatalf("redispatch should return the recorded count, got %d %v", again, err)
	}
}

func TestEnqueueFallsBackToInlineDispatch(t *testing.T) {
	dir, _ := newDirectory()
	repo := newFakeRepo()
	svc := New(repo, dir, &fakeScheduler{err: errors.New("redis down")}, logger.New("test"))

	resp, err := svc.Enqueue(context.Background(), transport.CreateNotificationRequest{
		Title:    "Outage",
		Body:     "Orders are delayed",
		Category: "urgent",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.RecipientCount != 4 || resp.TargetTier != "all" {
		t.Fatalf("expected inline broadcast to 4, got %+v", resp)
	}
	if repo.items[resp.ID].DispatchedAt == nil {
		t.Fatalf("expected notification to be marked dispatched")
	}
}

func TestEnqueueValidation(t *testing.T) {
	dir, _ := newDirectory()
	svc := New(newFakeRepo(), dir, nil, logger.New("test"))

	cases := []transport.CreateNotificationRequest{
		{Title: "x", Body: "y", Category: "spam"},
		{Title: "x", Body: "y", Category: "urgent", TargetTier: "gold"},
		{Title: "<p></p>", Body: "y", Category: "urgent"},
	}
	for _, req := range cases {
		if _, err := svc.Enqueue(context.Background(), req); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestEnqueueUnknownTargetDistributor(t *testing.T) {
	dir, _ := newDirectory()
	repo := newFakeRepo()
	sched := &fakeScheduler{}
	svc := New(repo, dir, sched, logger.New("test"))

	missing := uuid.New()
	_, err := svc.Enqueue(context.Background(), transport.CreateNotificationRequest{
		Title:               "Hello",
		Body:                "Welcome",
		Category:            "urgent",
		TargetDistributorID: &missing,
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(repo.order) != 0 || len(sched.scheduled) != 0 {
		t.Fatalf("nothing may be stored or scheduled for an unknown target")
	}
}

func TestListFeed(t *testing.T) {
	dir, ids := newDirectory()
	svc := New(newFakeRepo(), dir, nil, logger.New("test"))
	ctx := context.Background()

	mustEnqueue := func(req transport.CreateNotificationRequest) {
		t.Helper()
		if _, err := svc.Enqueue(ctx, req); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	mustEnqueue(transport.CreateNotificationRequest{Title: "all", Body: "b", Category: "promotion"})
	mustEnqueue(transport.CreateNotificationRequest{Title: "elite", Body: "b", Category: "promotion", TargetTier: "elite"})
	mustEnqueue(transport.CreateNotificationRequest{Title: "basic", Body: "b", Category: "promotion", TargetTier: "basic"})
	mustEnqueue(transport.CreateNotificationRequest{Title: "direct", Body: "b", Category: "urgent", TargetDistributorID: &ids[2]})

	feed, err := svc.ListFeed(ctx, ids[2], transport.ListFeedRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var titles []string
	for _, n := range feed.Items {
		titles = append(titles, n.Title)
	}
	sort.Strings(titles)
	want := []string{"all", "direct", "elite"}
	if len(titles) != len(want) {
		t.Fatalf("expected %v, got %v", want, titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, titles)
		}
	}

	other, _ := svc.ListFeed(ctx, ids[3], transport.ListFeedRequest{})
	if len(other.Items) != 2 {
		t.Fatalf("elite peer should see broadcast and elite only, got %d", len(other.Items))
	}

	if _, err := svc.ListFeed(ctx, uuid.New(), transport.ListFeedRequest{}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown distributor, got %v", err)
	}
}

func TestNotifySponsorReassigned(t *testing.T) {
	dir, ids := newDirectory()
	repo := newFakeRepo()
	svc := New(repo, dir, nil, logger.New("test"))

	err := svc.NotifySponsorReassigned(context.Background(), events.SponsorReassigned{
		BaseEvent:     events.NewBaseEvent(),
		DistributorID: ids[0],
		NewSponsorID:  &ids[1],
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.order) != 1 {
		t.Fatalf("expected one notification, got %d", len(repo.order))
	}
	n := repo.items[repo.order[0]]
	if n.Category != "urgent" || n.TargetDistributorID == nil || *n.TargetDistributorID != ids[0] || n.RecipientCount != 1 {
		t.Fatalf("unexpected notification %+v", n)
	}
}
