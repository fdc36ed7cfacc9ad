package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"koppara_backend/internal/leads/domain"
	"koppara_backend/internal/leads/ports"
	"koppara_backend/internal/leads/repository"
	"koppara_backend/internal/leads/transport"
	"koppara_backend/platform/apperr"
	"koppara_backend/platform/logger"
)

type fakeLedger struct {
	owners  map[uuid.UUID]uuid.UUID
	byPhone map[string]uuid.UUID
	touches int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{owners: map[uuid.UUID]uuid.UUID{}, byPhone: map[string]uuid.UUID{}}
}

func (f *fakeLedger) UpsertProspect(_ context.Context, distributorID uuid.UUID, name, phone string) (ports.Prospect, error) {
	f.touches++
	k := distributorID.String() + phone
	if id, ok := f.byPhone[k]; ok {
		return ports.Prospect{ID: id, Name: name, Phone: phone, State: "interested"}, nil
	}
	id := uuid.New()
	f.byPhone[k] = id
	f.owners[id] = distributorID
	return ports.Prospect{ID: id, Name: name, Phone: phone, State: "interested", Created: true}, nil
}

func (f *fakeLedger) Owns(_ context.Context, distributorID, prospectID uuid.UUID) (bool, error) {
	return f.owners[prospectID] == distributorID, nil
}

type fakeRepo struct {
	leads []repository.Lead
	err   error
}

func (f *fakeRepo) Record(_ context.Context, params repository.RecordParams) (repository.Lead, error) {
	if f.err != nil {
		return repository.Lead{}, f.err
	}
	l := repository.Lead{
		ID:            uuid.New(),
		DistributorID: params.DistributorID,
		ProspectID:    params.ProspectID,
		LineItems:     params.LineItems,
		AmountCents:   params.AmountCents,
		CreatedAt:     params.At,
	}
	f.leads = append(f.leads, l)
	return l, nil
}

func (f *fakeRepo) ListByDistributor(_ context.Context, distributorID uuid.UUID, limit, offset int) ([]repository.Lead, int, error) {
	var out []repository.Lead
	for i := len(f.leads) - 1; i >= 0; i-- {
		if f.leads[i].DistributorID == distributorID {
			out = append(out, f.leads[i])
		}
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	return out[offset:min(offset+limit, total)], total, nil
}

func (f *fakeRepo) ListAll(context.Context) ([]repository.Lead, error) { return f.leads, nil }

func newTestService() (*Service, *fakeLedger, *fakeRepo) {
	ledger := newFakeLedger()
	repo := &fakeRepo{}
	svc := New(repo, ledger, logger.New("test"))
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, ledger, repo
}

func TestShareQuoteCreatesProspectAndLead(t *testing.T) {
	svc, _, repo := newTestService()
	dist := uuid.New()

	resp, err := svc.ShareQuote(context.Background(), dist, transport.ShareQuoteRequest{
		CustomerName: "Ana",
		Phone:        "5559876543",
		LineItems:    []transport.LineItemRequest{{ProductName: "CremaFacial", Quantity: 2}},
		AmountCents:  70000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.ProspectCreated || resp.ProspectState != "interested" {
		t.Fatalf("expected a new interested prospect, got %+v", resp)
	}
	if len(repo.leads) != 1 || repo.leads[0].AmountCents != 70000 || repo.leads[0].ProspectID != resp.ProspectID {
		t.Fatalf("unexpected stored leads %+v", repo.leads)
	}

	again, err := svc.ShareQuote(context.Background(), dist, transport.ShareQuoteRequest{
		CustomerName: "Ana",
		Phone:        "5559876543",
		LineItems:    []transport.LineItemRequest{{ProductName: "Serum"}},
		AmountCents:  25000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ProspectCreated || again.ProspectID != resp.ProspectID {
		t.Fatalf("repeat quote must reuse the prospect")
	}
	if got := repo.leads[1].LineItems[0].Quantity; got != 1 {
		t.Fatalf("missing quantity must count as 1, got %d", got)
	}
}

func TestRecordLeadRejectsForeignProspect(t *testing.T) {
	svc, ledger, repo := newTestService()
	owner := uuid.New()
	p, _ := ledger.UpsertProspect(context.Background(), owner, "Ana", "5551234567")

	_, err := svc.RecordLead(context.Background(), uuid.New(), p.ID, []domain.LineItem{{ProductName: "Serum", Quantity: 1}}, 100)
	if !errors.Is(err, domain.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
	if apperr.GetCode(err) != apperr.CodeForeignKeyViolation {
		t.Fatalf("expected foreign_key_violation code, got %q", apperr.GetCode(err))
	}
	if len(repo.leads) != 0 {
		t.Fatalf("rejected lead must not be stored")
	}

	if _, err := svc.RecordLead(context.Background(), owner, uuid.New(), []domain.LineItem{{ProductName: "Serum"}}, 100); !errors.Is(err, domain.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation for unknown prospect, got %v", err)
	}
}

func TestRecordLeadValidation(t *testing.T) {
	svc, ledger, _ := newTestService()
	dist := uuid.New()
	p, _ := ledger.UpsertProspect(context.Background(), dist, "Ana", "5551234567")

	if _, err := svc.RecordLead(context.Background(), dist, p.ID, nil, 100); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}
	if _, err := svc.RecordLead(context.Background(), dist, p.ID, []domain.LineItem{{ProductName: "Serum"}}, -1); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for negative amount, got %v", err)
	}
}

func TestShareQuoteValidatesBeforeTouchingProspect(t *testing.T) {
	cases := []struct {
		name   string
		items  []transport.LineItemRequest
		amount int64
	}{
		{name: "blank product", items: []transport.LineItemRequest{{ProductName: " "}}},
		{name: "no items"},
		{name: "negative amount", items: []transport.LineItemRequest{{ProductName: "Serum"}}, amount: -5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, ledger, repo := newTestService()
			_, err := svc.ShareQuote(context.Background(), uuid.New(), transport.ShareQuoteRequest{
				CustomerName: "Ana",
				Phone:        "5551234567",
				LineItems:    tc.items,
				AmountCents:  tc.amount,
			})
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ledger.touches != 0 || len(repo.leads) != 0 {
				t.Fatalf("invalid quotes must not touch the prospect ledger, touches=%d", ledger.touches)
			}
		})
	}
}

type fakeCatalog map[string]bool

func (f fakeCatalog) IsPublished(_ context.Context, name string) (bool, error) {
	return f[name], nil
}

func TestShareQuoteRejectsUnpublishedProduct(t *testing.T) {
	svc, ledger, repo := newTestService()
	svc.SetProductCatalog(fakeCatalog{"CremaFacial": true})

	_, err := svc.ShareQuote(context.Background(), uuid.New(), transport.ShareQuoteRequest{
		CustomerName: "Ana",
		Phone:        "5551234567",
		LineItems:    []transport.LineItemRequest{{ProductName: "CremaFacial", Quantity: 1}, {ProductName: "Retired", Quantity: 1}},
		AmountCents:  1000,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ledger.touches != 0 || len(repo.leads) != 0 {
		t.Fatalf("rejected quotes must not be recorded")
	}

	if _, err := svc.ShareQuote(context.Background(), uuid.New(), transport.ShareQuoteRequest{
		CustomerName: "Ana",
		Phone:        "5551234567",
		LineItems:    []transport.LineItemRequest{{ProductName: "CremaFacial", Quantity: 2}},
		AmountCents:  70000,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestShareQuoteChecksTrimmedProductNames(t *testing.T) {
	svc, _, repo := newTestService()
	svc.SetProductCatalog(fakeCatalog{"CremaFacial": true})

	if _, err := svc.ShareQuote(context.Background(), uuid.New(), transport.ShareQuoteRequest{
		CustomerName: "Ana",
		Phone:        "5551234567",
		LineItems:    []transport.LineItemRequest{{ProductName: " CremaFacial ", Quantity: 1}},
		AmountCents:  35000,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.leads) != 1 || repo.leads[0].LineItems[0].ProductName != "CremaFacial" {
		t.Fatalf("expected trimmed product name to be stored, got %+v", repo.leads)
	}
}

func TestRecordLeadPropagatesStorageFailure(t *testing.T) {
	svc, ledger, repo := newTestService()
	dist := uuid.New()
	p, _ := ledger.UpsertProspect(context.Background(), dist, "Ana", "5551234567")
	repo.err = apperr.StorageFailure("leads.repository.record", errors.New("down"))

	_, err := svc.RecordLead(context.Background(), dist, p.ID, []domain.LineItem{{ProductName: "Serum"}}, 100)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected storage failure, got %v", err)
	}
}

func TestListByDistributorPaging(t *testing.T) {
	svc, ledger, _ := newTestService()
	dist := uuid.New()
	p, _ := ledger.UpsertProspect(context.Background(), dist, "Ana", "5551234567")
	for i := 0; i < 3; i++ {
		if _, err := svc.RecordLead(context.Background(), dist, p.ID, []domain.LineItem{{ProductName: "Serum"}}, int64(i)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	resp, err := svc.ListByDistributor(context.Background(), dist, transport.ListLeadsRequest{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 3 || resp.TotalPages != 2 || len(resp.Items) != 1 {
		t.Fatalf("unexpected page %+v", resp)
	}
	if resp.Items[0].AmountCents != 0 {
		t.Fatalf("expected oldest lead on the last page, got %d", resp.Items[0].AmountCents)
	}
}
