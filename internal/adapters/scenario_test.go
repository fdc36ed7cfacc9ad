package adapters

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	analyticsservice "koppara_backend/internal/analytics/service"
	"koppara_backend/internal/events"
	leadsrepo "koppara_backend/internal/leads/repository"
	leadsservice "koppara_backend/internal/leads/service"
	leadstransport "koppara_backend/internal/leads/transport"
	lineagedomain "koppara_backend/internal/lineage/domain"
	lineagerepo "koppara_backend/internal/lineage/repository"
	lineageservice "koppara_backend/internal/lineage/service"
	prospectsrepo "koppara_backend/internal/prospects/repository"
	prospectsservice "koppara_backend/internal/prospects/service"
	rosterrepo "koppara_backend/internal/roster/repository"
	"koppara_backend/platform/apperr"
	"koppara_backend/platform/logger"

	"github.com/google/uuid"
)

// memRoster is a read-only roster.
type memRoster struct {
	rows []rosterrepo.Distributor
}

func (m *memRoster) GetByID(_ context.Context, id uuid.UUID) (rosterrepo.Distributor, error) {
	for _, d := range m.rows {
		if d.ID == id {
			return d, nil
		}
	}
	return rosterrepo.Distributor{}, apperr.NotFound("distributor not found")
}

func (m *memRoster) GetByReferralCode(_ context.Context, code string) (rosterrepo.Distributor, error) {
	for _, d := range m.rows {
		if d.ReferralCode == code {
			return d, nil
		}
	}
	return rosterrepo.Distributor{}, apperr.NotFound("distributor not found")
}

func (m *memRoster) List(context.Context) ([]rosterrepo.Distributor, error) { return m.rows, nil }

func (m *memRoster) ListWithSponsor(context.Context) ([]rosterrepo.DistributorWithSponsor, error) {
	out := make([]rosterrepo.DistributorWithSponsor, 0, len(m.rows))
	for _, d := range m.rows {
		out = append(out, rosterrepo.DistributorWithSponsor{Distributor: d})
	}
	return out, nil
}

func (m *memRoster) ListTargeted(_ context.Context, tier string, id *uuid.UUID) ([]rosterrepo.Distributor, error) {
	var out []rosterrepo.Distributor
	for _, d := range m.rows {
		if (tier == "all" || d.Tier == tier) && (id == nil || *id == d.ID) {
			out = append(out, d)
		}
	}
	return out, nil
}

// memProspects mirrors the (distributor_id, phone) unique key.
type memProspects struct {
	mu   sync.Mutex
	rows map[uuid.UUID]prospectsrepo.Prospect
}

func (m *memProspects) Upsert(_ context.Context, p prospectsrepo.UpsertParams) (prospectsrepo.Prospect, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, row := range m.rows {
		if row.DistributorID == p.DistributorID && row.Phone == p.Phone {
			row.Name = p.Name
			if p.At.After(row.LastInteractionAt) {
				row.LastInteractionAt = p.At
			}
			m.rows[id] = row
			return row, false, nil
		}
	}
	row := prospectsrepo.Prospect{ID: uuid.New(), DistributorID: p.DistributorID, Phone: p.Phone, Name: p.Name, State: "interested", LastInteractionAt: p.At, CreatedAt: p.At}
	m.rows[row.ID] = row
	return row, true, nil
}

func (m *memProspects) Get(_ context.Context, distributorID, id uuid.UUID) (prospectsrepo.Prospect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.DistributorID != distributorID {
		return prospectsrepo.Prospect{}, apperr.NotFound("prospect not found")
	}
	return row, nil
}

func (m *memProspects) UpdateState(_ context.Context, distributorID, id uuid.UUID, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.DistributorID != distributorID || row.State != from {
		return false, nil
	}
	row.State = to
	m.rows[id] = row
	return true, nil
}

func (m *memProspects) Touch(_ context.Context, distributorID, id uuid.UUID, at time.Time) (prospectsrepo.Prospect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.DistributorID != distributorID {
		return prospectsrepo.Prospect{}, apperr.NotFound("prospect not found")
	}
	if at.After(row.LastInteractionAt) {
		row.LastInteractionAt = at
	}
	m.rows[id] = row
	return row, nil
}

func (m *memProspects) ListByDistributor(_ context.Context, distributorID uuid.UUID) ([]prospectsrepo.Prospect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []prospectsrepo.Prospect
	for _, row := range m.rows {
		if row.DistributorID == distributorID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memProspects) ListAll(context.Context) ([]prospectsrepo.Prospect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]prospectsrepo.Prospect, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

func (m *memProspects) Owns(_ context.Context, distributorID, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	return ok && row.DistributorID == distributorID, nil
}

// memLeads appends leads and touches the prospect like the SQL repository.
type memLeads struct {
	prospects *memProspects
	rows      []leadsrepo.Lead
}

func (m *memLeads) Record(ctx context.Context, p leadsrepo.RecordParams) (leadsrepo.Lead, error) {
	if _, err := m.prospects.Touch(ctx, p.DistributorID, p.ProspectID, p.At); err != nil {
		return leadsrepo.Lead{}, err
	}
	l := leadsrepo.Lead{ID: uuid.New(), DistributorID: p.DistributorID, ProspectID: p.ProspectID, LineItems: p.LineItems, AmountCents: p.AmountCents, CreatedAt: p.At}
	m.rows = append(m.rows, l)
	return l, nil
}

func (m *memLeads) ListByDistributor(_ context.Context, distributorID uuid.UUID, limit, offset int) ([]leadsrepo.Lead, int, error) {
	var out []leadsrepo.Lead
	for _, l := range m.rows {
		if l.DistributorID == distributorID {
			out = append(out, l)
		}
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	return out[offset:min(offset+limit, total)], total, nil
}

func (m *memLeads) ListAll(context.Context) ([]leadsrepo.Lead, error) { return m.rows, nil }

// memGraph is a sponsor graph whose transactions apply on commit.
type memGraph struct {
	mu    sync.Mutex
	nodes map[uuid.UUID]lineagerepo.Node
	audit []lineagerepo.AuditEntry
}

type memGraphTx struct {
	nodes map[uuid.UUID]lineagerepo.Node
	audit []lineagerepo.AuditEntry
}

func (g *memGraph) WithinTx(_ context.Context, fn func(tx lineagerepo.MutationTx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	tx := &memGraphTx{nodes: make(map[uuid.UUID]lineagerepo.Node, len(g.nodes))}
	for id, n := range g.nodes {
		tx.nodes[id] = n
	}
	if err := fn(tx); err != nil {
		return err
	}
	g.nodes = tx.nodes
	g.audit = append(g.audit, tx.audit...)
	return nil
}

func (g *memGraph) GetNode(_ context.Context, id uuid.UUID) (lineagerepo.Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return lineagerepo.Node{}, apperr.NotFound("distributor not found")
	}
	return n, nil
}

func (g *memGraph) ListChildren(_ context.Context, id uuid.UUID) ([]lineagerepo.Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []lineagerepo.Node
	for _, n := range g.nodes {
		if n.SponsorID != nil && *n.SponsorID == id {
			out = append(out, n)
		}
	}
	return out, nil
}

func (g *memGraph) CountNodes(context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes), nil
}

func (g *memGraph) ListEdges(context.Context) ([]lineagedomain.Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]lineagedomain.Edge, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, lineagedomain.Edge{ID: n.ID, SponsorID: n.SponsorID})
	}
	return out, nil
}

func (g *memGraph) ListAudit(_ context.Context, _ lineagerepo.AuditFilter) ([]lineagerepo.AuditEntry, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.audit, len(g.audit), nil
}

func (tx *memGraphTx) LockGraph(context.Context) error { return nil }

func (tx *memGraphTx) LockNode(ctx context.Context, id uuid.UUID) (lineagerepo.Node, error) {
	return tx.GetNode(ctx, id)
}

func (tx *memGraphTx) GetNode(_ context.Context, id uuid.UUID) (lineagerepo.Node, error) {
	n, ok := tx.nodes[id]
	if !ok {
		return lineagerepo.Node{}, apperr.NotFound("distributor not found")
	}
	return n, nil
}

func (tx *memGraphTx) SponsorOf(_ context.Context, id uuid.UUID) (*uuid.UUID, bool, error) {
	n, ok := tx.nodes[id]
	return n.SponsorID, ok, nil
}

func (tx *memGraphTx) CountNodes(context.Context) (int, error) { return len(tx.nodes), nil }

func (tx *memGraphTx) SetSponsor(_ context.Context, id uuid.UUID, sponsorID *uuid.UUID) error {
	n := tx.nodes[id]
	n.SponsorID = sponsorID
	n.IsOrganicLead = false
	tx.nodes[id] = n
	return nil
}

func (tx *memGraphTx) InsertAudit(_ context.Context, p lineagerepo.InsertAuditParams) (lineagerepo.AuditEntry, error) {
	e := lineagerepo.AuditEntry{ID: uuid.New(), Actor: p.Actor, DistributorID: p.DistributorID, PreviousSponsorID: p.PreviousSponsorID, NewSponsorID: p.NewSponsorID, Reason: p.Reason, CreatedAt: time.Now()}
	tx.audit = append(tx.audit, e)
	return e, nil
}

type publishedSet map[string]bool

func (p publishedSet) IsPublished(_ context.Context, name string) (bool, error) { return p[name], nil }

func (p publishedSet) PublishedNames(context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(p))
	for name, ok := range p {
		if ok {
			out[name] = struct{}{}
		}
	}
	return out, nil
}

func TestSponsorChangeQuoteAndCloseScenario(t *testing.T) {
	ctx := context.Background()
	log := logger.New("test")
	d1, d2 := uuid.New(), uuid.New()

	roster := &memRoster{rows: []rosterrepo.Distributor{
		{ID: d1, Name: "Diana", Tier: "elite", ReferralCode: "DIA-0001"},
		{ID: d2, Name: "Daniela", Tier: "basic", ReferralCode: "DAN-0002"},
	}}
	graph := &memGraph{nodes: map[uuid.UUID]lineagerepo.Node{
		d1: {ID: d1, Name: "Diana", Tier: "elite", IsOrganicLead: true},
		d2: {ID: d2, Name: "Daniela", Tier: "basic", IsOrganicLead: true},
	}}
	prospectStore := &memProspects{rows: map[uuid.UUID]prospectsrepo.Prospect{}}
	leadStore := &memLeads{prospects: prospectStore}
	catalog := publishedSet{"CremaFacial": true}

	lineageSvc := lineageservice.New(graph, events.NewInMemoryBus(log), log)
	prospectsSvc := prospectsservice.New(prospectStore, true, "MX", log)
	leadsSvc := leadsservice.New(leadStore, NewProspectLedgerAdapter(prospectsSvc), log)
	leadsSvc.SetProductCatalog(catalog)
	analyticsSvc := analyticsservice.New(
		NewRosterReportReader(roster),
		NewProspectReportReader(prospectsSvc),
		NewLeadReportReader(leadsSvc),
		NewCatalogReportReader(catalog),
		log,
	)

	// D1 onboards D2.
	entry, err := lineageSvc.ReassignSponsor(ctx, lineageservice.ReassignCommand{Actor: "ops@example.com", DistributorID: d2, NewSponsorID: &d1, Reason: "manual onboarding"})
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if entry.PreviousSponsorID != nil || entry.NewSponsorID == nil || *entry.NewSponsorID != d1 {
		t.Fatalf("unexpected audit entry %+v", entry)
	}
	if audit, total, _ := graph.ListAudit(ctx, lineagerepo.AuditFilter{}); total != 1 || audit[0].Reason != "manual onboarding" {
		t.Fatalf("expected one audit entry, got %d", total)
	}
	if node, _ := graph.GetNode(ctx, d2); node.IsOrganicLead {
		t.Fatalf("expected D2 to lose the organic flag")
	}
	lineage, err := lineageSvc.GetLineage(ctx, d1)
	if err != nil {
		t.Fatalf("lineage: %v", err)
	}
	downline, err := lineageservice.CollectLineage(lineage, 0)
	if err != nil {
		t.Fatalf("collect lineage: %v", err)
	}
	if len(downline.Descendants) != 1 || downline.Descendants[0].ID != d2 {
		t.Fatalf("expected D2 under D1, got %+v", downline.Descendants)
	}
	if _, err := lineageSvc.ReassignSponsor(ctx, lineageservice.ReassignCommand{Actor: "ops@example.com", DistributorID: d1, NewSponsorID: &d2, Reason: "swap"}); !errors.Is(err, lineagedomain.ErrCycleDetected) {
		t.Fatalf("expected cycle rejection, got %v", err)
	}

	// D1 shares a quote; ten days later the sale closes.
	shared, err := leadsSvc.ShareQuote(ctx, d1, leadstransport.ShareQuoteRequest{
		CustomerName: "Lucía",
		Phone:        "5559876543",
		LineItems:    []leadstransport.LineItemRequest{{ProductName: "CremaFacial", Quantity: 2}},
		AmountCents:  70000,
	})
	if err != nil {
		t.Fatalf("share quote: %v", err)
	}
	if !shared.ProspectCreated || shared.ProspectState != "interested" || len(leadStore.rows) != 1 {
		t.Fatalf("expected one new interested prospect and one lead, got %+v", shared)
	}
	if _, err := prospectsSvc.SetState(ctx, d1, shared.ProspectID, "closed"); err != nil {
		t.Fatalf("close prospect: %v", err)
	}

	now := time.Now().Add(10 * 24 * time.Hour)
	mine, err := analyticsSvc.DistributorStats(ctx, d1, now)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	s := mine.Stats
	if s.Contacts != 1 || s.Conversions != 1 || s.ConversionRate != 1.0 || s.RevenueCents != 70000 || s.SLAIndex != 100 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if len(mine.Products) != 1 || mine.Products[0].Name != "CremaFacial" || mine.Products[0].QuantitySold != 2 || mine.Products[0].AttributedRevenueCents != 70000 {
		t.Fatalf("unexpected products %+v", mine.Products)
	}

	report, err := analyticsSvc.ComputeDistributorStats(ctx, now)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Global.TotalConversions != 1 || report.Global.TotalRevenueCents != 70000 || report.Global.Distributors != 2 {
		t.Fatalf("unexpected global stats %+v", report.Global)
	}
}

func TestRecipientDirectoryAdapter(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	dir := NewRecipientDirectoryAdapter(&memRoster{rows: []rosterrepo.Distributor{
		{ID: a, Tier: "elite"},
		{ID: b, Tier: "basic"},
	}})

	ids, err := dir.ListRecipients(context.Background(), "elite", nil)
	if err != nil || len(ids) != 1 || ids[0] != a {
		t.Fatalf("expected only the elite distributor, got %v %v", ids, err)
	}
	tier, err := dir.TierOf(context.Background(), b)
	if err != nil || tier != "basic" {
		t.Fatalf("expected basic tier, got %q %v", tier, err)
	}
}
