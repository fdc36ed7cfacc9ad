package adapters

import (
	"context"

	analyticsports "koppara_backend/internal/analytics/ports"
	catalogrepo "koppara_backend/internal/catalog/repository"
	leadsrepo "koppara_backend/internal/leads/repository"
	prospectsrepo "koppara_backend/internal/prospects/repository"
	rosterrepo "koppara_backend/internal/roster/repository"
)

// RosterReportReader lists distributors for reporting.
type RosterReportReader struct {
	repo rosterrepo.DistributorReader
}

func NewRosterReportReader(repo rosterrepo.DistributorReader) *RosterReportReader {
	return &RosterReportReader{repo: repo}
}

func (a *RosterReportReader) ListDistributors(ctx context.Context) ([]analyticsports.Distributor, error) {
	rows, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analyticsports.Distributor, 0, len(rows))
	for _, d := range rows {
		out = append(out, analyticsports.Distributor{
			ID:           d.ID,
			Name:         d.Name,
			Tier:         d.Tier,
			ReferralCode: d.ReferralCode,
		})
	}
	return out, nil
}

// ProspectLister is the part of the prospect ledger reporting reads.
type ProspectLister interface {
	ListAll(ctx context.Context) ([]prospectsrepo.Prospect, error)
}

// ProspectReportReader lists every prospect for reporting.
type ProspectReportReader struct {
	src ProspectLister
}

func NewProspectReportReader(src ProspectLister) *ProspectReportReader {
	return &ProspectReportReader{src: src}
}

func (a *ProspectReportReader) ListProspects(ctx context.Context) ([]analyticsports.Prospect, error) {
	rows, err := a.src.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analyticsports.Prospect, 0, len(rows))
	for _, p := range rows {
		out = append(out, analyticsports.Prospect{
			DistributorID:     p.DistributorID,
			State:             p.State,
			LastInteractionAt: p.LastInteractionAt,
		})
	}
	return out, nil
}

// LeadLister is the part of the lead history reporting reads.
type LeadLister interface {
	ListAll(ctx context.Context) ([]leadsrepo.Lead, error)
}

// LeadReportReader lists every lead for reporting.
type LeadReportReader struct {
	src LeadLister
}

func NewLeadReportReader(src LeadLister) *LeadReportReader {
	return &LeadReportReader{src: src}
}

func (a *LeadReportReader) ListLeads(ctx context.Context) ([]analyticsports.Lead, error) {
	rows, err := a.src.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analyticsports.Lead, 0, len(rows))
	for _, l := range rows {
		items := make([]analyticsports.LineItem, 0, len(l.LineItems))
		for _, item := range l.LineItems {
			items = append(items, analyticsports.LineItem{ProductName: item.ProductName, Quantity: item.Quantity})
		}
		out = append(out, analyticsports.Lead{
			DistributorID: l.DistributorID,
			LineItems:     items,
			AmountCents:   l.AmountCents,
		})
	}
	return out, nil
}

// CatalogReportReader exposes published product names to reporting.
type CatalogReportReader struct {
	repo catalogrepo.Repository
}

func NewCatalogReportReader(repo catalogrepo.Repository) *CatalogReportReader {
	return &CatalogReportReader{repo: repo}
}

func (a *CatalogReportReader) PublishedNames(ctx context.Context) (map[string]struct{}, error) {
	return a.repo.PublishedNames(ctx)
}

var (
	_ analyticsports.RosterReader   = (*RosterReportReader)(nil)
	_ analyticsports.ProspectReader = (*ProspectReportReader)(nil)
	_ analyticsports.LeadReader     = (*LeadReportReader)(nil)
	_ analyticsports.CatalogReader  = (*CatalogReportReader)(nil)
)
