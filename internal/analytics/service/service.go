package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"koppara_backend/internal/analytics/engine"
	"koppara_backend/internal/analytics/ports"
	"koppara_backend/internal/analytics/transport"
	"koppara_backend/platform/apperr"
	"koppara_backend/platform/logger"
)

const defaultLeaderboardLimit = 10

// Service is the analytics aggregator. It only reads.
type Service struct {
	roster    ports.RosterReader
	prospects ports.ProspectReader
	leads     ports.LeadReader
	catalog   ports.CatalogReader
	log       *logger.Logger
}

// New creates a new analytics service.
func New(roster ports.RosterReader, prospects ports.ProspectReader, leads ports.LeadReader, catalog ports.CatalogReader, log *logger.Logger) *Service {
	return &Service{roster: roster, prospects: prospects, leads: leads, catalog: catalog, log: log}
}

// ComputeDistributorStats takes a fresh snapshot and computes the report.
// The four reads run concurrently and are not mutually consistent.
func (s *Service) ComputeDistributorStats(ctx context.Context, now time.Time) (engine.Report, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return engine.Report{}, err
	}
	report := engine.Compute(snap, now)
	s.log.Debug("analytics computed",
		"distributors", len(snap.Distributors),
		"prospects", len(snap.Prospects),
		"leads", len(snap.Leads),
	)
	return report, nil
}

// DistributorStats returns the stats of one distributor and the product
// leaderboard restricted to that distributor's leads.
func (s *Service) DistributorStats(ctx context.Context, distributorID uuid.UUID, now time.Time) (transport.MyStatsResponse, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return transport.MyStatsResponse{}, err
	}

	var own *ports.Distributor
	for i := range snap.Distributors {
		if snap.Distributors[i].ID == distributorID {
			own = &snap.Distributors[i]
			break
		}
	}
	if own == nil {
		return transport.MyStatsResponse{}, apperr.NotFound("distributor not found")
	}
	snap.Distributors = []ports.Distributor{*own}

	report := engine.Compute(snap, now)
	return transport.MyStatsResponse{Stats: report.Distributors[0], Products: report.Products}, nil
}

// Leaderboard ranks distributors over a fresh report.
func (s *Service) Leaderboard(ctx context.Context, req transport.LeaderboardRequest, now time.Time) (transport.LeaderboardResponse, error) {
	by := engine.Ranking(req.By)
	if by == "" {
		by = engine.RankByRevenue
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	report, err := s.ComputeDistributorStats(ctx, now)
	if err != nil {
		return transport.LeaderboardResponse{}, err
	}
	ranked, err := engine.Leaderboard(report.Distributors, by, limit)
	if err != nil {
		return transport.LeaderboardResponse{}, apperr.Validation(err.Error())
	}
	return transport.LeaderboardResponse{By: string(by), Items: ranked}, nil
}

func (s *Service) snapshot(ctx context.Context) (engine.Snapshot, error) {
	var snap engine.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := s.roster.ListDistributors(gctx)
		snap.Distributors = items
		return err
	})
	g.Go(func() error {
		items, err := s.prospects.ListProspects(gctx)
		snap.Prospects = items
		return err
	})
	g.Go(func() error {
		items, err := s.leads.ListLeads(gctx)
		snap.Leads = items
		return err
	})
	g.Go(func() error {
		names, err := s.catalog.PublishedNames(gctx)
		snap.Published = names
		return err
	})

	if err := g.Wait(); err != nil {
		return engine.Snapshot{}, err
	}
	return snap, nil
}
