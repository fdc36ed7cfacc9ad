package service

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"

	"koppara_backend/internal/events"
	"koppara_backend/internal/lineage/domain"
	"koppara_backend/internal/lineage/repository"
	"koppara_backend/internal/lineage/transport"
	"koppara_backend/platform/apperr"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/sanitize"
)

const maxReasonLength = 500

// ReassignCommand is a sponsor change requested by an identified actor.
type ReassignCommand struct {
	Actor         string
	DistributorID uuid.UUID
	NewSponsorID  *uuid.UUID
	Reason        string
}

// Descendant is a downline member at Depth levels below the lineage root.
type Descendant struct {
	Node  repository.Node
	Depth int
}

// Lineage is a distributor with its sponsor and a lazy descendants sequence.
// Descendants is walked breadth-first and can be ranged over repeatedly;
// every pass re-reads the graph.
type Lineage struct {
	Distributor repository.Node
	Sponsor     *repository.Node
	Descendants iter.Seq2[Descendant, error]
}

// Service applies and reports sponsor graph changes.
type Service struct {
	store    repository.Store
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new lineage service.
func New(store repository.Store, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, eventBus: eventBus, log: log}
}

// ReassignSponsor validates and applies a sponsor change. The edge update and
// its audit entry are written in one serializable transaction.
func (s *Service) ReassignSponsor(ctx context.Context, cmd ReassignCommand) (repository.AuditEntry, error) {
	actor := sanitize.Text(cmd.Actor)
	if actor == "" {
		return repository.AuditEntry{}, apperr.Validation("actor is required")
	}
	reason := sanitize.Text(cmd.Reason)
	if reason == "" {
		return repository.AuditEntry{}, apperr.Validation("reason is required")
	}
	if len([]rune(reason)) > maxReasonLength {
		return repository.AuditEntry{}, apperr.Validation("reason must be at most 500 characters")
	}

	var entry repository.AuditEntry
	err := s.store.WithinTx(ctx, func(tx repository.MutationTx) error {
		if err := tx.LockGraph(ctx); err != nil {
			return err
		}
		node, err := tx.LockNode(ctx, cmd.DistributorID)
		if err != nil {
			return err
		}

		if cmd.NewSponsorID != nil {
			if _, err := tx.GetNode(ctx, *cmd.NewSponsorID); err != nil {
				return err
			}
			if *cmd.NewSponsorID == cmd.DistributorID {
				return domain.SelfSponsorship()
			}
			count, err := tx.CountNodes(ctx)
			if err != nil {
				return err
			}
			if err := domain.CheckAncestry(ctx, cmd.DistributorID, *cmd.NewSponsorID, count, tx.SponsorOf); err != nil {
				return err
			}
		}

		if err := tx.SetSponsor(ctx, cmd.DistributorID, cmd.NewSponsorID); err != nil {
			return err
		}
		entry, err = tx.InsertAudit(ctx, repository.InsertAuditParams{
			Actor:             actor,
			DistributorID:     cmd.DistributorID,
			PreviousSponsorID: node.SponsorID,
			NewSponsorID:      cmd.NewSponsorID,
			Reason:            reason,
		})
		return err
	})
	log := s.log.WithContext(ctx)
	if err != nil {
		switch {
		case IsGraphRejection(err):
			log.LineageRejected(actor, cmd.DistributorID.String(), apperr.GetCode(err))
		case apperr.Is(err, apperr.KindUnavailable):
			log.DatabaseError("reassign sponsor", err)
		}
		return repository.AuditEntry{}, err
	}

	log.LineageChange(actor, cmd.DistributorID.String(), idString(entry.PreviousSponsorID), idString(entry.NewSponsorID))
	s.eventBus.Publish(ctx, events.SponsorReassigned{
		BaseEvent:         events.NewBaseEvent(),
		AuditID:           entry.ID,
		Actor:             entry.Actor,
		DistributorID:     entry.DistributorID,
		PreviousSponsorID: entry.PreviousSponsorID,
		NewSponsorID:      entry.NewSponsorID,
		Reason:            entry.Reason,
	})
	return entry, nil
}

// AssignSponsor attaches a sponsor on behalf of another module, such as a
// referral signup.
func (s *Service) AssignSponsor(ctx context.Context, actor string, distributorID, sponsorID uuid.UUID, reason string) error {
	_, err := s.ReassignSponsor(ctx, ReassignCommand{
		Actor:         actor,
		DistributorID: distributorID,
		NewSponsorID:  &sponsorID,
		Reason:        reason,
	})
	return err
}

// GetLineage returns a distributor, its sponsor and its downline.
func (s *Service) GetLineage(ctx context.Context, distributorID uuid.UUID) (Lineage, error) {
	node, err := s.store.GetNode(ctx, distributorID)
	if err != nil {
		return Lineage{}, err
	}

	lineage := Lineage{
		Distributor: node,
		Descendants: s.descendants(ctx, distributorID),
	}
	if node.SponsorID != nil {
		sponsor, err := s.store.GetNode(ctx, *node.SponsorID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return Lineage{}, domain.InvariantViolation("dangling sponsor reference " + node.SponsorID.String())
			}
			return Lineage{}, err
		}
		lineage.Sponsor = &sponsor
	}
	return lineage, nil
}

// descendants yields the downline of root breadth-first. A node is yielded
// at most once and the walk stops after as many nodes as there are
// distributors.
func (s *Service) descendants(ctx context.Context, root uuid.UUID) iter.Seq2[Descendant, error] {
	return func(yield func(Descendant, error) bool) {
		limit, err := s.store.CountNodes(ctx)
		if err != nil {
			yield(Descendant{}, err)
			return
		}

		type queued struct {
			id    uuid.UUID
			depth int
		}
		visited := map[uuid.UUID]struct{}{root: {}}
		queue := []queued{{id: root}}

		for len(queue) > 0 {
			head := queue[0]
			queue = queue[1:]

			children, err := s.store.ListChildren(ctx, head.id)
			if err != nil {
				yield(Descendant{}, err)
				return
			}
			for _, child := range children {
				if _, seen := visited[child.ID]; seen {
					yield(Descendant{}, domain.InvariantViolation("downline revisits "+child.ID.String()))
					return
				}
				if len(visited) >= limit {
					yield(Descendant{}, domain.InvariantViolation("downline larger than distributor count"))
					return
				}
				visited[child.ID] = struct{}{}

				if !yield(Descendant{Node: child, Depth: head.depth + 1}, nil) {
					return
				}
				queue = append(queue, queued{id: child.ID, depth: head.depth + 1})
			}
		}
	}
}

// ListAuditLog returns a page of audit entries, newest first.
func (s *Service) ListAuditLog(ctx context.Context, req transport.ListAuditRequest) (transport.AuditListResponse, error) {
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

	filter := repository.AuditFilter{Offset: (page - 1) * pageSize, Limit: pageSize}
	if req.DistributorID != "" {
		id, err := uuid.Parse(req.DistributorID)
		if err != nil {
			return transport.AuditListResponse{}, apperr.Validation("invalid distributor ID")
		}
		filter.DistributorID = &id
	}

	items, total, err := s.store.ListAudit(ctx, filter)
	if err != nil {
		return transport.AuditListResponse{}, err
	}

	resp := transport.AuditListResponse{
		Items:      make([]transport.AuditEntryResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, ToAuditResponse(item))
	}
	return resp, nil
}

// VerifyIntegrity scans the whole sponsor graph for corruption.
func (s *Service) VerifyIntegrity(ctx context.Context) (domain.IntegrityReport, error) {
	edges, err := s.store.ListEdges(ctx)
	if err != nil {
		return domain.IntegrityReport{}, err
	}
	report := domain.VerifyGraph(edges)
	if !report.Healthy() {
		s.log.Warn("sponsor graph corruption detected",
			"selfLoops", len(report.SelfLoops),
			"dangling", len(report.Dangling),
			"cycles", len(report.Cycles),
		)
	}
	return report, nil
}

// CollectLineage materializes a lineage view, stopping below maxDepth when
// it is positive.
func CollectLineage(lineage Lineage, maxDepth int) (transport.LineageResponse, error) {
	resp := transport.LineageResponse{
		Distributor: toNodeResponse(lineage.Distributor),
		Descendants: []transport.DescendantResponse{},
	}
	if lineage.Sponsor != nil {
		sponsor := toNodeResponse(*lineage.Sponsor)
		resp.Sponsor = &sponsor
	}

	for d, err := range lineage.Descendants {
		if err != nil {
			return transport.LineageResponse{}, err
		}
		if maxDepth > 0 && d.Depth > maxDepth {
			break
		}
		resp.Descendants = append(resp.Descendants, transport.DescendantResponse{
			NodeResponse: toNodeResponse(d.Node),
			Depth:        d.Depth,
		})
	}
	return resp, nil
}

// ToAuditResponse converts an audit entry for API output.
func ToAuditResponse(e repository.AuditEntry) transport.AuditEntryResponse {
	return transport.AuditEntryResponse{
		ID:                e.ID,
		Actor:             e.Actor,
		DistributorID:     e.DistributorID,
		PreviousSponsorID: e.PreviousSponsorID,
		NewSponsorID:      e.NewSponsorID,
		Reason:            e.Reason,
		CreatedAt:         e.CreatedAt.Format(time.RFC3339),
	}
}

func toNodeResponse(n repository.Node) transport.NodeResponse {
	return transport.NodeResponse{
		ID:            n.ID,
		Name:          n.Name,
		Tier:          n.Tier,
		ReferralCode:  n.ReferralCode,
		SponsorID:     n.SponsorID,
		IsOrganicLead: n.IsOrganicLead,
	}
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// IsGraphRejection reports whether err is one of the sponsor graph rule
// violations rather than a lookup or storage failure.
func IsGraphRejection(err error) bool {
	return errors.Is(err, domain.ErrSelfSponsorship) ||
		errors.Is(err, domain.ErrCycleDetected) ||
		errors.Is(err, domain.ErrInvariantViolation)
}
