package domain

import (
	"context"

	"github.com/google/uuid"
)

// SponsorLookup returns the sponsor of id. found is false when id has no row.
type SponsorLookup func(ctx context.Context, id uuid.UUID) (sponsor *uuid.UUID, found bool, err error)

// CheckAncestry walks the ancestor chain of newSponsorID and fails when
// distributorID is on it. The walk visits at most limit nodes, where limit is
// the number of distributors, so it terminates on a corrupted graph too.
func CheckAncestry(ctx context.Context, distributorID, newSponsorID uuid.UUID, limit int, lookup SponsorLookup) error {
	visited := make(map[uuid.UUID]struct{}, 16)
	current := newSponsorID

	for {
		if current == distributorID {
			return CycleDetected()
		}
		if _, seen := visited[current]; seen {
			return InvariantViolation("ancestor chain revisits " + current.String())
		}
		if len(visited) >= limit {
			return InvariantViolation("ancestor chain longer than distributor count")
		}
		visited[current] = struct{}{}

		sponsor, found, err := lookup(ctx, current)
		if err != nil {
			return err
		}
		if !found {
			return InvariantViolation("dangling sponsor reference " + current.String())
		}
		if sponsor == nil {
			return nil
		}
		current = *sponsor
	}
}
