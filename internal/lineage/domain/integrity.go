package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Edge is one distributor and its sponsor pointer.
type Edge struct {
	ID        uuid.UUID
	SponsorID *uuid.UUID
}

// IntegrityReport lists every corruption found in the sponsor graph.
type IntegrityReport struct {
	Checked   int           `json:"checked"`
	Roots     int           `json:"roots"`
	SelfLoops []uuid.UUID   `json:"selfLoops"`
	Dangling  []uuid.UUID   `json:"dangling"`
	Cycles    [][]uuid.UUID `json:"cycles"`
}

// Healthy reports whether no corruption was found.
func (r IntegrityReport) Healthy() bool {
	return len(r.SelfLoops) == 0 && len(r.Dangling) == 0 && len(r.Cycles) == 0
}

const (
	unvisited = iota
	onPath
	done
)

// VerifyGraph scans an arena of edges. Each node is walked at most once, so
// the scan is linear in the number of edges.
func VerifyGraph(edges []Edge) IntegrityReport {
	arena := make(map[uuid.UUID]*uuid.UUID, len(edges))
	for _, e := range edges {
		arena[e.ID] = e.SponsorID
	}

	report := IntegrityReport{
		Checked:   len(edges),
		SelfLoops: []uuid.UUID{},
		Dangling:  []uuid.UUID{},
		Cycles:    [][]uuid.UUID{},
	}

	for _, e := range edges {
		switch {
		case e.SponsorID == nil:
			report.Roots++
		case *e.SponsorID == e.ID:
			report.SelfLoops = append(report.SelfLoops, e.ID)
		default:
			if _, ok := arena[*e.SponsorID]; !ok {
				report.Dangling = append(report.Dangling, e.ID)
			}
		}
	}

	state := make(map[uuid.UUID]int, len(edges))
	for _, e := range edges {
		if state[e.ID] != unvisited {
			continue
		}

		var path []uuid.UUID
		current := e.ID
		for {
			if state[current] == onPath {
				start := slices.Index(path, current)
				if len(path)-start > 1 {
					report.Cycles = append(report.Cycles, slices.Clone(path[start:]))
				}
				break
			}
			if state[current] == done {
				break
			}
			state[current] = onPath
			path = append(path, current)

			sponsor, ok := arena[current]
			if !ok || sponsor == nil {
				break
			}
			current = *sponsor
		}
		for _, id := range path {
			state[id] = done
		}
	}

	return report
}
