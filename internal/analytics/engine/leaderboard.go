package engine

import (
	"cmp"
	"fmt"
	"slices"
)

// Ranking selects the leaderboard order.
type Ranking string

const (
	RankByRevenue     Ranking = "revenue"
	RankByConversions Ranking = "conversions"
	RankBySLA         Ranking = "sla"
)

// RankingValues returns the accepted ranking strings.
func RankingValues() []string {
	return []string{string(RankByRevenue), string(RankByConversions), string(RankBySLA)}
}

// Leaderboard orders distributors by the ranking, best first, and keeps at
// most limit entries when limit is positive. Ties are broken by name.
func Leaderboard(stats []DistributorStats, by Ranking, limit int) ([]DistributorStats, error) {
	var key func(a, b DistributorStats) int
	switch by {
	case RankByRevenue, "":
		key = func(a, b DistributorStats) int { return cmp.Compare(b.RevenueCents, a.RevenueCents) }
	case RankByConversions:
		key = func(a, b DistributorStats) int { return cmp.Compare(b.Conversions, a.Conversions) }
	case RankBySLA:
		key = func(a, b DistributorStats) int { return cmp.Compare(b.SLAIndex, a.SLAIndex) }
	default:
		return nil, fmt.Errorf("unknown ranking %q", by)
	}

	ranked := slices.Clone(stats)
	slices.SortStableFunc(ranked, func(a, b DistributorStats) int {
		if c := key(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
