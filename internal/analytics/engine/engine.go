// Package engine computes distributor and global funnel statistics from a
// point-in-time snapshot. It does no I/O.
package engine

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"koppara_backend/internal/analytics/ports"
	"koppara_backend/internal/prospects/domain"
)

// Snapshot is the input of one computation.
type Snapshot struct {
	Distributors []ports.Distributor
	Prospects    []ports.Prospect
	Leads        []ports.Lead
	Published    map[string]struct{}
}

// DistributorStats are the funnel figures of one distributor.
type DistributorStats struct {
	DistributorID  uuid.UUID `json:"distributorId"`
	Name           string    `json:"name"`
	Tier           string    `json:"tier"`
	ReferralCode   string    `json:"referralCode"`
	Contacts       int       `json:"contacts"`
	Conversions    int       `json:"conversions"`
	ConversionRate float64   `json:"conversionRate"`
	SLAIndex       float64   `json:"slaIndex"`
	OnTime         int       `json:"onTime"`
	NeedsFollowUp  int       `json:"needsFollowUp"`
	Overdue        int       `json:"overdue"`
	RevenueCents   int64     `json:"revenueCents"`
	SharedCount    int       `json:"sharedCount"`
}

// GlobalStats aggregate every distributor.
type GlobalStats struct {
	Distributors          int     `json:"distributors"`
	ActiveDistributors    int     `json:"activeDistributors"`
	TotalContacts         int     `json:"totalContacts"`
	TotalConversions      int     `json:"totalConversions"`
	TotalRevenueCents     int64   `json:"totalRevenueCents"`
	TotalShared           int     `json:"totalShared"`
	AverageConversionRate float64 `json:"averageConversionRate"`
}

// ProductStats is one row of the product leaderboard.
type ProductStats struct {
	Name                   string `json:"name"`
	QuantitySold           int    `json:"quantitySold"`
	AttributedRevenueCents int64  `json:"attributedRevenueCents"`
}

// Report is the result of one computation.
type Report struct {
	GeneratedAt  time.Time          `json:"generatedAt"`
	Distributors []DistributorStats `json:"distributors"`
	Global       GlobalStats        `json:"global"`
	Products     []ProductStats     `json:"products"`
}

// Compute builds a report in roster order. Prospects and leads of
// distributors missing from the roster are ignored.
func Compute(snap Snapshot, now time.Time) Report {
	stats := make([]DistributorStats, len(snap.Distributors))
	index := make(map[uuid.UUID]int, len(snap.Distributors))
	for i, d := range snap.Distributors {
		stats[i] = DistributorStats{DistributorID: d.ID, Name: d.Name, Tier: d.Tier, ReferralCode: d.ReferralCode}
		index[d.ID] = i
	}

	for _, p := range snap.Prospects {
		i, ok := index[p.DistributorID]
		if !ok {
			continue
		}
		s := &stats[i]
		s.Contacts++

		state := domain.State(p.State)
		if state == domain.StateClosed {
			s.Conversions++
		}
		if domain.OnTime(state, p.LastInteractionAt, now) {
			s.OnTime++
		}
		if state != domain.StateClosed {
			switch domain.ClassifyFollowUp(now.Sub(p.LastInteractionAt)) {
			case domain.FollowUpNeeded:
				s.NeedsFollowUp++
			case domain.FollowUpOverdue:
				s.Overdue++
			}
		}
	}

	products := make(map[string]*ProductStats)
	for _, l := range snap.Leads {
		i, ok := index[l.DistributorID]
		if !ok {
			continue
		}
		stats[i].RevenueCents += l.AmountCents
		stats[i].SharedCount++

		shares := SplitCents(l.AmountCents, len(l.LineItems))
		for j, item := range l.LineItems {
			if _, published := snap.Published[item.ProductName]; !published {
				continue
			}
			ps, ok := products[item.ProductName]
			if !ok {
				ps = &ProductStats{Name: item.ProductName}
				products[item.ProductName] = ps
			}
			ps.QuantitySold += effectiveQuantity(item.Quantity)
			ps.AttributedRevenueCents += shares[j]
		}
	}

	report := Report{
		GeneratedAt:  now,
		Distributors: stats,
		Global:       GlobalStats{Distributors: len(stats)},
		Products:     make([]ProductStats, 0, len(products)),
	}

	var rateSum float64
	for i := range stats {
		s := &stats[i]
		if s.Contacts == 0 {
			s.SLAIndex = 100
		} else {
			s.ConversionRate = float64(s.Conversions) / float64(s.Contacts)
			s.SLAIndex = float64(s.OnTime) * 100 / float64(s.Contacts)
			report.Global.ActiveDistributors++
			rateSum += s.ConversionRate
		}
		report.Global.TotalContacts += s.Contacts
		report.Global.TotalConversions += s.Conversions
		report.Global.TotalRevenueCents += s.RevenueCents
		report.Global.TotalShared += s.SharedCount
	}
	if report.Global.ActiveDistributors > 0 {
		report.Global.AverageConversionRate = rateSum / float64(report.Global.ActiveDistributors)
	}

	for _, ps := range products {
		report.Products = append(report.Products, *ps)
	}
	slices.SortFunc(report.Products, func(a, b ProductStats) int {
		if c := cmp.Compare(b.QuantitySold, a.QuantitySold); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return report
}

// SplitCents divides amount into n integer shares that sum to amount. The
// first amount%n shares carry one extra cent.
func SplitCents(amount int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	shares := make([]int64, n)
	base := amount / int64(n)
	rem := amount % int64(n)
	for i := range shares {
		shares[i] = base
		if int64(i) < rem {
			shares[i]++
		}
	}
	return shares
}

func effectiveQuantity(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}
