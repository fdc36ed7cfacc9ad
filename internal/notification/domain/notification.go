// Package domain holds the notification targeting rules.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	"koppara_backend/platform/apperr"
)

// Category classifies a notification.
type Category string

const (
	CategoryUrgent    Category = "urgent"
	CategoryPromotion Category = "promotion"
	CategoryLaunch    Category = "launch"
)

// TargetTier narrows the audience to one membership tier, or everyone.
type TargetTier string

const (
	TargetBasic  TargetTier = "basic"
	TargetLuxury TargetTier = "luxury"
	TargetElite  TargetTier = "elite"
	TargetAll    TargetTier = "all"
)

// CategoryValues lists the accepted categories.
func CategoryValues() []string {
	return []string{string(CategoryUrgent), string(CategoryPromotion), string(CategoryLaunch)}
}

// TargetTierValues lists the accepted target tiers.
func TargetTierValues() []string {
	return []string{string(TargetBasic), string(TargetLuxury), string(TargetElite), string(TargetAll)}
}

// ParseCategory validates a category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryUrgent, CategoryPromotion, CategoryLaunch:
		return c, nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown category %q", s))
}

// ParseTargetTier validates a target tier. Empty means all.
func ParseTargetTier(s string) (TargetTier, error) {
	if s == "" {
		return TargetAll, nil
	}
	switch t := TargetTier(s); t {
	case TargetBasic, TargetLuxury, TargetElite, TargetAll:
		return t, nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown target tier %q", s))
}

// Target is the audience of one notification.
type Target struct {
	Tier          TargetTier
	DistributorID *uuid.UUID
}

// Matches reports whether a distributor with the given id and tier is in
// the audience.
func (t Target) Matches(distributorID uuid.UUID, tier string) bool {
	if t.Tier != TargetAll && string(t.Tier) != tier {
		return false
	}
	return t.DistributorID == nil || *t.DistributorID == distributorID
}
