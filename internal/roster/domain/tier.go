// Package domain holds the roster value types shared by the distributor
// modules: tier levels and referral code issuance.
package domain

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tier is a distributor membership level.
type Tier string

const (
	TierBasic  Tier = "basic"
	TierLuxury Tier = "luxury"
	TierElite  Tier = "elite"
)

// Tiers lists the valid tiers in ascending order.
var Tiers = []Tier{TierBasic, TierLuxury, TierElite}

// ParseTier accepts the canonical value and the Spanish labels used by the
// storefront ("Básica", "basica").
func ParseTier(value string) (Tier, error) {
	switch strings.ToLower(foldASCII(strings.TrimSpace(value))) {
	case "basic", "basica":
		return TierBasic, nil
	case "luxury":
		return TierLuxury, nil
	case "elite":
		return TierElite, nil
	default:
		return "", fmt.Errorf("unknown tier %q", value)
	}
}

// IsValid reports whether t is one of the known tiers.
func (t Tier) IsValid() bool {
	switch t {
	case TierBasic, TierLuxury, TierElite:
		return true
	}
	return false
}

func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// TierValues returns the canonical tier strings.
func TierValues() []string {
	values := make([]string, len(Tiers))
	for i, t := range Tiers {
		values[i] = string(t)
	}
	return values
}
