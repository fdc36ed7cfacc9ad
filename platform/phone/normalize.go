// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "MX"

// NormalizeE164 formats a phone number to E.164 using region for numbers
// written without a country code. If the number cannot be parsed or is not
// valid, it falls back to the digits of the input (keeping a leading '+') so
// that differently formatted copies of the same number still compare equal.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return digitsOnly(trimmed)
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
