package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	referralPrefixLen = 4
	fallbackPrefix    = "KOPP"
)

// ReferralCode builds a code from the first word of the distributor name
// and a number in [1000, 9999]. intn must return a value in [0, n).
func ReferralCode(name string, intn func(n int) int) string {
	return fmt.Sprintf("%s%d", referralPrefix(name), 1000+intn(9000))
}

func referralPrefix(name string) string {
	fields := strings.Fields(foldASCII(name))
	if len(fields) == 0 {
		return fallbackPrefix
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(fields[0]) {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(r)
		if b.Len() == referralPrefixLen {
			break
		}
	}
	if b.Len() == 0 {
		return fallbackPrefix
	}
	return b.String()
}
