package domain

import "testing"

func TestParseTier(t *testing.T) {
	cases := map[string]Tier{
		"basic":   TierBasic,
		"Básica":  TierBasic,
		"basica":  TierBasic,
		"LUXURY":  TierLuxury,
		" elite ": TierElite,
	}
	for input, want := range cases {
		got, err := ParseTier(input)
		if err != nil {
			t.Fatalf("ParseTier(%q) unexpected error: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseTier(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := ParseTier("gold"); err == nil {
		t.Fatalf("expected error for unknown tier")
	}
}

func TestReferralCode(t *testing.T) {
	fixed := func(int) int { return 234 }

	cases := []struct {
		name string
		want string
	}{
		{"María José López", "MARI1234"},
		{"Ana", "ANA1234"},
		{"Ñoño Pérez", "NONO1234"},
		{"   ", "KOPP1234"},
		{"123 Store", "KOPP1234"},
	}
	for _, tc := range cases {
		if got := ReferralCode(tc.name, fixed); got != tc.want {
			t.Errorf("ReferralCode(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestReferralCodeRange(t *testing.T) {
	low := ReferralCode("Ana", func(int) int { return 0 })
	high := ReferralCode("Ana", func(n int) int { return n - 1 })
	if low != "ANA1000" || high != "ANA9999" {
		t.Fatalf("unexpected bounds %q %q", low, high)
	}
}
