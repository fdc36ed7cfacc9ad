package phone

import "testing"

func TestNormalizeE164FormattingVariantsCollapse(t *testing.T) {
	variants := []string{
		"5551234567",
		"55 5123 4567",
		"(55) 5123-4567",
		" 555-123-4567 ",
	}

	want := NormalizeE164(variants[0], "MX")
	if want == "" {
		t.Fatalf("expected non-empty normalized phone")
	}
	for _, v := range variants[1:] {
		if got := NormalizeE164(v, "MX"); got != want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestNormalizeE164KeepsInternationalNumbers(t *testing.T) {
	got := NormalizeE164("+31 6 12345678", "MX")
	if got != "+31612345678" {
		t.Fatalf("expected +31612345678, got %q", got)
	}
}

func TestNormalizeE164Empty(t *testing.T) {
	if got := NormalizeE164("   ", "MX"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestDigitsOnlyFallback(t *testing.T) {
	if got := digitsOnly("+1 (abc) 23"); got != "+123" {
		t.Fatalf("expected +123, got %q", got)
	}
}
