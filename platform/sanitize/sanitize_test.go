package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := map[string]string{
		"  Ana   María ":                        "Ana María",
		"<b>team</b> merge":                     "team merge",
		"&lt;script&gt;alert(1)&lt;/script&gt;": "alert(1)",
		"line\tone\nline two\x00":               "line one line two",
		"Mari\u0301a":                           "Mar\u00eda",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Fatalf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBodyKeepsLineBreaks(t *testing.T) {
	got := Body("\nNew launch!\r\n\r\n  <i>Crema</i>   Facial  \n")
	want := "New launch!\n\nCrema Facial"
	if got != want {
		t.Fatalf("Body = %q, want %q", got, want)
	}
}
