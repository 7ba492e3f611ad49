package domain

import "testing"

func TestFormatAuditID(t *testing.T) {
	cases := map[int]string{1: "AUD001", 42: "AUD042", 999: "AUD999", 1000: "AUD1000"}
	for seq, want := range cases {
		if got := FormatAuditID(seq); got != want {
			t.Fatalf("FormatAuditID(%d) = %q, want %q", seq, got, want)
		}
	}
}

func TestAuditSequence(t *testing.T) {
	if seq, ok := AuditSequence("AUD007"); !ok || seq != 7 {
		t.Fatalf("expected 7, got %d (%v)", seq, ok)
	}
	if seq, ok := AuditSequence("AUD12x"); !ok || seq != 12 {
		t.Fatalf("expected leading digits to parse, got %d (%v)", seq, ok)
	}
	if _, ok := AuditSequence("AUDIT"); ok {
		t.Fatalf("expected non-numeric suffix to fail")
	}
}

func TestParseNumericID(t *testing.T) {
	valid := map[string]int{"6": 6, " 6 ": 6, "6abc": 6, "+3": 3, "-2": -2, "007": 7, "0x6": 6, "0X1f": 31, "-0xa": -10, "0x6g": 6}
	for raw, want := range valid {
		got, ok := ParseNumericID(raw)
		if !ok || got != want {
			t.Fatalf("ParseNumericID(%q) = %d, %v; want %d", raw, got, ok, want)
		}
	}
	for _, raw := range []string{"", "abc", "-", "AUD001", " x1", "0x", "0xg"} {
		if _, ok := ParseNumericID(raw); ok {
			t.Fatalf("ParseNumericID(%q) should not parse", raw)
		}
	}
}
