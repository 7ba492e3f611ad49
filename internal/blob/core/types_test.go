package core

import "testing"

func TestCleanKey(t *testing.T) {
	ok := map[string]string{
		"exports/1/audits.csv":   "exports/1/audits.csv",
		"exports//1/./kpis.json": "exports/1/kpis.json",
		"a..b":                   "a..b",
	}
	for in, want := range ok {
		got, err := CleanKey(in)
		if err != nil || got != want {
			t.Fatalf("CleanKey(%q) = %q, %v want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "  ", "/etc/passwd", "../x", "a/../../b"} {
		if _, err := CleanKey(bad); err == nil {
			t.Fatalf("CleanKey(%q) expected error", bad)
		}
	}
}

func TestCloneMetadata(t *testing.T) {
	if CloneMetadata(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	src := map[string]string{"report": "audits"}
	cp := CloneMetadata(src)
	cp["report"] = "kpis"
	if src["report"] != "audits" {
		t.Fatalf("clone aliases source")
	}
}
