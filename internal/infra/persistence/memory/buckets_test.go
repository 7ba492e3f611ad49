package memory

import (
	"strings"
	"testing"

	"auditdesk/pkg/domain"
)

func TestBucketsRoundTrip(t *testing.T) {
	src := Snapshot{
		Audits:     []domain.Audit{{ID: "AUD001", Status: domain.AuditOverdue}},
		Exceptions: []domain.Exception{{ID: 2, Severity: domain.ExceptionHigh}},
		KPIs:       []domain.KPI{{ID: 1, Name: "Compliance"}},
		Stores:     []domain.Store{{ID: 4, Region: "West"}},
		Sequences:  Sequences{Audit: 1, Exception: 2, KPI: 1, Store: 4},
	}
	var dst Snapshot
	for _, bucket := range Buckets {
		payload, err := src.EncodeBucket(bucket)
		if err != nil {
			t.Fatalf("encode %s: %v", bucket, err)
		}
		if err := dst.DecodeBucket(bucket, payload); err != nil {
			t.Fatalf("decode %s: %v", bucket, err)
		}
	}
	if dst.Audits[0].Status != domain.AuditOverdue || dst.Stores[0].Region != "West" || dst.Sequences != src.Sequences {
		t.Fatalf("unexpected round trip %+v", dst)
	}
}

func TestBucketErrors(t *testing.T) {
	if _, err := (Snapshot{}).EncodeBucket("organisms"); err == nil {
		t.Fatalf("expected unknown bucket error")
	}
	var s Snapshot
	if err := s.DecodeBucket("organisms", []byte("{}")); err != nil {
		t.Fatalf("unknown buckets are skipped: %v", err)
	}
	err := s.DecodeBucket("kpis", []byte("{"))
	if err == nil || !strings.Contains(err.Error(), "decode kpis") {
		t.Fatalf("expected decode error, got %v", err)
	}
}
