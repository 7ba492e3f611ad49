package reports

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"auditdesk/internal/core"
)

func newSeededService(t *testing.T) *core.Service {
	t.Helper()
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine(), core.WithSleeper(core.NoopSleeper{}))
	fx, err := core.DefaultFixtures()
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	if _, err := core.Seed(context.Background(), svc.Store(), fx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc
}

func TestLoadProjectsEveryReport(t *testing.T) {
	svc := newSeededService(t)
	want := map[Report]int{
		ReportAudits:     8,
		ReportExceptions: 5,
		ReportKPIs:       8,
		ReportStores:     10,
	}
	for _, report := range Reports {
		ds, err := Load(context.Background(), svc, report)
		if err != nil {
			t.Fatalf("load %s: %v", report, err)
		}
		if len(ds.Rows) != want[report] {
			t.Fatalf("%s: expected %d rows, got %d", report, want[report], len(ds.Rows))
		}
		for i, row := range ds.Rows {
			if len(row) != len(ds.Columns) {
				t.Fatalf("%s row %d: %d cells for %d columns", report, i, len(row), len(ds.Columns))
			}
		}
	}
}

func TestLoadRejectsUnknownReport(t *testing.T) {
	if _, err := Load(context.Background(), newSeededService(t), Report("payroll")); err == nil {
		t.Fatalf("expected unknown report error")
	}
	if ValidReport(Report("payroll")) {
		t.Fatalf("payroll should not be a valid report")
	}
}

func TestRenderCSVStores(t *testing.T) {
	ds, err := Load(context.Background(), newSeededService(t), ReportStores)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	payload, err := ds.Render(FormatCSV)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(payload))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 11 {
		t.Fatalf("expected header plus 10 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "Id,name,region,performanceScore" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[1][0] != "1" || records[1][3] != "94" {
		t.Fatalf("unexpected first row %v", records[1])
	}
}

func TestRenderJSONKeepsWireNames(t *testing.T) {
	ds, err := Load(context.Background(), newSeededService(t), ReportExceptions)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	payload, err := ds.Render(FormatJSON)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(payload, &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 exceptions, got %d", len(rows))
	}
	if _, ok := rows[0]["Id"]; !ok {
		t.Fatalf("expected Id key in %v", rows[0])
	}
	if _, ok := rows[0]["auditId"]; !ok {
		t.Fatalf("expected auditId key in %v", rows[0])
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	ds := Dataset{Report: ReportKPIs}
	if _, err := ds.Render(Format("xlsx")); err == nil {
		t.Fatalf("expected unsupported format error")
	}
	if got := Format("xlsx").ContentType(); got != "application/octet-stream" {
		t.Fatalf("unexpected fallback content type %q", got)
	}
}
