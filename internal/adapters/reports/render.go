// Package reports renders report datasets and exports them asynchronously to
// blob storage.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"auditdesk/pkg/domain"
)

// Report names a collection that can be exported.
type Report string

// Exportable reports.
const (
	ReportAudits     Report = "audits"
	ReportExceptions Report = "exceptions"
	ReportStores     Report = "stores"
	ReportKPIs       Report = "kpis"
)

// Reports lists every exportable report.
var Reports = []Report{ReportAudits, ReportExceptions, ReportStores, ReportKPIs}

// Format is an artifact encoding.
type Format string

// Supported artifact encodings.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// DefaultFormats is used when a request names none.
var DefaultFormats = []Format{FormatCSV, FormatJSON}

// Source supplies the collections a report is rendered from.
type Source interface {
	ListAudits(ctx context.Context) ([]domain.Audit, error)
	ListExceptions(ctx context.Context) ([]domain.Exception, error)
	ListKPIs(ctx context.Context) ([]domain.KPI, error)
	ListStores(ctx context.Context) ([]domain.Store, error)
}

// ValidReport reports whether r names an exportable collection.
func ValidReport(r Report) bool {
	for _, known := range Reports {
		if r == known {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// Dataset is a loaded report: the raw records plus a tabular projection.
type Dataset struct {
	Report  Report
	Records any
	Columns []string
	Rows    [][]string
}

// Load fetches the collection behind report and projects it into rows.
func Load(ctx context.Context, src Source, report Report) (Dataset, error) {
	ds := Dataset{Report: report}
	switch report {
	case ReportAudits:
		audits, err := src.ListAudits(ctx)
		if err != nil {
			return Dataset{}, err
		}
		ds.Records = audits
		ds.Columns = []string{"Id", "storeId", "auditorId", "scheduledDate", "status", "overallRating", "responses"}
		for _, a := range audits {
			ds.Rows = append(ds.Rows, []string{a.ID, a.StoreID, a.AuditorID, a.ScheduledDate, string(a.Status), string(a.OverallRating), strconv.Itoa(len(a.Responses))})
		}
	case ReportExceptions:
		exceptions, err := src.ListExceptions(ctx)
		if err != nil {
			return Dataset{}, err
		}
		ds.Records = exceptions
		ds.Columns = []string{"Id", "description", "category", "severity", "status", "raisedDate", "auditId"}
		for _, e := range exceptions {
			ds.Rows = append(ds.Rows, []string{strconv.Itoa(e.ID), e.Description, e.Category, string(e.Severity), string(e.Status), e.RaisedDate, e.AuditID})
		}
	case ReportKPIs:
		kpis, err := src.ListKPIs(ctx)
		if err != nil {
			return Dataset{}, err
		}
		ds.Records = kpis
		ds.Columns = []string{"Id", "name", "value", "target", "trend", "icon", "isPrimary", "changePercent"}
		for _, k := range kpis {
			ds.Rows = append(ds.Rows, []string{strconv.Itoa(k.ID), k.Name, formatFloat(k.Value), formatFloat(k.Target), string(k.Trend), k.Icon, strconv.FormatBool(k.IsPrimary), formatFloat(k.ChangePercent)})
		}
	case ReportStores:
		stores, err := src.ListStores(ctx)
		if err != nil {
			return Dataset{}, err
		}
		ds.Records = stores
		ds.Columns = []string{"Id", "name", "region", "performanceScore"}
		for _, s := range stores {
			ds.Rows = append(ds.Rows, []string{strconv.Itoa(s.ID), s.Name, s.Region, formatFloat(s.PerformanceScore)})
		}
	default:
		return Dataset{}, fmt.Errorf("unknown report %q", report)
	}
	return ds, nil
}

// Render encodes the dataset in the requested format.
func (d Dataset) Render(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		payload, err := json.MarshalIndent(d.Records, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return append(payload, '\n'), nil
	case FormatCSV:
		buf := &bytes.Buffer{}
		writer := csv.NewWriter(buf)
		if err := writer.Write(d.Columns); err != nil {
			return nil, err
		}
		if err := writer.WriteAll(d.Rows); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %s", format)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
