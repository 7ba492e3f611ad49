package core

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"auditdesk/pkg/domain"
)

// FilterAll is the select value that disables an equality filter.
const FilterAll = "all"

// AuditFilter narrows the audit table.
type AuditFilter struct {
	Search string
	Status string
}

// ExceptionFilter narrows the exception list. Limit > 0 truncates the result.
type ExceptionFilter struct {
	Search   string
	Severity string
	Status   string
	Limit    int
}

func matchesSelect(selected, value string) bool {
	return selected == "" || selected == FilterAll || selected == value
}

// containsFold reports whether any field contains term, ignoring case. An
// empty term matches everything.
func containsFold(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	fold := cases.Fold()
	needle := fold.String(term)
	for _, f := range fields {
		if strings.Contains(fold.String(f), needle) {
			return true
		}
	}
	return false
}

// FilterAudits keeps audits whose store or auditor contains the search term
// and whose status matches.
func FilterAudits(audits []Audit, f AuditFilter) []Audit {
	out := make([]Audit, 0, len(audits))
	for _, a := range audits {
		if !containsFold(f.Search, a.StoreID, a.AuditorID) {
			continue
		}
		if !matchesSelect(f.Status, string(a.Status)) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// AuditCounts summarises the audit table header.
type AuditCounts struct {
	Total    int                        `json:"total"`
	ByStatus map[domain.AuditStatus]int `json:"byStatus"`
}

// CountAuditsByStatus counts audits per status. Every known status is present.
func CountAuditsByStatus(audits []Audit) AuditCounts {
	counts := AuditCounts{Total: len(audits), ByStatus: make(map[domain.AuditStatus]int, len(domain.AuditStatuses))}
	for _, status := range domain.AuditStatuses {
		counts.ByStatus[status] = 0
	}
	for _, a := range audits {
		counts.ByStatus[a.Status]++
	}
	return counts
}

// FilterExceptions keeps exceptions whose description, category or audit
// reference contains the search term and whose severity and status match.
func FilterExceptions(exceptions []Exception, f ExceptionFilter) []Exception {
	out := make([]Exception, 0, len(exceptions))
	for _, e := range exceptions {
		if !containsFold(f.Search, e.Description, e.Category, e.AuditID) {
			continue
		}
		if !matchesSelect(f.Severity, string(e.Severity)) || !matchesSelect(f.Status, string(e.Status)) {
			continue
		}
		out = append(out, e)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// CountExceptionsBySeverity counts exceptions per severity. All four levels
// are always reported.
func CountExceptionsBySeverity(exceptions []Exception) map[domain.ExceptionSeverity]int {
	counts := make(map[domain.ExceptionSeverity]int, len(domain.ExceptionSeverities))
	for _, sev := range domain.ExceptionSeverities {
		counts[sev] = 0
	}
	for _, e := range exceptions {
		counts[e.Severity]++
	}
	return counts
}

// OpenExceptionCount returns how many exceptions are still Open.
func OpenExceptionCount(exceptions []Exception) int {
	n := 0
	for _, e := range exceptions {
		if e.Status == domain.ExceptionOpen {
			n++
		}
	}
	return n
}

// CalendarDay is one cell of the planning calendar.
type CalendarDay struct {
	Date   string  `json:"date"`
	Audits []Audit `json:"audits"`
}

var scheduledLayouts = []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"}

// ParseScheduledDate reads an audit's scheduled date. Date-only values and
// RFC 3339 timestamps are accepted.
func ParseScheduledDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range scheduledLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CalendarMonth buckets audits by day for the given month. Audits with an
// unparseable scheduled date are skipped.
func CalendarMonth(audits []Audit, year int, month time.Month) []CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	out := make([]CalendarDay, days)
	for i := range out {
		out[i] = CalendarDay{Date: first.AddDate(0, 0, i).Format(time.DateOnly), Audits: []Audit{}}
	}
	for _, a := range audits {
		when, ok := ParseScheduledDate(a.ScheduledDate)
		if !ok {
			continue
		}
		if when.Year() != year || when.Month() != month {
			continue
		}
		idx := when.Day() - 1
		out[idx].Audits = append(out[idx].Audits, a)
	}
	return out
}

// AuditsOn returns audits scheduled on the same calendar day as date.
func AuditsOn(audits []Audit, date time.Time) []Audit {
	out := []Audit{}
	for _, a := range audits {
		when, ok := ParseScheduledDate(a.ScheduledDate)
		if ok && sameDay(when, date) {
			out = append(out, a)
		}
	}
	return out
}

// KPIPartition splits the KPI grid into its two rows.
type KPIPartition struct {
	Primary   []KPI `json:"primary"`
	Secondary []KPI `json:"secondary"`
}

// PartitionKPIs separates primary from secondary KPIs, keeping order.
func PartitionKPIs(kpis []KPI) KPIPartition {
	p := KPIPartition{Primary: []KPI{}, Secondary: []KPI{}}
	for _, k := range kpis {
		if k.IsPrimary {
			p.Primary = append(p.Primary, k)
		} else {
			p.Secondary = append(p.Secondary, k)
		}
	}
	return p
}

// HeatMap is the store performance grid with its region selector.
type HeatMap struct {
	Regions []string      `json:"regions"`
	Region  string        `json:"region"`
	Stores  []HeatMapCell `json:"stores"`
}

// HeatMapCell is a store coloured by its performance band.
type HeatMapCell struct {
	Store
	Rating domain.Rating `json:"rating"`
}

// PerformanceRating bands a performance score: 90 and above is green, 70 and
// above is amber, anything lower is red.
func PerformanceRating(score float64) domain.Rating {
	switch {
	case score >= 90:
		return domain.RatingGreen
	case score >= 70:
		return domain.RatingAmber
	}
	return domain.RatingRed
}

// Regions lists distinct store regions in first-seen order.
func Regions(stores []Store) []string {
	seen := make(map[string]struct{}, len(stores))
	out := []string{}
	for _, s := range stores {
		if _, ok := seen[s.Region]; ok {
			continue
		}
		seen[s.Region] = struct{}{}
		out = append(out, s.Region)
	}
	return out
}

// BuildHeatMap filters stores to region. An empty region or "all" keeps
// every store.
func BuildHeatMap(stores []Store, region string) HeatMap {
	if region == "" {
		region = FilterAll
	}
	hm := HeatMap{Regions: Regions(stores), Region: region, Stores: []HeatMapCell{}}
	for _, s := range stores {
		if matchesSelect(region, s.Region) {
			hm.Stores = append(hm.Stores, HeatMapCell{Store: s, Rating: PerformanceRating(s.PerformanceScore)})
		}
	}
	return hm
}

// RegionCount is one slice of the stores-by-region chart.
type RegionCount struct {
	Region string `json:"region"`
	Stores int    `json:"stores"`
}

// StoresPerRegion counts stores per region in first-seen order.
func StoresPerRegion(stores []Store) []RegionCount {
	regions := Regions(stores)
	counts := make(map[string]int, len(regions))
	for _, s := range stores {
		counts[s.Region]++
	}
	out := make([]RegionCount, 0, len(regions))
	for _, r := range regions {
		out = append(out, RegionCount{Region: r, Stores: counts[r]})
	}
	return out
}

// TopStores returns up to n stores by performance score, highest first.
// Ties keep their original order. The input slice is not modified.
func TopStores(stores []Store, n int) []Store {
	ranked := make([]Store, len(stores))
	copy(ranked, stores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PerformanceScore > ranked[j].PerformanceScore
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
