package core

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"auditdesk/pkg/domain"
)

// RecentExceptionsLimit caps the exception feed on the dashboard.
const RecentExceptionsLimit = 8

// TopStoresLimit caps the top performers table on the reports page.
const TopStoresLimit = 5

// DashboardView is the executive dashboard.
type DashboardView struct {
	KPIs             KPIPartition `json:"kpis"`
	HeatMap          HeatMap      `json:"heatMap"`
	RecentExceptions []Exception  `json:"recentExceptions"`
}

// PlanningView is the audit calendar for one month plus one selected day.
type PlanningView struct {
	Month        string        `json:"month"`
	Days         []CalendarDay `json:"days"`
	SelectedDate string        `json:"selectedDate"`
	Selected     []Audit       `json:"selected"`
}

// AuditsPageView is the searchable audit table.
type AuditsPageView struct {
	Counts AuditCounts `json:"counts"`
	Audits []Audit     `json:"audits"`
}

// ExceptionsPageView is the searchable exception tracker.
type ExceptionsPageView struct {
	Total      int                              `json:"total"`
	BySeverity map[domain.ExceptionSeverity]int `json:"bySeverity"`
	Exceptions []Exception                      `json:"exceptions"`
}

// ReportsView aggregates the charts on the reports page.
type ReportsView struct {
	KPIs                 []KPI                            `json:"kpis"`
	StoresByRegion       []RegionCount                    `json:"storesByRegion"`
	ExceptionsBySeverity map[domain.ExceptionSeverity]int `json:"exceptionsBySeverity"`
	TotalExceptions      int                              `json:"totalExceptions"`
	OpenExceptions       int                              `json:"openExceptions"`
	TopStores            []Store                          `json:"topStores"`
}

// Dashboard loads KPIs, stores and exceptions concurrently. The heat map is
// narrowed to region when one is given.
func (s *Service) Dashboard(ctx context.Context, region string) (DashboardView, error) {
	var (
		kpis       []KPI
		stores     []Store
		exceptions []Exception
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		kpis, err = s.ListKPIs(gctx)
		return err
	})
	g.Go(func() (err error) {
		stores, err = s.ListStores(gctx)
		return err
	})
	g.Go(func() (err error) {
		exceptions, err = s.ListExceptions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardView{}, err
	}
	return DashboardView{
		KPIs:             PartitionKPIs(kpis),
		HeatMap:          BuildHeatMap(stores, region),
		RecentExceptions: FilterExceptions(exceptions, ExceptionFilter{Limit: RecentExceptionsLimit}),
	}, nil
}

// Planning buckets audits into the month containing month and lists the
// audits scheduled on day.
func (s *Service) Planning(ctx context.Context, month, day time.Time) (PlanningView, error) {
	audits, err := s.ListAudits(ctx)
	if err != nil {
		return PlanningView{}, err
	}
	return PlanningView{
		Month:        month.Format("2006-01"),
		Days:         CalendarMonth(audits, month.Year(), month.Month()),
		SelectedDate: day.Format(time.DateOnly),
		Selected:     AuditsOn(audits, day),
	}, nil
}

// AuditsPage lists audits matching filter. Counts cover the unfiltered table.
func (s *Service) AuditsPage(ctx context.Context, filter AuditFilter) (AuditsPageView, error) {
	audits, err := s.ListAudits(ctx)
	if err != nil {
		return AuditsPageView{}, err
	}
	return AuditsPageView{
		Counts: CountAuditsByStatus(audits),
		Audits: FilterAudits(audits, filter),
	}, nil
}

// ExceptionsPage lists exceptions matching filter. Severity counts cover the
// unfiltered list.
func (s *Service) ExceptionsPage(ctx context.Context, filter ExceptionFilter) (ExceptionsPageView, error) {
	exceptions, err := s.ListExceptions(ctx)
	if err != nil {
		return ExceptionsPageView{}, err
	}
	return ExceptionsPageView{
		Total:      len(exceptions),
		BySeverity: CountExceptionsBySeverity(exceptions),
		Exceptions: FilterExceptions(exceptions, filter),
	}, nil
}

// Reports loads KPIs, stores and exceptions concurrently and derives the
// report charts.
func (s *Service) Reports(ctx context.Context) (ReportsView, error) {
	var (
		kpis       []KPI
		stores     []Store
		exceptions []Exception
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		kpis, err = s.ListKPIs(gctx)
		return err
	})
	g.Go(func() (err error) {
		stores, err = s.ListStores(gctx)
		return err
	})
	g.Go(func() (err error) {
		exceptions, err = s.ListExceptions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return ReportsView{}, err
	}
	return ReportsView{
		KPIs:                 kpis,
		StoresByRegion:       StoresPerRegion(stores),
		ExceptionsBySeverity: CountExceptionsBySeverity(exceptions),
		TotalExceptions:      len(exceptions),
		OpenExceptions:       OpenExceptionCount(exceptions),
		TopStores:            TopStores(stores, TopStoresLimit),
	}, nil
}
