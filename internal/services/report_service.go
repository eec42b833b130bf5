package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"kpitrack/internal/cache"
	"kpitrack/internal/core"
	"kpitrack/internal/storage"
)

// KPIReport is the aggregate view of one KPI: the latest, average, and
// maximum of its recorded values, whether the latest meets the target,
// and the periods still missing a value.
type KPIReport struct {
	KPI        core.KPI
	EntryCount int

	// Latest and Max are nil when no values have been recorded.
	Latest  *core.Entry
	Max     *core.Entry
	Average float64

	// OnTarget reports whether the latest value meets or exceeds the
	// KPI target. Always false with no recorded values.
	OnTarget bool

	DuePeriods []core.Period
}

const (
	reportCacheSize = 128
	reportCacheTTL  = 5 * time.Minute
	reportFanout    = 4
)

// ReportService builds KPI reports from stored values using the core
// aggregate queries. Reports are cached; writes invalidate per KPI.
type ReportService struct {
	storage *storage.SQLiteRepository
	reports *cache.LRUCache[KPIReport]
}

func NewReportService(storage *storage.SQLiteRepository) *ReportService {
	return &ReportService{
		storage: storage,
		reports: cache.NewLRUCache[KPIReport](reportCacheSize, reportCacheTTL),
	}
}

// RegisterCaches adds the report cache to a cache manager for periodic
// cleanup of expired entries.
func (s *ReportService) RegisterCaches(m *cache.Manager) {
	m.Register(s.reports)
}

// Invalidate drops the cached report for a KPI after a write.
func (s *ReportService) Invalidate(kpiID int64) {
	s.reports.Delete(reportKey(kpiID))
}

// BuildReport builds the aggregate report for one KPI. now anchors the
// due-period computation, normally core.PeriodOf(time.Now()).
func (s *ReportService) BuildReport(ctx context.Context, kpiID int64, now core.Period) (KPIReport, error) {
	key := reportKey(kpiID)
	if cached, ok := s.reports.Get(key); ok {
		slog.DebugContext(ctx, "Report served from cache", "kpi_id", kpiID)
		return cached, nil
	}

	kpi, err := s.storage.GetKPI(ctx, kpiID)
	if err != nil {
		return KPIReport{}, fmt.Errorf("load kpi: %w", err)
	}

	entries, err := s.storage.ListEntries(ctx, kpiID)
	if err != nil {
		return KPIReport{}, fmt.Errorf("load entries: %w", err)
	}

	report, err := buildReport(kpi, entries, now)
	if err != nil {
		return KPIReport{}, err
	}

	s.reports.Set(key, report)
	return report, nil
}

// BuildAllReports builds reports for every KPI, fanning out across a
// bounded worker group. Results follow ListKPIs order.
func (s *ReportService) BuildAllReports(ctx context.Context, now core.Period) ([]KPIReport, error) {
	kpis, err := s.storage.ListKPIs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list kpis: %w", err)
	}

	reports := make([]KPIReport, len(kpis))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportFanout)

	for i, k := range kpis {
		g.Go(func() error {
			r, err := s.BuildReport(gctx, k.ID, now)
			if err != nil {
				return fmt.Errorf("kpi %d: %w", k.ID, err)
			}
			reports[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func buildReport(kpi core.KPI, entries []core.Entry, now core.Period) (KPIReport, error) {
	report := KPIReport{
		KPI:        kpi,
		EntryCount: len(entries),
	}

	var last core.Period
	if len(entries) > 0 {
		latest, err := core.Latest(entries)
		if err != nil {
			return KPIReport{}, fmt.Errorf("latest: %w", err)
		}
		report.Latest = &latest
		report.OnTarget = latest.Value.Cmp(kpi.Target) >= 0
		last = latest.Period

		max, err := core.Max(entries)
		if err != nil {
			return KPIReport{}, fmt.Errorf("max: %w", err)
		}
		report.Max = &max

		avg, err := core.Average(entries)
		if err != nil {
			return KPIReport{}, fmt.Errorf("average: %w", err)
		}
		report.Average = avg
	}

	due, err := DuePeriods(kpi, last, now)
	if err != nil {
		return KPIReport{}, fmt.Errorf("due periods: %w", err)
	}
	report.DuePeriods = due

	return report, nil
}

func reportKey(kpiID int64) string {
	return fmt.Sprintf("kpi:%d", kpiID)
}
