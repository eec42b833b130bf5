package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kpitrack/internal/cache"
	"kpitrack/internal/cli"
	"kpitrack/internal/core"
	applog "kpitrack/internal/log"
	"kpitrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentReminder)
	logger.Info("Starting kpitrack-reminder")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	reports := services.NewReportService(repo)

	// Reports are cached between scans; expired entries get swept in the
	// background so repeated scans over a stable set stay cheap.
	cacheManager := cache.NewManager()
	reports.RegisterCaches(cacheManager)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Reminder scan configured",
		"interval", cfg.ReminderInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

	// Run an initial scan on startup
	scanDueKPIs(ctx, logger, reports, cfg.MonthLocale)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scanDueKPIs(ctx, logger, reports, cfg.MonthLocale)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}
}

// scanDueKPIs logs a reminder for every KPI that is missing values for
// one or more periods.
func scanDueKPIs(ctx context.Context, logger *applog.Logger, reports *services.ReportService, locale core.Locale) {
	now := core.PeriodOf(time.Now())

	all, err := reports.BuildAllReports(ctx, now)
	if err != nil {
		logger.Error("Reminder scan failed", applog.FieldError, err)
		return
	}

	dueCount := 0
	for _, r := range all {
		if len(r.DuePeriods) == 0 {
			continue
		}
		dueCount++

		periods := make([]string, len(r.DuePeriods))
		for i, p := range r.DuePeriods {
			periods[i] = p.DisplayName(locale)
		}
		logger.Info("KPI is missing values",
			applog.FieldKPIID, r.KPI.ID,
			applog.FieldKPIName, r.KPI.Name,
			"interval", string(r.KPI.Interval),
			"owner", r.KPI.Owner,
			"due_periods", periods)
	}

	logger.Info("Reminder scan complete",
		"kpis", len(all),
		"kpis_due", dueCount,
		"next_scan", time.Now().Format("15:04:05"))
}
