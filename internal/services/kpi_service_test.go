package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kpitrack/internal/core"
	"kpitrack/internal/storage"
)

func newTestService(t *testing.T) (*KPIService, *ReportService) {
	t.Helper()
	dir := t.TempDir()
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "kpitrack.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	reports := NewReportService(repo)
	// nil AMQP client: local-only mode, publishing is skipped
	svc := NewKPIService(repo, nil, reports, filepath.Join(dir, "files"))
	t.Cleanup(func() { svc.Close() })
	return svc, reports
}

func TestCreateAndRecordFlow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	target, err := core.ParseDecimalValue("4750,25")
	if err != nil {
		t.Fatalf("parse target: %v", err)
	}
	k, err := svc.CreateKPI(ctx, core.KPI{
		Name:     "Monthly Revenue",
		Target:   target,
		Interval: core.IntervalMonthly,
		Owner:    "finance",
	})
	if err != nil {
		t.Fatalf("create kpi: %v", err)
	}
	if k.ID == 0 {
		t.Fatalf("expected kpi id to be set")
	}

	value, err := core.ParseDecimalValue("5000,00")
	if err != nil {
		t.Fatalf("parse value: %v", err)
	}
	v, err := svc.RecordValue(ctx, core.KPIValue{
		KPIID:   k.ID,
		Period:  period(t, "2024-09"),
		Value:   value,
		Comment: "strong month",
	})
	if err != nil {
		t.Fatalf("record value: %v", err)
	}
	if v.ID == 0 {
		t.Fatalf("expected value id to be set")
	}

	// Same period again must fail, not overwrite
	_, err = svc.RecordValue(ctx, core.KPIValue{
		KPIID:  k.ID,
		Period: period(t, "2024-09"),
		Value:  value,
	})
	if !errors.Is(err, storage.ErrDuplicatePeriod) {
		t.Fatalf("expected ErrDuplicatePeriod, got %v", err)
	}

	kpis, err := svc.ListKPIs(ctx)
	if err != nil {
		t.Fatalf("list kpis: %v", err)
	}
	if len(kpis) != 1 {
		t.Fatalf("expected 1 kpi, got %d", len(kpis))
	}
}

func TestUpdateAndDeleteValueFlow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	k, err := svc.CreateKPI(ctx, core.KPI{
		Name:     "Churn",
		Target:   core.DecimalFromCents(500),
		Interval: core.IntervalMonthly,
	})
	if err != nil {
		t.Fatalf("create kpi: %v", err)
	}
	v, err := svc.RecordValue(ctx, core.KPIValue{
		KPIID:  k.ID,
		Period: period(t, "2024-09"),
		Value:  core.DecimalFromCents(450),
	})
	if err != nil {
		t.Fatalf("record value: %v", err)
	}

	v.Value = core.DecimalFromCents(475)
	v.Comment = "corrected"
	if err := svc.UpdateValue(ctx, v); err != nil {
		t.Fatalf("update value: %v", err)
	}

	if err := svc.DeleteValue(ctx, v.ID); err != nil {
		t.Fatalf("delete value: %v", err)
	}
	if err := svc.DeleteValue(ctx, v.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestAttachFile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	k, err := svc.CreateKPI(ctx, core.KPI{
		Name:     "Revenue",
		Target:   core.DecimalFromCents(100),
		Interval: core.IntervalMonthly,
	})
	if err != nil {
		t.Fatalf("create kpi: %v", err)
	}
	v, err := svc.RecordValue(ctx, core.KPIValue{
		KPIID:  k.ID,
		Period: period(t, "2024-09"),
		Value:  core.DecimalFromCents(100),
	})
	if err != nil {
		t.Fatalf("record value: %v", err)
	}

	srcPath := filepath.Join(t.TempDir(), "report.txt")
	if err := os.WriteFile(srcPath, []byte("quarterly numbers"), 0644); err != nil {
		t.Fatalf("write source file: %v", err)
	}

	f, err := svc.AttachFile(ctx, v.ID, srcPath)
	if err != nil {
		t.Fatalf("attach file: %v", err)
	}
	if f.Filename != "report.txt" || f.SizeBytes != int64(len("quarterly numbers")) {
		t.Fatalf("unexpected attachment metadata: %+v", f)
	}
	if _, err := os.Stat(f.Path); err != nil {
		t.Fatalf("expected attachment copy on disk: %v", err)
	}

	files, err := svc.ListFiles(ctx, v.ID)
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(files))
	}

	// Attachment against a missing value touches nothing
	if _, err := svc.AttachFile(ctx, 999, srcPath); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
