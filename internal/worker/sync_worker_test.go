package worker

import (
	"context"
	"path/filepath"
	"testing"

	"kpitrack/internal/amqp"
	"kpitrack/internal/core"
	"kpitrack/internal/sheets/memory"
	"kpitrack/internal/storage"
)

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "kpitrack.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	store := memory.New()
	return NewSyncWorker(repo, store, store, 10), repo, store
}

func seedValue(t *testing.T, repo *storage.SQLiteRepository, kpiName, periodStr string, cents int64) core.KPIValue {
	t.Helper()
	ctx := context.Background()
	k := core.KPI{Name: kpiName, Target: core.DecimalFromCents(100), Interval: core.IntervalMonthly}
	if err := repo.CreateKPI(ctx, &k); err != nil {
		t.Fatalf("create kpi: %v", err)
	}
	p, err := core.ParsePeriod(periodStr)
	if err != nil {
		t.Fatalf("parse period: %v", err)
	}
	v := core.KPIValue{KPIID: k.ID, Period: p, Value: core.DecimalFromCents(cents), Comment: "seeded"}
	if err := repo.RecordValue(ctx, &v); err != nil {
		t.Fatalf("record value: %v", err)
	}
	return v
}

func TestHandleSyncMessage(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()
	v := seedValue(t, repo, "Revenue", "2024-09", 475025)

	msg := amqp.NewValueSyncMessage(v.ID, v.KPIID)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("handle sync message: %v", err)
	}

	rows := store.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 exported row, got %d", len(rows))
	}
	row := rows[0]
	if row.Period != "2024-09" || row.KPI != "Revenue" || row.Value != "4750,25" || row.Comment != "seeded" {
		t.Fatalf("unexpected exported row: %+v", row)
	}

	// The exported value no longer counts as pending
	pending, err := repo.GetPendingSyncValues(ctx, 10)
	if err != nil {
		t.Fatalf("get pending values: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending values after sync, got %d", len(pending))
	}
}

func TestHandleSyncMessageMissingValue(t *testing.T) {
	w, _, store := newTestWorker(t)

	msg := amqp.NewValueSyncMessage(999, 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Fatalf("expected error for missing value")
	}
	if len(store.Rows()) != 0 {
		t.Fatalf("nothing should be exported for a missing value")
	}
}

func TestHandleDeleteMessage(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()
	v := seedValue(t, repo, "Revenue", "2024-09", 10000)

	if err := w.HandleSyncMessage(ctx, amqp.NewValueSyncMessage(v.ID, v.KPIID)); err != nil {
		t.Fatalf("handle sync message: %v", err)
	}
	if len(store.Rows()) != 1 {
		t.Fatalf("expected 1 exported row")
	}

	msg := amqp.NewValueDeleteMessage(v.ID, v.KPIID, "Revenue", "2024-09")
	if err := w.HandleDeleteMessage(ctx, msg); err != nil {
		t.Fatalf("handle delete message: %v", err)
	}
	if len(store.Rows()) != 0 {
		t.Fatalf("expected exported row to be removed")
	}
}

func TestHandleDeleteMessageNoDeleter(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "kpitrack.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	w := NewSyncWorker(repo, memory.New(), nil, 10)
	msg := amqp.NewValueDeleteMessage(1, 1, "Revenue", "2024-09")
	if err := w.HandleDeleteMessage(context.Background(), msg); err != nil {
		t.Fatalf("missing deleter should be skipped, got %v", err)
	}
}

func TestProcessPendingValues(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	seedValue(t, repo, "Revenue", "2024-08", 100)
	seedValue(t, repo, "Churn", "2024-08", 200)

	if err := w.ProcessPendingValues(ctx); err != nil {
		t.Fatalf("process pending values: %v", err)
	}
	if got := len(store.Rows()); got != 2 {
		t.Fatalf("expected 2 exported rows, got %d", got)
	}

	// Second pass finds nothing to do
	if err := w.ProcessPendingValues(ctx); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if got := len(store.Rows()); got != 2 {
		t.Fatalf("second pass should export nothing, got %d rows", got)
	}
}

func TestStartupSyncCheck(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()
	seedValue(t, repo, "Revenue", "2024-08", 100)

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("startup sync check: %v", err)
	}
	if got := len(store.Rows()); got != 1 {
		t.Fatalf("expected 1 exported row, got %d", got)
	}
}
