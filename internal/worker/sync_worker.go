package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kpitrack/internal/amqp"
	"kpitrack/internal/core"
	"kpitrack/internal/sheets"
	"kpitrack/internal/storage"
)

// SyncWorker exports recorded KPI values from SQLite to the configured
// export target and keeps the sync bookkeeping columns up to date.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.ValueWriter
	deleter   sheets.ValueDeleter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, writer sheets.ValueWriter, deleter sheets.ValueDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single value sync message from AMQP.
// The message carries identifiers only; the current row is read back from
// the database so the export always reflects the latest edit.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ValueSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"value_id", msg.ValueID,
		"kpi_id", msg.KPIID)

	return w.exportValue(ctx, msg.ValueID)
}

// HandleDeleteMessage processes a single value delete message from AMQP.
// The local row is gone by now, so the row in the export target is located
// from the data carried in the message.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.ValueDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		"value_id", msg.ValueID,
		"kpi_id", msg.KPIID,
		"period", msg.Period)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No value deleter configured, skipping export deletion",
			"value_id", msg.ValueID)
		return nil
	}

	row := sheets.ValueRow{
		Period: msg.Period,
		KPI:    msg.KPIName,
	}
	if err := w.deleter.Delete(ctx, row); err != nil {
		return fmt.Errorf("delete exported value: %w", err)
	}

	slog.InfoContext(ctx, "Deleted exported value",
		"value_id", msg.ValueID,
		"period", msg.Period)
	return nil
}

// ProcessPendingValues exports values that have not been synced yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingValues(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncValues(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending values: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending values", "count", len(pending))

	for _, p := range pending {
		if err := w.exportValue(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync value", "value_id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck exports any pending values at worker startup. This
// recovers from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	// Larger batch for the startup pass
	pending, err := w.storage.GetPendingSyncValues(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending values for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending values found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending values on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.exportValue(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync value during startup",
				"value_id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) exportValue(ctx context.Context, valueID int64) error {
	v, err := w.storage.GetValue(ctx, valueID)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, valueID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "value_id", valueID, "error", markErr)
		}
		return fmt.Errorf("get value from storage: %w", err)
	}

	k, err := w.storage.GetKPI(ctx, v.KPIID)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, valueID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "value_id", valueID, "error", markErr)
		}
		return fmt.Errorf("get kpi from storage: %w", err)
	}

	row := valueRow(k, v)
	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, valueID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "value_id", valueID, "error", markErr)
		}
		return fmt.Errorf("append to export target: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, valueID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "value_id", valueID, "error", err)
		// Don't return an error here - the export actually worked
	}

	slog.InfoContext(ctx, "Successfully synced value",
		"value_id", valueID,
		"kpi", k.Name,
		"period", v.Period.Format(),
		"row_ref", ref)

	return nil
}

func valueRow(k core.KPI, v core.KPIValue) sheets.ValueRow {
	return sheets.ValueRow{
		Period:  v.Period.Format(),
		KPI:     k.Name,
		Value:   v.Value.Format(),
		Comment: v.Comment,
	}
}
