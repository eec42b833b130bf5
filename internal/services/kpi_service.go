package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"kpitrack/internal/amqp"
	"kpitrack/internal/core"
	"kpitrack/internal/storage"
)

// KPIService orchestrates KPI and value operations across SQLite and AMQP
type KPIService struct {
	storage        *storage.SQLiteRepository
	amqpClient     *amqp.Client
	reports        *ReportService
	attachmentsDir string
}

func NewKPIService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, reports *ReportService, attachmentsDir string) *KPIService {
	return &KPIService{
		storage:        storage,
		amqpClient:     amqpClient,
		reports:        reports,
		attachmentsDir: attachmentsDir,
	}
}

// CreateKPI defines a new KPI.
func (s *KPIService) CreateKPI(ctx context.Context, k core.KPI) (core.KPI, error) {
	if err := s.storage.CreateKPI(ctx, &k); err != nil {
		return core.KPI{}, fmt.Errorf("create kpi: %w", err)
	}
	return k, nil
}

// ListKPIs returns all defined KPIs.
func (s *KPIService) ListKPIs(ctx context.Context) ([]core.KPI, error) {
	return s.storage.ListKPIs(ctx)
}

// DeleteKPI removes a KPI with all its values and attachments.
func (s *KPIService) DeleteKPI(ctx context.Context, id int64) error {
	if err := s.storage.DeleteKPI(ctx, id); err != nil {
		return fmt.Errorf("delete kpi: %w", err)
	}
	s.invalidateReport(id)
	return nil
}

// RecordValue saves a measurement locally and publishes a sync message.
// The local write is authoritative; export failures never fail the call.
func (s *KPIService) RecordValue(ctx context.Context, v core.KPIValue) (core.KPIValue, error) {
	if err := s.storage.RecordValue(ctx, &v); err != nil {
		return core.KPIValue{}, fmt.Errorf("record value: %w", err)
	}
	s.invalidateReport(v.KPIID)

	if err := s.publishSyncMessage(ctx, v.ID, v.KPIID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"value_id", v.ID, "error", err)
		// Don't fail the request - the value is saved locally
	}

	return v, nil
}

// UpdateValue replaces a measurement and schedules it for re-export.
func (s *KPIService) UpdateValue(ctx context.Context, v core.KPIValue) error {
	if err := s.storage.UpdateValue(ctx, v); err != nil {
		return fmt.Errorf("update value: %w", err)
	}
	s.invalidateReport(v.KPIID)

	if err := s.publishSyncMessage(ctx, v.ID, v.KPIID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"value_id", v.ID, "error", err)
	}
	return nil
}

// DeleteValue removes a measurement locally and publishes a delete
// message carrying the data the export target needs to find the row.
func (s *KPIService) DeleteValue(ctx context.Context, id int64) error {
	v, err := s.storage.GetValue(ctx, id)
	if err != nil {
		return fmt.Errorf("load value: %w", err)
	}
	k, err := s.storage.GetKPI(ctx, v.KPIID)
	if err != nil {
		return fmt.Errorf("load kpi: %w", err)
	}

	if err := s.storage.DeleteValue(ctx, id); err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	s.invalidateReport(v.KPIID)

	if err := s.publishDeleteMessage(ctx, amqp.NewValueDeleteMessage(v.ID, k.ID, k.Name, v.Period.Format())); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"value_id", id, "error", err)
		// Don't fail the request - the value is deleted locally
	}
	return nil
}

// GetValue loads a single recorded value.
func (s *KPIService) GetValue(ctx context.Context, id int64) (core.KPIValue, error) {
	return s.storage.GetValue(ctx, id)
}

// ListValues returns the recorded values of a KPI in period order.
func (s *KPIService) ListValues(ctx context.Context, kpiID int64) ([]core.KPIValue, error) {
	return s.storage.ListValuesByKPI(ctx, kpiID)
}

// AttachFile copies a local file into the attachments directory and
// records its metadata against the value.
func (s *KPIService) AttachFile(ctx context.Context, valueID int64, srcPath string) (core.KPIFile, error) {
	// Ensure the value exists before touching the filesystem
	if _, err := s.storage.GetValue(ctx, valueID); err != nil {
		return core.KPIFile{}, fmt.Errorf("load value: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return core.KPIFile{}, fmt.Errorf("open attachment: %w", err)
	}
	defer src.Close()

	filename := filepath.Base(srcPath)
	destDir := filepath.Join(s.attachmentsDir, fmt.Sprintf("%d", valueID))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return core.KPIFile{}, fmt.Errorf("create attachments directory: %w", err)
	}
	destPath := filepath.Join(destDir, filename)

	dest, err := os.Create(destPath)
	if err != nil {
		return core.KPIFile{}, fmt.Errorf("create attachment copy: %w", err)
	}
	defer dest.Close()

	size, err := io.Copy(dest, src)
	if err != nil {
		os.Remove(destPath)
		return core.KPIFile{}, fmt.Errorf("copy attachment: %w", err)
	}

	f := core.KPIFile{
		ValueID:   valueID,
		Filename:  filename,
		Path:      destPath,
		SizeBytes: size,
	}
	if err := s.storage.AddFile(ctx, &f); err != nil {
		os.Remove(destPath)
		return core.KPIFile{}, fmt.Errorf("save attachment metadata: %w", err)
	}

	slog.InfoContext(ctx, "Attachment saved",
		"value_id", valueID,
		"filename", filename,
		"size_bytes", size)

	return f, nil
}

// ListFiles returns attachment metadata for a recorded value.
func (s *KPIService) ListFiles(ctx context.Context, valueID int64) ([]core.KPIFile, error) {
	return s.storage.ListFiles(ctx, valueID)
}

func (s *KPIService) invalidateReport(kpiID int64) {
	if s.reports != nil {
		s.reports.Invalidate(kpiID)
	}
}

func (s *KPIService) publishSyncMessage(ctx context.Context, valueID, kpiID int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishValueSync(ctx, valueID, kpiID)
}

func (s *KPIService) publishDeleteMessage(ctx context.Context, msg *amqp.ValueDeleteMessage) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.amqpClient.PublishValueDelete(ctx, msg)
}

// Close closes both storage and AMQP connections
func (s *KPIService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close kpi service: %v", errs)
	}

	return nil
}
