package backend

import (
	"context"
	"fmt"
	"log/slog"

	"kpitrack/internal/config"
	gsheet "kpitrack/internal/sheets/google"
	"kpitrack/internal/sheets/memory"
)

// CreateExportTarget builds the export adapters named by the config.
func CreateExportTarget(ctx context.Context, cfg *config.Config) (*Result, error) {
	target := ExportTarget(cfg.ExportBackend)
	if !target.IsValid() {
		return nil, fmt.Errorf("invalid export target: %s", cfg.ExportBackend)
	}

	switch target {
	case NoTarget:
		slog.InfoContext(ctx, "Export disabled, values stay local")
		return &Result{}, nil

	case MemoryTarget:
		store := memory.New()
		slog.InfoContext(ctx, "Initialized in-memory export target")
		return &Result{Writer: store, Deleter: store}, nil

	case GoogleTarget:
		cli, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		slog.InfoContext(ctx, "Initialized Google Sheets export target",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet_name", cfg.GoogleSheetName)
		return &Result{Writer: cli, Deleter: cli}, nil

	default:
		return nil, fmt.Errorf("unsupported export target: %s", target)
	}
}
