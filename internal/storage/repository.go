package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kpitrack/internal/core"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePeriod is returned when a second value is recorded for
	// the same (kpi, period) pair. The unique index on kpi_values is the
	// authoritative enforcement of this invariant.
	ErrDuplicatePeriod = errors.New("value already recorded for this period")
)

// PendingSyncValue identifies a recorded value that has not been exported yet.
type PendingSyncValue struct {
	ID        int64
	KPIID     int64
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Cascading deletes on kpi_values and kpi_files need this pragma
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateKPI inserts a new KPI and fills in its database ID.
func (r *SQLiteRepository) CreateKPI(ctx context.Context, k *core.KPI) error {
	if err := k.Validate(); err != nil {
		return fmt.Errorf("validate kpi: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO kpis (name, description, target_cents, interval, owner) VALUES (?, ?, ?, ?, ?)`,
		k.Name, k.Description, k.Target.Cents(), string(k.Interval), k.Owner)
	if err != nil {
		return fmt.Errorf("insert kpi: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("kpi insert id: %w", err)
	}
	k.ID = id

	slog.InfoContext(ctx, "KPI saved to SQLite",
		"kpi_id", k.ID,
		"kpi_name", k.Name,
		"target_cents", k.Target.Cents(),
		"interval", string(k.Interval))

	return nil
}

// GetKPI retrieves a KPI by ID.
func (r *SQLiteRepository) GetKPI(ctx context.Context, id int64) (core.KPI, error) {
	var (
		k           core.KPI
		targetCents int64
		interval    string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, target_cents, interval, owner FROM kpis WHERE id = ?`, id).
		Scan(&k.ID, &k.Name, &k.Description, &targetCents, &interval, &k.Owner)
	if errors.Is(err, sql.ErrNoRows) {
		return core.KPI{}, fmt.Errorf("kpi %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.KPI{}, fmt.Errorf("get kpi: %w", err)
	}
	k.Target = core.DecimalFromCents(targetCents)
	k.Interval = core.Interval(interval)
	return k, nil
}

// ListKPIs returns all KPIs ordered by name.
func (r *SQLiteRepository) ListKPIs(ctx context.Context) ([]core.KPI, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, target_cents, interval, owner FROM kpis ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list kpis: %w", err)
	}
	defer rows.Close()

	var kpis []core.KPI
	for rows.Next() {
		var (
			k           core.KPI
			targetCents int64
			interval    string
		)
		if err := rows.Scan(&k.ID, &k.Name, &k.Description, &targetCents, &interval, &k.Owner); err != nil {
			return nil, fmt.Errorf("scan kpi: %w", err)
		}
		k.Target = core.DecimalFromCents(targetCents)
		k.Interval = core.Interval(interval)
		kpis = append(kpis, k)
	}
	return kpis, rows.Err()
}

// UpdateKPI updates an existing KPI's mutable fields.
func (r *SQLiteRepository) UpdateKPI(ctx context.Context, k core.KPI) error {
	if err := k.Validate(); err != nil {
		return fmt.Errorf("validate kpi: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE kpis SET name = ?, description = ?, target_cents = ?, interval = ?, owner = ? WHERE id = ?`,
		k.Name, k.Description, k.Target.Cents(), string(k.Interval), k.Owner, k.ID)
	if err != nil {
		return fmt.Errorf("update kpi: %w", err)
	}
	return requireRow(res, k.ID)
}

// DeleteKPI removes a KPI and, via cascade, its values and attachments.
func (r *SQLiteRepository) DeleteKPI(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM kpis WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete kpi: %w", err)
	}
	return requireRow(res, id)
}

// RecordValue inserts a new KPI value and fills in its database ID.
// Recording a second value for the same (kpi, period) pair fails with
// ErrDuplicatePeriod.
func (r *SQLiteRepository) RecordValue(ctx context.Context, v *core.KPIValue) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("validate value: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO kpi_values (kpi_id, period, value_cents, comment) VALUES (?, ?, ?, ?)`,
		v.KPIID, v.Period.Format(), v.Value.Cents(), v.Comment)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("kpi %d period %s: %w", v.KPIID, v.Period, ErrDuplicatePeriod)
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return fmt.Errorf("kpi %d: %w", v.KPIID, ErrNotFound)
		}
		return fmt.Errorf("insert value: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("value insert id: %w", err)
	}
	v.ID = id

	slog.InfoContext(ctx, "KPI value saved to SQLite",
		"value_id", v.ID,
		"kpi_id", v.KPIID,
		"period", v.Period.Format(),
		"value_cents", v.Value.Cents())

	return nil
}

// UpdateValue replaces the measurement and comment of an existing value
// and marks it pending sync again.
func (r *SQLiteRepository) UpdateValue(ctx context.Context, v core.KPIValue) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("validate value: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE kpi_values SET value_cents = ?, comment = ?, synced_at = NULL, sync_error = 0 WHERE id = ?`,
		v.Value.Cents(), v.Comment, v.ID)
	if err != nil {
		return fmt.Errorf("update value: %w", err)
	}
	return requireRow(res, v.ID)
}

// DeleteValue removes a recorded value and, via cascade, its attachments.
func (r *SQLiteRepository) DeleteValue(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM kpi_values WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	return requireRow(res, id)
}

// GetValue retrieves a recorded value by ID.
func (r *SQLiteRepository) GetValue(ctx context.Context, id int64) (core.KPIValue, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kpi_id, period, value_cents, comment FROM kpi_values WHERE id = ?`, id)
	v, err := scanValue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.KPIValue{}, fmt.Errorf("value %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.KPIValue{}, fmt.Errorf("get value: %w", err)
	}
	return v, nil
}

// FindValueByKPIAndPeriod retrieves the single value recorded for a KPI
// at the given period, or ErrNotFound.
func (r *SQLiteRepository) FindValueByKPIAndPeriod(ctx context.Context, kpiID int64, period core.Period) (core.KPIValue, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kpi_id, period, value_cents, comment FROM kpi_values WHERE kpi_id = ? AND period = ?`,
		kpiID, period.Format())
	v, err := scanValue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.KPIValue{}, fmt.Errorf("kpi %d period %s: %w", kpiID, period, ErrNotFound)
	}
	if err != nil {
		return core.KPIValue{}, fmt.Errorf("find value: %w", err)
	}
	return v, nil
}

// ListValuesByKPI returns all values recorded for a KPI in chronological
// period order. The "YYYY-MM" text form sorts chronologically as-is.
func (r *SQLiteRepository) ListValuesByKPI(ctx context.Context, kpiID int64) ([]core.KPIValue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kpi_id, period, value_cents, comment FROM kpi_values WHERE kpi_id = ? ORDER BY period`,
		kpiID)
	if err != nil {
		return nil, fmt.Errorf("list values: %w", err)
	}
	defer rows.Close()

	var values []core.KPIValue
	for rows.Next() {
		v, err := scanValue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ListEntries loads the (period, value) pairs for a KPI, the input shape
// the aggregate queries operate on.
func (r *SQLiteRepository) ListEntries(ctx context.Context, kpiID int64) ([]core.Entry, error) {
	values, err := r.ListValuesByKPI(ctx, kpiID)
	if err != nil {
		return nil, err
	}
	entries := make([]core.Entry, len(values))
	for i, v := range values {
		entries[i] = core.Entry{Period: v.Period, Value: v.Value}
	}
	return entries, nil
}

// AddFile stores attachment metadata for a recorded value.
func (r *SQLiteRepository) AddFile(ctx context.Context, f *core.KPIFile) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validate file: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO kpi_files (value_id, filename, path, size_bytes) VALUES (?, ?, ?, ?)`,
		f.ValueID, f.Filename, f.Path, f.SizeBytes)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return fmt.Errorf("value %d: %w", f.ValueID, ErrNotFound)
		}
		return fmt.Errorf("insert file: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("file insert id: %w", err)
	}
	f.ID = id
	return nil
}

// ListFiles returns attachment metadata for a recorded value.
func (r *SQLiteRepository) ListFiles(ctx context.Context, valueID int64) ([]core.KPIFile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, value_id, filename, path, size_bytes FROM kpi_files WHERE value_id = ? ORDER BY id`,
		valueID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []core.KPIFile
	for rows.Next() {
		var f core.KPIFile
		if err := rows.Scan(&f.ID, &f.ValueID, &f.Filename, &f.Path, &f.SizeBytes); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFile removes attachment metadata.
func (r *SQLiteRepository) DeleteFile(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM kpi_files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return requireRow(res, id)
}

// GetPendingSyncValues returns values that have not been exported yet.
func (r *SQLiteRepository) GetPendingSyncValues(ctx context.Context, limit int) ([]PendingSyncValue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kpi_id, created_at FROM kpi_values WHERE synced_at IS NULL ORDER BY created_at LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync values: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncValue
	for rows.Next() {
		var (
			p         PendingSyncValue
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.KPIID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending value: %w", err)
		}
		// SQLite CURRENT_TIMESTAMP renders as "2006-01-02 15:04:05" UTC
		if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
			p.CreatedAt = t
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced marks a value as successfully exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE kpi_values SET synced_at = CURRENT_TIMESTAMP, sync_error = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark value synced: %w", err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "KPI value marked as synced", "value_id", id)
	return nil
}

// MarkSyncError marks a value as having export errors.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE kpi_values SET sync_error = sync_error + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark value sync error: %w", err)
	}
	return requireRow(res, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanValue(row rowScanner) (core.KPIValue, error) {
	var (
		v          core.KPIValue
		period     string
		valueCents int64
	)
	if err := row.Scan(&v.ID, &v.KPIID, &period, &valueCents, &v.Comment); err != nil {
		return core.KPIValue{}, err
	}
	p, err := core.ParsePeriod(period)
	if err != nil {
		return core.KPIValue{}, fmt.Errorf("stored period %q: %w", period, err)
	}
	v.Period = p
	v.Value = core.DecimalFromCents(valueCents)
	return v, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return nil
}
