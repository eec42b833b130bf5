package sheets

import "context"

// ValueRow is the flat, display-ready form of a recorded KPI value as it
// appears in an export target. Value carries the canonical comma-decimal
// rendering.
type ValueRow struct {
	Period  string // "YYYY-MM"
	KPI     string
	Value   string // "4750,25"
	Comment string
}

// Ports for outbound export adapters.
type (
	ValueWriter interface {
		Append(ctx context.Context, row ValueRow) (rowRef string, err error)
	}

	// ValueDeleter removes an exported row. Rows are located by
	// (Period, KPI) since the local database row is gone by the time
	// a delete is processed.
	ValueDeleter interface {
		Delete(ctx context.Context, row ValueRow) error
	}
)
