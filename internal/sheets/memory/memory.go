// Package memory provides an in-memory export target for tests and
// local runs without Google credentials.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "kpitrack/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []ports.ValueRow
}

// Ensure interface conformance
var (
	_ ports.ValueWriter  = (*Store)(nil)
	_ ports.ValueDeleter = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row ports.ValueRow) (string, error) {
	if row.Period == "" || row.KPI == "" || row.Value == "" {
		return "", errors.New("incomplete value row")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Delete removes the first row matching (Period, KPI). Missing rows are
// not an error; the export target may never have seen them.
func (s *Store) Delete(_ context.Context, row ports.ValueRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.Period == row.Period && r.KPI == row.KPI {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the stored rows.
func (s *Store) Rows() []ports.ValueRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.ValueRow(nil), s.rows...)
}
