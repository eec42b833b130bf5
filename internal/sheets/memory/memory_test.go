package memory

import (
	"context"
	"testing"

	ports "kpitrack/internal/sheets"
)

func TestAppendAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, ports.ValueRow{Period: "2024-09", KPI: "Revenue", Value: "4750,25"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:1" {
		t.Fatalf("unexpected ref: %s", ref)
	}

	if _, err := s.Append(ctx, ports.ValueRow{Period: "2024-09"}); err == nil {
		t.Fatalf("expected error for incomplete row")
	}

	if err := s.Delete(ctx, ports.ValueRow{Period: "2024-09", KPI: "Revenue"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.Rows()) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(s.Rows()))
	}

	// Deleting a row the target never saw is not an error
	if err := s.Delete(ctx, ports.ValueRow{Period: "2024-01", KPI: "Churn"}); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}
