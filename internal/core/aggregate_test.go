package core

import (
	"errors"
	"testing"
)

func entry(t *testing.T, period, value string) Entry {
	t.Helper()
	p, err := ParsePeriod(period)
	if err != nil {
		t.Fatalf("parse period %q: %v", period, err)
	}
	v, err := ParseDecimalValue(value)
	if err != nil {
		t.Fatalf("parse value %q: %v", value, err)
	}
	return Entry{Period: p, Value: v}
}

func TestLatest(t *testing.T) {
	entries := []Entry{
		entry(t, "2024-08", "200,00"),
		entry(t, "2024-07", "100,00"),
		entry(t, "2024-09", "300,00"),
	}
	got, err := Latest(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Period.Format() != "2024-09" || got.Value.Format() != "300,00" {
		t.Fatalf("expected 300,00@2024-09, got %s@%s", got.Value, got.Period)
	}
}

func TestLatestDuplicatePeriods(t *testing.T) {
	// Uniqueness per (kpi, period) is a storage concern; in memory the
	// first entry holding the greatest period wins.
	entries := []Entry{
		entry(t, "2024-09", "100,00"),
		entry(t, "2024-09", "999,00"),
	}
	got, err := Latest(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value.Format() != "100,00" {
		t.Fatalf("expected first duplicate to win, got %s", got.Value)
	}
}

func TestAverage(t *testing.T) {
	entries := []Entry{
		entry(t, "2024-07", "100,00"),
		entry(t, "2024-08", "200,00"),
		entry(t, "2024-09", "300,00"),
	}
	got, err := Average(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 200.0 {
		t.Fatalf("expected 200.0, got %v", got)
	}
}

func TestAverageSingleEntry(t *testing.T) {
	got, err := Average([]Entry{entry(t, "2024-07", "4750,25")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4750.25 {
		t.Fatalf("expected 4750.25, got %v", got)
	}
}

func TestMax(t *testing.T) {
	entries := []Entry{
		entry(t, "2024-07", "100,00"),
		entry(t, "2024-08", "200,00"),
		entry(t, "2024-09", "300,00"),
	}
	got, err := Max(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Period.Format() != "2024-09" || got.Value.Format() != "300,00" {
		t.Fatalf("expected 300,00@2024-09, got %s@%s", got.Value, got.Period)
	}
}

func TestMaxTieBreaksEarliestPeriod(t *testing.T) {
	entries := []Entry{
		entry(t, "2024-09", "300,00"),
		entry(t, "2024-07", "300,00"),
		entry(t, "2024-08", "100,00"),
	}
	got, err := Max(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Period.Format() != "2024-07" {
		t.Fatalf("expected tie to break to 2024-07, got %s", got.Period)
	}
}

func TestMaxNegativeValues(t *testing.T) {
	entries := []Entry{
		entry(t, "2024-07", "-300,00"),
		entry(t, "2024-08", "-100,50"),
	}
	got, err := Max(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value.Format() != "-100,50" {
		t.Fatalf("expected -100,50, got %s", got.Value)
	}
}

func TestAggregatesEmptyInput(t *testing.T) {
	if _, err := Latest(nil); !errors.Is(err, ErrNoEntries) {
		t.Fatalf("Latest(nil) expected ErrNoEntries, got %v", err)
	}
	if _, err := Average(nil); !errors.Is(err, ErrNoEntries) {
		t.Fatalf("Average(nil) expected ErrNoEntries, got %v", err)
	}
	if _, err := Max(nil); !errors.Is(err, ErrNoEntries) {
		t.Fatalf("Max(nil) expected ErrNoEntries, got %v", err)
	}
}
