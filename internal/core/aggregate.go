package core

import "errors"

// Entry is one (Period, DecimalValue) pair for a single KPI. The storage
// layer is responsible for filtering by KPI and loading the slice; the
// aggregate functions below are pure and make no assumptions about input
// order or (kpi, period) uniqueness.
type Entry struct {
	Period Period
	Value  DecimalValue
}

// ErrNoEntries is returned by aggregate queries invoked with zero entries.
var ErrNoEntries = errors.New("no entries")

// Latest returns the entry with the chronologically greatest period.
// When duplicate periods slip in, the first entry holding the greatest
// period wins. Returns ErrNoEntries on empty input.
func Latest(entries []Entry) (Entry, error) {
	if len(entries) == 0 {
		return Entry{}, ErrNoEntries
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if best.Period.Before(e.Period) {
			best = e
		}
	}
	return best, nil
}

// Average returns the arithmetic mean of all entry values. Returns
// ErrNoEntries on empty input rather than dividing by zero. The sum is
// carried in exact cents; only the final division is floating point.
func Average(entries []Entry) (float64, error) {
	if len(entries) == 0 {
		return 0, ErrNoEntries
	}
	var sum int64
	for _, e := range entries {
		sum += e.Value.Cents()
	}
	return float64(sum) / 100.0 / float64(len(entries)), nil
}

// Max returns the entry with the numerically greatest value, ties broken
// by earliest period. Returns ErrNoEntries on empty input.
func Max(entries []Entry) (Entry, error) {
	if len(entries) == 0 {
		return Entry{}, ErrNoEntries
	}
	best := entries[0]
	for _, e := range entries[1:] {
		switch e.Value.Cmp(best.Value) {
		case 1:
			best = e
		case 0:
			if e.Period.Before(best.Period) {
				best = e
			}
		}
	}
	return best, nil
}
