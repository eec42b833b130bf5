package core

import (
	"errors"
	"strings"
)

const (
	IntervalMonthly   Interval = "monthly"
	IntervalQuarterly Interval = "quarterly"
	IntervalYearly    Interval = "yearly"
)

type (
	// Interval is the recurrence at which a KPI expects a new value.
	// Periods are month-granular, so every interval is a whole number
	// of months.
	Interval string

	// KPI is a Key Performance Indicator: a named metric with a target
	// value and a recurrence interval. Related KPIValue rows reference
	// it by ID; there is no in-memory back-reference.
	KPI struct {
		ID          int64 // Database ID for operations
		Name        string
		Description string
		Target      DecimalValue
		Interval    Interval
		Owner       string
	}

	// KPIValue is a single recorded measurement for one KPI at one
	// Period. At most one value per (KPI, Period) pair; the storage
	// schema enforces this with a unique index.
	KPIValue struct {
		ID      int64
		KPIID   int64
		Period  Period
		Value   DecimalValue
		Comment string
	}

	// KPIFile is attachment metadata for a recorded value. The blob
	// itself lives on disk at Path.
	KPIFile struct {
		ID        int64
		ValueID   int64
		Filename  string
		Path      string
		SizeBytes int64
	}
)

var (
	ErrEmptyName       = errors.New("empty KPI name")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrEmptyFilename   = errors.New("empty attachment filename")
)

// Valid reports whether the interval is one of the supported recurrences.
func (i Interval) Valid() bool {
	switch i {
	case IntervalMonthly, IntervalQuarterly, IntervalYearly:
		return true
	default:
		return false
	}
}

// Months returns the interval length in months, or 0 for an invalid
// interval.
func (i Interval) Months() int {
	switch i {
	case IntervalMonthly:
		return 1
	case IntervalQuarterly:
		return 3
	case IntervalYearly:
		return 12
	default:
		return 0
	}
}

func (k KPI) Validate() error {
	if len(strings.TrimSpace(k.Name)) == 0 {
		return ErrEmptyName
	}
	if len(k.Name) > 200 {
		return errors.New("KPI name too long (max 200 characters)")
	}
	if !k.Interval.Valid() {
		return ErrInvalidInterval
	}
	if len(k.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

func (v KPIValue) Validate() error {
	if v.KPIID <= 0 {
		return errors.New("value must reference a KPI")
	}
	if v.Period.IsZero() {
		return ErrInvalidPeriod
	}
	if len(v.Comment) > 500 {
		return errors.New("comment too long (max 500 characters)")
	}
	return nil
}

func (f KPIFile) Validate() error {
	if len(strings.TrimSpace(f.Filename)) == 0 {
		return ErrEmptyFilename
	}
	if f.ValueID <= 0 {
		return errors.New("attachment must reference a value")
	}
	if f.SizeBytes < 0 {
		return errors.New("negative attachment size")
	}
	return nil
}
