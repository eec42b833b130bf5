// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for KPI dueness checking.
// Each interval (monthly, quarterly, yearly) has its own strategy that
// encapsulates when the next value is expected.
package services

import (
	"fmt"

	"kpitrack/internal/core"
)

// DuenessChecker is the strategy interface for computing when a KPI
// expects its next value.
type DuenessChecker interface {
	// NextDue returns the first period after last at which a new value
	// is expected.
	NextDue(last core.Period) core.Period
}

// MonthlyChecker implements DuenessChecker for monthly KPIs.
type MonthlyChecker struct{}

func (MonthlyChecker) NextDue(last core.Period) core.Period {
	return last.AddMonths(1)
}

// QuarterlyChecker implements DuenessChecker for quarterly KPIs.
type QuarterlyChecker struct{}

func (QuarterlyChecker) NextDue(last core.Period) core.Period {
	return last.AddMonths(3)
}

// YearlyChecker implements DuenessChecker for yearly KPIs.
type YearlyChecker struct{}

func (YearlyChecker) NextDue(last core.Period) core.Period {
	return last.AddMonths(12)
}

// duenessStrategies maps intervals to their corresponding checkers.
var duenessStrategies = map[core.Interval]DuenessChecker{
	core.IntervalMonthly:   MonthlyChecker{},
	core.IntervalQuarterly: QuarterlyChecker{},
	core.IntervalYearly:    YearlyChecker{},
}

// GetDuenessChecker returns the appropriate dueness checker for an interval.
// Returns an error if the interval is not supported.
func GetDuenessChecker(interval core.Interval) (DuenessChecker, error) {
	checker, ok := duenessStrategies[interval]
	if !ok {
		return nil, fmt.Errorf("unknown interval: %s", interval)
	}
	return checker, nil
}

// RegisterDuenessChecker allows registering custom checkers for new
// interval types without modifying the dispatch.
func RegisterDuenessChecker(interval core.Interval, checker DuenessChecker) {
	duenessStrategies[interval] = checker
}

// DuePeriods returns the periods at which k expects a value but none has
// been recorded yet, up to and including now. last is the period of the
// most recent recorded value; a KPI with no values is due for the
// current period only.
func DuePeriods(k core.KPI, last core.Period, now core.Period) ([]core.Period, error) {
	if now.Before(last) || now == last {
		return nil, nil
	}
	if last.IsZero() {
		return []core.Period{now}, nil
	}

	checker, err := GetDuenessChecker(k.Interval)
	if err != nil {
		return nil, err
	}

	var due []core.Period
	for p := checker.NextDue(last); !now.Before(p); p = checker.NextDue(p) {
		due = append(due, p)
	}
	return due, nil
}
