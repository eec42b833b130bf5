package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestKPIValidate(t *testing.T) {
	good := KPI{
		Name:     "Monthly Revenue",
		Target:   DecimalFromCents(475025),
		Interval: IntervalMonthly,
		Owner:    "finance",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		kpi  KPI
		want error
	}{
		{KPI{Name: "", Interval: IntervalMonthly}, ErrEmptyName},
		{KPI{Name: "   ", Interval: IntervalMonthly}, ErrEmptyName},
		{KPI{Name: "x", Interval: "weekly"}, ErrInvalidInterval},
		{KPI{Name: "x", Interval: ""}, ErrInvalidInterval},
	}
	for i, tc := range cases {
		err := tc.kpi.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}

	long := good
	long.Name = strings.Repeat("a", 201)
	if err := long.Validate(); err == nil {
		t.Fatalf("expected error for long name")
	}
}

func TestKPIValueValidate(t *testing.T) {
	good := KPIValue{
		KPIID:  1,
		Period: NewPeriod(2024, time.September),
		Value:  DecimalFromCents(100),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if err := (KPIValue{KPIID: 0, Period: good.Period}).Validate(); err == nil {
		t.Fatalf("expected error for missing KPI reference")
	}
	if err := (KPIValue{KPIID: 1}).Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod for zero period")
	}

	long := good
	long.Comment = strings.Repeat("a", 501)
	if err := long.Validate(); err == nil {
		t.Fatalf("expected error for long comment")
	}
}

func TestKPIFileValidate(t *testing.T) {
	good := KPIFile{ValueID: 1, Filename: "report.pdf", Path: "data/files/report.pdf", SizeBytes: 1024}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []KPIFile{
		{ValueID: 1, Filename: ""},
		{ValueID: 0, Filename: "a"},
		{ValueID: 1, Filename: "a", SizeBytes: -1},
	}
	for i, f := range bads {
		if err := f.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestIntervalMonths(t *testing.T) {
	cases := []struct {
		in     Interval
		months int
	}{
		{IntervalMonthly, 1},
		{IntervalQuarterly, 3},
		{IntervalYearly, 12},
		{Interval("weekly"), 0},
	}
	for _, tc := range cases {
		if got := tc.in.Months(); got != tc.months {
			t.Fatalf("%s expected %d months, got %d", tc.in, tc.months, got)
		}
	}
}
