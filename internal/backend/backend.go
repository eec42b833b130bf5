// Package backend selects and constructs the export target for recorded
// KPI values.
package backend

import (
	"kpitrack/internal/sheets"
)

// ExportTarget represents the type of export target
type ExportTarget string

const (
	// NoTarget disables exporting; values stay local-only.
	NoTarget     ExportTarget = "none"
	MemoryTarget ExportTarget = "memory"
	GoogleTarget ExportTarget = "google"
)

// String implements fmt.Stringer
func (t ExportTarget) String() string {
	return string(t)
}

// IsValid returns true if the export target is valid
func (t ExportTarget) IsValid() bool {
	switch t {
	case NoTarget, MemoryTarget, GoogleTarget:
		return true
	default:
		return false
	}
}

// ExportTargets returns all valid export targets
func ExportTargets() []ExportTarget {
	return []ExportTarget{NoTarget, MemoryTarget, GoogleTarget}
}

// Result contains the constructed export adapters. Writer and Deleter are
// nil for the "none" target.
type Result struct {
	Writer  sheets.ValueWriter
	Deleter sheets.ValueDeleter
}
