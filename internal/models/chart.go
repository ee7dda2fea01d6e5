package models

import "math"

// AnalysisMode selects how filtered records are grouped into chart rows
type AnalysisMode string

const (
	ModeOverall    AnalysisMode = "overall"
	ModeProject    AnalysisMode = "project"
	ModeDepartment AnalysisMode = "department"
	ModeEmployee   AnalysisMode = "employee"
	ModeMonth      AnalysisMode = "month"
)

// OverallLabel is the label of the single row in overall mode
const OverallLabel = "Total"

// Valid reports whether m names a known analysis mode
func (m AnalysisMode) Valid() bool {
	switch m {
	case ModeOverall, ModeProject, ModeDepartment, ModeEmployee, ModeMonth:
		return true
	}
	return false
}

// LabelHeader is the table heading for the label column
func (m AnalysisMode) LabelHeader() string {
	switch m {
	case ModeProject:
		return "Project"
	case ModeDepartment:
		return "Department"
	case ModeEmployee:
		return "Employee"
	case ModeMonth:
		return "Month"
	}
	return "Item"
}

// DisplayUnit is the unit hours are shown in
type DisplayUnit string

const (
	UnitHours DisplayUnit = "hours"
	UnitDays  DisplayUnit = "days"
)

// Valid reports whether u names a known display unit
func (u DisplayUnit) Valid() bool {
	return u == UnitHours || u == UnitDays
}

// Suffix is the short unit label shown next to values
func (u DisplayUnit) Suffix() string {
	if u == UnitDays {
		return "人日"
	}
	return "h"
}

// Convert converts hours into the display unit
func (u DisplayUnit) Convert(hours float64) float64 {
	if u == UnitDays {
		return hours / HoursPerDay
	}
	return hours
}

// ToHours converts a value in the display unit back to hours
func (u DisplayUnit) ToHours(v float64) float64 {
	if u == UnitDays {
		return v * HoursPerDay
	}
	return v
}

// Rate returns actual as a percentage of planned, or 0 when nothing was planned
func Rate(planned, actual float64) float64 {
	if planned > 0 {
		return actual / planned * 100
	}
	return 0
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ChartRow is one aggregated series entry, in hours
type ChartRow struct {
	Label      string  `json:"label"`
	Planned    float64 `json:"planned"`
	Actual     float64 `json:"actual"`
	Department string  `json:"department,omitempty"`
}

// Diff is actual minus planned
func (r ChartRow) Diff() float64 {
	return r.Actual - r.Planned
}

// Rate is actual over planned as a percentage
func (r ChartRow) Rate() float64 {
	return Rate(r.Planned, r.Actual)
}

// TableRow is a chart row converted to the display unit with derived columns
type TableRow struct {
	Label      string  `json:"label"`
	Department string  `json:"department,omitempty"`
	Planned    float64 `json:"planned"`
	Actual     float64 `json:"actual"`
	Diff       float64 `json:"diff"`
	Rate       float64 `json:"rate"`
}

// Summary holds the headline totals in the display unit
type Summary struct {
	PlannedTotal float64     `json:"planned_total"`
	ActualTotal  float64     `json:"actual_total"`
	Diff         float64     `json:"diff"`
	Rate         float64     `json:"rate"`
	Unit         DisplayUnit `json:"unit"`
	UnitLabel    string      `json:"unit_label"`
}
