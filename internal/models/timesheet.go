package models

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// HoursPerDay converts person-days to hours
const HoursPerDay = 7.5

// UnsetLabel replaces a blank project or department
const UnsetLabel = "(unset)"

// RecordType indicates whether a record holds planned or actual hours
type RecordType string

const (
	Plan   RecordType = "PLAN"
	Actual RecordType = "ACTUAL"
)

// monthHeaderPattern matches YYYY/M/D style column headers
var monthHeaderPattern = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)

// CanonicalMonthKey converts a date-like column header into its YYYY-MM key.
// The second return value is false when the header is not a month column.
func CanonicalMonthKey(header string) (string, bool) {
	m := monthHeaderPattern.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s-%02d", m[1], month), true
}

// MonthlyHours maps canonical month keys to hours
type MonthlyHours map[string]float64

// Add accumulates hours into a month, ignoring negative amounts
func (mh MonthlyHours) Add(month string, hours float64) {
	if hours < 0 {
		hours = 0
	}
	mh[month] += hours
}

// Months returns the month keys in chronological order
func (mh MonthlyHours) Months() []string {
	keys := make([]string, 0, len(mh))
	for k := range mh {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sum returns the hours over the given months
func (mh MonthlyHours) Sum(months []string) float64 {
	var total float64
	for _, m := range months {
		total += mh[m]
	}
	return total
}

// Record is one normalized timesheet row
type Record struct {
	Department   string       `json:"department"`
	Project      string       `json:"project"`
	Employee     string       `json:"employee"`
	Type         RecordType   `json:"type"`
	MonthlyHours MonthlyHours `json:"monthly_hours"`
}

// EffectiveTotal sums the record's hours over the active months
func (r Record) EffectiveTotal(months []string) float64 {
	return r.MonthlyHours.Sum(months)
}

// Field returns the value of the record for a facet
func (r Record) Field(f Facet) string {
	switch f {
	case FacetProject:
		return r.Project
	case FacetDepartment:
		return r.Department
	case FacetEmployee:
		return r.Employee
	}
	return ""
}

// Dataset is the full result of one successful import
type Dataset struct {
	Records     []Record `json:"records"`
	Months      []string `json:"months"`
	Departments []string `json:"departments"`
	Projects    []string `json:"projects"`
	Employees   []string `json:"employees"`
}

// NewDataset returns an empty dataset
func NewDataset() *Dataset {
	return &Dataset{
		Records:     []Record{},
		Months:      []string{},
		Departments: []string{},
		Projects:    []string{},
		Employees:   []string{},
	}
}

// IsEmpty reports whether the dataset holds no records
func (d *Dataset) IsEmpty() bool {
	return d == nil || len(d.Records) == 0
}

// Domain returns every known value of a facet
func (d *Dataset) Domain(f Facet) []string {
	if d == nil {
		return nil
	}
	switch f {
	case FacetProject:
		return d.Projects
	case FacetDepartment:
		return d.Departments
	case FacetEmployee:
		return d.Employees
	}
	return nil
}

// FirstMonth returns the earliest month key, or "" for an empty dataset
func (d *Dataset) FirstMonth() string {
	if d == nil || len(d.Months) == 0 {
		return ""
	}
	return d.Months[0]
}

// LastMonth returns the latest month key, or "" for an empty dataset
func (d *Dataset) LastMonth() string {
	if d == nil || len(d.Months) == 0 {
		return ""
	}
	return d.Months[len(d.Months)-1]
}

// EmployeesIn returns the employees that appear under a department, in record order
func (d *Dataset) EmployeesIn(department string) []string {
	seen := make(map[string]bool)
	var employees []string
	for _, r := range d.Records {
		if r.Department == department && !seen[r.Employee] {
			seen[r.Employee] = true
			employees = append(employees, r.Employee)
		}
	}
	return employees
}

// BelongsTo reports whether an employee has a record under the department
func (d *Dataset) BelongsTo(employee, department string) bool {
	for _, r := range d.Records {
		if r.Employee == employee && r.Department == department {
			return true
		}
	}
	return false
}

// MonthsBetween returns the dataset months inside [start, end].
// An empty bound is open.
func (d *Dataset) MonthsBetween(start, end string) []string {
	months := []string{}
	if d == nil {
		return months
	}
	for _, m := range d.Months {
		if start != "" && m < start {
			continue
		}
		if end != "" && m > end {
			continue
		}
		months = append(months, m)
	}
	return months
}
