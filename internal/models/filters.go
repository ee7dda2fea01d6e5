package models

// Facet is one of the multi-select filter dimensions
type Facet string

const (
	FacetProject    Facet = "project"
	FacetDepartment Facet = "department"
	FacetEmployee   Facet = "employee"
)

// Facets lists every facet in display order
var Facets = []Facet{FacetProject, FacetDepartment, FacetEmployee}

// Valid reports whether f names a known facet
func (f Facet) Valid() bool {
	switch f {
	case FacetProject, FacetDepartment, FacetEmployee:
		return true
	}
	return false
}

// SortMode controls how a facet's option list is ordered
type SortMode string

const (
	SortSelected SortMode = "selected"
	SortNameAsc  SortMode = "name_asc"
	SortNameDesc SortMode = "name_desc"
)

// Valid reports whether m names a known sort mode
func (m SortMode) Valid() bool {
	switch m {
	case SortSelected, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// FilterSelection holds the selected values of each facet in selection order
type FilterSelection struct {
	Projects    []string `json:"projects"`
	Departments []string `json:"departments"`
	Employees   []string `json:"employees"`
}

// NewFilterSelection returns a selection with nothing selected
func NewFilterSelection() FilterSelection {
	return FilterSelection{
		Projects:    []string{},
		Departments: []string{},
		Employees:   []string{},
	}
}

// Get returns the selected values of a facet
func (s FilterSelection) Get(f Facet) []string {
	switch f {
	case FacetProject:
		return s.Projects
	case FacetDepartment:
		return s.Departments
	case FacetEmployee:
		return s.Employees
	}
	return nil
}

// Set replaces the selected values of a facet
func (s *FilterSelection) Set(f Facet, values []string) {
	if values == nil {
		values = []string{}
	}
	switch f {
	case FacetProject:
		s.Projects = values
	case FacetDepartment:
		s.Departments = values
	case FacetEmployee:
		s.Employees = values
	}
}

// Clone returns a deep copy of the selection
func (s FilterSelection) Clone() FilterSelection {
	return FilterSelection{
		Projects:    append([]string{}, s.Projects...),
		Departments: append([]string{}, s.Departments...),
		Employees:   append([]string{}, s.Employees...),
	}
}

// IsEmpty reports whether no facet has a selection
func (s FilterSelection) IsEmpty() bool {
	return len(s.Projects) == 0 && len(s.Departments) == 0 && len(s.Employees) == 0
}

// Filters is the complete filter state
type Filters struct {
	FilterSelection
	PeriodStart string             `json:"period_start"`
	PeriodEnd   string             `json:"period_end"`
	SortModes   map[Facet]SortMode `json:"sort_modes"`
}

// DefaultSortModes returns selection-order sorting for every facet
func DefaultSortModes() map[Facet]SortMode {
	modes := make(map[Facet]SortMode, len(Facets))
	for _, f := range Facets {
		modes[f] = SortSelected
	}
	return modes
}

// NewFilters returns an empty filter state
func NewFilters() Filters {
	return Filters{
		FilterSelection: NewFilterSelection(),
		SortModes:       DefaultSortModes(),
	}
}

// FacetOption is one entry of a facet's option list
type FacetOption struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}
