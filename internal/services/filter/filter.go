// Package filter holds the facet and period selection state of the dashboard
// and resolves which records it lets through.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"crowdlog/internal/models"
	"crowdlog/internal/services/collation"
)

var (
	ErrUnknownFacet    = errors.New("unknown facet")
	ErrUnknownSortMode = errors.New("unknown sort mode")
	ErrUnknownMonth    = errors.New("month is not in the dataset")
)

// PeriodCorrectedNotice is shown when an inverted period was clamped
const PeriodCorrectedNotice = "The end month was before the start month and has been set to the start month"

func facetChanges() []models.Change {
	return []models.Change{models.ChangeFilters, models.ChangeFacets, models.ChangeChart, models.ChangeSummary}
}

func periodChanges() []models.Change {
	return []models.Change{models.ChangePeriod, models.ChangeChart, models.ChangeSummary}
}

// Engine owns the filter state for one dataset
type Engine struct {
	dataset *models.Dataset
	state   models.Filters
}

// New creates an engine with nothing selected and the full period
func New(ds *models.Dataset) *Engine {
	if ds == nil {
		ds = models.NewDataset()
	}
	return &Engine{dataset: ds, state: models.NewFilters()}
}

// Restore replaces the facet selections and sort modes, e.g. from a snapshot.
// Unknown sort modes fall back to selection order.
func (e *Engine) Restore(sel models.FilterSelection, sorts map[models.Facet]models.SortMode) {
	e.state.FilterSelection = sel.Clone()
	e.state.SortModes = models.DefaultSortModes()
	for f, m := range sorts {
		if f.Valid() && m.Valid() {
			e.state.SortModes[f] = m
		}
	}
}

// Dataset returns the dataset the engine filters
func (e *Engine) Dataset() *models.Dataset {
	return e.dataset
}

// Filters returns a copy of the current filter state
func (e *Engine) Filters() models.Filters {
	f := e.state
	f.FilterSelection = e.state.FilterSelection.Clone()
	f.SortModes = make(map[models.Facet]models.SortMode, len(e.state.SortModes))
	for k, v := range e.state.SortModes {
		f.SortModes[k] = v
	}
	return f
}

// Selection returns a copy of the facet selections
func (e *Engine) Selection() models.FilterSelection {
	return e.state.FilterSelection.Clone()
}

// Toggle selects or deselects one value of a facet. Selecting a department
// also selects its employees; deselecting one drops the employees that no
// other selected department covers.
func (e *Engine) Toggle(f models.Facet, value string) ([]models.Change, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFacet, f)
	}

	selected := e.state.Get(f)
	if contains(selected, value) {
		e.state.Set(f, without(selected, value))
		if f == models.FacetDepartment {
			e.releaseEmployees(value)
		}
	} else {
		e.state.Set(f, append(append([]string{}, selected...), value))
		if f == models.FacetDepartment {
			e.claimEmployees(value)
		}
	}

	return facetChanges(), nil
}

func (e *Engine) claimEmployees(department string) {
	employees := e.state.Employees
	for _, emp := range e.dataset.EmployeesIn(department) {
		if !contains(employees, emp) {
			employees = append(employees, emp)
		}
	}
	e.state.Employees = employees
}

func (e *Engine) releaseEmployees(department string) {
	for _, emp := range e.dataset.EmployeesIn(department) {
		covered := false
		for _, other := range e.state.Departments {
			if e.dataset.BelongsTo(emp, other) {
				covered = true
				break
			}
		}
		if !covered {
			e.state.Employees = without(e.state.Employees, emp)
		}
	}
}

// SelectAll selects the whole domain of a facet
func (e *Engine) SelectAll(f models.Facet) ([]models.Change, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFacet, f)
	}
	e.state.Set(f, append([]string{}, e.dataset.Domain(f)...))
	return facetChanges(), nil
}

// DeselectAll clears the selection of a facet
func (e *Engine) DeselectAll(f models.Facet) ([]models.Change, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFacet, f)
	}
	e.state.Set(f, []string{})
	return facetChanges(), nil
}

// ApplySaved replaces all three facet selections; the period is kept
func (e *Engine) ApplySaved(sel models.FilterSelection) []models.Change {
	e.state.FilterSelection = sel.Clone()
	return facetChanges()
}

// SetSortMode changes how a facet's option list is ordered
func (e *Engine) SetSortMode(f models.Facet, mode models.SortMode) ([]models.Change, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFacet, f)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortMode, mode)
	}
	e.state.SortModes[f] = mode
	return []models.Change{models.ChangeFacets}, nil
}

// FilteredRecords returns the records the current selection lets through.
//
// Nothing selected anywhere means nothing is shown. An empty project
// selection is a wildcard. When both departments and employees are selected
// a record passes if either its department or its employee is selected.
func (e *Engine) FilteredRecords() []models.Record {
	sel := e.state.FilterSelection
	if sel.IsEmpty() {
		return []models.Record{}
	}

	projects := toSet(sel.Projects)
	departments := toSet(sel.Departments)
	employees := toSet(sel.Employees)

	out := []models.Record{}
	for _, r := range e.dataset.Records {
		if len(projects) > 0 && !projects[r.Project] {
			continue
		}

		var pass bool
		switch {
		case len(departments) > 0 && len(employees) > 0:
			pass = departments[r.Department] || employees[r.Employee]
		case len(departments) > 0:
			pass = departments[r.Department]
		case len(employees) > 0:
			pass = employees[r.Employee]
		default:
			pass = true
		}
		if pass {
			out = append(out, r)
		}
	}
	return out
}

// SortedItems returns a facet's domain in the facet's sort mode. Selection
// order lists the selected values first, in the order they were picked,
// followed by the rest ascending.
func (e *Engine) SortedItems(f models.Facet) ([]string, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFacet, f)
	}

	domain := e.dataset.Domain(f)
	switch e.state.SortModes[f] {
	case models.SortNameAsc:
		return collation.Sorted(domain), nil
	case models.SortNameDesc:
		items := append([]string{}, domain...)
		collation.SortDesc(items)
		return items, nil
	}

	inDomain := toSet(domain)
	selected := e.state.Get(f)
	items := make([]string, 0, len(domain))
	for _, v := range selected {
		if inDomain[v] {
			items = append(items, v)
		}
	}
	var rest []string
	for _, v := range domain {
		if !contains(selected, v) {
			rest = append(rest, v)
		}
	}
	collation.Sort(rest)
	return append(items, rest...), nil
}

// Options returns the option list of a facet, narrowed by a case-insensitive
// search term
func (e *Engine) Options(f models.Facet, search string) ([]models.FacetOption, error) {
	items, err := e.SortedItems(f)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(search))
	selected := toSet(e.state.Get(f))
	options := make([]models.FacetOption, 0, len(items))
	for _, v := range items {
		if term != "" && !strings.Contains(strings.ToLower(v), term) {
			continue
		}
		options = append(options, models.FacetOption{Value: v, Selected: selected[v]})
	}
	return options, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func without(values []string, v string) []string {
	out := make([]string, 0, len(values))
	for _, x := range values {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
