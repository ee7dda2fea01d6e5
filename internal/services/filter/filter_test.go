package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdlog/internal/models"
)

func testDataset() *models.Dataset {
	return &models.Dataset{
		Records: []models.Record{
			{Employee: "Tanaka", Department: "Sales", Project: "Alpha", Type: models.Plan,
				MonthlyHours: models.MonthlyHours{"2024-04": 10, "2024-05": 20}},
			{Employee: "Tanaka", Department: "Dev", Project: "Beta", Type: models.Actual,
				MonthlyHours: models.MonthlyHours{"2024-04": 5, "2024-05": 0}},
			{Employee: "Sato", Department: "Sales", Project: "Alpha", Type: models.Actual,
				MonthlyHours: models.MonthlyHours{"2024-04": 8, "2024-05": 8}},
			{Employee: "Suzuki", Department: "Dev", Project: "Gamma", Type: models.Plan,
				MonthlyHours: models.MonthlyHours{"2024-04": 0, "2024-05": 7}},
		},
		Months:      []string{"2024-04", "2024-05"},
		Departments: []string{"Dev", "Sales"},
		Projects:    []string{"Alpha", "Beta", "Gamma"},
		Employees:   []string{"Sato", "Suzuki", "Tanaka"},
	}
}

func employeesOf(records []models.Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Employee+"/"+r.Department)
	}
	return out
}

func TestNothingSelectedShowsNothing(t *testing.T) {
	e := New(testDataset())
	assert.Empty(t, e.FilteredRecords())
}

func TestToggleProjectOnAndOff(t *testing.T) {
	e := New(testDataset())

	changes, err := e.Toggle(models.FacetProject, "Alpha")
	require.NoError(t, err)
	assert.Contains(t, changes, models.ChangeChart)
	assert.Equal(t, []string{"Alpha"}, e.Filters().Projects)
	assert.Len(t, e.FilteredRecords(), 2)

	_, err = e.Toggle(models.FacetProject, "Alpha")
	require.NoError(t, err)
	assert.Empty(t, e.Filters().Projects)
	assert.Empty(t, e.FilteredRecords())
}

func TestToggleDepartmentSelectsEmployees(t *testing.T) {
	e := New(testDataset())

	_, err := e.Toggle(models.FacetDepartment, "Sales")
	require.NoError(t, err)

	assert.Equal(t, []string{"Sales"}, e.Filters().Departments)
	assert.Equal(t, []string{"Tanaka", "Sato"}, e.Filters().Employees)
}

func TestDepartmentDeselectKeepsSharedEmployee(t *testing.T) {
	e := New(testDataset())

	_, _ = e.Toggle(models.FacetDepartment, "Sales")
	_, _ = e.Toggle(models.FacetDepartment, "Dev")
	assert.Equal(t, []string{"Tanaka", "Sato", "Suzuki"}, e.Filters().Employees)

	// Tanaka also works in Dev, which is still selected
	_, _ = e.Toggle(models.FacetDepartment, "Sales")
	assert.Equal(t, []string{"Tanaka", "Suzuki"}, e.Filters().Employees)

	_, _ = e.Toggle(models.FacetDepartment, "Dev")
	assert.Empty(t, e.Filters().Employees)
	assert.Empty(t, e.Filters().Departments)
}

func TestDepartmentOrEmployeeSelectionIsUnion(t *testing.T) {
	e := New(testDataset())
	e.Restore(models.FilterSelection{Departments: []string{"Dev"}, Employees: []string{"Sato"}}, nil)

	got := employeesOf(e.FilteredRecords())
	assert.Equal(t, []string{"Tanaka/Dev", "Sato/Sales", "Suzuki/Dev"}, got)
}

func TestFilteredRecordsGates(t *testing.T) {
	tests := []struct {
		name string
		sel  models.FilterSelection
		want []string
	}{
		{"employee only", models.FilterSelection{Employees: []string{"Tanaka"}}, []string{"Tanaka/Sales", "Tanaka/Dev"}},
		{"project narrows employee", models.FilterSelection{Projects: []string{"Alpha"}, Employees: []string{"Tanaka"}}, []string{"Tanaka/Sales"}},
		{"department only", models.FilterSelection{Departments: []string{"Sales"}}, []string{"Tanaka/Sales", "Sato/Sales"}},
		{"project only", models.FilterSelection{Projects: []string{"Gamma"}}, []string{"Suzuki/Dev"}},
		{"unknown value", models.FilterSelection{Projects: []string{"Omega"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(testDataset())
			e.Restore(tt.sel, nil)
			assert.Equal(t, tt.want, employeesOf(e.FilteredRecords()))
		})
	}
}

func TestSelectAllAndDeselectAll(t *testing.T) {
	e := New(testDataset())

	_, err := e.SelectAll(models.FacetEmployee)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sato", "Suzuki", "Tanaka"}, e.Filters().Employees)
	assert.Len(t, e.FilteredRecords(), 4)

	_, err = e.DeselectAll(models.FacetEmployee)
	require.NoError(t, err)
	assert.Empty(t, e.Filters().Employees)
	assert.Empty(t, e.FilteredRecords())
}

func TestApplySavedKeepsPeriod(t *testing.T) {
	e := New(testDataset())
	e.SetPeriod("2024-05", "2024-05")

	e.ApplySaved(models.FilterSelection{Projects: []string{"Beta"}})

	f := e.Filters()
	assert.Equal(t, []string{"Beta"}, f.Projects)
	assert.Empty(t, f.Departments)
	assert.Equal(t, "2024-05", f.PeriodStart)
	assert.Equal(t, []string{"2024-05"}, e.ActiveMonths())
}

func TestSortedItems(t *testing.T) {
	e := New(testDataset())
	_, _ = e.Toggle(models.FacetProject, "Gamma")
	_, _ = e.Toggle(models.FacetProject, "Alpha")

	items, err := e.SortedItems(models.FacetProject)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, items)

	_, err = e.SetSortMode(models.FacetProject, models.SortNameDesc)
	require.NoError(t, err)
	items, _ = e.SortedItems(models.FacetProject)
	assert.Equal(t, []string{"Gamma", "Beta", "Alpha"}, items)

	_, _ = e.SetSortMode(models.FacetProject, models.SortNameAsc)
	items, _ = e.SortedItems(models.FacetProject)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, items)

	// sort mode is presentation only
	assert.Equal(t, []string{"Gamma", "Alpha"}, e.Filters().Projects)
}

func TestOptionsSearch(t *testing.T) {
	e := New(testDataset())
	_, _ = e.Toggle(models.FacetProject, "Alpha")

	opts, err := e.Options(models.FacetProject, "AL")
	require.NoError(t, err)
	assert.Equal(t, []models.FacetOption{{Value: "Alpha", Selected: true}}, opts)

	opts, _ = e.Options(models.FacetProject, "")
	assert.Len(t, opts, 3)
}

func TestInvalidInput(t *testing.T) {
	e := New(testDataset())

	_, err := e.Toggle("team", "x")
	assert.ErrorIs(t, err, ErrUnknownFacet)

	_, err = e.SetSortMode(models.FacetProject, "random")
	assert.ErrorIs(t, err, ErrUnknownSortMode)

	_, err = e.SelectAll("")
	assert.ErrorIs(t, err, ErrUnknownFacet)
}

func TestRestoreIgnoresUnknownSortModes(t *testing.T) {
	e := New(testDataset())
	e.Restore(models.NewFilterSelection(), map[models.Facet]models.SortMode{
		models.FacetProject:  models.SortNameDesc,
		models.FacetEmployee: "bogus",
	})

	modes := e.Filters().SortModes
	assert.Equal(t, models.SortNameDesc, modes[models.FacetProject])
	assert.Equal(t, models.SortSelected, modes[models.FacetEmployee])
}

func TestPeriod(t *testing.T) {
	e := New(testDataset())

	p := e.ActivePeriod()
	assert.Equal(t, "2024-04", p.Start)
	assert.Equal(t, "2024-05", p.End)
	assert.Equal(t, []string{"2024-04", "2024-05"}, e.ActiveMonths())

	p, changes, err := e.SetPeriod("2024-05", "2024-04")
	require.NoError(t, err)
	assert.True(t, p.Corrected)
	assert.Equal(t, "2024-05", p.End)
	assert.NotEmpty(t, p.Notice)
	assert.Contains(t, changes, models.ChangePeriod)
	assert.Equal(t, []string{"2024-05"}, e.ActiveMonths())

	p, _, err = e.SetPeriod("2024-04", "2024-04")
	require.NoError(t, err)
	assert.False(t, p.Corrected)
	assert.Equal(t, []string{"2024-04"}, e.ActiveMonths())

	// malformed or foreign keys leave the period alone
	for _, bad := range []string{"2024/04", "2024-4", "2023-12"} {
		_, changes, err = e.SetPeriod(bad, "")
		assert.ErrorIs(t, err, ErrUnknownMonth, bad)
		assert.Nil(t, changes)
	}
	assert.Equal(t, []string{"2024-04"}, e.ActiveMonths())

	p, _ = e.ResetPeriod()
	assert.Equal(t, "2024-04", p.Start)
	assert.Equal(t, "2024-05", p.End)
}
