package snapshot

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdlog/internal/models"
	"crowdlog/internal/services/storage"
)

func newStore(t *testing.T) (*Store, *storage.Storage) {
	t.Helper()
	s, err := storage.New(t.TempDir())
	require.NoError(t, err)
	return NewStore(s), s
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Dataset: &models.Dataset{
			Records: []models.Record{
				{Employee: "田中", Project: "顧客管理", Department: "営業部", Type: models.Actual,
					MonthlyHours: models.MonthlyHours{"2024-04": 15, "2024-05": 22.5}},
				{Employee: "佐藤", Project: models.UnsetLabel, Department: "開発部", Type: models.Plan,
					MonthlyHours: models.MonthlyHours{"2024-04": 0, "2024-05": 7.25}},
			},
			Months:      []string{"2024-04", "2024-05"},
			Departments: []string{"営業部", "開発部"},
			Projects:    []string{models.UnsetLabel, "顧客管理"},
			Employees:   []string{"佐藤", "田中"},
		},
		CurrentFilters: models.FilterSelection{
			Projects:    []string{"顧客管理"},
			Departments: []string{},
			Employees:   []string{"田中", "佐藤"},
		},
		FilterSorts: map[models.Facet]models.SortMode{
			models.FacetProject:    models.SortNameDesc,
			models.FacetDepartment: models.SortSelected,
			models.FacetEmployee:   models.SortNameAsc,
		},
		LastFile: &models.FileMeta{Name: "crowdlog_20240401.csv", Encoding: "Shift_JIS (auto)", Timestamp: "2024/4/1 0:00:00"},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	st, _ := newStore(t)
	want := testSnapshot()

	require.NoError(t, st.Save(want))
	got, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// saving what was loaded reproduces it again
	require.NoError(t, st.Save(got))
	again, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, want, again)
}

func TestLoadMissingSnapshot(t *testing.T) {
	st, _ := newStore(t)

	snap, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	filters, err := st.LoadSavedFilters()
	require.NoError(t, err)
	assert.Empty(t, filters)
	assert.NotNil(t, filters)
}

func TestLoadCorruptSnapshot(t *testing.T) {
	st, s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(DataFile), []byte("{not json"), 0644))

	snap, err := st.Load()
	assert.Error(t, err)
	assert.Nil(t, snap)
}

func TestLoadNormalizesMissingFields(t *testing.T) {
	st, s := newStore(t)
	doc := `{"dataset":{"records":[{"employee":"田中","type":"PLAN"}]},"current_filters":{}}`
	require.NoError(t, os.WriteFile(s.Path(DataFile), []byte(doc), 0644))

	snap, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSortModes(), snap.FilterSorts)
	assert.Equal(t, []string{}, snap.CurrentFilters.Projects)
	assert.Equal(t, models.MonthlyHours{}, snap.Dataset.Records[0].MonthlyHours)
	assert.Equal(t, []string{}, snap.Dataset.Months)
}

func TestSavedFiltersSeparateFromSnapshot(t *testing.T) {
	st, _ := newStore(t)
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	filters := []models.SavedFilter{
		{ID: "a", Name: "Sales", CreatedAt: created, Filters: models.FilterSelection{
			Projects: []string{}, Departments: []string{"営業部"}, Employees: []string{"田中"},
		}},
	}

	require.NoError(t, st.Save(testSnapshot()))
	require.NoError(t, st.SaveSavedFilters(filters))
	require.NoError(t, st.Clear())

	snap, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	got, err := st.LoadSavedFilters()
	require.NoError(t, err)
	assert.Equal(t, filters, got)
}
