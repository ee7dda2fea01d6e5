package tablesort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdlog/internal/models"
)

func testRows() []models.ChartRow {
	return []models.ChartRow{
		{Label: "Beta", Planned: 10, Actual: 12, Department: "Sales"},
		{Label: "Alpha", Planned: 20, Actual: 5, Department: "Dev"},
		{Label: "Gamma", Planned: 0, Actual: 7, Department: "Dev"},
		{Label: "Delta", Planned: 10, Actual: 3, Department: "Sales"},
	}
}

func labels(rows []models.ChartRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

func TestToggleCycle(t *testing.T) {
	var s State
	rows := testRows()

	s, err := s.Toggle(KeyLabel)
	require.NoError(t, err)
	assert.Equal(t, State{Key: KeyLabel, Order: Asc}, s)
	assert.Equal(t, []string{"Alpha", "Beta", "Delta", "Gamma"}, labels(s.Apply(rows)))

	s, _ = s.Toggle(KeyLabel)
	assert.Equal(t, State{Key: KeyLabel, Order: Desc}, s)
	assert.Equal(t, []string{"Gamma", "Delta", "Beta", "Alpha"}, labels(s.Apply(rows)))

	s, _ = s.Toggle(KeyLabel)
	assert.False(t, s.Sorted())
	assert.Equal(t, labels(testRows()), labels(s.Apply(rows)))
}

func TestToggleOtherColumnStartsAscending(t *testing.T) {
	s := State{Key: KeyLabel, Order: Desc}
	s, err := s.Toggle(KeyActual)
	require.NoError(t, err)
	assert.Equal(t, State{Key: KeyActual, Order: Asc}, s)
}

func TestApplyNumericColumns(t *testing.T) {
	rows := testRows()

	tests := []struct {
		state State
		want  []string
	}{
		{State{Key: KeyPlanned, Order: Asc}, []string{"Gamma", "Beta", "Delta", "Alpha"}},
		{State{Key: KeyPlanned, Order: Desc}, []string{"Alpha", "Beta", "Delta", "Gamma"}},
		{State{Key: KeyActual, Order: Asc}, []string{"Delta", "Alpha", "Gamma", "Beta"}},
		{State{Key: KeyDiff, Order: Asc}, []string{"Alpha", "Delta", "Beta", "Gamma"}},
		{State{Key: KeyRate, Order: Desc}, []string{"Beta", "Delta", "Alpha", "Gamma"}},
		{State{Key: KeyDepartment, Order: Asc}, []string{"Alpha", "Gamma", "Beta", "Delta"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.state.Key)+"_"+string(tt.state.Order), func(t *testing.T) {
			assert.Equal(t, tt.want, labels(tt.state.Apply(rows)))
		})
	}
}

func TestApplyIsStableForTies(t *testing.T) {
	// Beta and Delta both plan 10 and keep their input order in both directions
	rows := testRows()
	asc := State{Key: KeyPlanned, Order: Asc}.Apply(rows)
	desc := State{Key: KeyPlanned, Order: Desc}.Apply(rows)

	assert.Equal(t, []string{"Beta", "Delta"}, labels(asc[1:3]))
	assert.Equal(t, []string{"Beta", "Delta"}, labels(desc[1:3]))
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	rows := testRows()
	State{Key: KeyLabel, Order: Asc}.Apply(rows)
	assert.Equal(t, testRows(), rows)
}

func TestToggleUnknownKey(t *testing.T) {
	s := State{Key: KeyLabel, Order: Asc}
	got, err := s.Toggle("name")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, s, got)
}
