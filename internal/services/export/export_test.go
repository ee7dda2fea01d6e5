package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdlog/internal/models"
)

func TestWorkbook(t *testing.T) {
	rows := []models.TableRow{
		{Label: "田中", Department: "営業部", Planned: 30, Actual: 16, Diff: -14, Rate: 53.3},
	}
	total := models.TableRow{Label: models.OverallLabel, Planned: 30, Actual: 16, Diff: -14, Rate: 53.3}

	f, err := Workbook(models.ModeEmployee, models.UnitHours, rows, total)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"Employee", "Department", "Planned (h)", "Actual (h)", "Diff (h)", "Rate (%)"}, got[0])
	assert.Equal(t, "田中", got[1][0])
	assert.Equal(t, "営業部", got[1][1])
	assert.Equal(t, models.OverallLabel, got[2][0])
}

func TestWorkbookWithoutDepartmentColumn(t *testing.T) {
	f, err := Workbook(models.ModeProject, models.UnitDays, nil, models.TableRow{Label: models.OverallLabel})
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Project", got[0][0])
	assert.Equal(t, "Planned (人日)", got[0][1])
}

func TestWorkbookLayout(t *testing.T) {
	total := models.TableRow{Label: models.OverallLabel, Planned: 10}
	f, err := Workbook(models.ModeDepartment, models.UnitHours, nil, total)
	require.NoError(t, err)
	defer f.Close()

	width, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.Equal(t, 28.0, width)
	width, err = f.GetColWidth(SheetName, "E")
	require.NoError(t, err)
	assert.Equal(t, 14.0, width)

	idx, err := f.GetCellStyle(SheetName, "A2")
	require.NoError(t, err)
	style, err := f.GetStyle(idx)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}
