// Package export writes the result table to an Excel workbook.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"crowdlog/internal/models"
)

// SheetName is the worksheet holding the table
const SheetName = "Summary"

// Workbook builds a workbook with one row per table row followed by the
// total row
func Workbook(mode models.AnalysisMode, unit models.DisplayUnit, rows []models.TableRow, total models.TableRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	withDepartment := mode == models.ModeEmployee
	suffix := unit.Suffix()
	headers := []string{mode.LabelHeader()}
	if withDepartment {
		headers = append(headers, "Department")
	}
	headers = append(headers,
		fmt.Sprintf("Planned (%s)", suffix),
		fmt.Sprintf("Actual (%s)", suffix),
		fmt.Sprintf("Diff (%s)", suffix),
		"Rate (%)",
	)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, headerStyle); err != nil {
		return nil, err
	}

	all := append(append([]models.TableRow{}, rows...), total)
	for i, r := range all {
		values := []interface{}{r.Label}
		if withDepartment {
			values = append(values, r.Department)
		}
		values = append(values, r.Planned, r.Actual, r.Diff, r.Rate)

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	totalRow := len(all) + 1
	if err := f.SetRowStyle(SheetName, totalRow, totalRow, totalStyle); err != nil {
		return nil, err
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "A", "A", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "B", lastCol, 14); err != nil {
		return nil, err
	}

	return f, nil
}
