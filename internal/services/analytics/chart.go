package analytics

import (
	"github.com/xuri/excelize/v2"

	"crowdlog/internal/models"
	"crowdlog/internal/services/export"
	"crowdlog/internal/services/filter"
	"crowdlog/internal/services/metrics"
	"crowdlog/internal/services/tablesort"
)

// ChartView is everything the chart and the table under it need
type ChartView struct {
	Mode        models.AnalysisMode `json:"mode"`
	Unit        models.DisplayUnit  `json:"unit"`
	UnitLabel   string              `json:"unit_label"`
	LabelHeader string              `json:"label_header"`
	Period      filter.Period       `json:"period"`
	Rows        []models.ChartRow   `json:"rows"`
	Table       []models.TableRow   `json:"table"`
	Total       models.TableRow     `json:"total"`
	Sort        tablesort.State     `json:"sort"`
	AxisStep    float64             `json:"axis_step"`
	Baseline    *float64            `json:"baseline,omitempty"`
}

// Chart aggregates the filtered records in the active period. Rows stay in
// hours; the table and axis step use the display unit. The baseline is
// echoed back unchanged.
func (c *Controller) Chart(mode models.AnalysisMode, unit models.DisplayUnit, baseline *float64) (*ChartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.metrics.Aggregate(c.engine.FilteredRecords(), c.engine.ActiveMonths(), mode)
	if err != nil {
		return nil, err
	}
	rows = c.sort.Apply(rows)
	table, total := c.metrics.Table(rows, unit)

	return &ChartView{
		Mode:        mode,
		Unit:        unit,
		UnitLabel:   unit.Suffix(),
		LabelHeader: mode.LabelHeader(),
		Period:      c.engine.ActivePeriod(),
		Rows:        rows,
		Table:       table,
		Total:       total,
		Sort:        c.sort,
		AxisStep:    metrics.NiceStep(unit.Convert(metrics.MaxValue(rows)), axisTicks),
		Baseline:    baseline,
	}, nil
}

// Summary returns the headline totals for the current selection and period
func (c *Controller) Summary(unit models.DisplayUnit) models.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics.Summarize(c.engine.FilteredRecords(), c.engine.ActiveMonths(), unit)
}

// SortTable advances the table sort for a column
func (c *Controller) SortTable(key tablesort.Key) (tablesort.State, []models.Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.sort.Toggle(key)
	if err != nil {
		return c.sort, nil, err
	}
	c.sort = next
	return next, []models.Change{models.ChangeTableSort, models.ChangeChart}, nil
}

// Export renders the current table as a workbook
func (c *Controller) Export(mode models.AnalysisMode, unit models.DisplayUnit) (*excelize.File, error) {
	view, err := c.Chart(mode, unit, nil)
	if err != nil {
		return nil, err
	}
	return export.Workbook(mode, unit, view.Table, view.Total)
}
