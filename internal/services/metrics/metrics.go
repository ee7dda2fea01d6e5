package metrics

import (
	"fmt"
	"math"

	"crowdlog/internal/models"
)

// Service aggregates filtered records into chart rows and totals
type Service struct{}

// New creates a new metrics service
func New() *Service {
	return &Service{}
}

// Aggregate groups records into chart rows. Only hours in the given months
// count. Rows keep the order in which their key first appears; month mode
// yields one row per month even when nothing was booked.
func (s *Service) Aggregate(records []models.Record, months []string, mode models.AnalysisMode) ([]models.ChartRow, error) {
	switch mode {
	case models.ModeOverall:
		return []models.ChartRow{s.overall(records, months)}, nil
	case models.ModeProject, models.ModeDepartment, models.ModeEmployee:
		return s.byKey(records, months, mode), nil
	case models.ModeMonth:
		return s.byMonth(records, months), nil
	}
	return nil, fmt.Errorf("unknown analysis mode %q", mode)
}

func (s *Service) overall(records []models.Record, months []string) models.ChartRow {
	row := models.ChartRow{Label: models.OverallLabel}
	for _, r := range records {
		addHours(&row, r.Type, r.EffectiveTotal(months))
	}
	return row
}

func (s *Service) byKey(records []models.Record, months []string, mode models.AnalysisMode) []models.ChartRow {
	var facet models.Facet
	switch mode {
	case models.ModeProject:
		facet = models.FacetProject
	case models.ModeDepartment:
		facet = models.FacetDepartment
	default:
		facet = models.FacetEmployee
	}

	index := make(map[string]int)
	rows := []models.ChartRow{}
	for _, r := range records {
		key := r.Field(facet)
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, models.ChartRow{Label: key})
		}
		addHours(&rows[i], r.Type, r.EffectiveTotal(months))

		if facet == models.FacetEmployee {
			rows[i].Department = r.Department
			if rows[i].Department == "" {
				rows[i].Department = "-"
			}
		}
	}
	return rows
}

func (s *Service) byMonth(records []models.Record, months []string) []models.ChartRow {
	rows := make([]models.ChartRow, len(months))
	for i, m := range months {
		rows[i].Label = m
		for _, r := range records {
			addHours(&rows[i], r.Type, r.MonthlyHours[m])
		}
	}
	return rows
}

func addHours(row *models.ChartRow, t models.RecordType, hours float64) {
	switch t {
	case models.Plan:
		row.Planned += hours
	case models.Actual:
		row.Actual += hours
	}
}

// Summarize computes the headline totals in the display unit
func (s *Service) Summarize(records []models.Record, months []string, unit models.DisplayUnit) models.Summary {
	total := s.overall(records, months)
	planned := unit.Convert(total.Planned)
	actual := unit.Convert(total.Actual)

	return models.Summary{
		PlannedTotal: planned,
		ActualTotal:  actual,
		Diff:         actual - planned,
		Rate:         models.Rate(planned, actual),
		Unit:         unit,
		UnitLabel:    unit.Suffix(),
	}
}

// Table converts chart rows to the display unit rounded to one decimal, and
// returns the total row computed from the unrounded sums
func (s *Service) Table(rows []models.ChartRow, unit models.DisplayUnit) ([]models.TableRow, models.TableRow) {
	table := make([]models.TableRow, 0, len(rows))
	var plannedSum, actualSum float64

	for _, r := range rows {
		planned := unit.Convert(r.Planned)
		actual := unit.Convert(r.Actual)
		plannedSum += planned
		actualSum += actual

		table = append(table, models.TableRow{
			Label:      r.Label,
			Department: r.Department,
			Planned:    models.Round1(planned),
			Actual:     models.Round1(actual),
			Diff:       models.Round1(actual - planned),
			Rate:       models.Round1(models.Rate(planned, actual)),
		})
	}

	total := models.TableRow{
		Label:   models.OverallLabel,
		Planned: models.Round1(plannedSum),
		Actual:  models.Round1(actualSum),
		Diff:    models.Round1(actualSum - plannedSum),
		Rate:    models.Round1(models.Rate(plannedSum, actualSum)),
	}
	return table, total
}

// NiceStep picks a readable axis step (1, 2 or 5 times a power of ten) so
// that max spans roughly the given number of ticks
func NiceStep(max float64, ticks int) float64 {
	if max <= 0 {
		return 10
	}
	if ticks <= 0 {
		ticks = 5
	}

	rough := max / float64(ticks)
	magnitude := math.Pow(10, math.Floor(math.Log10(rough)))
	normalized := rough / magnitude

	var nice float64
	switch {
	case normalized <= 1:
		nice = 1
	case normalized <= 2:
		nice = 2
	case normalized <= 5:
		nice = 5
	default:
		nice = 10
	}
	return nice * magnitude
}

// MaxValue returns the largest planned or actual value among rows
func MaxValue(rows []models.ChartRow) float64 {
	var max float64
	for _, r := range rows {
		max = math.Max(max, math.Max(r.Planned, r.Actual))
	}
	return max
}
