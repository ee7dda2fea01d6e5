package filter

import (
	"fmt"

	"crowdlog/internal/models"
)

// Period is the resolved active period
type Period struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Corrected bool   `json:"corrected"`
	Notice    string `json:"notice,omitempty"`
}

// ActivePeriod returns the period bounds, defaulting unset bounds to the
// dataset's first and last month
func (e *Engine) ActivePeriod() Period {
	p := Period{Start: e.state.PeriodStart, End: e.state.PeriodEnd}
	if p.Start == "" {
		p.Start = e.dataset.FirstMonth()
	}
	if p.End == "" {
		p.End = e.dataset.LastMonth()
	}
	return p
}

// ActiveMonths returns the dataset months inside the active period
func (e *Engine) ActiveMonths() []string {
	p := e.ActivePeriod()
	return e.dataset.MonthsBetween(p.Start, p.End)
}

// SetPeriod sets both bounds. Month keys are zero padded, so string order is
// chronological; an end before the start is clamped to the start. A bound
// that is not one of the dataset's months is rejected.
func (e *Engine) SetPeriod(start, end string) (Period, []models.Change, error) {
	for _, m := range []string{start, end} {
		if m != "" && !e.hasMonth(m) {
			return e.ActivePeriod(), nil, fmt.Errorf("%w: %q", ErrUnknownMonth, m)
		}
	}

	e.state.PeriodStart = start
	e.state.PeriodEnd = end

	p := e.ActivePeriod()
	if p.Start > p.End {
		p.End = p.Start
		e.state.PeriodEnd = p.Start
		p.Corrected = true
		p.Notice = PeriodCorrectedNotice
	}
	return p, periodChanges(), nil
}

func (e *Engine) hasMonth(m string) bool {
	if e.dataset == nil {
		return false
	}
	for _, month := range e.dataset.Months {
		if month == m {
			return true
		}
	}
	return false
}

// ResetPeriod returns to the full dataset range
func (e *Engine) ResetPeriod() (Period, []models.Change) {
	e.state.PeriodStart = ""
	e.state.PeriodEnd = ""
	return e.ActivePeriod(), periodChanges()
}
