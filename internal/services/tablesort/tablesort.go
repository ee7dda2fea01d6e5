// Package tablesort implements the click-to-sort behaviour of the result
// table: ascending, then descending, then back to aggregation order.
package tablesort

import (
	"errors"
	"fmt"
	"sort"

	"crowdlog/internal/models"
	"crowdlog/internal/services/collation"
)

// ErrUnknownKey is returned for a column that cannot be sorted
var ErrUnknownKey = errors.New("unknown sort key")

// Key names a sortable table column
type Key string

const (
	KeyLabel      Key = "label"
	KeyDepartment Key = "department"
	KeyPlanned    Key = "planned"
	KeyActual     Key = "actual"
	KeyDiff       Key = "diff"
	KeyRate       Key = "rate"
)

// Order is the direction of an active sort
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// State is the current table sort; an empty Key means unsorted
type State struct {
	Key   Key   `json:"key,omitempty"`
	Order Order `json:"order,omitempty"`
}

// Valid reports whether k names a sortable column
func (k Key) Valid() bool {
	switch k {
	case KeyLabel, KeyDepartment, KeyPlanned, KeyActual, KeyDiff, KeyRate:
		return true
	}
	return false
}

// Sorted reports whether a sort is active
func (s State) Sorted() bool {
	return s.Key != ""
}

// Toggle advances the sort for a column: a new column sorts ascending,
// ascending becomes descending, and descending clears the sort
func (s State) Toggle(k Key) (State, error) {
	if !k.Valid() {
		return s, fmt.Errorf("%w: %q", ErrUnknownKey, k)
	}
	switch {
	case s.Key != k:
		return State{Key: k, Order: Asc}, nil
	case s.Order == Asc:
		return State{Key: k, Order: Desc}, nil
	}
	return State{}, nil
}

// Apply returns the rows ordered by the state. The input is never modified,
// so clearing the sort restores the original order. Equal keys keep their
// original relative order.
func (s State) Apply(rows []models.ChartRow) []models.ChartRow {
	out := append([]models.ChartRow{}, rows...)
	if !s.Sorted() {
		return out
	}

	cmp := comparator(s.Key)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if s.Order == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func comparator(k Key) func(a, b models.ChartRow) int {
	switch k {
	case KeyLabel:
		return func(a, b models.ChartRow) int { return collation.Compare(a.Label, b.Label) }
	case KeyDepartment:
		return func(a, b models.ChartRow) int { return collation.Compare(a.Department, b.Department) }
	case KeyPlanned:
		return numeric(func(r models.ChartRow) float64 { return r.Planned })
	case KeyActual:
		return numeric(func(r models.ChartRow) float64 { return r.Actual })
	case KeyDiff:
		return numeric(models.ChartRow.Diff)
	}
	return numeric(models.ChartRow.Rate)
}

func numeric(value func(models.ChartRow) float64) func(a, b models.ChartRow) int {
	return func(a, b models.ChartRow) int {
		va, vb := value(a), value(b)
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
		return 0
	}
}
