package models

import "fmt"

// FileTimestamp is a date and time recovered from a file name
type FileTimestamp struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// String formats the timestamp the way the dashboard shows it
func (ts FileTimestamp) String() string {
	return fmt.Sprintf("%d/%d/%d %d:%02d:%02d", ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second)
}

// FileMeta describes the last imported file
type FileMeta struct {
	Name      string `json:"name"`
	Encoding  string `json:"encoding"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Snapshot is the persisted application state
type Snapshot struct {
	Dataset        *Dataset           `json:"dataset"`
	CurrentFilters FilterSelection    `json:"current_filters"`
	FilterSorts    map[Facet]SortMode `json:"filter_sorts"`
	LastFile       *FileMeta          `json:"last_file,omitempty"`
}

// Change names an area of the dashboard affected by an operation
type Change string

const (
	ChangeDataset      Change = "dataset"
	ChangeFilters      Change = "filters"
	ChangeFacets       Change = "facets"
	ChangePeriod       Change = "period"
	ChangeChart        Change = "chart"
	ChangeSummary      Change = "summary"
	ChangeTableSort    Change = "table_sort"
	ChangeSavedFilters Change = "saved_filters"
)
