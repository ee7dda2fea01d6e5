// Package analytics owns the dashboard state: the current dataset, the filter
// engine, the saved filters and the table sort. Every operation goes through
// one Controller so concurrent requests see a consistent view.
package analytics

import (
	"log"
	"sync"

	"crowdlog/internal/models"
	"crowdlog/internal/services/dataloader"
	"crowdlog/internal/services/filter"
	"crowdlog/internal/services/metrics"
	"crowdlog/internal/services/savedfilters"
	"crowdlog/internal/services/tablesort"
	"crowdlog/internal/services/telemetry"
)

// axisTicks is the number of gridlines the chart aims for
const axisTicks = 5

// Persister stores the snapshot and the saved filters
type Persister interface {
	Load() (*models.Snapshot, error)
	Save(snap *models.Snapshot) error
	Clear() error
	LoadSavedFilters() ([]models.SavedFilter, error)
	SaveSavedFilters(filters []models.SavedFilter) error
}

// Controller serialises all reads and writes of the dashboard state
type Controller struct {
	mu       sync.Mutex
	importMu sync.Mutex

	loader  *dataloader.DataLoader
	metrics *metrics.Service
	store   Persister

	engine   *filter.Engine
	saved    *savedfilters.Set
	sort     tablesort.State
	lastFile *models.FileMeta
}

// New creates a controller with an empty dataset
func New(loader *dataloader.DataLoader, store Persister) *Controller {
	return &Controller{
		loader:  loader,
		metrics: metrics.New(),
		store:   store,
		engine:  filter.New(nil),
		saved:   savedfilters.NewSet(nil),
	}
}

// Restore rehydrates the state from the persister. Read failures are logged
// and leave the empty defaults in place.
func (c *Controller) Restore() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.engine = filter.New(nil)
	c.sort = tablesort.State{}
	c.lastFile = nil

	snap, err := c.store.Load()
	if err != nil {
		log.Printf("Warning: could not restore dashboard state: %v", err)
		telemetry.RecordPersistenceFailure("load")
	} else if snap != nil {
		c.engine = filter.New(snap.Dataset)
		c.engine.Restore(snap.CurrentFilters, snap.FilterSorts)
		c.lastFile = snap.LastFile
	}
	telemetry.SetDatasetRecords(len(c.engine.Dataset().Records))

	items, err := c.store.LoadSavedFilters()
	if err != nil {
		log.Printf("Warning: could not restore saved filters: %v", err)
		telemetry.RecordPersistenceFailure("load_saved_filters")
		items = nil
	}
	c.saved = savedfilters.NewSet(items)
}

// persist writes the snapshot; the caller holds mu
func (c *Controller) persist() {
	f := c.engine.Filters()
	snap := &models.Snapshot{
		Dataset:        c.engine.Dataset(),
		CurrentFilters: f.FilterSelection,
		FilterSorts:    f.SortModes,
		LastFile:       c.lastFile,
	}
	if err := c.store.Save(snap); err != nil {
		log.Printf("Warning: failed to persist dashboard state: %v", err)
		telemetry.RecordPersistenceFailure("save")
	}
}

// persistSaved writes the saved filter list; the caller holds mu
func (c *Controller) persistSaved() {
	if err := c.store.SaveSavedFilters(c.saved.List()); err != nil {
		log.Printf("Warning: failed to persist saved filters: %v", err)
		telemetry.RecordPersistenceFailure("save_saved_filters")
	}
}

// ImportResult reports a successful import
type ImportResult struct {
	File    models.FileMeta        `json:"file"`
	Records int                    `json:"records"`
	Months  []string               `json:"months"`
	Report  dataloader.ParseReport `json:"report"`
	Changes []models.Change        `json:"changes"`
}

// Import parses an uploaded file and, on success, replaces the dataset.
// Selections, period and sort modes start over; on failure nothing changes.
func (c *Controller) Import(filename string, data []byte, pref dataloader.Preference) (*ImportResult, error) {
	c.importMu.Lock()
	defer c.importMu.Unlock()

	res, err := c.loader.Load(filename, data, pref)
	if err != nil {
		telemetry.RecordImport(nil, err)
		return nil, err
	}
	telemetry.RecordImport(&res.Report, nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.engine = filter.New(res.Dataset)
	c.sort = tablesort.State{}
	file := res.File
	c.lastFile = &file
	c.persist()
	telemetry.SetDatasetRecords(len(res.Dataset.Records))

	return &ImportResult{
		File:    file,
		Records: len(res.Dataset.Records),
		Months:  res.Dataset.Months,
		Report:  res.Report,
		Changes: []models.Change{
			models.ChangeDataset, models.ChangeFilters, models.ChangeFacets,
			models.ChangePeriod, models.ChangeChart, models.ChangeSummary, models.ChangeTableSort,
		},
	}, nil
}

// Clear drops the dataset and its persisted snapshot. Saved filters stay.
func (c *Controller) Clear() ([]models.Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		return nil, err
	}
	c.engine = filter.New(nil)
	c.sort = tablesort.State{}
	c.lastFile = nil
	telemetry.SetDatasetRecords(0)

	return []models.Change{
		models.ChangeDataset, models.ChangeFilters, models.ChangeFacets,
		models.ChangePeriod, models.ChangeChart, models.ChangeSummary, models.ChangeTableSort,
	}, nil
}

// DatasetView describes the loaded dataset for the dashboard header
type DatasetView struct {
	Records     int              `json:"records"`
	Months      []string         `json:"months"`
	Projects    []string         `json:"projects"`
	Departments []string         `json:"departments"`
	Employees   []string         `json:"employees"`
	Period      filter.Period    `json:"period"`
	LastFile    *models.FileMeta `json:"last_file,omitempty"`
}

// Dataset returns the current dataset overview
func (c *Controller) Dataset() DatasetView {
	c.mu.Lock()
	defer c.mu.Unlock()

	ds := c.engine.Dataset()
	return DatasetView{
		Records:     len(ds.Records),
		Months:      ds.Months,
		Projects:    ds.Projects,
		Departments: ds.Departments,
		Employees:   ds.Employees,
		Period:      c.engine.ActivePeriod(),
		LastFile:    c.lastFile,
	}
}

// Filters returns a copy of the current filter state
func (c *Controller) Filters() models.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Filters()
}

// FacetOptions lists a facet's values in its sort mode, narrowed by search
func (c *Controller) FacetOptions(f models.Facet, search string) ([]models.FacetOption, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Options(f, search)
}

// Toggle flips one facet value
func (c *Controller) Toggle(f models.Facet, value string) ([]models.Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changes, err := c.engine.Toggle(f, value)
	if err != nil {
		return nil, err
	}
	c.persist()
	return changes, nil
}

// SelectAll selects every value of a facet
func (c *Controller) SelectAll(f models.Facet) ([]models.Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changes, err := c.engine.SelectAll(f)
	if err != nil {
		return nil, err
	}
	c.persist()
	return changes, nil
}

// DeselectAll clears a facet
func (c *Controller) DeselectAll(f models.Facet) ([]models.Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changes, err := c.engine.DeselectAll(f)
	if err != nil {
		return nil, err
	}
	c.persist()
	return changes, nil
}

// SetSortMode changes the ordering of a facet's options
func (c *Controller) SetSortMode(f models.Facet, mode models.SortMode) ([]models.Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changes, err := c.engine.SetSortMode(f, mode)
	if err != nil {
		return nil, err
	}
	c.persist()
	return changes, nil
}

// SetPeriod sets the active month range
func (c *Controller) SetPeriod(start, end string) (filter.Period, []models.Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.SetPeriod(start, end)
}

// ResetPeriod returns to the full month range
func (c *Controller) ResetPeriod() (filter.Period, []models.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.ResetPeriod()
}
