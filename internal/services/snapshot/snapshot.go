// Package snapshot persists the dashboard state and the saved filter list
// in the data directory.
package snapshot

import (
	"errors"
	"os"
	"sync"

	"crowdlog/internal/models"
	"crowdlog/internal/services/storage"
)

const (
	// DataFile holds the dataset, current filters and last file metadata
	DataFile = "crowdlog_data.json"

	// SavedFiltersFile holds the saved filters, independent of the dataset
	SavedFiltersFile = "crowdlog_saved_filters.json"
)

// Store handles persistence of snapshots
type Store struct {
	store *storage.Storage
	mu    sync.RWMutex
}

// NewStore creates a snapshot store on top of the given storage
func NewStore(s *storage.Storage) *Store {
	return &Store{store: s}
}

// Load reads the persisted snapshot. It returns nil without error when
// nothing has been saved yet.
func (st *Store) Load() (*models.Snapshot, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var snap models.Snapshot
	if err := st.store.ReadJSON(DataFile, &snap); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	normalize(&snap)
	return &snap, nil
}

// Save writes the snapshot
func (st *Store) Save(snap *models.Snapshot) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.store.WriteJSON(DataFile, snap)
}

// Clear deletes the persisted snapshot; saved filters are kept
func (st *Store) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.store.Remove(DataFile)
}

// LoadSavedFilters reads the saved filter list, empty if none was saved
func (st *Store) LoadSavedFilters() ([]models.SavedFilter, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var filters []models.SavedFilter
	if err := st.store.ReadJSON(SavedFiltersFile, &filters); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.SavedFilter{}, nil
		}
		return []models.SavedFilter{}, err
	}

	for i := range filters {
		normalizeSelection(&filters[i].Filters)
	}
	if filters == nil {
		filters = []models.SavedFilter{}
	}
	return filters, nil
}

// SaveSavedFilters writes the saved filter list
func (st *Store) SaveSavedFilters(filters []models.SavedFilter) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if filters == nil {
		filters = []models.SavedFilter{}
	}
	return st.store.WriteJSON(SavedFiltersFile, filters)
}

// normalize ensures slices and maps are initialized after decoding
func normalize(snap *models.Snapshot) {
	normalizeSelection(&snap.CurrentFilters)
	if snap.FilterSorts == nil {
		snap.FilterSorts = models.DefaultSortModes()
	}

	ds := snap.Dataset
	if ds == nil {
		return
	}
	if ds.Records == nil {
		ds.Records = []models.Record{}
	}
	for i := range ds.Records {
		if ds.Records[i].MonthlyHours == nil {
			ds.Records[i].MonthlyHours = models.MonthlyHours{}
		}
	}
	for _, s := range []*[]string{&ds.Months, &ds.Departments, &ds.Projects, &ds.Employees} {
		if *s == nil {
			*s = []string{}
		}
	}
}

func normalizeSelection(sel *models.FilterSelection) {
	for _, s := range []*[]string{&sel.Projects, &sel.Departments, &sel.Employees} {
		if *s == nil {
			*s = []string{}
		}
	}
}
