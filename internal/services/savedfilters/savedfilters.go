// Package savedfilters manages the user's named filter presets.
package savedfilters

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"crowdlog/internal/models"
)

var (
	ErrNotFound     = errors.New("saved filter not found")
	ErrNameRequired = errors.New("saved filter name is required")
)

// copySuffix is appended to the name of a copy when none is given
const copySuffix = " (copy)"

// Set is an ordered list of saved filters
type Set struct {
	items []models.SavedFilter
	now   func() time.Time
}

// NewSet creates a set from persisted items
func NewSet(items []models.SavedFilter) *Set {
	return &Set{
		items: append([]models.SavedFilter{}, items...),
		now:   time.Now,
	}
}

// newID returns a time-ordered identifier
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// List returns the saved filters in creation order
func (s *Set) List() []models.SavedFilter {
	out := make([]models.SavedFilter, len(s.items))
	for i, f := range s.items {
		out[i] = f
		out[i].Filters = f.Filters.Clone()
	}
	return out
}

// Get returns a saved filter by id
func (s *Set) Get(id string) (models.SavedFilter, error) {
	i := s.indexOf(id)
	if i < 0 {
		return models.SavedFilter{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	f := s.items[i]
	f.Filters = f.Filters.Clone()
	return f, nil
}

// Create saves the given selection under a new name
func (s *Set) Create(name string, sel models.FilterSelection) (models.SavedFilter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.SavedFilter{}, ErrNameRequired
	}

	f := models.SavedFilter{
		ID:        newID(),
		Name:      name,
		Filters:   sel.Clone(),
		CreatedAt: s.now(),
	}
	s.items = append(s.items, f)
	return f, nil
}

// Rename changes the name of a saved filter
func (s *Set) Rename(id, name string) (models.SavedFilter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.SavedFilter{}, ErrNameRequired
	}
	i := s.indexOf(id)
	if i < 0 {
		return models.SavedFilter{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items[i].Name = name
	return s.items[i], nil
}

// Overwrite replaces the stored selection of a saved filter
func (s *Set) Overwrite(id string, sel models.FilterSelection) (models.SavedFilter, error) {
	i := s.indexOf(id)
	if i < 0 {
		return models.SavedFilter{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items[i].Filters = sel.Clone()
	return s.items[i], nil
}

// Copy duplicates a saved filter. An empty name derives one from the original.
func (s *Set) Copy(id, name string) (models.SavedFilter, error) {
	orig, err := s.Get(id)
	if err != nil {
		return models.SavedFilter{}, err
	}
	if strings.TrimSpace(name) == "" {
		name = orig.Name + copySuffix
	}
	return s.Create(name, orig.Filters)
}

// Delete removes a saved filter
func (s *Set) Delete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Set) indexOf(id string) int {
	for i, f := range s.items {
		if f.ID == id {
			return i
		}
	}
	return -1
}
