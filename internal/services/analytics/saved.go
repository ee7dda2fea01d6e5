package analytics

import "crowdlog/internal/models"

// SavedFilters lists the saved filters
func (c *Controller) SavedFilters() []models.SavedFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved.List()
}

// SaveFilter stores the current selection under a new name
func (c *Controller) SaveFilter(name string) (models.SavedFilter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sf, err := c.saved.Create(name, c.engine.Selection())
	if err != nil {
		return models.SavedFilter{}, err
	}
	c.persistSaved()
	return sf, nil
}

// RenameSavedFilter changes a saved filter's name
func (c *Controller) RenameSavedFilter(id, name string) (models.SavedFilter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sf, err := c.saved.Rename(id, name)
	if err != nil {
		return models.SavedFilter{}, err
	}
	c.persistSaved()
	return sf, nil
}

// OverwriteSavedFilter replaces a saved filter's selection with the current one
func (c *Controller) OverwriteSavedFilter(id string) (models.SavedFilter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sf, err := c.saved.Overwrite(id, c.engine.Selection())
	if err != nil {
		return models.SavedFilter{}, err
	}
	c.persistSaved()
	return sf, nil
}

// CopySavedFilter duplicates a saved filter
func (c *Controller) CopySavedFilter(id, name string) (models.SavedFilter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sf, err := c.saved.Copy(id, name)
	if err != nil {
		return models.SavedFilter{}, err
	}
	c.persistSaved()
	return sf, nil
}

// DeleteSavedFilter removes a saved filter
func (c *Controller) DeleteSavedFilter(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.saved.Delete(id); err != nil {
		return err
	}
	c.persistSaved()
	return nil
}

// ApplySavedFilter replaces the facet selections with a saved filter's.
// The period is left alone.
func (c *Controller) ApplySavedFilter(id string) ([]models.Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sf, err := c.saved.Get(id)
	if err != nil {
		return nil, err
	}
	changes := c.engine.ApplySaved(sf.Filters)
	c.persist()
	return changes, nil
}
