package models

import "time"

// SavedFilter is a named snapshot of the facet selections
type SavedFilter struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Filters   FilterSelection `json:"filters"`
	CreatedAt time.Time       `json:"created_at"`
}
