package filters

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apphttp "crowdlog/internal/http"
	"crowdlog/internal/models"
	"crowdlog/internal/services/analytics"
)

var ctrl *analytics.Controller

// Initialize sets up the filters package with required dependencies
func Initialize(a *analytics.Controller) {
	ctrl = a
}

// RegisterRoutes registers the facet and saved filter routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/filters", handleFilters)

	r.Route("/api/facets/{facet}", func(r chi.Router) {
		r.Get("/", handleOptions)
		r.Post("/toggle", handleToggle)
		r.Post("/select-all", handleSelectAll)
		r.Post("/deselect-all", handleDeselectAll)
		r.Put("/sort", handleSortMode)
	})

	r.Route("/api/saved-filters", func(r chi.Router) {
		r.Get("/", handleListSaved)
		r.Post("/", handleCreateSaved)
		r.Put("/{id}/name", handleRenameSaved)
		r.Put("/{id}/selection", handleOverwriteSaved)
		r.Post("/{id}/copy", handleCopySaved)
		r.Post("/{id}/apply", handleApplySaved)
		r.Delete("/{id}", handleDeleteSaved)
	})
}

type toggleRequest struct {
	Value string `json:"value" validate:"required"`
}

type sortModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=selected name_asc name_desc"`
}

type nameRequest struct {
	Name string `json:"name" validate:"required"`
}

type copyRequest struct {
	Name string `json:"name"`
}

// mutation is the reply to every filter change
type mutation struct {
	Changes []models.Change `json:"changes"`
	Filters models.Filters  `json:"filters"`
}

func respond(w http.ResponseWriter, r *http.Request, changes []models.Change) {
	apphttp.JSON(w, r, http.StatusOK, mutation{Changes: changes, Filters: ctrl.Filters()})
}

func facetParam(w http.ResponseWriter, r *http.Request) (models.Facet, bool) {
	f, err := apphttp.ParseFacet(chi.URLParam(r, "facet"))
	if err != nil {
		apphttp.Error(w, r, err)
		return "", false
	}
	return f, true
}

func handleFilters(w http.ResponseWriter, r *http.Request) {
	apphttp.JSON(w, r, http.StatusOK, ctrl.Filters())
}

func handleOptions(w http.ResponseWriter, r *http.Request) {
	f, ok := facetParam(w, r)
	if !ok {
		return
	}

	options, err := ctrl.FacetOptions(f, r.URL.Query().Get("search"))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusOK, map[string]interface{}{
		"facet":     f,
		"sort_mode": ctrl.Filters().SortModes[f],
		"options":   options,
	})
}

func handleToggle(w http.ResponseWriter, r *http.Request) {
	f, ok := facetParam(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	changes, err := ctrl.Toggle(f, req.Value)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	respond(w, r, changes)
}

func handleSelectAll(w http.ResponseWriter, r *http.Request) {
	f, ok := facetParam(w, r)
	if !ok {
		return
	}

	changes, err := ctrl.SelectAll(f)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	respond(w, r, changes)
}

func handleDeselectAll(w http.ResponseWriter, r *http.Request) {
	f, ok := facetParam(w, r)
	if !ok {
		return
	}

	changes, err := ctrl.DeselectAll(f)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	respond(w, r, changes)
}

func handleSortMode(w http.ResponseWriter, r *http.Request) {
	f, ok := facetParam(w, r)
	if !ok {
		return
	}
	var req sortModeRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	changes, err := ctrl.SetSortMode(f, models.SortMode(req.Mode))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	respond(w, r, changes)
}

func handleListSaved(w http.ResponseWriter, r *http.Request) {
	apphttp.JSON(w, r, http.StatusOK, ctrl.SavedFilters())
}

func handleCreateSaved(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	sf, err := ctrl.SaveFilter(req.Name)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusCreated, sf)
}

func handleRenameSaved(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	sf, err := ctrl.RenameSavedFilter(chi.URLParam(r, "id"), req.Name)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusOK, sf)
}

func handleOverwriteSaved(w http.ResponseWriter, r *http.Request) {
	sf, err := ctrl.OverwriteSavedFilter(chi.URLParam(r, "id"))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusOK, sf)
}

func handleCopySaved(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if r.ContentLength > 0 {
		if err := apphttp.DecodeAndValidate(r, &req); err != nil {
			apphttp.Error(w, r, err)
			return
		}
	}

	sf, err := ctrl.CopySavedFilter(chi.URLParam(r, "id"), req.Name)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusCreated, sf)
}

func handleApplySaved(w http.ResponseWriter, r *http.Request) {
	changes, err := ctrl.ApplySavedFilter(chi.URLParam(r, "id"))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	respond(w, r, changes)
}

func handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.DeleteSavedFilter(chi.URLParam(r, "id")); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusOK, map[string]interface{}{
		"changes": []models.Change{models.ChangeSavedFilters},
	})
}
