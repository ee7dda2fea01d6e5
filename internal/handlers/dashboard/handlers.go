package dashboard

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"crowdlog/internal/config"
	apphttp "crowdlog/internal/http"
	"crowdlog/internal/models"
	"crowdlog/internal/services/analytics"
	"crowdlog/internal/services/storage"
	"crowdlog/internal/services/tablesort"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	cfg   *config.Config
	ctrl  *analytics.Controller
	store *storage.Storage
)

// Initialize sets up the dashboard package with required dependencies
func Initialize(c *config.Config, a *analytics.Controller, s *storage.Storage) {
	cfg = c
	ctrl = a
	store = s
}

// RegisterRoutes registers all dashboard routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/dataset", handleDataset)
	r.Put("/api/period", handleSetPeriod)
	r.Post("/api/period/reset", handleResetPeriod)
	r.Get("/api/chart", handleChart)
	r.Post("/api/table/sort", handleTableSort)
	r.Get("/api/summary", handleSummary)
	r.Get("/api/export.xlsx", handleExport)
}

type periodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type tableSortRequest struct {
	Key string `json:"key" validate:"required"`
}

func handleDataset(w http.ResponseWriter, r *http.Request) {
	apphttp.JSON(w, r, http.StatusOK, ctrl.Dataset())
}

func handleSetPeriod(w http.ResponseWriter, r *http.Request) {
	var req periodRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	period, changes, err := ctrl.SetPeriod(req.Start, req.End)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusOK, map[string]interface{}{
		"period":  period,
		"changes": changes,
	})
}

func handleResetPeriod(w http.ResponseWriter, r *http.Request) {
	period, changes := ctrl.ResetPeriod()
	apphttp.JSON(w, r, http.StatusOK, map[string]interface{}{
		"period":  period,
		"changes": changes,
	})
}

func handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode, err := apphttp.ParseMode(q.Get("mode"))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	unit, err := apphttp.ParseUnit(q.Get("unit"))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	baseline, err := apphttp.ParseBaseline(q.Get("baseline"))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	view, err := ctrl.Chart(mode, unit, baseline)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusOK, view)
}

func handleTableSort(w http.ResponseWriter, r *http.Request) {
	var req tableSortRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	state, changes, err := ctrl.SortTable(tablesort.Key(req.Key))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusOK, map[string]interface{}{
		"sort":    state,
		"changes": changes,
	})
}

func handleSummary(w http.ResponseWriter, r *http.Request) {
	unit, err := apphttp.ParseUnit(r.URL.Query().Get("unit"))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusOK, ctrl.Summary(unit))
}

func handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode, err := apphttp.ParseMode(q.Get("mode"))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	unit, err := apphttp.ParseUnit(q.Get("unit"))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	f, err := ctrl.Export(mode, unit)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error writing workbook", http.StatusInternalServerError)
		return
	}

	filename := exportName(mode, time.Now())

	// Keep a copy next to the data; a locked store only skips the copy
	if err := store.WriteFile(filepath.Join(cfg.ExportsDirectory, filename), buf.Bytes(), 0644); err != nil {
		log.Printf("Warning: could not keep a copy of %s: %v", filename, err)
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(buf.Bytes())
}

func exportName(mode models.AnalysisMode, now time.Time) string {
	return fmt.Sprintf("crowdlog_%s_%s.xlsx", mode, now.Format("20060102_150405"))
}
