package upload

import (
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdlog/internal/config"
	apphttp "crowdlog/internal/http"
	"crowdlog/internal/services/analytics"
	"crowdlog/internal/services/dataloader"
	"crowdlog/testdata"
)

var (
	cfg  *config.Config
	ctrl *analytics.Controller
)

// Initialize sets up the upload package with required dependencies
func Initialize(c *config.Config, a *analytics.Controller) {
	cfg = c
	ctrl = a
}

// RegisterRoutes registers the import and clear routes
func RegisterRoutes(r chi.Router) {
	r.Post("/api/import", handleImport)
	r.Post("/api/import/sample", handleImportSample)
	r.Delete("/api/data", handleClearData)
}

func handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(cfg.MaxUploadBytes); err != nil {
		apphttp.ErrorResponse(w, r, "File too large or not a multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apphttp.ErrorResponse(w, r, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Reject before reading the content
	if err := dataloader.CheckFormat(header.Filename); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	encoding := r.FormValue("encoding")
	if encoding == "" {
		encoding = cfg.Encoding
	}
	pref, err := dataloader.ParsePreference(encoding)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error reading file", http.StatusInternalServerError)
		return
	}

	importFile(w, r, header.Filename, data, pref)
}

func handleImportSample(w http.ResponseWriter, r *http.Request) {
	importFile(w, r, testdata.SampleName, testdata.SampleTimesheet, dataloader.PreferAuto)
}

func importFile(w http.ResponseWriter, r *http.Request, name string, data []byte, pref dataloader.Preference) {
	res, err := ctrl.Import(name, data, pref)
	if err != nil {
		log.Printf("Import of %s failed: %v", name, err)
		apphttp.Error(w, r, err)
		return
	}

	log.Printf("Imported %s: %d records, %d months, encoding %s", name, res.Records, len(res.Months), res.File.Encoding)
	apphttp.JSON(w, r, http.StatusOK, res)
}

func handleClearData(w http.ResponseWriter, r *http.Request) {
	changes, err := ctrl.Clear()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	log.Println("Cleared dataset")
	apphttp.JSON(w, r, http.StatusOK, map[string]interface{}{"changes": changes})
}
