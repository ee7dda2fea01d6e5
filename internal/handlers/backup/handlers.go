package backup

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	apphttp "crowdlog/internal/http"
	"crowdlog/internal/services/analytics"
	"crowdlog/internal/services/storage"
	"crowdlog/internal/version"
)

// maxRestoreBytes caps uploaded backup archives
const maxRestoreBytes = 50 << 20

var (
	store *storage.Storage
	ctrl  *analytics.Controller
)

// Initialize sets up the backup package with required dependencies
func Initialize(s *storage.Storage, a *analytics.Controller) {
	store = s
	ctrl = a
}

type passwordRequest struct {
	Password string `json:"password" validate:"required"`
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	apphttp.JSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"version":   version.Get(),
		"encrypted": store.IsEncrypted(),
		"locked":    store.IsEncrypted() && !store.IsUnlocked(),
	})
}

func HandleBackup(w http.ResponseWriter, r *http.Request) {
	files, err := store.DataFiles()
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error reading data directory", http.StatusInternalServerError)
		return
	}

	// Read everything first so a locked store fails before headers go out
	contents := make(map[string][]byte, len(files))
	for _, path := range files {
		data, err := store.ReadFile(path)
		if err != nil {
			apphttp.Error(w, r, err)
			return
		}
		relPath, err := filepath.Rel(store.BaseDir(), path)
		if err != nil {
			apphttp.ErrorResponse(w, r, "Error resolving file path", http.StatusInternalServerError)
			return
		}
		contents[filepath.ToSlash(relPath)] = data
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("crowdlog_backup_%s.zip", timestamp)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	zw := zip.NewWriter(w)
	defer zw.Close()

	// Backup files are always unencrypted for portability
	for _, path := range files {
		relPath, _ := filepath.Rel(store.BaseDir(), path)
		name := filepath.ToSlash(relPath)
		f, err := zw.Create(name)
		if err != nil {
			log.Printf("Error creating backup entry %s: %v", name, err)
			return
		}
		if _, err := f.Write(contents[name]); err != nil {
			log.Printf("Error writing backup entry %s: %v", name, err)
			return
		}
	}
}

func HandleRestore(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRestoreBytes); err != nil {
		apphttp.ErrorResponse(w, r, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error reading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		apphttp.ErrorResponse(w, r, "Only ZIP backup files are allowed", http.StatusBadRequest)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error reading file", http.StatusInternalServerError)
		return
	}

	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		apphttp.ErrorResponse(w, r, "Invalid ZIP file", http.StatusBadRequest)
		return
	}

	restored := 0
	for _, zipFile := range zipReader.File {
		if zipFile.FileInfo().IsDir() {
			continue
		}

		// Only the snapshot files at the top level are restored
		if !strings.HasSuffix(strings.ToLower(zipFile.Name), ".json") {
			continue
		}
		baseName := filepath.Base(zipFile.Name)
		if strings.Contains(baseName, "..") {
			continue
		}

		rc, err := zipFile.Open()
		if err != nil {
			log.Printf("Error opening zip entry %s: %v", zipFile.Name, err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Printf("Error reading zip entry %s: %v", zipFile.Name, err)
			continue
		}

		// Write via storage (handles encryption if enabled)
		if err := store.WriteFile(store.Path(baseName), data, 0644); err != nil {
			apphttp.Error(w, r, err)
			return
		}
		restored++
		log.Printf("Restored file: %s", baseName)
	}

	if restored == 0 {
		apphttp.ErrorResponse(w, r, "No snapshot files found in backup", http.StatusBadRequest)
		return
	}

	ctrl.Restore()
	log.Printf("Restore complete: %d files restored", restored)
	apphttp.JSON(w, r, http.StatusOK, map[string]interface{}{"restored": restored})
}

func HandleUnlock(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	if err := store.Unlock(req.Password); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	ctrl.Restore()
	log.Println("Storage unlocked")
	apphttp.JSON(w, r, http.StatusOK, map[string]bool{"locked": false})
}

func HandleLock(w http.ResponseWriter, r *http.Request) {
	store.Lock()
	log.Println("Storage locked")
	apphttp.JSON(w, r, http.StatusOK, map[string]bool{"locked": store.IsEncrypted()})
}

func HandleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	if err := store.EnableEncryption(req.Password); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusOK, map[string]bool{"encrypted": true})
}

func HandleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	if err := store.DisableEncryption(req.Password); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusOK, map[string]bool{"encrypted": false})
}
