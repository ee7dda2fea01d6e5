package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	original := sample{Name: "田中", Hours: 22.5}
	if err := store.WriteJSON("crowdlog_data.json", original); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	password := "testpassword123"
	if err := store.EnableEncryption(password); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}
	if !store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return true")
	}

	rawData, _ := os.ReadFile(store.Path("crowdlog_data.json"))
	if !isAgeEncrypted(rawData) {
		t.Error("File should be encrypted on disk")
	}

	var got sample
	if err := store.ReadJSON("crowdlog_data.json", &got); err != nil {
		t.Fatalf("Failed to read encrypted file: %v", err)
	}
	if got != original {
		t.Errorf("Content mismatch after encryption: got %+v, want %+v", got, original)
	}

	store.Lock()
	if store.IsUnlocked() {
		t.Error("Expected storage to be locked")
	}
	if err := store.ReadJSON("crowdlog_data.json", &got); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked while locked, got %v", err)
	}
	if err := store.WriteJSON("crowdlog_data.json", original); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked writing while locked, got %v", err)
	}

	if err := store.Unlock(password); err != nil {
		t.Fatalf("Failed to unlock: %v", err)
	}
	got = sample{}
	if err := store.ReadJSON("crowdlog_data.json", &got); err != nil {
		t.Fatalf("Failed to read after unlock: %v", err)
	}
	if got != original {
		t.Errorf("Content mismatch after unlock")
	}

	if err := store.DisableEncryption(password); err != nil {
		t.Fatalf("Failed to disable encryption: %v", err)
	}
	if store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return false after disable")
	}

	rawData, _ = os.ReadFile(store.Path("crowdlog_data.json"))
	if isAgeEncrypted(rawData) {
		t.Error("File should be decrypted on disk")
	}
}

func TestWrongPassword(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.WriteJSON("crowdlog_saved_filters.json", []string{}); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := store.EnableEncryption("correctpassword"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	store.Lock()

	if err := store.Unlock("wrongpassword"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("Expected ErrIncorrectPassword, got %v", err)
	}
	if err := store.DisableEncryption("wrongpassword"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("Expected ErrIncorrectPassword from DisableEncryption, got %v", err)
	}
}

func TestPasswordTooShort(t *testing.T) {
	store, _ := New(t.TempDir())

	if err := store.EnableEncryption("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Error("Expected error for short password")
	}
}

func TestExportsFollowEncryption(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	before := filepath.Join(dir, "exports", "before.xlsx")
	content := []byte("PK fake workbook")
	if err := store.WriteFile(before, content, 0644); err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}
	if err := store.WriteJSON("crowdlog_data.json", sample{Name: "田中"}); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := store.EnableEncryption("testpassword123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}
	rawData, _ := os.ReadFile(before)
	if !isAgeEncrypted(rawData) {
		t.Error("Existing export should be encrypted by the migration")
	}

	during := filepath.Join(dir, "exports", "during.xlsx")
	if err := store.WriteFile(during, content, 0644); err != nil {
		t.Fatalf("Failed to write export while encrypted: %v", err)
	}

	if err := store.DisableEncryption("testpassword123"); err != nil {
		t.Fatalf("Failed to disable encryption: %v", err)
	}

	files, err := store.DataFiles()
	if err != nil {
		t.Fatalf("DataFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 data files, got %v", files)
	}
	for _, path := range files {
		data, err := store.ReadFile(path)
		if err != nil {
			t.Errorf("ReadFile(%s) after disabling encryption: %v", filepath.Base(path), err)
			continue
		}
		if isAgeEncrypted(data) {
			t.Errorf("%s is still encrypted", filepath.Base(path))
		}
	}

	rawData, _ = os.ReadFile(during)
	if string(rawData) != string(content) {
		t.Error("Export written while encrypted should be plaintext after disabling")
	}
}

func TestNewFilesEncrypted(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.EnableEncryption("testpassword123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	if err := store.WriteJSON("new.json", sample{Name: "new"}); err != nil {
		t.Fatalf("Failed to write new file: %v", err)
	}

	rawData, _ := os.ReadFile(store.Path("new.json"))
	if !isAgeEncrypted(rawData) {
		t.Error("New file should be encrypted on disk")
	}

	// reopening finds the marker and starts locked
	reopened, _ := New(dir)
	if !reopened.IsEncrypted() || reopened.IsUnlocked() {
		t.Error("Reopened storage should be encrypted and locked")
	}
}

func TestRemoveAndDataFiles(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.Remove("missing.json"); err != nil {
		t.Errorf("Removing a missing file should succeed, got %v", err)
	}

	store.WriteJSON("a.json", sample{})
	store.EnableEncryption("testpassword123")

	files, err := store.DataFiles()
	if err != nil {
		t.Fatalf("DataFiles failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.json" {
		t.Errorf("Expected only a.json, got %v", files)
	}

	if err := store.Remove("a.json"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(store.Path("a.json")); !os.IsNotExist(err) {
		t.Error("File should be gone")
	}
}
