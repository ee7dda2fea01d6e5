package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix prefixes every environment override, e.g. CROWDLOG_DATA_DIR
const envPrefix = "CROWDLOG"

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr" envconfig:"LISTEN_ADDR"`
	Debug      bool   `json:"debug" envconfig:"DEBUG"`

	// Directories
	DataDirectory    string `json:"data_directory" envconfig:"DATA_DIR"`
	ExportsDirectory string `json:"exports_directory" envconfig:"EXPORTS_DIR"`

	// Import settings
	SchemaFile     string `json:"schema_file" envconfig:"SCHEMA_FILE"`
	Encoding       string `json:"encoding" envconfig:"ENCODING"`
	MaxUploadBytes int64  `json:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:     ":8080",
		Debug:          false,
		DataDirectory:  filepath.Join(wd, "data"),
		Encoding:       "auto",
		MaxUploadBytes: 32 << 20,
	}
}

// Load applies environment overrides to the defaults and creates the data
// directories
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if cfg.ExportsDirectory == "" {
		cfg.ExportsDirectory = filepath.Join(cfg.DataDirectory, "exports")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("%s_MAX_UPLOAD_BYTES must be positive, got %d", envPrefix, cfg.MaxUploadBytes)
	}

	cfg.ensureDirectories()

	return cfg, nil
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() {
	dirs := []string{
		c.DataDirectory,
		c.ExportsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Warning: could not create directory %s: %v", dir, err)
		}
	}
}
