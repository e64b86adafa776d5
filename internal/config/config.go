// Package config loads engine configuration. Precedence, lowest to
// highest: built-in defaults, user config (~/.config/bylaw/config.yaml),
// an explicit config file, then BYLAW_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration.
type Config struct {
	// DataDir holds the provision store, the fetch cache, and lock
	// files. Defaults to ~/.bylaw.
	DataDir string `yaml:"data_dir"`

	// CatalogPath is the document catalog. Defaults to
	// <data_dir>/catalog.yaml.
	CatalogPath string `yaml:"catalog_path"`

	Fetch  FetchConfig  `yaml:"fetch"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
}

// FetchConfig configures document acquisition.
type FetchConfig struct {
	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// PolitenessDelay is the pause between fetched ingestion units,
	// e.g. "2s".
	PolitenessDelay string `yaml:"politeness_delay"`
	// MaxRPS caps request rate against the source server. The
	// politeness delay is the primary pacing between units; the cap
	// additionally bounds bursts when cached units resolve instantly.
	// Zero disables the cap.
	MaxRPS float64 `yaml:"max_rps"`
	// CacheEnabled turns the disk fetch cache on.
	CacheEnabled bool `yaml:"cache_enabled"`
	// UserAgent identifies ingestion requests to the source server.
	UserAgent string `yaml:"user_agent"`
}

// SearchConfig configures the read path.
type SearchConfig struct {
	// Backend selects the term index: "sqlite" (default, in-store
	// FTS5) or "bleve" (sidecar index).
	Backend string `yaml:"backend"`
	// MaxResults is the default search limit.
	MaxResults int `yaml:"max_results"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// File is an optional log file path; empty logs to stderr only.
	File string `yaml:"file"`
}

// New returns the built-in defaults.
func New() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Fetch: FetchConfig{
			TimeoutSeconds:  30,
			PolitenessDelay: "2s",
			MaxRPS:          1,
			CacheEnabled:    true,
			UserAgent:       "bylaw-ingest/1.0",
		},
		Search: SearchConfig{
			Backend:    "sqlite",
			MaxResults: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".bylaw")
	}
	return filepath.Join(home, ".bylaw")
}

// UserConfigPath returns the user config location, honoring
// XDG_CONFIG_HOME.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bylaw", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "bylaw", "config.yaml")
	}
	return filepath.Join(home, ".config", "bylaw", "config.yaml")
}

// Load builds the effective configuration. path may be empty, in which
// case only the user config, defaults, and environment apply.
func Load(path string) (*Config, error) {
	cfg := New()

	if user := UserConfigPath(); fileExists(user) {
		if err := cfg.loadYAML(user); err != nil {
			return nil, err
		}
	}
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnvOverrides()

	if cfg.CatalogPath == "" {
		cfg.CatalogPath = filepath.Join(cfg.DataDir, "catalog.yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StorePath returns the provision database location.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "provisions.db")
}

// CacheDir returns the fetch cache directory; empty when caching is
// disabled.
func (c *Config) CacheDir() string {
	if !c.Fetch.CacheEnabled {
		return ""
	}
	return filepath.Join(c.DataDir, "cache")
}

// Delay parses the politeness delay. Validate has already checked it.
func (c *Config) Delay() time.Duration {
	d, err := time.ParseDuration(c.Fetch.PolitenessDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero values from other.
func (c *Config) mergeWith(other *Config) {
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.CatalogPath != "" {
		c.CatalogPath = other.CatalogPath
	}
	if other.Fetch.TimeoutSeconds != 0 {
		c.Fetch.TimeoutSeconds = other.Fetch.TimeoutSeconds
	}
	if other.Fetch.PolitenessDelay != "" {
		c.Fetch.PolitenessDelay = other.Fetch.PolitenessDelay
	}
	if other.Fetch.MaxRPS != 0 {
		c.Fetch.MaxRPS = other.Fetch.MaxRPS
	}
	if other.Fetch.UserAgent != "" {
		c.Fetch.UserAgent = other.Fetch.UserAgent
	}
	if other.Search.Backend != "" {
		c.Search.Backend = other.Search.Backend
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}
}

// applyEnvOverrides applies BYLAW_* environment overrides, the highest
// precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BYLAW_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("BYLAW_CATALOG"); v != "" {
		c.CatalogPath = v
	}
	if v := os.Getenv("BYLAW_SEARCH_BACKEND"); v != "" {
		c.Search.Backend = v
	}
	if v := os.Getenv("BYLAW_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("BYLAW_POLITENESS_DELAY"); v != "" {
		c.Fetch.PolitenessDelay = v
	}
	if v := os.Getenv("BYLAW_FETCH_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps >= 0 {
			c.Fetch.MaxRPS = rps
		}
	}
	if v := os.Getenv("BYLAW_FETCH_CACHE"); v != "" {
		c.Fetch.CacheEnabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("BYLAW_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BYLAW_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if c.Search.Backend != "sqlite" && c.Search.Backend != "bleve" {
		return fmt.Errorf("search.backend must be 'sqlite' or 'bleve', got %q", c.Search.Backend)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive, got %d", c.Fetch.TimeoutSeconds)
	}
	if _, err := time.ParseDuration(c.Fetch.PolitenessDelay); err != nil {
		return fmt.Errorf("fetch.politeness_delay is not a duration: %q", c.Fetch.PolitenessDelay)
	}
	if c.Fetch.MaxRPS < 0 {
		return fmt.Errorf("fetch.max_rps must not be negative, got %g", c.Fetch.MaxRPS)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be 'debug', 'info', 'warn', or 'error', got %q", c.Log.Level)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
