package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	// Keep user config and host env out of the test.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"BYLAW_DATA_DIR", "BYLAW_CATALOG", "BYLAW_SEARCH_BACKEND",
		"BYLAW_MAX_RESULTS", "BYLAW_POLITENESS_DELAY", "BYLAW_FETCH_RPS",
		"BYLAW_FETCH_CACHE", "BYLAW_LOG_LEVEL", "BYLAW_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Search.Backend)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, 2*time.Second, cfg.Delay())
	assert.Equal(t, 1.0, cfg.Fetch.MaxRPS)
	assert.True(t, cfg.Fetch.CacheEnabled)
	assert.Equal(t, filepath.Join(cfg.DataDir, "catalog.yaml"), cfg.CatalogPath)
	assert.Equal(t, filepath.Join(cfg.DataDir, "provisions.db"), cfg.StorePath())
	assert.Equal(t, filepath.Join(cfg.DataDir, "cache"), cfg.CacheDir())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /var/lib/bylaw
search:
  backend: bleve
  max_results: 25
fetch:
  politeness_delay: 500ms
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/bylaw", cfg.DataDir)
	assert.Equal(t, "bleve", cfg.Search.Backend)
	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.Equal(t, 500*time.Millisecond, cfg.Delay())
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset fields keep their defaults.
	assert.Equal(t, 30, cfg.Fetch.TimeoutSeconds)
}

func TestLoadEnvHasHighestPrecedence(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  backend: bleve\n"), 0o644))

	t.Setenv("BYLAW_SEARCH_BACKEND", "sqlite")
	t.Setenv("BYLAW_MAX_RESULTS", "5")
	t.Setenv("BYLAW_FETCH_RPS", "0.5")
	t.Setenv("BYLAW_FETCH_CACHE", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Search.Backend)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 0.5, cfg.Fetch.MaxRPS)
	assert.Equal(t, "", cfg.CacheDir())
}

func TestLoadUserConfigLayer(t *testing.T) {
	isolateEnv(t)

	xdg := os.Getenv("XDG_CONFIG_HOME")
	dir := filepath.Join(xdg, "bylaw")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("search:\n  max_results: 50\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Search.MaxResults)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Search.Backend = "xapian" }},
		{"zero max results", func(c *Config) { c.Search.MaxResults = 0 }},
		{"bad delay", func(c *Config) { c.Fetch.PolitenessDelay = "soonish" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"zero timeout", func(c *Config) { c.Fetch.TimeoutSeconds = 0 }},
		{"negative rps", func(c *Config) { c.Fetch.MaxRPS = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	isolateEnv(t)

	cfg := New()
	cfg.Search.MaxResults = 42
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Search.MaxResults)
}
