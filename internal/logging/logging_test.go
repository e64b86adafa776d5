package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.log")
	logger, cleanup, err := Setup(Config{
		Level:     "info",
		FilePath:  path,
		MaxSizeMB: 1,
		MaxFiles:  2,
	})
	require.NoError(t, err)

	logger.Info("ingest_unit_complete", slog.String("unit", "municipal_code/591"))
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "ingest_unit_complete", entry["msg"])
	assert.Equal(t, "municipal_code/591", entry["unit"])
}

func TestSetupLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.log")
	logger, cleanup, err := Setup(Config{Level: "warn", FilePath: path})
	require.NoError(t, err)

	logger.Info("search_complete")
	logger.Warn("ingest_unit_failed")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "search_complete")
	assert.Contains(t, string(data), "ingest_unit_failed")
}

func TestRotatingWriterRotatesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ingest.log")

	w, err := NewRotatingWriter(path, 1, 2)
	require.NoError(t, err)
	defer w.Close()

	// Each write is half the max size, so every second write rotates.
	chunk := strings.Repeat("x", 512*1024)
	for i := 0; i < 8; i++ {
		_, err := w.Write([]byte(chunk))
		require.NoError(t, err)
	}

	entries, err := filepath.Glob(filepath.Join(dir, "ingest.log*"))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(entries), 3, "live file plus at most maxFiles rotations")
	assert.Contains(t, entries, path)
}
