package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadiqawos/toronto2.0/configs"
	"github.com/sadiqawos/toronto2.0/internal/ingest"
)

func TestCatalogInit_WritesDefaultCatalog(t *testing.T) {
	dataDir := testEnv(t)

	out, err := runCommand(t, "catalog", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote catalog")

	data, err := os.ReadFile(filepath.Join(dataDir, "catalog.yaml"))
	require.NoError(t, err)
	assert.Equal(t, configs.DefaultCatalog, data)
}

func TestCatalogInit_RefusesToOverwrite(t *testing.T) {
	dataDir := testEnv(t)
	writeCatalog(t, dataDir, "sources: {}\n")

	_, err := runCommand(t, "catalog", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	// --force replaces the existing file.
	_, err = runCommand(t, "catalog", "init", "--force")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dataDir, "catalog.yaml"))
	require.NoError(t, err)
	assert.Equal(t, configs.DefaultCatalog, data)
}

func TestCatalogList_ShowsSourcesAndPriority(t *testing.T) {
	testEnv(t)

	_, err := runCommand(t, "catalog", "init")
	require.NoError(t, err)

	out, err := runCommand(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Toronto Municipal Code (municipal_code)")
	assert.Contains(t, out, "Zoning By-law 569-2013 (zoning_bylaw)")
	assert.Contains(t, out, "Noise")
	assert.Contains(t, out, "* ingested by default")
}

func TestDefaultCatalogParses(t *testing.T) {
	catalog, err := ingest.ParseCatalog(configs.DefaultCatalog)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"municipal_code", "zoning_bylaw"}, catalog.SourceNames())

	units, err := catalog.Units("municipal_code", false)
	require.NoError(t, err)
	assert.Len(t, units, 10, "Default run should cover the priority subset")

	all, err := catalog.Units("municipal_code", true)
	require.NoError(t, err)
	assert.Len(t, all, 16)
}
