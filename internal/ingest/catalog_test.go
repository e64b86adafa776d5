package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sadiqawos/toronto2.0/internal/errors"
	"github.com/sadiqawos/toronto2.0/internal/store"
)

func TestParseCatalogResolvesURLs(t *testing.T) {
	catalog, err := ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)

	units, err := catalog.Units("municipal_code", true)
	require.NoError(t, err)
	require.Len(t, units, 3)

	// Template expansion for chapters without their own URL
	assert.Equal(t, "https://example.com/code/591", units[0].URL)
	assert.Equal(t, store.SourceMunicipalCode, units[0].Source)
	assert.Equal(t, "municipal_code/591", units[0].ID())

	// Per-chapter URL wins over the template
	zoning, err := catalog.Units("zoning_bylaw", false)
	require.NoError(t, err)
	require.Len(t, zoning, 1)
	assert.Equal(t, "https://example.com/zoning/residential", zoning[0].URL)
}

func TestUnitsPrioritySubsetIsDefault(t *testing.T) {
	catalog, err := ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)

	units, err := catalog.Units("municipal_code", false)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "591", units[0].Chapter.Number)
	assert.Equal(t, "918", units[1].Chapter.Number)
}

func TestUnitsAllSourcesStableOrder(t *testing.T) {
	catalog, err := ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)

	units, err := catalog.Units("", false)
	require.NoError(t, err)
	require.Len(t, units, 3)
	// Sources iterate in sorted name order for reproducible runs.
	assert.Equal(t, store.SourceMunicipalCode, units[0].Source)
	assert.Equal(t, store.SourceZoningBylaw, units[2].Source)
}

func TestParseCatalogRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no sources", `sources: {}`},
		{"no chapters", "sources:\n  municipal_code:\n    chapters: []\n"},
		{"chapter without number", "sources:\n  municipal_code:\n    url_template: \"https://x/{chapter}\"\n    chapters:\n      - title: Noise\n"},
		{"duplicate chapter", "sources:\n  municipal_code:\n    url_template: \"https://x/{chapter}\"\n    chapters:\n      - number: \"591\"\n      - number: \"591\"\n"},
		{"no url and no template", "sources:\n  municipal_code:\n    chapters:\n      - number: \"591\"\n"},
		{"priority outside chapter list", "sources:\n  municipal_code:\n    url_template: \"https://x/{chapter}\"\n    chapters:\n      - number: \"591\"\n    priority_chapters: [\"918\"]\n"},
		{"malformed yaml", `sources: [`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tc.yaml))
			require.Error(t, err)
			appErr, ok := err.(*apperrors.Error)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeCatalogInvalid, appErr.Code)
		})
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	appErr, ok := err.(*apperrors.Error)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConfigNotFound, appErr.Code)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogYAML), 0o644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"municipal_code", "zoning_bylaw"}, catalog.SourceNames())
}
