package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// IndexBackend selects how the ranked term search is served.
type IndexBackend string

const (
	// IndexBackendSQLite serves ranked search from the FTS5 table inside
	// the provision database (default). Record and index share one
	// transaction, so the sync invariant holds by construction.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendBleve serves ranked search from a sidecar bleve index.
	// Writes are not transactional with the primary store; run the
	// consistency check after a crash mid-ingest.
	IndexBackendBleve IndexBackend = "bleve"
)

// NewTermIndex creates the external term index for the given backend, or
// nil when the built-in FTS5 index serves the ranked path.
// If dataDir is empty an in-memory index is created for testing.
func NewTermIndex(dataDir string, backend IndexBackend) (TermIndex, error) {
	switch backend {
	case IndexBackendSQLite, "":
		return nil, nil
	case IndexBackendBleve:
		var path string
		if dataDir != "" {
			path = filepath.Join(dataDir, "terms.bleve")
		}
		return NewBleveIndex(path)
	default:
		return nil, fmt.Errorf("unknown index backend: %s (valid options: sqlite, bleve)", backend)
	}
}

// DetectIndexBackend reports which backend an existing data directory
// uses, preferring the default when nothing is found.
func DetectIndexBackend(dataDir string) IndexBackend {
	if info, err := os.Stat(filepath.Join(dataDir, "terms.bleve")); err == nil && info.IsDir() {
		return IndexBackendBleve
	}
	return IndexBackendSQLite
}
