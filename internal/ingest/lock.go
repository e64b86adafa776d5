package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock serializes ingestion runs across processes. The read path is
// unaffected; only a second writer is turned away.
type RunLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewRunLock creates a lock at <dir>/.ingest.lock.
func NewRunLock(dir string) *RunLock {
	path := filepath.Join(dir, ".ingest.lock")
	return &RunLock{path: path, flock: flock.New(path)}
}

// TryLock attempts to acquire the lock without blocking. Returns false
// when another ingestion run holds it.
func (l *RunLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}
	ok, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire ingest lock: %w", err)
	}
	l.locked = ok
	return ok, nil
}

// Unlock releases the lock. Safe to call when not held.
func (l *RunLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	return l.flock.Unlock()
}
