// Package index provides the index-repair tooling. The term index must
// never reference a provision id missing from the primary store, and must
// never omit one that exists; transactional writes make desync impossible
// in normal operation, so anything found here is treated as fatal until
// repaired.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sadiqawos/toronto2.0/internal/errors"
	"github.com/sadiqawos/toronto2.0/internal/store"
)

// InconsistencyType categorizes detected issues.
type InconsistencyType int

const (
	// InconsistencyOrphanEntry indicates an index entry without a
	// matching provision record.
	InconsistencyOrphanEntry InconsistencyType = iota
	// InconsistencyMissingEntry indicates a provision record missing
	// from the term index.
	InconsistencyMissingEntry
	// InconsistencyEmptyChapter indicates an ingestion record whose
	// chapter has no stored provisions, blocking its re-ingestion.
	InconsistencyEmptyChapter
)

// String returns a human-readable description of the inconsistency type.
func (t InconsistencyType) String() string {
	switch t {
	case InconsistencyOrphanEntry:
		return "orphan_entry"
	case InconsistencyMissingEntry:
		return "missing_entry"
	case InconsistencyEmptyChapter:
		return "empty_chapter"
	default:
		return "unknown"
	}
}

// Inconsistency represents one detected desync. Entry issues carry the
// provision id; empty-chapter issues carry the ingestion record key.
type Inconsistency struct {
	Type        InconsistencyType
	ProvisionID int64
	Source      store.Source
	Chapter     string
}

// String describes the inconsistency for CLI and log output.
func (i Inconsistency) String() string {
	if i.Type == InconsistencyEmptyChapter {
		return fmt.Sprintf("%s: %s/%s", i.Type.String(), i.Source, i.Chapter)
	}
	return fmt.Sprintf("%s: provision %d", i.Type.String(), i.ProvisionID)
}

// CheckResult contains the outcome of a consistency check.
type CheckResult struct {
	// Checked is the number of provision records verified.
	Checked int
	// Inconsistencies contains all detected issues.
	Inconsistencies []Inconsistency
	// Duration is how long the check took.
	Duration time.Duration
}

// Clean reports whether no inconsistencies were found.
func (r *CheckResult) Clean() bool {
	return len(r.Inconsistencies) == 0
}

// Checker validates record/index sync. With the default FTS5 backend the
// index lives inside the store; with a bleve sidecar the external index
// is compared instead.
type Checker struct {
	store *store.Store
	terms store.TermIndex // nil for the built-in FTS5 index
}

// NewChecker creates a checker for the given store and optional external
// term index.
func NewChecker(s *store.Store, terms store.TermIndex) *Checker {
	return &Checker{store: s, terms: terms}
}

// Check scans both sides for desync. O(n) in total entries.
func (c *Checker) Check(ctx context.Context) (*CheckResult, error) {
	start := time.Now()

	var (
		recordIDs, indexIDs []int64
		emptyChapters       []store.IngestRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := c.store.AllIDs(gctx)
		recordIDs = ids
		return err
	})
	g.Go(func() error {
		var err error
		if c.terms != nil {
			indexIDs, err = c.terms.AllIDs()
		} else {
			indexIDs, err = c.store.IndexIDs(gctx)
		}
		return err
	})
	g.Go(func() error {
		records, err := c.store.EmptyIngestedChapters(gctx)
		emptyChapters = records
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recorded := make(map[int64]bool, len(recordIDs))
	for _, id := range recordIDs {
		recorded[id] = true
	}
	indexed := make(map[int64]bool, len(indexIDs))
	for _, id := range indexIDs {
		indexed[id] = true
	}

	var issues []Inconsistency
	for _, id := range indexIDs {
		if !recorded[id] {
			issues = append(issues, Inconsistency{Type: InconsistencyOrphanEntry, ProvisionID: id})
		}
	}
	for _, id := range recordIDs {
		if !indexed[id] {
			issues = append(issues, Inconsistency{Type: InconsistencyMissingEntry, ProvisionID: id})
		}
	}
	for _, r := range emptyChapters {
		issues = append(issues, Inconsistency{
			Type:    InconsistencyEmptyChapter,
			Source:  r.Source,
			Chapter: r.Chapter,
		})
	}

	result := &CheckResult{
		Checked:         len(recordIDs),
		Inconsistencies: issues,
		Duration:        time.Since(start),
	}
	if !result.Clean() {
		slog.Warn("index_desync_detected",
			slog.Int("orphans", countType(issues, InconsistencyOrphanEntry)),
			slog.Int("missing", countType(issues, InconsistencyMissingEntry)),
			slog.Int("empty_chapters", countType(issues, InconsistencyEmptyChapter)))
	}
	return result, nil
}

// Repair rebuilds missing index entries from the primary records and
// removes orphaned entries. Returns the number of issues fixed.
func (c *Checker) Repair(ctx context.Context, result *CheckResult) (int, error) {
	if result.Clean() {
		return 0, nil
	}

	var orphans []int64
	fixed := 0
	for _, issue := range result.Inconsistencies {
		switch issue.Type {
		case InconsistencyOrphanEntry:
			orphans = append(orphans, issue.ProvisionID)
		case InconsistencyMissingEntry:
			if err := c.reindex(ctx, issue.ProvisionID); err != nil {
				return fixed, errors.Wrap(errors.ErrCodeIndexDesync, err)
			}
			fixed++
		case InconsistencyEmptyChapter:
			if err := c.store.UnmarkIngested(ctx, issue.Source, issue.Chapter); err != nil {
				return fixed, errors.Wrap(errors.ErrCodeIndexDesync, err)
			}
			fixed++
		}
	}

	if len(orphans) > 0 {
		var err error
		if c.terms != nil {
			err = c.terms.Delete(ctx, orphans)
		} else {
			err = c.store.DeleteIndexEntries(ctx, orphans)
		}
		if err != nil {
			return fixed, errors.Wrap(errors.ErrCodeIndexDesync, err)
		}
		fixed += len(orphans)
	}

	slog.Info("index_repair_complete", slog.Int("fixed", fixed))
	return fixed, nil
}

func (c *Checker) reindex(ctx context.Context, id int64) error {
	if c.terms == nil {
		return c.store.ReindexEntry(ctx, id)
	}
	p, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.terms.Index(ctx, []*store.IndexEntry{store.EntryFor(p)})
}

func countType(issues []Inconsistency, t InconsistencyType) int {
	n := 0
	for _, issue := range issues {
		if issue.Type == t {
			n++
		}
	}
	return n
}
