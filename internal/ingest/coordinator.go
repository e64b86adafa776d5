package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/sadiqawos/toronto2.0/internal/errors"
	"github.com/sadiqawos/toronto2.0/internal/fetch"
	"github.com/sadiqawos/toronto2.0/internal/segment"
	"github.com/sadiqawos/toronto2.0/internal/store"
)

// DefaultPolitenessDelay spaces network-bound units so ingestion never
// hammers a municipal server.
const DefaultPolitenessDelay = 2 * time.Second

// CoordinatorConfig contains the coordinator's collaborators.
type CoordinatorConfig struct {
	// Store is the provision store.
	Store *store.Store

	// Terms is the external term index; nil when the store's built-in
	// index is in use.
	Terms store.TermIndex

	// Fetcher acquires chapter documents.
	Fetcher fetch.Fetcher

	// Catalog describes the known sources and chapters.
	Catalog *Catalog

	// Segmenter splits chapter text into provisions.
	Segmenter *segment.Segmenter

	// Delay is the politeness delay between fetched units. Defaults to
	// DefaultPolitenessDelay when zero; negative disables it.
	Delay time.Duration

	// LockDir holds the cross-process run lock. Empty disables locking.
	LockDir string
}

// UnitFailure records one failed ingestion unit.
type UnitFailure struct {
	Unit string
	Err  error
}

// RunResult aggregates the outcome of an ingestion run.
type RunResult struct {
	// Processed counts units that went through the full pipeline.
	Processed int
	// Skipped counts units already recorded as ingested.
	Skipped int
	// Empty counts units whose text yielded no provisions.
	Empty int
	// Provisions is the total number of provisions inserted.
	Provisions int
	// Failures lists per-unit errors; the run continued past each.
	Failures []UnitFailure
	// Duration is the wall-clock run time.
	Duration time.Duration
}

// Coordinator drives the write path over catalog units.
type Coordinator struct {
	config CoordinatorConfig
}

// NewCoordinator creates an ingestion coordinator.
func NewCoordinator(config CoordinatorConfig) *Coordinator {
	if config.Delay == 0 {
		config.Delay = DefaultPolitenessDelay
	}
	return &Coordinator{config: config}
}

// Run ingests the catalog units for source (all sources when empty),
// widening past the priority subset when allChapters is set. Per-unit
// failures are collected, not raised; the returned error covers only
// faults that invalidate the whole run.
func (c *Coordinator) Run(ctx context.Context, source string, allChapters bool) (*RunResult, error) {
	units, err := c.config.Catalog.Units(source, allChapters)
	if err != nil {
		return nil, err
	}

	if c.config.LockDir != "" {
		lock := NewRunLock(c.config.LockDir)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"another ingestion run is already in progress", nil)
		}
		defer func() { _ = lock.Unlock() }()
	}

	start := time.Now()
	result := &RunResult{}
	slog.Info("ingest_run_started",
		slog.String("source", source),
		slog.Bool("all_chapters", allChapters),
		slog.Int("units", len(units)))

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		ingested, err := c.config.Store.IsIngested(ctx, unit.Source, unit.Chapter.Number)
		if err != nil {
			return result, err
		}
		if ingested {
			result.Skipped++
			slog.Debug("ingest_unit_skipped", slog.String("unit", unit.ID()))
			continue
		}

		count, err := c.ingestUnit(ctx, unit)
		if err != nil {
			if errors.IsFatal(err) {
				return result, err
			}
			result.Failures = append(result.Failures, UnitFailure{Unit: unit.ID(), Err: err})
			slog.Warn("ingest_unit_failed",
				slog.String("unit", unit.ID()),
				slog.String("error", err.Error()))
		} else if count == 0 {
			result.Empty++
		} else {
			result.Processed++
			result.Provisions += count
		}

		c.politenessDelay(ctx)
	}

	result.Duration = time.Since(start)
	slog.Info("ingest_run_complete",
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Int("empty", result.Empty),
		slog.Int("provisions", result.Provisions),
		slog.Int("failures", len(result.Failures)),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// ingestUnit runs one unit through fetch, segment, tag, and commit.
// The ingestion record is written only after the bulk insert commits,
// so a crash mid-insert leaves the unit eligible for retry.
func (c *Coordinator) ingestUnit(ctx context.Context, unit Unit) (int, error) {
	text, err := c.config.Fetcher.Fetch(ctx, unit.URL)
	if err != nil {
		return 0, err
	}

	chapterRef := store.ChapterRef(unit.Chapter.Number)
	segments := c.config.Segmenter.Split(chapterRef, text)
	if len(segments) == 0 {
		slog.Warn("ingest_unit_empty",
			slog.String("unit", unit.ID()),
			slog.Int("text_length", len(text)))
		return 0, nil
	}

	provisions := make([]*store.Provision, len(segments))
	for i, seg := range segments {
		provisions[i] = &store.Provision{
			Source:       unit.Source,
			Chapter:      chapterRef,
			ChapterTitle: unit.Chapter.Title,
			Section:      seg.Section,
			SectionTitle: seg.SectionTitle,
			Content:      seg.Content,
			Keywords:     segment.ExtractKeywords(seg.Content),
			URL:          unit.URL,
		}
	}

	count, err := c.config.Store.BulkInsert(ctx, provisions)
	if err != nil {
		return 0, err
	}

	if c.config.Terms != nil {
		entries := make([]*store.IndexEntry, len(provisions))
		for i, p := range provisions {
			entries[i] = store.EntryFor(p)
		}
		if err := c.config.Terms.Index(ctx, entries); err != nil {
			// The records committed; the doctor command repairs the
			// index side from them.
			return count, errors.Wrap(errors.ErrCodeIndexDesync, err)
		}
	}

	if err := c.config.Store.MarkIngested(ctx, unit.Source, unit.Chapter.Number, count); err != nil {
		return count, err
	}

	slog.Info("ingest_unit_complete",
		slog.String("unit", unit.ID()),
		slog.Int("provisions", count))
	return count, nil
}

func (c *Coordinator) politenessDelay(ctx context.Context) {
	if c.config.Delay <= 0 {
		return
	}
	select {
	case <-time.After(c.config.Delay):
	case <-ctx.Done():
	}
}
