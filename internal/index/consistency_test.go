package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadiqawos/toronto2.0/internal/store"
)

func seedStore(t *testing.T, n int) *store.Store {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	for i := 1; i <= n; i++ {
		_, err := s.Insert(context.Background(), &store.Provision{
			Source:       store.SourceMunicipalCode,
			Chapter:      "591",
			ChapterTitle: "Noise",
			Section:      fmt.Sprintf("591-%d", i),
			Content:      fmt.Sprintf("No person shall make unreasonable noise in section %d of this chapter.", i),
		})
		require.NoError(t, err)
	}
	return s
}

func TestCheckerCleanStore(t *testing.T) {
	// Given a store where every record was written transactionally
	s := seedStore(t, 5)
	checker := NewChecker(s, nil)

	// When checking consistency
	result, err := checker.Check(context.Background())
	require.NoError(t, err)

	// Then no inconsistencies are reported
	assert.True(t, result.Clean())
	assert.Equal(t, 5, result.Checked)
}

func TestCheckerDetectsMissingEntry(t *testing.T) {
	// Given a store with one index entry removed out of band
	s := seedStore(t, 3)
	ctx := context.Background()
	ids, err := s.AllIDs(ctx)
	require.NoError(t, err)
	require.NoError(t, s.DeleteIndexEntries(ctx, ids[:1]))

	checker := NewChecker(s, nil)

	// When checking consistency
	result, err := checker.Check(ctx)
	require.NoError(t, err)

	// Then the gap is reported as a missing entry
	require.Len(t, result.Inconsistencies, 1)
	assert.Equal(t, InconsistencyMissingEntry, result.Inconsistencies[0].Type)
	assert.Equal(t, ids[0], result.Inconsistencies[0].ProvisionID)
}

func TestCheckerRepairRestoresMissingEntry(t *testing.T) {
	// Given a detected missing entry
	s := seedStore(t, 3)
	ctx := context.Background()
	ids, err := s.AllIDs(ctx)
	require.NoError(t, err)
	require.NoError(t, s.DeleteIndexEntries(ctx, ids[:1]))

	checker := NewChecker(s, nil)
	result, err := checker.Check(ctx)
	require.NoError(t, err)
	require.False(t, result.Clean())

	// When repairing
	fixed, err := checker.Repair(ctx, result)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	// Then a fresh check comes back clean and the record is searchable again
	result, err = checker.Check(ctx)
	require.NoError(t, err)
	assert.True(t, result.Clean())

	hits, err := s.Search(ctx, "unreasonable noise", store.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestCheckerExternalIndexOrphanAndMissing(t *testing.T) {
	// Given a bleve sidecar that drifted from the primary store
	s := seedStore(t, 2)
	ctx := context.Background()

	terms, err := store.NewBleveIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { terms.Close() })

	ids, err := s.AllIDs(ctx)
	require.NoError(t, err)

	// Only the first provision is indexed, plus an entry for a record
	// that no longer exists.
	p, err := s.Get(ctx, ids[0])
	require.NoError(t, err)
	require.NoError(t, terms.Index(ctx, []*store.IndexEntry{store.EntryFor(p)}))
	require.NoError(t, terms.Index(ctx, []*store.IndexEntry{{
		ID:      999,
		Title:   "ghost",
		Content: "orphaned entry left behind by a crash",
	}}))

	checker := NewChecker(s, terms)

	// When checking and repairing
	result, err := checker.Check(ctx)
	require.NoError(t, err)
	require.Len(t, result.Inconsistencies, 2)

	fixed, err := checker.Repair(ctx, result)
	require.NoError(t, err)
	assert.Equal(t, 2, fixed)

	// Then the sidecar holds exactly the store's ids
	result, err = checker.Check(ctx)
	require.NoError(t, err)
	assert.True(t, result.Clean())

	indexed, err := terms.AllIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, indexed)
}

func TestCheckerDetectsEmptyIngestedChapter(t *testing.T) {
	// Given a store with one healthy chapter and one recorded chapter
	// that lost its provisions
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	_, err = s.Insert(ctx, &store.Provision{
		Source:  store.SourceMunicipalCode,
		Chapter: store.ChapterRef("591"),
		Section: "591-2.1",
		Content: "No person shall make unreasonable noise in a residential area at night.",
	})
	require.NoError(t, err)
	require.NoError(t, s.MarkIngested(ctx, store.SourceMunicipalCode, "591", 1))
	require.NoError(t, s.MarkIngested(ctx, store.SourceMunicipalCode, "833", 4))

	checker := NewChecker(s, nil)

	// When checking consistency
	result, err := checker.Check(ctx)
	require.NoError(t, err)

	// Then only the provision-less record is flagged
	require.Len(t, result.Inconsistencies, 1)
	issue := result.Inconsistencies[0]
	assert.Equal(t, InconsistencyEmptyChapter, issue.Type)
	assert.Equal(t, store.SourceMunicipalCode, issue.Source)
	assert.Equal(t, "833", issue.Chapter)
	assert.Equal(t, "empty_chapter: municipal_code/833", issue.String())

	// And repairing clears the record so the chapter is eligible again
	fixed, err := checker.Repair(ctx, result)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	ingested, err := s.IsIngested(ctx, store.SourceMunicipalCode, "833")
	require.NoError(t, err)
	assert.False(t, ingested)

	ingested, err = s.IsIngested(ctx, store.SourceMunicipalCode, "591")
	require.NoError(t, err)
	assert.True(t, ingested)
}

func TestInconsistencyTypeString(t *testing.T) {
	assert.Equal(t, "orphan_entry", InconsistencyOrphanEntry.String())
	assert.Equal(t, "missing_entry", InconsistencyMissingEntry.String())
	assert.Equal(t, "empty_chapter", InconsistencyEmptyChapter.String())
}
