// Package store is the persistence layer: an authoritative provision table,
// a term index for ranked retrieval, and the chapter ingestion log, all in
// one durable SQLite database.
package store

import (
	"context"
	"strings"
	"time"
)

// Source identifies which legal document corpus a provision came from.
type Source string

const (
	SourceMunicipalCode Source = "municipal_code"
	SourceZoningBylaw   Source = "zoning_bylaw"
	SourceOfficialPlan  Source = "official_plan"
)

// Provision is the atomic indexed unit: one citable piece of legal text.
// A provision is created once during ingestion and is immutable except for
// Summary, which may be backfilled later.
type Provision struct {
	ID           int64
	Source       Source
	Chapter      string
	ChapterTitle string
	Section      string // empty when no section marker was recoverable
	SectionTitle string
	Content      string
	Summary      string
	Keywords     []string
	URL          string
	CreatedAt    time.Time
}

// Reference returns the stable human-readable locator for the provision.
// Synthesized sections already embed the chapter and are returned as-is.
func (p *Provision) Reference() string {
	switch {
	case p.Section == "":
		return p.Chapter
	case strings.HasPrefix(p.Section, p.Chapter):
		return p.Section
	default:
		return p.Chapter + "-" + p.Section
	}
}

// ChapterRef is the provision-side chapter reference for a catalog
// chapter number, e.g. "591" -> "Chapter 591".
func ChapterRef(number string) string {
	return "Chapter " + number
}

// IngestRecord marks one (source, chapter) unit as fully ingested. Records
// are append-only: their presence is the idempotency guard.
type IngestRecord struct {
	Source         Source
	Chapter        string
	ProvisionCount int
	IngestedAt     time.Time
}

// SearchOptions narrows a ranked search.
type SearchOptions struct {
	// Limit truncates the result list. Zero means DefaultSearchLimit.
	Limit int
	// Source restricts results to one corpus when non-empty.
	Source Source
}

// DefaultSearchLimit bounds result lists when the caller does not.
const DefaultSearchLimit = 10

// SourceStat is a per-source provision count.
type SourceStat struct {
	Source Source
	Count  int
}

// ChapterStat is a per-chapter provision count.
type ChapterStat struct {
	Source       Source
	Chapter      string
	ChapterTitle string
	Count        int
}

// Stats is the aggregate view over committed inserts.
type Stats struct {
	TotalProvisions  int
	IngestedChapters int
	BySource         []SourceStat
	TopChapters      []ChapterStat
}

// IndexEntry is the searchable projection of a provision handed to a
// term-index backend.
type IndexEntry struct {
	ID           int64
	Title        string
	SectionTitle string
	Content      string
	Summary      string
	Keywords     []string
}

// EntryFor builds the index entry for a provision.
func EntryFor(p *Provision) *IndexEntry {
	return &IndexEntry{
		ID:           p.ID,
		Title:        p.ChapterTitle,
		SectionTitle: p.SectionTitle,
		Content:      p.Content,
		Summary:      p.Summary,
		Keywords:     p.Keywords,
	}
}

// TermMatch is one ranked hit from a term-index backend.
type TermMatch struct {
	ID    int64
	Score float64
}

// IndexStats describes a term-index backend.
type IndexStats struct {
	DocumentCount int
}

// TermIndex is a ranked keyword index over provision fields. The SQLite
// FTS5 index built into Store is the default; TermIndex exists so an
// external backend (bleve) can serve the ranked path instead.
type TermIndex interface {
	// Index adds or replaces entries.
	Index(ctx context.Context, entries []*IndexEntry) error

	// Search returns ranked matches for an OR-combined term query.
	Search(ctx context.Context, query string, limit int) ([]*TermMatch, error)

	// Delete removes entries by provision id.
	Delete(ctx context.Context, ids []int64) error

	// AllIDs returns every indexed provision id, for consistency checks.
	AllIDs() ([]int64, error)

	// Stats returns index statistics.
	Stats() *IndexStats

	Close() error
}
