package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sadiqawos/toronto2.0/internal/store"
)

// Engine executes planned queries against the provision store. With
// the default backend the store's own term index serves ranked search;
// with an external index the engine searches it first and hydrates
// matches from the store.
type Engine struct {
	store    *store.Store
	terms    store.TermIndex // nil for the built-in index
	expander *Expander
}

// NewEngine creates a search engine over the store and optional
// external term index.
func NewEngine(s *store.Store, terms store.TermIndex) *Engine {
	return &Engine{
		store:    s,
		terms:    terms,
		expander: NewExpander(),
	}
}

// Search runs a ranked free-text query. A query that matches nothing
// returns an empty list, never an error; malformed input degrades to
// substring matching inside the store.
func (e *Engine) Search(ctx context.Context, query string, opts store.SearchOptions) ([]*store.Provision, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	start := time.Now()
	var (
		results []*store.Provision
		err     error
	)
	if e.terms == nil {
		results, err = e.store.Search(ctx, query, opts)
	} else {
		results, err = e.searchExternal(ctx, query, opts)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("search_complete",
		slog.String("query", query),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))
	return results, nil
}

// searchExternal ranks against the sidecar index, then hydrates and
// filters from the primary store. Extra candidates are requested so a
// source filter does not starve the page.
func (e *Engine) searchExternal(ctx context.Context, query string, opts store.SearchOptions) ([]*store.Provision, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	fetch := limit
	if opts.Source != "" {
		fetch = limit * 4
	}

	matches, err := e.terms.Search(ctx, query, fetch)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	provisions, err := e.store.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]*store.Provision, 0, limit)
	for _, p := range provisions {
		if opts.Source != "" && p.Source != opts.Source {
			continue
		}
		results = append(results, p)
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// Expand maps informal text to index vocabulary; see Expander.Expand.
func (e *Engine) Expand(text string) string {
	return e.expander.Expand(text)
}

// SearchExpanded widens the query with its expansion terms before
// searching. When nothing in the input triggers an expansion the raw
// query is searched unchanged.
func (e *Engine) SearchExpanded(ctx context.Context, query string, opts store.SearchOptions) ([]*store.Provision, error) {
	if expansion := e.expander.Expand(query); expansion != "" {
		query = query + " " + expansion
	}
	return e.Search(ctx, query, opts)
}

// Stats reports aggregate store counts.
func (e *Engine) Stats(ctx context.Context) (*store.Stats, error) {
	return e.store.Stats(ctx)
}
