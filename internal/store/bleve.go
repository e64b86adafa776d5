package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/sadiqawos/toronto2.0/internal/lawtext"
)

const (
	// LegalTokenizerName is the name of the registered legal tokenizer.
	LegalTokenizerName = "legal_tokenizer"

	// LegalStemFilterName is the name of the registered stem filter.
	LegalStemFilterName = "legal_stem"

	// LegalAnalyzerName is the name of the registered legal analyzer.
	LegalAnalyzerName = "legal_analyzer"
)

func init() {
	_ = registry.RegisterTokenizer(LegalTokenizerName, legalTokenizerConstructor)
	_ = registry.RegisterTokenFilter(LegalStemFilterName, legalStemFilterConstructor)
}

// BleveIndex is the alternative term-index backend. Unlike the built-in
// FTS5 index it does not share the store's transaction; the consistency
// checker is the recovery path if the two drift.
type BleveIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

var _ TermIndex = (*BleveIndex)(nil)

// bleveEntry is the document shape handed to bleve. All fields share the
// legal analyzer so query terms stem identically to indexed terms.
type bleveEntry struct {
	Title        string `json:"title"`
	SectionTitle string `json:"section_title"`
	Content      string `json:"content"`
	Summary      string `json:"summary"`
	Keywords     string `json:"keywords"`
}

// NewBleveIndex creates or opens a bleve term index. An empty path
// creates an in-memory index for testing.
func NewBleveIndex(path string) (*BleveIndex, error) {
	indexMapping, err := createLegalMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to create index mapping: %w", err)
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	return &BleveIndex{index: idx, path: path}, nil
}

func createLegalMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(LegalAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": LegalTokenizerName,
		"token_filters": []string{
			lowercase.Name,
			LegalStemFilterName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add custom analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = LegalAnalyzerName
	return indexMapping, nil
}

// Index adds or replaces entries in a single batch.
func (b *BleveIndex) Index(ctx context.Context, entries []*IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("index is closed")
	}

	batch := b.index.NewBatch()
	for _, e := range entries {
		doc := bleveEntry{
			Title:        e.Title,
			SectionTitle: e.SectionTitle,
			Content:      e.Content,
			Summary:      e.Summary,
			Keywords:     strings.Join(e.Keywords, " "),
		}
		if err := batch.Index(strconv.FormatInt(e.ID, 10), doc); err != nil {
			return fmt.Errorf("failed to index entry %d: %w", e.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	return nil
}

// Search returns ranked matches. Match queries analyze terms with the
// legal analyzer, so OR semantics across query terms come for free.
func (b *BleveIndex) Search(ctx context.Context, queryStr string, limit int) ([]*TermMatch, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}
	if strings.TrimSpace(queryStr) == "" {
		return []*TermMatch{}, nil
	}

	matchQuery := bleve.NewMatchQuery(queryStr)
	req := bleve.NewSearchRequest(matchQuery)
	req.Size = limit

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]*TermMatch, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		matches = append(matches, &TermMatch{ID: id, Score: hit.Score})
	}
	return matches, nil
}

// Delete removes entries from the index.
func (b *BleveIndex) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("index is closed")
	}

	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(strconv.FormatInt(id, 10))
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

// AllIDs returns all provision ids in the index.
func (b *BleveIndex) AllIDs() ([]int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}

	docCount, _ := b.index.DocCount()
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(docCount)

	result, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search for all ids: %w", err)
	}

	ids := make([]int64, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if id, err := strconv.ParseInt(hit.ID, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Stats returns index statistics.
func (b *BleveIndex) Stats() *IndexStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return &IndexStats{}
	}
	docCount, _ := b.index.DocCount()
	return &IndexStats{DocumentCount: int(docCount)}
}

// Close closes the index. Idempotent.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}

func legalTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &legalTokenizer{}, nil
}

// legalTokenizer adapts lawtext.Tokenize to bleve's tokenizer interface.
type legalTokenizer struct{}

func (t *legalTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := lawtext.Tokenize(text)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0
	for _, token := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), token)
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)
		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}
	return result
}

func legalStemFilterConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	return &legalStemFilter{}, nil
}

// legalStemFilter applies the shared stemmer so bleve matches what the
// query path produces.
type legalStemFilter struct{}

func (f *legalStemFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	for _, token := range input {
		token.Term = []byte(lawtext.Stem(string(token.Term)))
	}
	return input
}
