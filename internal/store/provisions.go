package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/sadiqawos/toronto2.0/internal/errors"
)

// Store is the durable provision store. It keeps the authoritative
// provision table, the FTS5 term index, and the chapter ingestion log in
// one SQLite database so every write is a single transaction and a reader
// sees either the pre- or post-state of an insert, never a partial one.
//
// The store is explicitly constructed and closed; nothing looks it up
// from shared state, which keeps test instances isolated.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// validateIntegrity checks an existing database before opening it.
// Index/record desync cannot occur through normal transactional writes,
// so corruption here means the file itself is damaged.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // will be created
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

// Open opens (or creates) the store at path. An empty path opens an
// in-memory store for testing.
func Open(path string) (*Store, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if validErr := validateIntegrity(path); validErr != nil {
			return nil, errors.New(errors.ErrCodeStoreCorrupt,
				fmt.Sprintf("store corrupted at %s, rebuild required", path), validErr)
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer; readers are served from WAL snapshots.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL must be set via PRAGMA for modernc.org/sqlite.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the provision table, the FTS5 term index, and the
// ingestion log. The FTS rowid is always the provision id, so the MATCH
// path joins straight back to the primary table.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS provisions (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		source        TEXT NOT NULL,
		chapter       TEXT NOT NULL,
		chapter_title TEXT NOT NULL DEFAULT '',
		section       TEXT NOT NULL DEFAULT '',
		section_title TEXT NOT NULL DEFAULT '',
		content       TEXT NOT NULL CHECK (length(content) > 0),
		summary       TEXT NOT NULL DEFAULT '',
		keywords      TEXT NOT NULL DEFAULT '[]',
		url           TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL DEFAULT (datetime('now'))
	);

	-- porter stemming widens recall without abandoning keyword precision.
	-- Dotted section identifiers ("591-2.1") are not FTS5 barewords;
	-- queries for them reach the substring fallback instead.
	CREATE VIRTUAL TABLE IF NOT EXISTS provisions_fts USING fts5(
		title,
		section_title,
		content,
		summary,
		keywords,
		tokenize = 'porter unicode61'
	);

	CREATE TABLE IF NOT EXISTS ingested_chapters (
		source          TEXT NOT NULL,
		chapter         TEXT NOT NULL,
		provision_count INTEGER NOT NULL,
		ingested_at     TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (source, chapter)
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Insert appends one provision and its index entry in a single
// transaction, returning the assigned id. Ids are assigned once and
// never reused.
func (s *Store) Insert(ctx context.Context, p *Provision) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertProvisionTx(ctx, tx, p)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	p.ID = id
	return id, nil
}

// BulkInsert inserts a chapter's provisions atomically. If any record
// fails the whole batch is rolled back and must be retried as a whole;
// the ingestion log is untouched so the chapter stays eligible for retry.
func (s *Store) BulkInsert(ctx context.Context, provisions []*Provision) (int, error) {
	if len(provisions) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range provisions {
		id, err := insertProvisionTx(ctx, tx, p)
		if err != nil {
			return 0, err
		}
		p.ID = id
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return len(provisions), nil
}

func insertProvisionTx(ctx context.Context, tx *sql.Tx, p *Provision) (int64, error) {
	if strings.TrimSpace(p.Content) == "" {
		return 0, errors.New(errors.ErrCodeEmptyContent, "provision content is empty", nil)
	}

	keywords, err := json.Marshal(p.Keywords)
	if err != nil {
		return 0, fmt.Errorf("failed to encode keywords: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO provisions
			(source, chapter, chapter_title, section, section_title, content, summary, keywords, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.Source), p.Chapter, p.ChapterTitle, p.Section, p.SectionTitle,
		p.Content, p.Summary, string(keywords), p.URL)
	if err != nil {
		return 0, fmt.Errorf("failed to insert provision: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insert id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO provisions_fts (rowid, title, section_title, content, summary, keywords)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, p.ChapterTitle, p.SectionTitle, p.Content, p.Summary, strings.Join(p.Keywords, " "))
	if err != nil {
		return 0, fmt.Errorf("failed to index provision %d: %w", id, err)
	}
	return id, nil
}

// Get returns one provision by id.
func (s *Store) Get(ctx context.Context, id int64) (*Provision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	row := s.db.QueryRowContext(ctx, selectProvision+` WHERE id = ?`, id)
	p, err := scanProvision(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeNotFound, fmt.Sprintf("provision %d not found", id), nil)
	}
	return p, err
}

// GetMany returns provisions for the given ids, preserving id order.
func (s *Store) GetMany(ctx context.Context, ids []int64) ([]*Provision, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		selectProvision+` WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query provisions: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*Provision, len(ids))
	for rows.Next() {
		p, err := scanProvision(rows)
		if err != nil {
			return nil, err
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*Provision, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// UpdateSummary backfills the plain-language gloss, the only permitted
// mutation of an existing provision. Record and index move together.
func (s *Store) UpdateSummary(ctx context.Context, id int64, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE provisions SET summary = ? WHERE id = ?`, summary, id)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeNotFound, fmt.Sprintf("provision %d not found", id), nil)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE provisions_fts SET summary = ? WHERE rowid = ?`, summary, id); err != nil {
		return fmt.Errorf("failed to update index: %w", err)
	}
	return tx.Commit()
}

// Delete removes provisions and their index entries. Normal operation
// never deletes; this exists for index-repair tooling.
func (s *Store) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	in := strings.Join(placeholders, ",")

	if _, err := tx.ExecContext(ctx, `DELETE FROM provisions WHERE id IN (`+in+`)`, args...); err != nil {
		return fmt.Errorf("failed to delete provisions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM provisions_fts WHERE rowid IN (`+in+`)`, args...); err != nil {
		return fmt.Errorf("failed to delete index entries: %w", err)
	}
	return tx.Commit()
}

// Search runs a ranked term search over title, section title, content,
// summary and keywords. Terms are OR-combined to favor recall: any one
// strong term hit should surface a candidate. When FTS5 rejects the
// query (normal for citizen-authored punctuation) it degrades to
// AND-combined substring matching over the same fields.
func (s *Store) Search(ctx context.Context, query string, opts SearchOptions) ([]*Provision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	terms := searchTerms(query)
	if len(terms) == 0 {
		return []*Provision{}, nil
	}

	results, err := s.searchRanked(ctx, terms, opts.Source, limit)
	if err == nil {
		return results, nil
	}
	if !isMalformedQueryErr(err) {
		return nil, err
	}

	slog.Debug("search_fallback_substring", slog.String("query", query))
	return s.searchSubstring(ctx, terms, opts.Source, limit)
}

// searchTerms keeps every non-trivial whitespace-separated token.
// Punctuation survives on purpose: FTS5 syntax errors are the signal
// that routes a query to the substring fallback.
func searchTerms(query string) []string {
	var terms []string
	for _, tok := range strings.Fields(query) {
		if len(tok) > 2 {
			terms = append(terms, tok)
		}
	}
	return terms
}

func (s *Store) searchRanked(ctx context.Context, terms []string, source Source, limit int) ([]*Provision, error) {
	match := strings.Join(terms, " OR ")

	q := selectProvision + `
		JOIN provisions_fts f ON f.rowid = provisions.id
		WHERE provisions_fts MATCH ?`
	args := []any{match}
	if source != "" {
		q += ` AND provisions.source = ?`
		args = append(args, string(source))
	}
	// bm25() is negative, lower = better; field weights favor keywords
	// and headings over body text.
	q += ` ORDER BY bm25(provisions_fts, 2.0, 2.0, 1.0, 1.0, 3.0) LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProvisions(rows)
}

// isMalformedQueryErr reports whether FTS5 rejected the MATCH
// expression. The driver surfaces these as generic SQL logic errors, so
// detection is by message fragment: unbalanced quotes come back as
// "unterminated string", stray operators as "fts5: syntax error".
func isMalformedQueryErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"fts5",
		"syntax error",
		"unterminated string",
		"unknown special query",
		"malformed match",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// searchSubstring is the degraded path: AND-combined LIKE matching with
// no ordering guarantee beyond storage order. Substring search without
// ranking needs the extra specificity of AND.
func (s *Store) searchSubstring(ctx context.Context, terms []string, source Source, limit int) ([]*Provision, error) {
	var clauses []string
	var args []any
	for _, term := range terms {
		t := strings.Trim(term, `"'()*^:“”‘’`)
		if t == "" {
			continue
		}
		clauses = append(clauses,
			`(chapter_title LIKE ? OR section_title LIKE ? OR content LIKE ? OR summary LIKE ? OR keywords LIKE ?)`)
		pat := "%" + t + "%"
		args = append(args, pat, pat, pat, pat, pat)
	}
	if len(clauses) == 0 {
		return []*Provision{}, nil
	}

	q := selectProvision + ` WHERE ` + strings.Join(clauses, " AND ")
	if source != "" {
		q += ` AND source = ?`
		args = append(args, string(source))
	}
	q += ` ORDER BY id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("substring search failed: %w", err)
	}
	defer rows.Close()
	return scanProvisions(rows)
}

// IsIngested reports whether a (source, chapter) unit was already fully
// ingested. This is the idempotency guard consulted before any fetch.
func (s *Store) IsIngested(ctx context.Context, source Source, chapter string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, fmt.Errorf("store is closed")
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ingested_chapters WHERE source = ? AND chapter = ?`,
		string(source), chapter).Scan(&n)
	return n > 0, err
}

// MarkIngested records a unit as done. Called only after a successful
// bulk insert so a crash mid-insert leaves the unit eligible for retry.
func (s *Store) MarkIngested(ctx context.Context, source Source, chapter string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingested_chapters (source, chapter, provision_count) VALUES (?, ?, ?)`,
		string(source), chapter, count)
	if err != nil {
		return fmt.Errorf("failed to record ingestion: %w", err)
	}
	return nil
}

// EmptyIngestedChapters returns ingestion records whose chapter has no
// stored provisions. Such a record blocks re-ingestion of a chapter that
// has nothing to show for it and should be removed.
func (s *Store) EmptyIngestedChapters(ctx context.Context) ([]IngestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	// 'Chapter ' || chapter mirrors ChapterRef.
	rows, err := s.db.QueryContext(ctx, `
		SELECT ic.source, ic.chapter, ic.provision_count, ic.ingested_at
		FROM ingested_chapters ic
		WHERE NOT EXISTS (
			SELECT 1 FROM provisions p
			WHERE p.source = ic.source AND p.chapter = 'Chapter ' || ic.chapter
		)
		ORDER BY ic.source, ic.chapter`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []IngestRecord
	for rows.Next() {
		var r IngestRecord
		var ingestedAt string
		if err := rows.Scan(&r.Source, &r.Chapter, &r.ProvisionCount, &ingestedAt); err != nil {
			return nil, err
		}
		r.IngestedAt, _ = time.Parse("2006-01-02 15:04:05", ingestedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// UnmarkIngested removes an ingestion record, making the unit eligible
// for the next run. Used only by index-repair tooling.
func (s *Store) UnmarkIngested(ctx context.Context, source Source, chapter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM ingested_chapters WHERE source = ? AND chapter = ?`,
		string(source), chapter)
	return err
}

// Stats aggregates committed inserts: totals, per-source counts, and the
// ten largest chapters.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	st := &Stats{}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM provisions`).Scan(&st.TotalProvisions); err != nil {
		return nil, fmt.Errorf("failed to count provisions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingested_chapters`).Scan(&st.IngestedChapters); err != nil {
		return nil, fmt.Errorf("failed to count ingested chapters: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source, COUNT(*) FROM provisions GROUP BY source ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ss SourceStat
		var src string
		if err := rows.Scan(&src, &ss.Count); err != nil {
			return nil, err
		}
		ss.Source = Source(src)
		st.BySource = append(st.BySource, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chRows, err := s.db.QueryContext(ctx, `
		SELECT source, chapter, chapter_title, COUNT(*)
		FROM provisions GROUP BY source, chapter, chapter_title
		ORDER BY COUNT(*) DESC LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate chapters: %w", err)
	}
	defer chRows.Close()
	for chRows.Next() {
		var cs ChapterStat
		var src string
		if err := chRows.Scan(&src, &cs.Chapter, &cs.ChapterTitle, &cs.Count); err != nil {
			return nil, err
		}
		cs.Source = Source(src)
		st.TopChapters = append(st.TopChapters, cs)
	}
	return st, chRows.Err()
}

// AllIDs returns every provision id in the primary table.
func (s *Store) AllIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, `SELECT id FROM provisions ORDER BY id`)
}

// IndexIDs returns every rowid present in the term index.
func (s *Store) IndexIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, `SELECT rowid FROM provisions_fts ORDER BY rowid`)
}

func (s *Store) queryIDs(ctx context.Context, q string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReindexEntry rebuilds the FTS entry for one provision from the primary
// record. Used by repair tooling after desync is detected.
func (s *Store) ReindexEntry(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT chapter_title, section_title, content, summary, keywords FROM provisions WHERE id = ?`, id)
	var title, sectionTitle, content, summary, keywordsJSON string
	if err := row.Scan(&title, &sectionTitle, &content, &summary, &keywordsJSON); err != nil {
		if err == sql.ErrNoRows {
			return errors.New(errors.ErrCodeNotFound, fmt.Sprintf("provision %d not found", id), nil)
		}
		return err
	}
	var keywords []string
	_ = json.Unmarshal([]byte(keywordsJSON), &keywords)

	if _, err := tx.ExecContext(ctx, `DELETE FROM provisions_fts WHERE rowid = ?`, id); err != nil {
		return fmt.Errorf("failed to clear index entry: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO provisions_fts (rowid, title, section_title, content, summary, keywords)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, title, sectionTitle, content, summary, strings.Join(keywords, " "))
	if err != nil {
		return fmt.Errorf("failed to rebuild index entry: %w", err)
	}
	return tx.Commit()
}

// DeleteIndexEntries removes orphaned FTS rows with no primary record.
func (s *Store) DeleteIndexEntries(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM provisions_fts WHERE rowid IN (`+strings.Join(placeholders, ",")+`)`, args...)
	return err
}

// Path returns the database file path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Close checkpoints the WAL and closes the database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

// Columns are qualified so the ranked path can join provisions_fts,
// whose column names overlap.
const selectProvision = `
	SELECT provisions.id, provisions.source, provisions.chapter,
	       provisions.chapter_title, provisions.section, provisions.section_title,
	       provisions.content, provisions.summary, provisions.keywords,
	       provisions.url, provisions.created_at
	FROM provisions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvision(row rowScanner) (*Provision, error) {
	var p Provision
	var src, keywordsJSON, createdAt string
	err := row.Scan(&p.ID, &src, &p.Chapter, &p.ChapterTitle, &p.Section,
		&p.SectionTitle, &p.Content, &p.Summary, &keywordsJSON, &p.URL, &createdAt)
	if err != nil {
		return nil, err
	}
	p.Source = Source(src)
	if err := json.Unmarshal([]byte(keywordsJSON), &p.Keywords); err != nil {
		p.Keywords = nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		p.CreatedAt = t
	}
	return &p, nil
}

func scanProvisions(rows *sql.Rows) ([]*Provision, error) {
	results := []*Provision{}
	for rows.Next() {
		p, err := scanProvision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provision: %w", err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
