// Package store provides a SQLite-backed store for tagged documents, their
// edit history and the entity schemas tags are drawn with.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a document or entity does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id       TEXT PRIMARY KEY,
	title    TEXT NOT NULL,
	raw      TEXT NOT NULL,
	updated  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS revisions (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	doc_id   TEXT NOT NULL,
	raw      TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entities (
	id       TEXT PRIMARY KEY,
	label    TEXT NOT NULL,
	mode     TEXT NOT NULL,
	color    TEXT NOT NULL,
	opacity  REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_revisions_doc ON revisions(doc_id, id);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated);
`

// maxRevisions bounds the history kept per document.
const maxRevisions = 100

// Store is a SQLite-backed document store.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	saveCh chan saveReq
	done   chan struct{}
}

type saveReq struct {
	doc   Document
	flush chan struct{}
}

// Open creates or opens a store database at the given path.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	// SQLite pragmas for performance.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	// Migrate: documents gained a scroll position.
	if !hasColumn(db, "documents", "scroll") {
		if _, err := db.Exec("ALTER TABLE documents ADD COLUMN scroll INTEGER NOT NULL DEFAULT 0"); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate documents: %w", err)
		}
	}

	s := &Store{
		db:     db,
		saveCh: make(chan saveReq, 64),
		done:   make(chan struct{}),
	}
	go s.saveLoop()
	return s, nil
}

// Close drains pending saves and closes the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	close(s.saveCh)
	<-s.done
	return s.db.Close()
}

// hasColumn checks if a table has a specific column.
func hasColumn(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table)) //nolint:gosec // table name is hardcoded by caller
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

// --- Helpers ---

// trimRevisions keeps the newest maxRevisions rows for a document.
// Callers hold s.mu.
func (s *Store) trimRevisions(docID string) {
	res, err := s.db.Exec(
		`DELETE FROM revisions WHERE doc_id = ? AND id NOT IN (
			SELECT id FROM revisions WHERE doc_id = ? ORDER BY id DESC LIMIT ?)`,
		docID, docID, maxRevisions,
	)
	if err != nil {
		log.Warn().Err(err).Str("doc", docID).Msg("failed to trim revisions")
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Debug().Int64("deleted", n).Str("doc", docID).Msg("trimmed revisions")
	}
}

// stopWords are common words filtered out during tokenization.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true,
	"for": true, "and": true, "but": true, "or": true, "nor": true,
	"not": true, "so": true, "to": true, "of": true,
	"in": true, "on": true, "at": true, "by": true, "with": true,
	"from": true, "as": true, "into": true, "this": true, "that": true,
	"it": true, "its": true,
}

// tokenize splits a query into lowercase keywords, filtering stop words and short tokens.
func tokenize(query string) []string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	var out []string
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()-[]{}") // strip punctuation
		if len(w) < 2 || stopWords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// keywordOverlap returns the fraction of keywords found in the lowercased
// content, and how many were found.
func keywordOverlap(keywords []string, contentLower string) (float64, int) {
	if len(keywords) == 0 {
		return 0, 0
	}
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(contentLower, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords)), hits
}
