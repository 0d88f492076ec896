package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Document is a stored tagged document.
type Document struct {
	ID      string
	Title   string
	Raw     string
	Scroll  int // first visible line when last closed
	Updated time.Time
}

// PutDocument inserts or replaces a document. When the raw text changes
// the previous version is kept as a revision.
func (s *Store) PutDocument(doc Document) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDocument(doc)
}

// writeDocument performs the upsert. Callers hold s.mu.
func (s *Store) writeDocument(doc Document) error {
	var prev string
	err := s.db.QueryRow("SELECT raw FROM documents WHERE id = ?", doc.ID).Scan(&prev)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("read document %q: %w", doc.ID, err)
	case prev != doc.Raw:
		if _, err := s.db.Exec(
			"INSERT INTO revisions (doc_id, raw, created) VALUES (?, ?, ?)",
			doc.ID, prev, time.Now().Unix(),
		); err != nil {
			return fmt.Errorf("save revision %q: %w", doc.ID, err)
		}
		s.trimRevisions(doc.ID)
	}

	if doc.Updated.IsZero() {
		doc.Updated = time.Now()
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO documents (id, title, raw, scroll, updated) VALUES (?, ?, ?, ?, ?)",
		doc.ID, doc.Title, doc.Raw, doc.Scroll, doc.Updated.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save document %q: %w", doc.ID, err)
	}
	return nil
}

// SaveDocument queues a document for async persistence. Non-blocking.
func (s *Store) SaveDocument(doc Document) {
	if s == nil {
		return
	}
	select {
	case s.saveCh <- saveReq{doc: doc}:
	default:
		log.Warn().Str("doc", doc.ID).Msg("save channel full, dropping document")
	}
}

// saveLoop drains saveCh and writes documents to the DB.
func (s *Store) saveLoop() {
	defer close(s.done)
	for req := range s.saveCh {
		if req.flush != nil {
			close(req.flush)
			continue
		}
		s.mu.Lock()
		if err := s.writeDocument(req.doc); err != nil {
			log.Warn().Err(err).Str("doc", req.doc.ID).Msg("failed to save document")
		}
		s.mu.Unlock()
	}
}

// Flush blocks until all queued async saves have been written to the DB.
// Times out after 5 seconds to avoid deadlocking the caller.
func (s *Store) Flush() {
	if s == nil {
		return
	}
	done := make(chan struct{})
	select {
	case s.saveCh <- saveReq{flush: done}:
		<-done
	case <-time.After(5 * time.Second):
		log.Warn().Msg("flush timed out waiting to enqueue")
	}
}

// GetDocument returns the document with the given id.
func (s *Store) GetDocument(id string) (Document, error) {
	if s == nil {
		return Document{}, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := Document{ID: id}
	var updated int64
	err := s.db.QueryRow(
		"SELECT title, raw, scroll, updated FROM documents WHERE id = ?", id,
	).Scan(&doc.Title, &doc.Raw, &doc.Scroll, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("document %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("document %q: %w", id, err)
	}
	doc.Updated = time.Unix(updated, 0)
	return doc, nil
}

// ListDocuments returns every document without its text, most recently
// updated first.
func (s *Store) ListDocuments() ([]Document, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id, title, scroll, updated FROM documents ORDER BY updated DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var updated int64
		if err := rows.Scan(&d.ID, &d.Title, &d.Scroll, &updated); err != nil {
			continue
		}
		d.Updated = time.Unix(updated, 0)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and its history.
func (s *Store) DeleteDocument(id string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %q: %w", id, ErrNotFound)
	}
	_, err = s.db.Exec("DELETE FROM revisions WHERE doc_id = ?", id)
	return err
}

// Revisions returns the number of stored previous versions of a document.
func (s *Store) Revisions(id string) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM revisions WHERE doc_id = ?", id).Scan(&n); err != nil {
		return 0
	}
	return n
}

// FindDocuments returns the documents whose title or text contains most
// of the query's keywords, best match first. Markup counts as text.
func (s *Store) FindDocuments(query string) ([]Document, error) {
	if s == nil {
		return nil, nil
	}
	keywords := tokenize(query)
	if len(keywords) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id, title, raw, scroll, updated FROM documents")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type scored struct {
		doc   Document
		score float64
	}
	var hits []scored
	for rows.Next() {
		var d Document
		var updated int64
		if err := rows.Scan(&d.ID, &d.Title, &d.Raw, &d.Scroll, &updated); err != nil {
			continue
		}
		d.Updated = time.Unix(updated, 0)
		score, _ := keywordOverlap(keywords, strings.ToLower(d.Title+"\n"+d.Raw))
		// Require at least half of the keywords.
		if score >= 0.5 {
			hits = append(hits, scored{doc: d, score: score})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.ID < hits[j].doc.ID
	})
	docs := make([]Document, len(hits))
	for i, h := range hits {
		docs[i] = h.doc
	}
	return docs, nil
}
