package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/annotator"
	"github.com/xonecas/annotator/internal/highlight"
)

// defaultOpacity is used for tags drawn without a stored schema.
const defaultOpacity = 0.35

// Entity is the highlight schema of one tag id.
type Entity struct {
	ID      string
	Label   string
	Mode    annotation.Mode
	Color   string
	Opacity float64
}

// Schema converts e to a highlight schema.
func (e Entity) Schema() annotation.Schema {
	return annotation.Schema{
		Mode:  annotation.ParseMode(string(e.Mode)),
		Style: annotation.Style{Color: e.Color, Opacity: e.Opacity},
	}
}

// PutEntity inserts or replaces an entity.
func (s *Store) PutEntity(e Entity) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Mode == "" {
		e.Mode = annotation.ModeBackground
	}
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO entities (id, label, mode, color, opacity) VALUES (?, ?, ?, ?, ?)",
		e.ID, e.Label, string(e.Mode), e.Color, e.Opacity,
	)
	if err != nil {
		return fmt.Errorf("save entity %q: %w", e.ID, err)
	}
	return nil
}

// Entity returns the entity with the given id.
func (s *Store) Entity(id string) (Entity, error) {
	if s == nil {
		return Entity{}, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := Entity{ID: id}
	var mode string
	err := s.db.QueryRow(
		"SELECT label, mode, color, opacity FROM entities WHERE id = ?", id,
	).Scan(&e.Label, &mode, &e.Color, &e.Opacity)
	if errors.Is(err, sql.ErrNoRows) {
		return Entity{}, fmt.Errorf("entity %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Entity{}, fmt.Errorf("entity %q: %w", id, err)
	}
	e.Mode = annotation.Mode(mode)
	return e, nil
}

// Entities returns every entity ordered by id.
func (s *Store) Entities() ([]Entity, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id, label, mode, color, opacity FROM entities ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		var e Entity
		var mode string
		if err := rows.Scan(&e.ID, &e.Label, &mode, &e.Color, &e.Opacity); err != nil {
			continue
		}
		e.Mode = annotation.Mode(mode)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteEntity removes an entity.
func (s *Store) DeleteEntity(id string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM entities WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entity %q: %w", id, ErrNotFound)
	}
	return nil
}

// HighlightLookup snapshots the stored entities into a highlight
// callback. Tags without an entity get a background fill in a palette
// color. Safe on a nil receiver.
func (s *Store) HighlightLookup(pal highlight.Palette) annotator.HighlightFunc {
	entities, err := s.Entities()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load entities")
	}
	byID := make(map[string]annotation.Schema, len(entities))
	for _, e := range entities {
		schema := e.Schema()
		if schema.Style.Color == "" {
			schema.Style.Color = pal.TagColor(e.ID)
		}
		if schema.Style.Opacity <= 0 {
			schema.Style.Opacity = defaultOpacity
		}
		byID[e.ID] = schema
	}
	return func(tag string) (annotation.Schema, bool) {
		if schema, ok := byID[tag]; ok {
			return schema, true
		}
		return annotation.Schema{
			Mode:  annotation.ModeBackground,
			Style: annotation.Style{Color: pal.TagColor(tag), Opacity: defaultOpacity},
		}, true
	}
}
