// Package search finds substrings in the wrapped lines of a document.
package search

import (
	"github.com/xonecas/annotator/internal/text"
)

// Occurrence is one hit. Start and End are rune columns within a single
// wrapped line, End exclusive.
type Occurrence struct {
	SegmentIndex int
	LineIndex    int
	Start        int
	End          int
}

// Line returns the absolute line of o.
func (o Occurrence) Line(t *text.Text) int {
	s, ok := t.Segment(o.SegmentIndex)
	if !ok {
		return 0
	}
	return s.LineStart + o.LineIndex
}

// Coords returns the first and last character of o as absolute coords.
func (o Occurrence) Coords(t *text.Text) (start, end text.Coord) {
	y := o.Line(t)
	return text.Coord{X: o.Start, Y: y}, text.Coord{X: o.End - 1, Y: y}
}

// Search scans every wrapped line for q, advancing one rune after each
// hit so overlapping matches are all reported. Matches never cross a
// line wrap. An empty query finds nothing.
func Search(t *text.Text, q string) []Occurrence {
	needle := []rune(q)
	if len(needle) == 0 {
		return nil
	}
	var out []Occurrence
	for _, s := range t.Segments() {
		for li, line := range s.Lines {
			hay := []rune(line)
			for i := 0; i+len(needle) <= len(hay); i++ {
				if match(hay[i:], needle) {
					out = append(out, Occurrence{
						SegmentIndex: s.Index,
						LineIndex:    li,
						Start:        i,
						End:          i + len(needle),
					})
				}
			}
		}
	}
	return out
}

func match(hay, needle []rune) bool {
	for i, r := range needle {
		if hay[i] != r {
			return false
		}
	}
	return true
}

// Results walks a result list with wraparound.
type Results struct {
	Query string
	Items []Occurrence
	cur   int
}

// NewResults searches t for q.
func NewResults(t *text.Text, q string) *Results {
	return &Results{Query: q, Items: Search(t, q), cur: -1}
}

func (r *Results) Len() int { return len(r.Items) }

// Index returns the 0-based position of the current item, or -1.
func (r *Results) Index() int { return r.cur }

// Next advances to the next occurrence, wrapping at the end.
func (r *Results) Next() (Occurrence, bool) {
	if len(r.Items) == 0 {
		return Occurrence{}, false
	}
	r.cur = (r.cur + 1) % len(r.Items)
	return r.Items[r.cur], true
}

// Prev steps back, wrapping at the start.
func (r *Results) Prev() (Occurrence, bool) {
	if len(r.Items) == 0 {
		return Occurrence{}, false
	}
	if r.cur <= 0 {
		r.cur = len(r.Items)
	}
	r.cur--
	return r.Items[r.cur], true
}

// After moves to the first occurrence at or after c and returns it.
func (r *Results) After(t *text.Text, c text.Coord) (Occurrence, bool) {
	for i, o := range r.Items {
		start, _ := o.Coords(t)
		if !start.Less(c) {
			r.cur = i
			return o, true
		}
	}
	return r.Next()
}
