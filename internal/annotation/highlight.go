package annotation

import (
	"sort"

	"github.com/xonecas/annotator/internal/text"
	"github.com/xonecas/annotator/internal/viewport"
)

// Mode is how a highlight is drawn.
type Mode string

const (
	ModeBackground Mode = "background"
	ModeUnderline  Mode = "underline"
	ModeFocus      Mode = "focus"
)

// ParseMode returns the Mode named by s, defaulting to background.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeUnderline, ModeFocus:
		return Mode(s)
	}
	return ModeBackground
}

type Style struct {
	Color   string
	Opacity float64
}

// Schema is the look of one tag's highlights.
type Schema struct {
	Mode  Mode
	Style Style
}

// Item is one tag occurrence queued for drawing.
type Item struct {
	Tag    string
	Schema Schema
	Start  text.Coord
	End    text.Coord // inclusive
}

func rank(m Mode) int {
	switch m {
	case ModeUnderline:
		return 0
	case ModeFocus:
		return 2
	}
	return 1
}

// SortHighlights orders items for drawing: underlines first, focus last,
// everything else in the order it was queued.
func SortHighlights(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return rank(items[i].Schema.Mode) < rank(items[j].Schema.Mode)
	})
}

// HighlightRects returns the visible column spans of start..end.
func HighlightRects(t *text.Text, vp *viewport.Viewport, start, end text.Coord) []text.Span {
	return t.Spans(start, end, vp.LineStart, vp.LineEnd)
}
