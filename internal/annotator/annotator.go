// Package annotator lays a tagged document out on a drawing surface and
// turns pointer, wheel, key and resize events into cursor, selection,
// scroll and tag edits.
package annotator

import (
	"errors"
	"math"

	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/cursor"
	"github.com/xonecas/annotator/internal/paint"
	"github.com/xonecas/annotator/internal/text"
	"github.com/xonecas/annotator/internal/viewport"
)

var (
	ErrNoSelection = errors.New("no selection")
	ErrNoClipboard = errors.New("no clipboard configured")
)

// probeText is measured once to calibrate the monospace character width.
const probeText = "abcdefghijklmnopqrstuvwxyz0123456789"

// firstWide is the lowest code point that can measure wider than a
// Latin letter.
const firstWide = 0x1100

// Surface is what the annotator draws on. Coordinates are surface units
// (pixels on a canvas, cells on a terminal grid).
type Surface interface {
	Size() (w, h float64)
	Clear()
	FillRect(x, y, w, h float64, fill paint.Fill)
	FillText(s string, x, y float64, color string)
	MeasureText(s string) float64
}

// Clipboard reads and writes text.
type Clipboard interface {
	Read() (string, error)
	Write(s string) error
}

// Gutter is told which absolute lines are visible after every draw.
type Gutter interface {
	SetLines(first, last, total int)
}

// Scroller is told the scroll position after every draw.
type Scroller interface {
	SetScroll(lineStart, noLines, total int)
}

// Selection is what the selection callback receives.
type Selection struct {
	Text    string
	Anchors []string // tags active across the selection
}

// HighlightFunc returns the highlight schema of a tag, or false to leave
// it undrawn.
type HighlightFunc func(tag string) (annotation.Schema, bool)

// Options configures an Annotator. Zero values get defaults.
type Options struct {
	Name          string // document name used in change logs
	Mode          text.Mode
	LineHeight    float64 // surface units per line
	FontColor     string
	Background    string
	CaretColor    string
	SelectColor   string
	SelectOpacity float64
	WheelLines    int
	Clipboard     Clipboard
}

func (o *Options) defaults() {
	if o.Name == "" {
		o.Name = "document"
	}
	if o.LineHeight <= 0 {
		o.LineHeight = 1
	}
	if o.FontColor == "" {
		o.FontColor = "#c8c8c8"
	}
	if o.Background == "" {
		o.Background = "#000000"
	}
	if o.CaretColor == "" {
		o.CaretColor = o.FontColor
	}
	if o.SelectColor == "" {
		o.SelectColor = "#3390ff"
	}
	if o.SelectOpacity <= 0 {
		o.SelectOpacity = 0.4
	}
	if o.WheelLines <= 0 {
		o.WheelLines = 1
	}
}

// Annotator owns one document and its layout state. It is not safe for
// concurrent use; every call mutates synchronously and redraws before
// returning.
type Annotator struct {
	surface Surface
	opts    Options

	text *text.Text
	vp   *viewport.Viewport
	cur  *cursor.Cursor

	baseWidth     float64 // measured probeText character width
	charWidth     float64 // column pitch: baseWidth or the widest rune in the text
	lineHeight    float64
	width, height float64

	onSelect      func(Selection)
	onHighlight   HighlightFunc
	onTextChanged func(string)
	onScroll      func(line int)
	gutter        Gutter
	scroller      Scroller

	lastSelected  string
	prevLineStart int
}

// New lays raw out on s and draws the first frame.
func New(s Surface, raw string, opts Options) *Annotator {
	opts.defaults()
	a := &Annotator{
		surface:    s,
		opts:       opts,
		lineHeight: opts.LineHeight,
		cur:        cursor.New(),
	}
	a.baseWidth = s.MeasureText(probeText) / float64(len(probeText))
	if a.baseWidth <= 0 {
		a.baseWidth = 1
	}
	a.charWidth = a.baseWidth
	a.widenFor(raw)
	a.width, a.height = s.Size()
	chars, noLines := a.metrics(a.width, a.height)
	a.text = text.New(raw, chars)
	a.text.SetMode(opts.Mode)
	a.vp = viewport.New(0, noLines)
	a.Draw()
	return a
}

// metrics converts a surface size to columns per line and visible lines.
func (a *Annotator) metrics(w, h float64) (charsAtLine, noLines int) {
	charsAtLine = max(1, int(math.Floor(w/a.charWidth)))
	noLines = max(1, int(math.Ceil(h/a.lineHeight)))
	return charsAtLine, noLines
}

// widenFor sets the column pitch so every rune of raw fits one column.
// It reports whether the pitch changed.
func (a *Annotator) widenFor(raw string) bool {
	w := a.baseWidth
	seen := map[rune]bool{}
	for _, r := range raw {
		if r < firstWide || seen[r] {
			continue
		}
		seen[r] = true
		w = max(w, a.surface.MeasureText(string(r)))
	}
	if w == a.charWidth {
		return false
	}
	a.charWidth = w
	return true
}

// Document returns the text model. Mutating it directly skips redraws
// and callbacks.
func (a *Annotator) Document() *text.Text { return a.text }

// Viewport returns a copy of the visible line range.
func (a *Annotator) Viewport() viewport.Viewport { return *a.vp }

// Caret returns the caret position.
func (a *Annotator) Caret() text.Coord { return a.cur.Pos() }

// CursorState returns the selection state.
func (a *Annotator) CursorState() cursor.State { return a.cur.State() }

// Layout returns the columns per line and the number of visible lines.
func (a *Annotator) Layout() (charsAtLine, noLines int) {
	return a.text.CharsAtLine(), a.vp.NoLines
}

// CharSize returns the calibrated character width and line height.
func (a *Annotator) CharSize() (w, h float64) { return a.charWidth, a.lineHeight }

// Selection returns the selected text and the tags active across it.
func (a *Annotator) Selection() Selection {
	start, end, ok := a.cur.Bounds()
	if !ok {
		return Selection{}
	}
	sel := Selection{Text: a.text.RangeText(start, end)}
	if a.text.Mode() != text.ModeHighlight {
		return sel
	}
	sp, ok1 := a.text.Locate(start.Y, start.X)
	ep, ok2 := a.text.Locate(end.Y, end.X)
	if ok1 && ok2 {
		sel.Anchors = annotation.ActiveTagsInRange(a.text, sp, ep)
	}
	return sel
}

// OnSelectText registers the selection callback. It fires only when the
// selected text differs from the last one reported.
func (a *Annotator) OnSelectText(fn func(Selection)) { a.onSelect = fn }

// OnHighlight registers the highlight lookup queried per visible tag.
func (a *Annotator) OnHighlight(fn HighlightFunc) { a.onHighlight = fn }

// OnTextChanged registers the callback for edits made through the
// annotator. SetText does not trigger it.
func (a *Annotator) OnTextChanged(fn func(raw string)) { a.onTextChanged = fn }

// OnScroll registers the callback fired once per change of the first
// visible line.
func (a *Annotator) OnScroll(fn func(line int)) { a.onScroll = fn }

func (a *Annotator) SetGutter(g Gutter)     { a.gutter = g }
func (a *Annotator) SetScroller(s Scroller) { a.scroller = s }
