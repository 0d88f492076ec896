package annotator

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/exp/golden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/clipboard"
	"github.com/xonecas/annotator/internal/cursor"
	"github.com/xonecas/annotator/internal/paint"
	"github.com/xonecas/annotator/internal/surface"
	"github.com/xonecas/annotator/internal/text"
)

const (
	fox   = "The <e1>quick</e1> brown fox"
	greek = "alpha beta gamma delta epsilon zeta eta theta"
)

func newAnnotator(t *testing.T, raw string, cols, rows int, opts Options) (*Annotator, *surface.Grid) {
	t.Helper()
	g := surface.NewGrid(cols, rows, "#c8c8c8", "#000000")
	return New(g, raw, opts), g
}

// fillRecorder records every rectangle fill in draw order.
type fillRecorder struct {
	w, h  float64
	fills []paint.Fill
}

func (r *fillRecorder) Size() (float64, float64) { return r.w, r.h }
func (r *fillRecorder) Clear()                    { r.fills = r.fills[:0] }

func (r *fillRecorder) FillRect(_, _, _, _ float64, f paint.Fill) {
	r.fills = append(r.fills, f)
}

func (r *fillRecorder) FillText(string, float64, float64, string) {}

func (r *fillRecorder) MeasureText(s string) float64 { return float64(len(s)) }

func TestDrawGolden(t *testing.T) {
	_, g := newAnnotator(t, fox+" jumps over", 12, 5, Options{})
	golden.RequireEqual(t, []byte(strings.Join(g.PlainRows(), "\n")+"\n"))
}

func TestLayoutFromSurface(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	chars, lines := a.Layout()
	assert.Equal(t, 20, chars)
	assert.Equal(t, 3, lines)
	w, h := a.CharSize()
	assert.Equal(t, 1.0, w)
	assert.Equal(t, 1.0, h)
}

func TestDoubleClickSelectsWord(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	var got []Selection
	a.OnSelectText(func(s Selection) { got = append(got, s) })

	a.DoubleClick(2, 1)

	assert.Equal(t, cursor.Selected, a.CursorState())
	require.Len(t, got, 1)
	assert.Equal(t, "quick", got[0].Text)
	assert.Equal(t, []string{"e1"}, got[0].Anchors)
}

func TestDoubleClickOffWord(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	a.DoubleClick(3, 0)
	assert.Equal(t, cursor.Idle, a.CursorState())
	assert.Empty(t, a.Selection().Text)
}

func TestSelectionCallbackDedupes(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	var got []string
	a.OnSelectText(func(s Selection) { got = append(got, s.Text) })

	a.DoubleClick(2, 1)
	a.Draw()
	a.Wheel(1)

	a.PointerDown(0, 0)
	a.PointerUp(0, 0)
	a.Draw()

	assert.Equal(t, []string{"quick", ""}, got)
}

func TestDragSelection(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	a.PointerDown(3, 2)
	assert.Equal(t, cursor.Selecting, a.CursorState())
	a.PointerMove(1, 1)
	a.PointerUp(1, 1)

	assert.Equal(t, cursor.Selected, a.CursorState())
	assert.Equal(t, "uick bro", a.Selection().Text)
	assert.Equal(t, cursor.Backward, a.cur.Direction())
}

func TestClearSelectionKeepsCaret(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	var got []string
	a.OnSelectText(func(s Selection) { got = append(got, s.Text) })

	a.DoubleClick(2, 1)
	caret := a.Caret()
	a.ClearSelection()

	assert.Equal(t, cursor.Idle, a.CursorState())
	assert.Equal(t, caret, a.Caret())
	assert.Equal(t, []string{"quick", ""}, got)
}

func TestPointerMoveIgnoredWhenIdle(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	a.PointerMove(5, 2)
	a.PointerUp(5, 2)
	assert.Equal(t, cursor.Idle, a.CursorState())
	assert.Equal(t, text.Coord{}, a.Caret())
}

func TestPointerBelowTextClamps(t *testing.T) {
	a, _ := newAnnotator(t, "short", 20, 4, Options{})
	a.PointerDown(15, 3)
	a.PointerUp(15, 3)
	assert.Equal(t, text.Coord{X: 5, Y: 0}, a.Caret())
}

func TestScrollCallbackOncePerChange(t *testing.T) {
	a, _ := newAnnotator(t, greek, 10, 2, Options{})
	var got []int
	a.OnScroll(func(line int) { got = append(got, line) })

	a.Wheel(1)
	a.Draw()
	a.Wheel(-1)
	a.Wheel(-1)
	a.Wheel(0)

	assert.Equal(t, []int{1, 0}, got)
}

func TestWheelLines(t *testing.T) {
	a, _ := newAnnotator(t, greek, 10, 2, Options{WheelLines: 2})
	a.Wheel(1)
	assert.Equal(t, 2, a.Viewport().LineStart)
	a.Wheel(1)
	assert.Equal(t, 3, a.Viewport().LineStart, "clamped to the last page")
}

func TestResizeKeepsFirstVisibleChar(t *testing.T) {
	a, g := newAnnotator(t, greek, 10, 2, Options{})
	a.ScrollToLine(2)
	require.Equal(t, 2, a.Viewport().LineStart)
	a.PointerDown(3, 0)
	a.PointerUp(3, 0)
	require.Equal(t, text.Coord{X: 3, Y: 2}, a.Caret())

	g.Resize(20, 2)
	a.Resize(20, 2)

	vp := a.Viewport()
	assert.Equal(t, 1, vp.LineStart)
	assert.Equal(t, "ta epsilon zeta eta ", a.Document().Line(vp.LineStart))
	assert.Equal(t, text.Coord{X: 3, Y: 1}, a.Caret())
}

func TestResizeIdempotent(t *testing.T) {
	a, g := newAnnotator(t, greek, 20, 2, Options{})
	a.DoubleClick(8, 0)
	require.Equal(t, "beta", a.Selection().Text)

	g.Resize(10, 3)
	a.Resize(10, 3)
	value, vp, caret, sel := a.Text(), a.Viewport(), a.Caret(), a.Selection()
	chars, lines := a.Layout()

	a.Resize(10, 3)
	assert.Equal(t, value, a.Text())
	assert.Equal(t, vp, a.Viewport())
	assert.Equal(t, caret, a.Caret())
	assert.Equal(t, sel, a.Selection())
	c2, l2 := a.Layout()
	assert.Equal(t, chars, c2)
	assert.Equal(t, lines, l2)
	assert.Equal(t, "beta", sel.Text)
}

func TestKeyNavigation(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	for range 4 {
		a.Key(KeyEvent{Key: KeyRight})
	}
	assert.Equal(t, text.Coord{X: 0, Y: 1}, a.Caret())

	a.Key(KeyEvent{Key: KeyRight, Shift: true})
	assert.Equal(t, cursor.Selected, a.CursorState())
	assert.Equal(t, "qu", a.Selection().Text)

	a.Key(KeyEvent{Key: KeyEnd})
	assert.Equal(t, cursor.Idle, a.CursorState())
	assert.Equal(t, text.Coord{X: 5, Y: 1}, a.Caret())

	a.Key(KeyEvent{Key: KeyDocEnd})
	assert.Equal(t, text.Coord{X: 10, Y: 2}, a.Caret())
	a.Key(KeyEvent{Key: KeyDocStart})
	assert.Equal(t, text.Coord{}, a.Caret())
	a.Key(KeyEvent{Key: KeyLeft})
	assert.Equal(t, text.Coord{}, a.Caret())
}

func TestHighlightDrawOrder(t *testing.T) {
	r := &fillRecorder{w: 20, h: 5}
	a := New(r, "<a>one</a> <b>two</b>", Options{})
	a.OnHighlight(func(tag string) (annotation.Schema, bool) {
		switch tag {
		case "a":
			return annotation.Schema{Mode: annotation.ModeFocus, Style: annotation.Style{Color: "#ff0000", Opacity: 0.5}}, true
		case "b":
			return annotation.Schema{Mode: annotation.ModeUnderline, Style: annotation.Style{Color: "#00ff00", Opacity: 1}}, true
		}
		return annotation.Schema{}, false
	})
	a.Draw()

	var kinds []paint.FillKind
	for _, f := range r.fills {
		if f.Color == "#ff0000" || f.Color == "#00ff00" {
			kinds = append(kinds, f.Kind)
		}
	}
	assert.Equal(t, []paint.FillKind{paint.FillUnderline, paint.FillFocus}, kinds)
}

func TestRawModeSkipsHighlights(t *testing.T) {
	r := &fillRecorder{w: 20, h: 5}
	a := New(r, fox, Options{Mode: text.ModeRaw})
	calls := 0
	a.OnHighlight(func(string) (annotation.Schema, bool) {
		calls++
		return annotation.Schema{}, false
	})
	a.Draw()
	assert.Zero(t, calls)
}

func TestSetMode(t *testing.T) {
	a, g := newAnnotator(t, fox, 20, 3, Options{})
	a.SetMode(text.ModeRaw)
	assert.Equal(t, text.ModeRaw, a.Document().Mode())
	assert.Equal(t, fox, a.Text())
	assert.Equal(t, "The <e1>quick</e1> b", g.PlainRows()[0])

	a.SetMode(text.ModeHighlight)
	assert.Equal(t, "quick", g.PlainRows()[1])
}

func TestAddAndRemoveAnchor(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 6, Options{})
	var changes []string
	a.OnTextChanged(func(raw string) { changes = append(changes, raw) })

	assert.ErrorIs(t, a.AddAnchor("t1"), ErrNoSelection)

	a.DoubleClick(3, 2)
	require.Equal(t, "brown", a.Selection().Text)
	assert.ErrorIs(t, a.AddAnchor("not valid"), annotation.ErrInvalidTag)
	assert.Equal(t, fox, a.Text())

	require.NoError(t, a.AddAnchor("t1"))
	assert.Equal(t, "The <e1>quick</e1> <t1>brown</t1> fox", a.Text())
	assert.Equal(t, cursor.Idle, a.CursorState())

	a.DoubleClick(2, 3)
	require.Equal(t, "brown", a.Selection().Text)
	removed, err := a.RemoveAnchorFromSelection("t1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, fox, a.Text())

	assert.Equal(t, []string{"The <e1>quick</e1> <t1>brown</t1> fox", fox}, changes)
}

func TestRemoveAnchorAt(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	assert.False(t, a.RemoveAnchorAt(text.Coord{X: 3, Y: 2}, "e1"))
	assert.True(t, a.RemoveAnchorAt(text.Coord{X: 2, Y: 1}, "e1"))
	assert.Equal(t, "The quick brown fox", a.Text())
}

func TestScrollToAnchor(t *testing.T) {
	a, _ := newAnnotator(t, "alpha beta gamma delta epsilon zeta eta <t>theta</t>", 10, 2, Options{})
	require.True(t, a.ScrollToAnchor("t", 1))
	assert.Equal(t, 4, a.Viewport().LineStart)
	assert.Equal(t, text.Coord{X: 0, Y: 4}, a.Caret())
	assert.False(t, a.ScrollToAnchor("t", 2))
	assert.False(t, a.ScrollToAnchor("nope", 1))
}

func TestScrollToPercent(t *testing.T) {
	a, _ := newAnnotator(t, greek, 10, 2, Options{})
	a.ScrollToPercent(1)
	assert.Equal(t, 3, a.Viewport().LineStart)
	a.ScrollToPercent(-1)
	assert.Equal(t, 0, a.Viewport().LineStart)
}

func TestSelectOccurrence(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	res := a.Search("fox")
	require.Equal(t, 1, res.Len())
	o, ok := res.Next()
	require.True(t, ok)
	a.SelectOccurrence(o)
	assert.Equal(t, "fox", a.Selection().Text)
}

func TestCopyPaste(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	assert.ErrorIs(t, a.Copy(), ErrNoClipboard)
	assert.ErrorIs(t, a.RequestPaste(), ErrNoClipboard)

	mem := &clipboard.Memory{}
	a, _ = newAnnotator(t, fox, 20, 3, Options{Clipboard: mem})
	assert.ErrorIs(t, a.Copy(), ErrNoSelection)

	a.DoubleClick(2, 1)
	require.NoError(t, a.Copy())
	s, _ := mem.Read()
	assert.Equal(t, "quick", s)

	var changed string
	a.OnTextChanged(func(raw string) { changed = raw })
	a.PointerDown(0, 2)
	a.PointerUp(0, 2)
	require.NoError(t, a.RequestPaste())

	assert.Equal(t, "The <e1>quick</e1>quick brown fox", a.Text())
	assert.Equal(t, a.Text(), changed)
	assert.Equal(t, text.Coord{X: 5, Y: 2}, a.Caret())
}

// brokenClipboard fails every call and counts them.
type brokenClipboard struct{ calls int }

var errClipboardDown = errors.New("clipboard down")

func (b *brokenClipboard) Read() (string, error) {
	b.calls++
	return "", errClipboardDown
}

func (b *brokenClipboard) Write(string) error {
	b.calls++
	return errClipboardDown
}

func TestClipboardFailuresReturned(t *testing.T) {
	cb := &brokenClipboard{}
	a, _ := newAnnotator(t, fox, 20, 3, Options{Clipboard: cb})
	changed := false
	a.OnTextChanged(func(string) { changed = true })

	a.DoubleClick(2, 1)
	assert.ErrorIs(t, a.Copy(), errClipboardDown)
	assert.Equal(t, 1, cb.calls)

	assert.ErrorIs(t, a.RequestPaste(), errClipboardDown)
	assert.Equal(t, 2, cb.calls)
	assert.Equal(t, fox, a.Text())
	assert.False(t, changed)
}

func TestSetSelectStyle(t *testing.T) {
	rec := &fillRecorder{w: 20, h: 3}
	a := New(rec, fox, Options{})
	a.DoubleClick(2, 1)
	a.SetSelectStyle("#ff0000", 0.8)
	assert.Contains(t, rec.fills, paint.Fill{Color: "#ff0000", Opacity: 0.8})

	a.SetSelectStyle("", 0)
	assert.Contains(t, rec.fills, paint.Fill{Color: "#ff0000", Opacity: 0.8})
}

func TestWideRunesGetFullColumns(t *testing.T) {
	a, g := newAnnotator(t, "日本語のテキストです。終わり", 10, 3, Options{})
	chars, _ := a.Layout()
	assert.Equal(t, 5, chars)
	w, _ := a.CharSize()
	assert.Equal(t, 2.0, w)
	assert.Equal(t, []string{"日本語のテ", "キストです", "。終わり"}, g.PlainRows())

	// Column 2 of the first line is 語, drawn at cells 4 and 5.
	a.PointerDown(5, 0)
	a.PointerUp(5, 0)
	assert.Equal(t, text.Coord{X: 2, Y: 0}, a.Caret())
}

func TestMixedWidthKeepsColumnsAligned(t *testing.T) {
	a, g := newAnnotator(t, "ab日", 6, 1, Options{})
	assert.Equal(t, []string{"a b 日"}, g.PlainRows())

	a.SetText("abcdef")
	chars, _ := a.Layout()
	assert.Equal(t, 6, chars)
	assert.Equal(t, []string{"abcdef"}, g.PlainRows())

	a.PointerDown(6, 0)
	a.PointerUp(6, 0)
	a.Paste("界")
	chars, _ = a.Layout()
	assert.Equal(t, 3, chars)
	assert.Equal(t, "abcdef界", a.Text())
	assert.Equal(t, text.Coord{X: 1, Y: 2}, a.Caret())
	assert.Equal(t, []string{"界"}, g.PlainRows())
}

func TestSetTextKeepsCallbacksQuiet(t *testing.T) {
	a, _ := newAnnotator(t, fox, 20, 3, Options{})
	fired := false
	a.OnTextChanged(func(string) { fired = true })
	a.DoubleClick(2, 1)
	a.SetText("plain")
	assert.False(t, fired)
	assert.Equal(t, cursor.Idle, a.CursorState())
	assert.Equal(t, "plain", a.Document().Plain())
}

type gutterSpy struct{ first, last, total int }

func (g *gutterSpy) SetLines(first, last, total int) { g.first, g.last, g.total = first, last, total }

func TestGutterNotified(t *testing.T) {
	a, _ := newAnnotator(t, greek, 10, 2, Options{})
	spy := &gutterSpy{}
	a.SetGutter(spy)
	a.ScrollToLine(1)
	assert.Equal(t, gutterSpy{first: 1, last: 2, total: 5}, *spy)
}
