package tui

import (
	"image"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/annotator/internal/config"
	"github.com/xonecas/annotator/internal/store"
	"github.com/xonecas/annotator/internal/text"
)

const (
	fox   = "The <e1>quick</e1> brown fox"
	greek = "alpha beta gamma delta epsilon zeta eta theta"
)

func newModel(t *testing.T, opts Options, w, h int) Model {
	t.Helper()
	if opts.DocID == "" {
		opts.DocID = "fox"
	}
	m := New(opts)
	return send(t, m, tea.WindowSizeMsg{Width: w, Height: h})
}

// send feeds msgs through Update in order.
func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func typed(s string) []tea.Msg {
	var msgs []tea.Msg
	for _, r := range s {
		msgs = append(msgs, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return msgs
}

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

var enter = tea.KeyPressMsg{Code: tea.KeyEnter}

// doubleClick selects the word at a screen cell.
func doubleClick(x, y int) []tea.Msg {
	return []tea.Msg{
		tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft},
		tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft},
		tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft},
	}
}

func click(x, y int) []tea.Msg {
	return []tea.Msg{
		tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft},
		tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft},
	}
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestResizeSizesGrid(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	assert.Equal(t, image.Rect(2, 0, 39, 8), m.layout.doc)
	w, h := m.grid.Size()
	assert.Equal(t, 37.0, w)
	assert.Equal(t, 8.0, h)

	chars, lines := m.ann.Layout()
	assert.Equal(t, 37, chars)
	assert.Equal(t, 8, lines)
}

func TestLineNumbersOff(t *testing.T) {
	off := false
	cfg := config.Default()
	cfg.UI.LineNumbers = &off
	m := newModel(t, Options{Raw: fox, Config: cfg}, 40, 10)
	assert.Zero(t, m.layout.gutter.Dx())
	assert.Equal(t, 0, m.layout.doc.Min.X)
}

func TestSearchPromptSelectsMatch(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, ctrl('f'))
	require.Equal(t, promptSearch, m.promptKind)

	m = send(t, m, typed("brown")...)
	assert.Equal(t, "brown", m.doc.selection.Text)

	m = send(t, m, enter)
	assert.Equal(t, promptNone, m.promptKind)
	assert.Equal(t, "1 matches", m.status)
}

func TestNextMatchWraps(t *testing.T) {
	m := newModel(t, Options{Raw: "fox and fox and fox"}, 40, 10)
	m = send(t, m, ctrl('f'))
	m = send(t, m, typed("fox")...)
	m = send(t, m, enter)
	require.Equal(t, 3, m.results.Len())
	assert.Equal(t, 0, m.results.Index())

	m = send(t, m, tea.KeyPressMsg{Code: 'n', Text: "n"})
	assert.Equal(t, 1, m.results.Index())
	m = send(t, m, tea.KeyPressMsg{Code: 'N', Text: "N"})
	assert.Equal(t, 0, m.results.Index())
	m = send(t, m, tea.KeyPressMsg{Code: 'N', Text: "N"})
	assert.Equal(t, 2, m.results.Index())
	assert.Equal(t, "fox", m.doc.selection.Text)
}

func TestNextMatchWithoutSearch(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, tea.KeyPressMsg{Code: 'n', Text: "n"})
	assert.Equal(t, "no search", m.status)
}

func TestTagSelection(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, doubleClick(5, 2)...)
	require.Equal(t, "brown", m.doc.selection.Text)

	m = send(t, m, ctrl('t'))
	require.NotNil(t, m.picker)
	m = send(t, m, typed("e2")...)
	m = send(t, m, enter)

	assert.Nil(t, m.picker)
	assert.Equal(t, "The <e1>quick</e1> <e2>brown</e2> fox", m.ann.Text())
	assert.Equal(t, "tagged e2", m.status)
	assert.Equal(t, 1, m.doc.changes)
}

func TestTagRequiresSelection(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, ctrl('t'))
	assert.Nil(t, m.picker)
	assert.True(t, m.statusErr)
}

func TestInvalidTagRejected(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, doubleClick(5, 2)...)
	m = send(t, m, ctrl('t'))
	m = send(t, m, typed("a b")...)
	m = send(t, m, enter)

	assert.True(t, m.statusErr)
	assert.Equal(t, fox, m.ann.Text())
}

func TestRemoveTagAtCaret(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, click(3, 1)...)
	m = send(t, m, ctrl('r'))
	require.NotNil(t, m.picker)
	require.Len(t, m.picker.Items(), 1)

	m = send(t, m, enter)
	assert.Equal(t, "The quick brown fox", m.ann.Text())
	assert.Equal(t, "removed e1", m.status)
}

func TestRemoveTagNothingHere(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, ctrl('r'))
	assert.Nil(t, m.picker)
	assert.Equal(t, "no tags here", m.status)
}

func TestJumpToTag(t *testing.T) {
	m := newModel(t, Options{Raw: "<a>one</a> two <a>three</a>"}, 40, 10)
	m = send(t, m, ctrl('o'))
	require.NotNil(t, m.picker)
	require.Len(t, m.picker.Items(), 2)

	m = send(t, m, tea.KeyPressMsg{Code: tea.KeyDown}, tea.KeyPressMsg{Code: tea.KeyDown}, enter)
	assert.Nil(t, m.picker)
	start := m.ann.Caret()
	assert.Equal(t, "three", m.ann.Document().Line(start.Y))
}

func TestToggleMode(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, tea.KeyPressMsg{Code: 'm', Text: "m"})
	assert.Equal(t, text.ModeRaw, m.ann.Document().Mode())
	assert.Equal(t, "raw mode", m.status)

	m = send(t, m, tea.KeyPressMsg{Code: 'm', Text: "m"})
	assert.Equal(t, text.ModeHighlight, m.ann.Document().Mode())
}

func TestPasteInsertsAtCaret(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, click(2, 2)...)
	m = send(t, m, tea.PasteMsg{Content: "quick"})
	assert.Equal(t, "The <e1>quick</e1>quick brown fox", m.ann.Text())
}

func TestArrowKeysMoveCaret(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, tea.KeyPressMsg{Code: tea.KeyDown}, tea.KeyPressMsg{Code: tea.KeyRight})
	assert.Equal(t, text.Coord{X: 1, Y: 1}, m.ann.Caret())

	m = send(t, m, tea.KeyPressMsg{Code: tea.KeyRight, Mod: tea.ModShift})
	assert.Equal(t, "u", m.doc.selection.Text)

	m = send(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Empty(t, m.doc.selection.Text)
}

func TestGotoLine(t *testing.T) {
	m := newModel(t, Options{Raw: greek}, 15, 4)
	m = send(t, m, ctrl('g'))
	m = send(t, m, typed("3")...)
	m = send(t, m, enter)
	assert.Equal(t, 2, m.ann.Viewport().LineStart)

	m = send(t, m, ctrl('g'))
	m = send(t, m, typed("0%")...)
	m = send(t, m, enter)
	assert.Equal(t, 0, m.ann.Viewport().LineStart)
}

func TestWheelScrolls(t *testing.T) {
	m := newModel(t, Options{Raw: greek}, 15, 4)
	m = send(t, m, tea.MouseWheelMsg{X: 5, Y: 1, Button: tea.MouseWheelDown})
	assert.Positive(t, m.ann.Viewport().LineStart)
	assert.Equal(t, m.ann.Viewport().LineStart, m.doc.scroll)
}

func TestDiffView(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 60, 20)
	m = send(t, m, ctrl('d'))
	assert.Nil(t, m.textView)
	assert.Equal(t, "no changes", m.status)

	m = send(t, m, doubleClick(5, 2)...)
	m = send(t, m, ctrl('t'))
	m = send(t, m, typed("e2")...)
	m = send(t, m, enter, ctrl('d'))
	require.NotNil(t, m.textView)
	assert.Contains(t, m.textView.View(m.width, m.height), "Changes +1 -1")

	m = send(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, m.textView)
}

func TestHelpView(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 60, 30)
	m = send(t, m, tea.KeyPressMsg{Code: '?', Text: "?"})
	require.NotNil(t, m.textView)
	assert.Contains(t, m.textView.View(m.width, m.height), "tag selection")
}

func TestChangesPersist(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.PutDocument(store.Document{ID: "fox", Title: "Fox", Raw: fox}))

	m := newModel(t, Options{DocID: "fox", Title: "Fox", Raw: fox, Store: st}, 40, 10)
	m = send(t, m, doubleClick(5, 2)...)
	m = send(t, m, ctrl('t'))
	m = send(t, m, typed("e2")...)
	m = send(t, m, enter)
	st.Flush()

	doc, err := st.GetDocument("fox")
	require.NoError(t, err)
	assert.Equal(t, "The <e1>quick</e1> <e2>brown</e2> fox", doc.Raw)
	assert.Equal(t, 1, st.Revisions("fox"))
}

func TestDocumentPicker(t *testing.T) {
	st := openTestStore(t)
	now := time.Now()
	require.NoError(t, st.PutDocument(store.Document{ID: "fox", Raw: fox, Updated: now.Add(-time.Hour)}))
	require.NoError(t, st.PutDocument(store.Document{ID: "dog", Title: "Dog", Raw: "A lazy dog", Scroll: 0, Updated: now}))

	m := newModel(t, Options{DocID: "fox", Raw: fox, Store: st}, 40, 10)
	m = send(t, m, ctrl('p'))
	require.NotNil(t, m.picker)
	require.Len(t, m.picker.Items(), 2)

	m = send(t, m, tea.KeyPressMsg{Code: tea.KeyDown}, enter)
	assert.Equal(t, "dog", m.doc.id)
	assert.Equal(t, "A lazy dog", m.ann.Text())
	assert.Equal(t, "opened Dog", m.status)
}

func TestQuitPersistsScroll(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.PutDocument(store.Document{ID: "greek", Raw: greek}))

	m := newModel(t, Options{DocID: "greek", Raw: greek, Store: st}, 15, 4)
	m = send(t, m, tea.MouseWheelMsg{X: 5, Y: 1, Button: tea.MouseWheelDown})
	line := m.ann.Viewport().LineStart
	require.Positive(t, line)

	_, cmd := m.Update(ctrl('c'))
	require.NotNil(t, cmd)

	// Saved before the quit command runs.
	doc, err := st.GetDocument("greek")
	require.NoError(t, err)
	assert.Equal(t, line, doc.Scroll)
	assert.Zero(t, st.Revisions("greek"))
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuitPersistsLatestEdit(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.PutDocument(store.Document{ID: "fox", Raw: fox}))

	m := newModel(t, Options{DocID: "fox", Raw: fox, Store: st}, 40, 10)
	for i := range 100 {
		m = send(t, m, tea.PasteMsg{Content: string(rune('a' + i%26))})
	}
	want := m.ann.Text()
	m.Update(ctrl('c'))

	doc, err := st.GetDocument("fox")
	require.NoError(t, err)
	assert.Equal(t, want, doc.Raw)
}

func TestReopenRestoresScroll(t *testing.T) {
	m := newModel(t, Options{Raw: greek, Scroll: 2}, 15, 4)
	assert.Equal(t, 2, m.ann.Viewport().LineStart)
}

func TestStatusClears(t *testing.T) {
	m := newModel(t, Options{Raw: fox}, 40, 10)
	m = send(t, m, tea.KeyPressMsg{Code: 'm', Text: "m"})
	seq := m.statusSeq
	m = send(t, m, statusClearMsg{seq: seq - 1})
	assert.NotEmpty(t, m.status)
	m = send(t, m, statusClearMsg{seq: seq})
	assert.Empty(t, m.status)
}

func TestMouseEventFilter(t *testing.T) {
	lastMouseEvent = time.Time{}
	wheel := tea.MouseWheelMsg{Button: tea.MouseWheelDown}
	assert.NotNil(t, MouseEventFilter(nil, wheel))
	assert.Nil(t, MouseEventFilter(nil, wheel))
	assert.NotNil(t, MouseEventFilter(nil, tea.MouseClickMsg{Button: tea.MouseLeft}))
}
