package annotator

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/search"
	"github.com/xonecas/annotator/internal/text"
	"github.com/xonecas/annotator/internal/textdiff"
)

// SetText replaces the document. The cursor resets and the scroll
// position is kept when it still fits. OnTextChanged does not fire.
func (a *Annotator) SetText(raw string) {
	a.text.SetValue(raw)
	if a.widenFor(raw) {
		a.reflow()
	}
	a.cur.Reset()
	a.cur.SetPos(text.Coord{})
	a.vp.ScrollTo(a.vp.LineStart, a.text.NoLines())
	a.Draw()
}

// Text returns the raw document.
func (a *Annotator) Text() string { return a.text.Value() }

// ClearSelection drops the selection and leaves the caret in place.
func (a *Annotator) ClearSelection() {
	a.cur.Reset()
	a.Draw()
}

// SetMode switches between highlighted and raw display.
func (a *Annotator) SetMode(m text.Mode) {
	if m == a.text.Mode() {
		return
	}
	a.text.SetMode(m)
	a.cur.Reset()
	a.cur.SetPos(text.Coord{})
	a.vp.ScrollTo(a.vp.LineStart, a.text.NoLines())
	a.Draw()
}

// AddAnchor wraps the current selection in tag.
func (a *Annotator) AddAnchor(tag string) error {
	start, end, ok := a.cur.Bounds()
	if !ok {
		return ErrNoSelection
	}
	before := a.text.Value()
	if err := annotation.WrapRangeWithTag(a.text, annotation.RangeFromCoords(a.text, start, end), tag); err != nil {
		return fmt.Errorf("add anchor: %w", err)
	}
	a.cur.Reset()
	a.changed(before)
	a.Draw()
	return nil
}

// RemoveAnchorFromSelection removes the tag pair around the selection.
// It reports whether a pair was removed.
func (a *Annotator) RemoveAnchorFromSelection(tag string) (bool, error) {
	start, end, ok := a.cur.Bounds()
	if !ok {
		return false, ErrNoSelection
	}
	before := a.text.Value()
	if !annotation.RemoveTagFromRange(a.text, annotation.RangeFromCoords(a.text, start, end), tag) {
		return false, nil
	}
	a.cur.Reset()
	a.changed(before)
	a.Draw()
	return true, nil
}

// RemoveAnchorAt removes the tag pair covering the character at c.
func (a *Annotator) RemoveAnchorAt(c text.Coord, tag string) bool {
	before := a.text.Value()
	if !annotation.RemoveTagAt(a.text, c, tag) {
		return false
	}
	a.cur.Reset()
	a.changed(before)
	a.Draw()
	return true
}

// ScrollToAnchor scrolls the n-th occurrence of tag to the top and puts
// the caret on its first character.
func (a *Annotator) ScrollToAnchor(tag string, n int) bool {
	start, _, ok := annotation.TagOccurrence(a.text, tag, n)
	if !ok {
		return false
	}
	a.cur.MoveTo(start)
	a.vp.ScrollTo(start.Y, a.text.NoLines())
	a.Draw()
	return true
}

// ScrollToLine scrolls so line is the first visible one, clamped.
func (a *Annotator) ScrollToLine(line int) {
	a.vp.ScrollTo(line, a.text.NoLines())
	a.Draw()
}

// ScrollToPercent scrolls to a fraction of the scrollable range.
func (a *Annotator) ScrollToPercent(p float64) {
	p = max(0, min(p, 1))
	span := max(0, a.text.NoLines()-a.vp.NoLines)
	a.ScrollToLine(int(p*float64(span) + 0.5))
}

// Search finds q on every wrapped line.
func (a *Annotator) Search(q string) *search.Results {
	return search.NewResults(a.text, q)
}

// SelectOccurrence selects a search hit and scrolls it into view.
func (a *Annotator) SelectOccurrence(o search.Occurrence) {
	start, end := o.Coords(a.text)
	a.cur.Select(start, end)
	a.vp.Reveal(start.Y, a.text.NoLines())
	a.Draw()
}

// Copy writes the selected text to the clipboard.
func (a *Annotator) Copy() error {
	if a.opts.Clipboard == nil {
		return ErrNoClipboard
	}
	sel := a.Selection()
	if sel.Text == "" {
		return ErrNoSelection
	}
	if err := a.opts.Clipboard.Write(sel.Text); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}

// Paste inserts s at the caret and moves the caret past it.
func (a *Annotator) Paste(s string) {
	if s == "" {
		return
	}
	before := a.text.Value()
	off := a.text.InsertText(a.cur.Pos(), s)
	a.cur.MoveTo(a.text.CoordForIndex(off))
	a.vp.Reveal(a.cur.Pos().Y, a.text.NoLines())
	a.changed(before)
	a.Draw()
}

// RequestPaste reads the clipboard and pastes its content.
func (a *Annotator) RequestPaste() error {
	if a.opts.Clipboard == nil {
		return ErrNoClipboard
	}
	s, err := a.opts.Clipboard.Read()
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	a.Paste(s)
	return nil
}

// SetSelectStyle changes the selection fill.
func (a *Annotator) SetSelectStyle(color string, opacity float64) {
	if color != "" {
		a.opts.SelectColor = color
	}
	if opacity > 0 {
		a.opts.SelectOpacity = opacity
	}
	a.Draw()
}

func (a *Annotator) changed(before string) {
	after := a.text.Value()
	if a.widenFor(after) {
		a.reflow()
	}
	if e := log.Debug(); e.Enabled() {
		added, removed := textdiff.Stat(textdiff.Unified(a.opts.Name, before, after))
		e.Str("doc", a.opts.Name).Int("added", added).Int("removed", removed).Msg("document changed")
	}
	if a.onTextChanged != nil {
		a.onTextChanged(after)
	}
}
