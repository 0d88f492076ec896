package annotator

import (
	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/cursor"
	"github.com/xonecas/annotator/internal/paint"
	"github.com/xonecas/annotator/internal/text"
)

// Draw renders one frame: background, visible text, caret and selection,
// tag highlights, then collaborator and scroll notifications.
func (a *Annotator) Draw() {
	a.surface.Clear()
	a.surface.FillRect(0, 0, a.width, a.height, paint.Fill{Color: a.opts.Background, Opacity: 1})

	for row, line := range a.text.TextAtLineRange(a.vp.LineStart, a.vp.LineEnd) {
		a.drawLine(line, float64(row)*a.lineHeight)
	}

	a.drawCursor()
	a.reportSelection()
	if a.text.Mode() == text.ModeHighlight && a.onHighlight != nil {
		a.drawHighlights()
	}
	a.notify()
}

// drawLine places each rune of line in its own column so glyphs line up
// with the caret and highlight columns whatever their display width.
func (a *Annotator) drawLine(line string, y float64) {
	col := 0
	for _, r := range line {
		a.surface.FillText(string(r), float64(col)*a.charWidth, y, a.opts.FontColor)
		col++
	}
}

func (a *Annotator) drawCursor() {
	pos := a.cur.Pos()
	p, ok := a.text.Locate(pos.Y, pos.X)
	if !ok {
		return
	}
	if p.CharInLineIndex != pos.X {
		pos.X = p.CharInLineIndex
		a.cur.SetPos(pos)
	}

	if start, end, ok := a.cur.Bounds(); ok {
		fill := paint.Fill{Color: a.opts.SelectColor, Opacity: a.opts.SelectOpacity}
		for _, sp := range a.text.Spans(start, end, a.vp.LineStart, a.vp.LineEnd) {
			a.fillSpan(sp, fill)
		}
	}

	if a.vp.Contains(pos.Y) {
		row := float64(a.vp.Row(pos.Y))
		a.surface.FillRect(float64(pos.X)*a.charWidth, row*a.lineHeight, a.charWidth, a.lineHeight,
			paint.Fill{Color: a.opts.CaretColor, Opacity: 1, Kind: paint.FillCaret})
	}
}

func (a *Annotator) reportSelection() {
	if a.onSelect == nil {
		return
	}
	sel := a.Selection()
	if sel.Text == a.lastSelected {
		return
	}
	a.lastSelected = sel.Text
	a.onSelect(sel)
}

func (a *Annotator) drawHighlights() {
	first := a.vp.LineStart
	last := min(a.vp.LineEnd, a.text.NoLines()-1)
	if last < first {
		return
	}
	sp, ok1 := a.text.Locate(first, 0)
	ep, ok2 := a.text.Locate(last, cursor.EndOfLine)
	if !ok1 || !ok2 {
		return
	}

	var items []annotation.Item
	for _, tag := range annotation.ActiveTagsInRange(a.text, sp, ep) {
		schema, ok := a.onHighlight(tag)
		if !ok {
			continue
		}
		for _, occ := range annotation.Occurrences(a.text, tag) {
			if occ[1].Y < first || occ[0].Y > last {
				continue
			}
			items = append(items, annotation.Item{Tag: tag, Schema: schema, Start: occ[0], End: occ[1]})
		}
	}
	annotation.SortHighlights(items)

	for _, it := range items {
		fill := fillFor(it.Schema)
		for _, span := range annotation.HighlightRects(a.text, a.vp, it.Start, it.End) {
			a.fillSpan(span, fill)
		}
	}
}

func fillFor(s annotation.Schema) paint.Fill {
	f := paint.Fill{Color: s.Style.Color, Opacity: s.Style.Opacity}
	switch s.Mode {
	case annotation.ModeUnderline:
		f.Kind = paint.FillUnderline
	case annotation.ModeFocus:
		f.Kind = paint.FillFocus
	}
	return f
}

// fillSpan paints one line span. Underlines take the bottom eighth of
// the line, at least one unit.
func (a *Annotator) fillSpan(sp text.Span, f paint.Fill) {
	x := float64(sp.Start) * a.charWidth
	y := float64(a.vp.Row(sp.Line)) * a.lineHeight
	w := float64(sp.End-sp.Start) * a.charWidth
	h := a.lineHeight
	if f.Kind == paint.FillUnderline {
		uh := max(1, a.lineHeight/8)
		y += h - uh
		h = uh
	}
	a.surface.FillRect(x, y, w, h, f)
}

func (a *Annotator) notify() {
	total := a.text.NoLines()
	if a.gutter != nil {
		a.gutter.SetLines(a.vp.LineStart, min(a.vp.LineEnd, total-1), total)
	}
	if a.scroller != nil {
		a.scroller.SetScroll(a.vp.LineStart, a.vp.NoLines, total)
	}
	if a.vp.LineStart != a.prevLineStart {
		a.prevLineStart = a.vp.LineStart
		if a.onScroll != nil {
			a.onScroll(a.vp.LineStart)
		}
	}
}
