package annotator

import (
	"github.com/xonecas/annotator/internal/cursor"
	"github.com/xonecas/annotator/internal/text"
)

// Key is a navigation key.
type Key int

const (
	KeyLeft Key = iota + 1
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDocStart
	KeyDocEnd
)

// KeyEvent is a navigation key press. Shift extends the selection.
type KeyEvent struct {
	Key   Key
	Shift bool
}

// coordAt converts a surface point to an absolute coord with the column
// clamped to the line. Points below the text land on the last line.
func (a *Annotator) coordAt(px, py float64) text.Coord {
	c := cursor.FromPixels(px, py, a.charWidth, a.lineHeight)
	c.Y += a.vp.LineStart
	if n := a.text.NoLines(); c.Y >= n {
		c.Y = max(0, n-1)
	}
	c.X = min(c.X, a.text.LineLen(c.Y))
	return c
}

// PointerDown starts a selection at the pointer.
func (a *Annotator) PointerDown(px, py float64) {
	a.cur.PointerDown(a.coordAt(px, py))
	a.Draw()
}

// PointerMove extends a drag selection. Dragging above or below the
// surface scrolls one line.
func (a *Annotator) PointerMove(px, py float64) {
	if !a.cur.IsSelecting() {
		return
	}
	switch {
	case py < 0:
		a.vp.ScrollUp(1)
	case py >= a.height:
		a.vp.ScrollDown(1, a.text.NoLines())
	}
	a.cur.PointerMove(a.coordAt(px, max(0, min(py, a.height-a.lineHeight))))
	a.Draw()
}

// PointerUp ends a drag selection.
func (a *Annotator) PointerUp(px, py float64) {
	if !a.cur.IsSelecting() {
		return
	}
	a.cur.PointerUp(a.coordAt(px, max(0, min(py, a.height-a.lineHeight))))
	a.Draw()
}

// DoubleClick selects the word under the pointer.
func (a *Annotator) DoubleClick(px, py float64) {
	c := a.coordAt(px, py)
	p, ok := a.text.Locate(c.Y, c.X)
	if !ok {
		return
	}
	left, right := a.text.WordBoundary(p)
	a.cur.SelectWord(text.Coord{X: c.X + left, Y: c.Y}, text.Coord{X: c.X + right, Y: c.Y})
	a.Draw()
}

// Wheel scrolls by the configured number of lines per notch. Negative
// dy scrolls up.
func (a *Annotator) Wheel(dy float64) {
	switch {
	case dy < 0:
		a.vp.ScrollUp(a.opts.WheelLines)
	case dy > 0:
		a.vp.ScrollDown(a.opts.WheelLines, a.text.NoLines())
	default:
		return
	}
	a.Draw()
}

// Resize re-derives the layout for a new surface size. The first
// visible character, the caret and the selection stay on the same text.
// Calling it again with the same size changes nothing.
func (a *Annotator) Resize(w, h float64) {
	a.width, a.height = w, h
	a.reflow()
	a.Draw()
}

// reflow rewraps the text for the current size and column pitch.
func (a *Annotator) reflow() {
	chars, noLines := a.metrics(a.width, a.height)

	topOff := a.text.IndexForCoordinate(text.Coord{Y: a.vp.LineStart}, false)
	caretOff := a.text.IndexForCoordinate(a.cur.Pos(), false)
	start, end, selected := a.cur.Bounds()
	var startOff, endOff int
	if selected {
		startOff = a.text.IndexForCoordinate(start, false)
		endOff = a.text.IndexForCoordinate(end, false)
	}

	if a.text.SetCharsAtLine(chars) {
		if selected {
			a.cur.Select(a.text.CoordForIndex(startOff), a.text.CoordForIndex(endOff))
		}
		a.cur.SetPos(a.text.CoordForIndex(caretOff))
		a.vp.UpdateLineEnd(noLines, a.text.NoLines())
		a.vp.ScrollTo(a.text.CoordForIndex(topOff).Y, a.text.NoLines())
	} else {
		a.vp.UpdateLineEnd(noLines, a.text.NoLines())
	}
}

// Key moves the caret; with Shift it extends the selection instead.
func (a *Annotator) Key(ev KeyEvent) {
	total := a.text.NoLines()
	if total == 0 {
		return
	}
	pos := a.cur.Pos()
	next := pos
	switch ev.Key {
	case KeyLeft:
		next = a.text.CoordForIndex(a.text.IndexForCoordinate(pos, false) - 1)
	case KeyRight:
		next = a.text.CoordForIndex(a.text.IndexForCoordinate(pos, false) + 1)
	case KeyUp:
		next.Y--
	case KeyDown:
		next.Y++
	case KeyHome:
		next.X = 0
	case KeyEnd:
		next.X = cursor.EndOfLine
	case KeyPageUp:
		next.Y -= a.vp.NoLines
		a.vp.ScrollUp(a.vp.NoLines)
	case KeyPageDown:
		next.Y += a.vp.NoLines
		a.vp.ScrollDown(a.vp.NoLines, total)
	case KeyDocStart:
		next = text.Coord{}
	case KeyDocEnd:
		next = a.text.CoordForIndex(a.text.PlainLen())
	default:
		return
	}
	next.Y = max(0, min(next.Y, total-1))

	if ev.Shift {
		a.cur.Extend(next)
	} else {
		a.cur.MoveTo(next)
	}
	a.vp.Reveal(next.Y, total)
	a.Draw()
}
