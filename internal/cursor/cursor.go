// Package cursor tracks the caret and the selection anchors.
package cursor

import (
	"math"

	"github.com/xonecas/annotator/internal/text"
)

// EndOfLine is a column past any line; consumers clamp it.
const EndOfLine = math.MaxInt32

// Direction records which anchor the user is extending.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// State is the selection state machine.
type State int

const (
	Idle      State = iota // no selection
	Selecting              // button down, anchors follow the pointer
	Selected               // anchors frozen
)

func (s State) String() string {
	switch s {
	case Selecting:
		return "selecting"
	case Selected:
		return "selected"
	default:
		return "idle"
	}
}

// Cursor is the caret plus an optional selection. Selection anchors are
// inclusive: the characters under both anchors are selected.
type Cursor struct {
	pos text.Coord

	anchor     text.Coord // press point, fixed while dragging
	start, end text.Coord
	anchored   bool

	dir   Direction
	state State
}

// New returns an idle cursor at the top of the document.
func New() *Cursor { return &Cursor{} }

// Pos returns the caret.
func (c *Cursor) Pos() text.Coord { return c.pos }

// SetPos moves the caret without touching the selection.
func (c *Cursor) SetPos(p text.Coord) { c.pos = p }

// MoveTo moves the caret and drops any selection.
func (c *Cursor) MoveTo(p text.Coord) {
	c.Reset()
	c.pos = p
}

func (c *Cursor) State() State         { return c.state }
func (c *Cursor) Direction() Direction { return c.dir }
func (c *Cursor) IsSelecting() bool    { return c.state == Selecting }
func (c *Cursor) IsSelected() bool     { return c.state == Selected }

// PointerDown starts a drag selection at p.
func (c *Cursor) PointerDown(p text.Coord) {
	c.pos = p
	c.anchor, c.start, c.end = p, p, p
	c.anchored = true
	c.dir = Forward
	c.state = Selecting
}

// PointerMove extends the selection while dragging. The press point stays
// fixed; moving past it flips the direction.
func (c *Cursor) PointerMove(p text.Coord) {
	if c.state != Selecting {
		return
	}
	c.extendTo(p)
}

// PointerUp freezes the selection, or drops it when nothing was dragged.
func (c *Cursor) PointerUp(p text.Coord) {
	if c.state != Selecting {
		return
	}
	c.extendTo(p)
	if c.start == c.end {
		c.clear()
		return
	}
	c.state = Selected
}

// Extend grows the selection from the caret to p, as shift+arrow does.
func (c *Cursor) Extend(p text.Coord) {
	if !c.anchored {
		c.anchor = c.pos
		c.anchored = true
	}
	c.extendTo(p)
	if c.start == c.end {
		c.state = Idle
		return
	}
	c.state = Selected
}

func (c *Cursor) extendTo(p text.Coord) {
	c.pos = p
	if p.Less(c.anchor) {
		c.dir = Backward
		c.start, c.end = p, c.anchor
		return
	}
	c.dir = Forward
	c.start, c.end = c.anchor, p
}

// SelectWord selects [start, end] as a double click does.
func (c *Cursor) SelectWord(start, end text.Coord) {
	c.Select(start, end)
}

// Select sets a frozen selection, always forward.
func (c *Cursor) Select(start, end text.Coord) {
	if end.Less(start) {
		start, end = end, start
	}
	c.anchor, c.start, c.end = start, start, end
	c.anchored = true
	c.pos = end
	c.dir = Forward
	if start == end {
		c.state = Idle
		return
	}
	c.state = Selected
}

// Reset drops the selection and returns to idle.
func (c *Cursor) Reset() {
	c.clear()
}

func (c *Cursor) clear() {
	c.anchored = false
	c.anchor, c.start, c.end = text.Coord{}, text.Coord{}, text.Coord{}
	c.dir = Forward
	c.state = Idle
}

// Bounds returns the ordered selection, or ok=false when nothing is
// selected.
func (c *Cursor) Bounds() (start, end text.Coord, ok bool) {
	if !c.anchored || c.start == c.end {
		return text.Coord{}, text.Coord{}, false
	}
	start, end = c.start, c.end
	if end.Less(start) {
		start, end = end, start
	}
	return start, end, true
}

// FromPixels converts a surface point to a viewport-relative coord.
func FromPixels(px, py, charWidth, lineHeight float64) text.Coord {
	if charWidth <= 0 {
		charWidth = 1
	}
	if lineHeight <= 0 {
		lineHeight = 1
	}
	return text.Coord{
		X: max(0, int(math.Floor(px/charWidth))),
		Y: max(0, int(math.Floor(py/lineHeight))),
	}
}
