package tui

import (
	"image"
	"time"

	tea "charm.land/bubbletea/v2"
)

// ---------------------------------------------------------------------------
// Mouse filter: throttle high-frequency events at program level.
// ---------------------------------------------------------------------------

var lastMouseEvent time.Time

// MouseEventFilter rate-limits wheel and motion events (15 ms).
// Pass to tea.WithFilter. Never drops clicks or releases.
func MouseEventFilter(_ tea.Model, msg tea.Msg) tea.Msg {
	switch msg.(type) {
	case tea.MouseWheelMsg, tea.MouseMotionMsg:
		now := time.Now()
		if now.Sub(lastMouseEvent) < 15*time.Millisecond {
			return nil
		}
		lastMouseEvent = now
	}
	return msg
}

// doubleClickWindow is the longest gap between the clicks of a double
// click.
const doubleClickWindow = 400 * time.Millisecond

// ---------------------------------------------------------------------------
// Mouse handling. Coordinates are translated to the document rect; the
// annotator clamps and scrolls for points outside it.
// ---------------------------------------------------------------------------

// mouseXY extracts X, Y from any mouse message via the MouseMsg interface.
func mouseXY(msg tea.MouseMsg) (int, int) {
	m := msg.Mouse()
	return m.X, m.Y
}

func inRect(x, y int, r image.Rectangle) bool {
	return image.Pt(x, y).In(r)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	x, y := mouseXY(msg)
	dx := float64(x - m.layout.doc.Min.X)
	dy := float64(y - m.layout.doc.Min.Y)

	switch ev := msg.(type) {
	case tea.MouseWheelMsg:
		switch ev.Button {
		case tea.MouseWheelUp:
			m.ann.Wheel(-1)
		case tea.MouseWheelDown:
			m.ann.Wheel(1)
		}

	case tea.MouseClickMsg:
		if ev.Button != tea.MouseLeft {
			return m, nil
		}
		switch {
		case inRect(x, y, m.layout.scrollbar):
			m.scrollbarJump(y)
		case inRect(x, y, m.layout.doc), inRect(x, y, m.layout.gutter):
			m.handleClick(x, y, max(0, dx), dy)
		}

	case tea.MouseMotionMsg:
		m.ann.PointerMove(dx, dy)

	case tea.MouseReleaseMsg:
		m.ann.PointerUp(dx, dy)
	}
	return m, nil
}

// handleClick starts a selection, or selects a word when the same cell
// was clicked within doubleClickWindow.
func (m *Model) handleClick(x, y int, dx, dy float64) {
	now := time.Now()
	if now.Sub(m.lastClick) <= doubleClickWindow && x == m.lastClickX && y == m.lastClickY {
		m.lastClick = time.Time{}
		m.ann.DoubleClick(dx, dy)
		return
	}
	m.lastClick, m.lastClickX, m.lastClickY = now, x, y
	m.ann.PointerDown(dx, dy)
}

// scrollbarJump scrolls proportionally to the clicked scrollbar row.
func (m *Model) scrollbarJump(y int) {
	h := m.layout.scrollbar.Dy()
	if h <= 1 {
		return
	}
	m.ann.ScrollToPercent(float64(y-m.layout.scrollbar.Min.Y) / float64(h-1))
}
