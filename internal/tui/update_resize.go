package tui

import (
	"image"
	"strconv"

	tea "charm.land/bubbletea/v2"
)

const (
	statusRows    = 2 // separator + status bar
	scrollbarCols = 1
)

// layout holds the screen rectangles of the panes.
type layout struct {
	gutter    image.Rectangle
	doc       image.Rectangle
	scrollbar image.Rectangle
	status    image.Rectangle
}

// generateLayout splits the screen into gutter, document, scrollbar and
// status bar.
func generateLayout(width, height, gutterW int) layout {
	contentH := max(1, height-statusRows)
	gutterW = min(gutterW, max(0, width-scrollbarCols-1))
	docW := max(1, width-gutterW-scrollbarCols)
	return layout{
		gutter:    image.Rect(0, 0, gutterW, contentH),
		doc:       image.Rect(gutterW, 0, gutterW+docW, contentH),
		scrollbar: image.Rect(gutterW+docW, 0, gutterW+docW+scrollbarCols, contentH),
		status:    image.Rect(0, contentH, width, height),
	}
}

// handleResize applies a window size change and re-derives layout.
func (m *Model) handleResize(msg tea.WindowSizeMsg) {
	m.width, m.height = msg.Width, msg.Height
	m.updateComponentSizes()
	if m.doc.restore >= 0 {
		m.ann.ScrollToLine(m.doc.restore)
		m.doc.restore = -1
	}
}

// updateComponentSizes pushes layout dimensions to the grid, the
// annotator and the prompt. The gutter width depends on the wrapped line
// count, which depends on the document width, so a change of digits
// takes a second pass.
func (m *Model) updateComponentSizes() {
	if m.width == 0 {
		return
	}
	for range 2 {
		gw := m.gutterWidth()
		m.layout = generateLayout(m.width, m.height, gw)
		cols, rows := m.layout.doc.Dx(), m.layout.doc.Dy()
		m.grid.Resize(cols, rows)
		m.ann.Resize(float64(cols), float64(rows))
		if m.gutterWidth() == gw {
			break
		}
	}
	m.prompt.SetWidth(max(1, m.width-20))
}

// gutterWidth is the number of digits of the last line number plus a
// space, or 0 when line numbers are off.
func (m *Model) gutterWidth() int {
	if !m.cfg.UI.ShowLineNumbers() {
		return 0
	}
	return len(strconv.Itoa(max(1, m.doc.total))) + 1
}
