package tui

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() tea.View {
	content := m.renderContent()
	switch {
	case m.textView != nil:
		content = m.textView.View(m.width, m.height)
	case m.picker != nil:
		content = m.picker.View(m.width, m.height)
	}
	v := tea.NewView(content)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	v.WindowTitle = "annotator: " + m.docName()
	return v
}

// renderContent produces the string content for the view.
func (m Model) renderContent() string {
	if m.width == 0 {
		return ""
	}

	ly := m.layout
	docRows := strings.Split(m.grid.Render(), "\n")
	thumbTop, thumbEnd := m.scrollThumb(ly.scrollbar.Dy())
	caretLine := m.ann.Caret().Y
	var b strings.Builder

	for row := 0; row < ly.doc.Dy(); row++ {
		m.renderGutterCell(&b, row, caretLine)
		if row < len(docRows) {
			b.WriteString(docRows[row])
		}
		if row >= thumbTop && row < thumbEnd {
			b.WriteString(m.styles.Thumb.Render(" "))
		} else {
			b.WriteString(m.styles.Track.Render(" "))
		}
		b.WriteByte('\n')
	}

	m.renderStatusBar(&b)
	return b.String()
}

// renderGutterCell writes the right-aligned line number of a row, blank
// past the end of the document.
func (m Model) renderGutterCell(b *strings.Builder, row, caretLine int) {
	w := m.layout.gutter.Dx()
	if w == 0 {
		return
	}
	line := m.doc.lineStart + row
	if line > m.doc.last || m.doc.total == 0 {
		b.WriteString(m.styles.Gutter.Render(strings.Repeat(" ", w)))
		return
	}
	num := strconv.Itoa(line + 1)
	cell := strings.Repeat(" ", max(0, w-1-len(num))) + num + " "
	if line == caretLine {
		b.WriteString(m.styles.GutterCur.Render(cell))
		return
	}
	b.WriteString(m.styles.Gutter.Render(cell))
}

// scrollThumb returns the rows [top, end) of the scrollbar thumb.
func (m Model) scrollThumb(h int) (top, end int) {
	total, visible := m.doc.total, m.doc.noLines
	if h <= 0 || total <= visible || total == 0 {
		return 0, h
	}
	size := max(1, h*visible/total)
	top = h * m.doc.lineStart / total
	top = min(top, h-size)
	return top, top + size
}
