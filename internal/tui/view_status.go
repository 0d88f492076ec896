package tui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// renderStatusBar writes the status separator and bar. An open prompt
// takes the bar over.
func (m Model) renderStatusBar(b *strings.Builder) {
	b.WriteString(m.styles.Border.Render(strings.Repeat("─", m.width)))
	b.WriteByte('\n')

	if m.promptKind != promptNone {
		label := m.styles.StatusKey.Render(m.promptLabel())
		line := label + m.prompt.View()
		b.WriteString(line)
		if gap := m.width - lipgloss.Width(line); gap > 0 {
			b.WriteString(m.styles.StatusText.Render(strings.Repeat(" ", gap)))
		}
		return
	}

	// -- Left segments --
	name := m.docName()
	if m.doc.changes > 0 {
		name += "*"
	}
	leftParts := []string{m.styles.StatusKey.Render(" " + name)}
	leftParts = append(leftParts, m.styles.StatusText.Render(m.ann.Document().Mode().String()))
	if sel := m.doc.selection; sel.Text != "" {
		part := fmt.Sprintf("%d sel", len([]rune(sel.Text)))
		if len(sel.Anchors) > 0 {
			part += " " + strings.Join(sel.Anchors, ",")
		}
		leftParts = append(leftParts, m.styles.Accent.Render(part))
	}
	left := strings.Join(leftParts, m.styles.StatusText.Render("  "))

	// -- Right segments --
	var rightParts []string
	switch {
	case m.status != "" && m.statusErr:
		rightParts = append(rightParts, m.styles.Error.Render("✗ "+m.status))
	case m.status != "":
		rightParts = append(rightParts, m.styles.StatusText.Render(m.status))
	}
	if m.results != nil && m.results.Len() > 0 {
		rightParts = append(rightParts, m.styles.Accent.Render(
			fmt.Sprintf("%d/%d", m.results.Index()+1, m.results.Len())))
	}
	caret := m.ann.Caret()
	rightParts = append(rightParts, m.styles.StatusText.Render(
		fmt.Sprintf("%d:%d", caret.Y+1, caret.X+1)))
	rightParts = append(rightParts, m.styles.StatusText.Render(m.scrollLabel()))
	right := strings.Join(rightParts, m.styles.StatusText.Render("  "))

	// -- Compose: left + gap + right + trailing space --
	leftW := lipgloss.Width(left)
	rightW := lipgloss.Width(right)
	if leftW+rightW+1 > m.width {
		left = ansi.Truncate(left, max(0, m.width-rightW-1), "…")
		leftW = lipgloss.Width(left)
	}
	gap := max(0, m.width-leftW-rightW-1)
	b.WriteString(left)
	b.WriteString(m.styles.StatusText.Render(strings.Repeat(" ", gap)))
	b.WriteString(right)
	b.WriteString(m.styles.StatusText.Render(" "))
}

// scrollLabel is Top, Bot, All or a percentage, like a pager.
func (m Model) scrollLabel() string {
	total, visible := m.doc.total, m.doc.noLines
	switch {
	case total <= visible:
		return "All"
	case m.doc.lineStart == 0:
		return "Top"
	case m.doc.lineStart+visible >= total:
		return "Bot"
	}
	return fmt.Sprintf("%d%%", m.doc.lineStart*100/(total-visible))
}
