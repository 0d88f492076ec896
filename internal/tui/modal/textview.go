package modal

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// TextView is a read-only scrollable modal. Lines starting with + or -
// are colored as diff lines when the view is a diff.
type TextView struct {
	title   string
	content string
	scroll  int
	colors  Colors
	Diff    bool
}

// NewTextView creates a text viewer.
func NewTextView(title, content string, colors Colors) TextView {
	return TextView{
		title:   title,
		content: content,
		colors:  colors,
	}
}

// Scroll returns the first shown line.
func (t *TextView) Scroll() int { return t.scroll }

// HandleMsg processes key and wheel events. Returns ActionClose when the
// modal should close.
func (t *TextView) HandleMsg(msg tea.Msg) (Action, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.Keystroke() {
		case "esc", "q", "enter":
			return ActionClose{}, nil
		case "up", "k":
			t.scroll--
		case "down", "j":
			t.scroll++
		case "pgup":
			t.scroll -= 10
		case "pgdown":
			t.scroll += 10
		case "home":
			t.scroll = 0
		}
	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelUp:
			t.scroll--
		case tea.MouseWheelDown:
			t.scroll++
		}
	}
	t.scroll = max(0, t.scroll)
	return nil, nil
}

// View renders the modal centered in the terminal at appWidth x appHeight.
func (t *TextView) View(appWidth, appHeight int) string {
	w, h, innerW := boxSize(appWidth, appHeight)

	var wrapped []string
	for _, line := range strings.Split(t.content, "\n") {
		wrapped = append(wrapped, strings.Split(ansi.Hardwrap(line, innerW, true), "\n")...)
	}

	listH := max(1, h-4) // border top/bottom + title + divider
	maxScroll := max(0, len(wrapped)-listH)
	t.scroll = min(t.scroll, maxScroll)

	bg := lipgloss.Color(t.colors.Bg)
	fgStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.colors.Fg)).Background(bg)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.colors.Dim)).Background(bg)
	addStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.colors.Added)).Background(bg)
	delStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.colors.Removed)).Background(bg)

	title := t.title
	switch {
	case t.scroll > 0 && t.scroll < maxScroll:
		title += " ↑↓"
	case t.scroll > 0:
		title += " ↑"
	case maxScroll > 0:
		title += " ↓"
	}

	var sb strings.Builder
	sb.WriteString(fgStyle.Bold(true).Render(ansi.Truncate(title, innerW, "…")))
	sb.WriteByte('\n')
	sb.WriteString(dimStyle.Render(strings.Repeat("─", innerW)))

	end := min(t.scroll+listH, len(wrapped))
	for _, l := range wrapped[t.scroll:end] {
		style := fgStyle
		if t.Diff {
			switch {
			case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"), strings.HasPrefix(l, "@@"):
				style = dimStyle
			case strings.HasPrefix(l, "+"):
				style = addStyle
			case strings.HasPrefix(l, "-"):
				style = delStyle
			}
		}
		sb.WriteByte('\n')
		sb.WriteString(style.Render(padRight(l, innerW)))
	}
	for i := end - t.scroll; i < listH; i++ {
		sb.WriteByte('\n')
		sb.WriteString(fgStyle.Render(strings.Repeat(" ", innerW)))
	}

	return place(appWidth, appHeight, w, t.colors, sb.String())
}
