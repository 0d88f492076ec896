// Package modal provides the overlay dialogs of the annotator TUI: a
// filterable picker and a scrollable text viewer.
package modal

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Action is the result of handling a message. nil means no action.
type Action any

// ActionClose signals the modal should be dismissed.
type ActionClose struct{}

// ActionSelect signals an item was chosen.
type ActionSelect struct{ Item Item }

// ActionSubmit signals free text was entered that is not one of the items.
type ActionSubmit struct{ Text string }

// Item is a single entry in the list. ID is what the caller acts on;
// Name is shown.
type Item struct {
	ID   string
	Name string
	Desc string
}

// SearchFunc is called with the current query to produce results.
type SearchFunc func(query string) []Item

// Colors holds the theme colors for the modals.
type Colors struct {
	Fg      string
	Bg      string
	Dim     string
	SelFg   string
	SelBg   string
	Border  string
	Added   string
	Removed string
}

const debounceDelay = 150 * time.Millisecond

// debounceMsg is sent after the debounce timer fires.
type debounceMsg struct{ seq int }

// Picker is an input above a filtered list.
type Picker struct {
	input    textinput.Model
	items    []Item
	selected int
	inList   bool // true = list focused, false = input focused

	searchFn SearchFunc
	seq      int // debounce sequence counter

	colors Colors

	// AllowFree makes enter on typed text submit it instead of picking
	// the first item.
	AllowFree bool
	Title     string
}

// NewPicker creates a picker over searchFn.
func NewPicker(searchFn SearchFunc, prompt string, colors Colors) Picker {
	in := textinput.New()
	in.Prompt = prompt
	in.Focus()
	p := Picker{
		input:    in,
		searchFn: searchFn,
		colors:   colors,
	}
	p.items = searchFn("")
	return p
}

// Query returns the typed text.
func (p *Picker) Query() string { return p.input.Value() }

// Items returns the current results.
func (p *Picker) Items() []Item { return p.items }

// debounceCmd returns a tea.Cmd that fires after the debounce delay.
func (p *Picker) debounceCmd() tea.Cmd {
	seq := p.seq
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

// HandleMsg processes a tea.Msg and returns an optional Action.
// The second return is a tea.Cmd the parent must dispatch.
func (p *Picker) HandleMsg(msg tea.Msg) (Action, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return p.handleKey(msg)
	case debounceMsg:
		if msg.seq == p.seq {
			p.items = p.searchFn(p.input.Value())
			p.selected = 0
			p.inList = false
		}
	}
	return nil, nil
}

func (p *Picker) handleKey(msg tea.KeyPressMsg) (Action, tea.Cmd) {
	switch msg.Keystroke() {
	case "esc":
		return ActionClose{}, nil
	case "enter":
		return p.handleEnter(), nil
	case "up":
		if p.inList {
			if p.selected > 0 {
				p.selected--
			} else {
				p.inList = false
			}
		}
		return nil, nil
	case "down", "tab":
		if !p.inList {
			if len(p.items) > 0 {
				p.inList = true
				p.selected = 0
			}
		} else if p.selected < len(p.items)-1 {
			p.selected++
		}
		return nil, nil
	}

	if p.inList {
		return nil, nil
	}
	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() == before {
		return nil, cmd
	}
	p.seq++
	return nil, tea.Batch(cmd, p.debounceCmd())
}

func (p *Picker) handleEnter() Action {
	if !p.inList && p.AllowFree {
		if q := strings.TrimSpace(p.input.Value()); q != "" {
			return ActionSubmit{Text: q}
		}
	}
	if len(p.items) == 0 {
		return nil
	}
	idx := p.selected
	if idx >= len(p.items) {
		idx = 0
	}
	return ActionSelect{Item: p.items[idx]}
}

// View renders the picker centered at the given app width and height.
func (p *Picker) View(appWidth, appHeight int) string {
	w, h, innerW := boxSize(appWidth, appHeight)

	listHeight := h - 4 // border top/bottom + input + divider
	if p.Title != "" {
		listHeight--
	}
	listHeight = max(1, listHeight)

	bg := lipgloss.Color(p.colors.Bg)
	fgStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.colors.Fg)).Background(bg)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.colors.Dim)).Background(bg)

	var sb strings.Builder
	if p.Title != "" {
		sb.WriteString(fgStyle.Bold(true).Render(ansi.Truncate(p.Title, innerW, "…")))
		sb.WriteByte('\n')
	}
	p.input.SetWidth(innerW - lipgloss.Width(p.input.Prompt) - 1)
	sb.WriteString(p.input.View())
	sb.WriteByte('\n')
	sb.WriteString(dimStyle.Render(strings.Repeat("─", innerW)))
	for _, l := range p.renderList(innerW, listHeight) {
		sb.WriteByte('\n')
		sb.WriteString(l)
	}

	return place(appWidth, appHeight, w, p.colors, sb.String())
}

func (p *Picker) renderList(innerW, listHeight int) []string {
	scrollOff := 0
	if p.selected >= listHeight {
		scrollOff = p.selected - listHeight + 1
	}

	bg := lipgloss.Color(p.colors.Bg)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.colors.Dim)).Background(bg)
	selStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.colors.SelFg)).
		Background(lipgloss.Color(p.colors.SelBg))

	var lines []string
	for i := scrollOff; i < len(p.items) && len(lines) < listHeight; i++ {
		item := p.items[i]
		if i == p.selected && p.inList {
			lines = append(lines, selStyle.Render(padRight(ansi.Truncate(item.Name, innerW, "…"), innerW)))
			continue
		}
		line := item.Name
		if item.Desc != "" {
			line += dimStyle.Render("  " + item.Desc)
		}
		lines = append(lines, padRight(ansi.Truncate(line, innerW, "…"), innerW))
	}

	for len(lines) < listHeight {
		lines = append(lines, strings.Repeat(" ", innerW))
	}
	return lines
}

// boxSize returns the modal box size for an app size: 80% of it, with a
// floor.
func boxSize(appWidth, appHeight int) (w, h, innerW int) {
	w = max(30, appWidth*80/100)
	h = max(8, appHeight*80/100)
	innerW = max(10, w-6) // border + padding
	return w, h, innerW
}

func place(appWidth, appHeight, w int, c Colors, content string) string {
	bg := lipgloss.Color(c.Bg)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(c.Border)).
		BorderBackground(bg).
		Foreground(lipgloss.Color(c.Fg)).
		Background(bg).
		Padding(0, 1).
		Width(w - 2).
		Render(content)

	return lipgloss.Place(appWidth, appHeight, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceStyle(lipgloss.NewStyle().Background(bg)))
}

func padRight(s string, w int) string {
	n := lipgloss.Width(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
