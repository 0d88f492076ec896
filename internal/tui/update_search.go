package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
)

// openPrompt focuses the status bar prompt.
func (m *Model) openPrompt(kind promptKind) tea.Cmd {
	m.promptKind = kind
	m.prompt.Reset()
	switch kind {
	case promptSearch:
		m.prompt.Placeholder = "text"
		m.searchFrom = m.ann.Caret()
		m.prompt.SetValue(m.query)
		m.prompt.CursorEnd()
	case promptGoto:
		m.prompt.Placeholder = "line or 50%"
	}
	return m.prompt.Focus()
}

func (m *Model) closePrompt() {
	m.promptKind = promptNone
	m.prompt.Blur()
}

// promptLabel is shown left of the prompt input.
func (m Model) promptLabel() string {
	switch m.promptKind {
	case promptSearch:
		return " Search: "
	case promptGoto:
		return " Go to: "
	}
	return ""
}

// updatePrompt feeds the prompt. Search runs as the query changes;
// enter confirms, esc closes keeping the match.
func (m Model) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyPressMsg)
	if !isKey {
		if paste, ok := msg.(tea.PasteMsg); ok {
			m.prompt.SetValue(m.prompt.Value() + strings.ReplaceAll(paste.Content, "\n", " "))
			return m, m.promptChanged()
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	switch key.Keystroke() {
	case "esc":
		m.closePrompt()
		return m, nil
	case "enter":
		kind := m.promptKind
		value := strings.TrimSpace(m.prompt.Value())
		m.closePrompt()
		if kind == promptGoto {
			return m, m.gotoLine(value)
		}
		return m, m.searchStatus()
	case "ctrl+c":
		m.closePrompt()
		return m, m.flushAndQuit()
	}

	before := m.prompt.Value()
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	if m.prompt.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.promptChanged())
}

func (m *Model) promptChanged() tea.Cmd {
	if m.promptKind != promptSearch {
		return nil
	}
	m.runSearch(m.prompt.Value())
	return nil
}

// runSearch searches q and selects the first match after the caret
// position the prompt was opened at.
// Queries shorter than the configured minimum clear the results.
func (m *Model) runSearch(q string) {
	m.query = q
	if len([]rune(q)) < m.cfg.Search.MinLengthOrDefault() {
		m.results = nil
		return
	}
	m.results = m.ann.Search(q)
	if o, ok := m.results.After(m.ann.Document(), m.searchFrom); ok {
		m.ann.SelectOccurrence(o)
	}
}

// stepMatch moves to the next or previous match, wrapping around.
func (m *Model) stepMatch(forward bool) tea.Cmd {
	if m.results == nil {
		if m.query == "" {
			return m.setStatus("no search")
		}
		m.results = m.ann.Search(m.query)
	}
	step := m.results.Prev
	if forward {
		step = m.results.Next
	}
	o, ok := step()
	if !ok {
		return m.setStatus("no matches for " + strconv.Quote(m.query))
	}
	m.ann.SelectOccurrence(o)
	return nil
}

func (m *Model) searchStatus() tea.Cmd {
	if m.results == nil {
		return nil
	}
	if m.results.Len() == 0 {
		return m.setStatus("no matches for " + strconv.Quote(m.query))
	}
	return m.setStatus(fmt.Sprintf("%d matches", m.results.Len()))
}

// gotoLine scrolls to a 1-based wrapped line, or to a percentage when the
// value ends in %.
func (m *Model) gotoLine(v string) tea.Cmd {
	if v == "" {
		return nil
	}
	if pct, ok := strings.CutSuffix(v, "%"); ok {
		p, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return m.setStatus("not a percentage: " + v)
		}
		m.ann.ScrollToPercent(p / 100)
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return m.setStatus("not a line number: " + v)
	}
	m.ann.ScrollToLine(n - 1)
	return nil
}
