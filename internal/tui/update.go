package tui

import (
	tea "charm.land/bubbletea/v2"
)

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// -- Window resize -------------------------------------------------------
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		return m, nil

	case statusClearMsg:
		m.handleStatusClear(msg)
		return m, nil
	}

	// -- Dialogs first -------------------------------------------------------
	if m.textView != nil || m.picker != nil {
		return m.updateModal(msg)
	}
	if m.promptKind != promptNone {
		return m.updatePrompt(msg)
	}

	switch msg := msg.(type) {

	// -- Paste (clipboard read or bracketed paste) ---------------------------
	case tea.ClipboardMsg:
		m.insertPaste(msg.String())
		return m, nil
	case tea.PasteMsg:
		m.insertPaste(msg.Content)
		return m, nil

	// -- Mouse ---------------------------------------------------------------
	case tea.MouseMsg:
		return m.handleMouse(msg)

	// -- Keyboard ------------------------------------------------------------
	case tea.KeyPressMsg:
		if mdl, cmd, handled := m.handleKeyPress(msg); handled {
			return mdl, cmd
		}
		if ev, ok := navKeys[msg.Keystroke()]; ok {
			m.ann.Key(ev)
		}
	}

	return m, nil
}

// insertPaste inserts pasted text at the caret.
func (m *Model) insertPaste(text string) {
	if text == "" {
		return
	}
	m.ann.Paste(text)
	m.results = nil
	m.updateComponentSizes()
}
