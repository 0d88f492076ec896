package tui

import (
	"errors"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/annotator/internal/annotator"
	"github.com/xonecas/annotator/internal/store"
	"github.com/xonecas/annotator/internal/text"
)

// keybinds is shown by the help view.
var keybinds = [][2]string{
	{"ctrl+h, ?", "keybinds"},
	{"ctrl+f, /", "search"},
	{"n / N", "next / previous match"},
	{"ctrl+g", "go to line or percent"},
	{"ctrl+t", "tag selection"},
	{"ctrl+r", "remove tag"},
	{"ctrl+o", "jump to tag"},
	{"ctrl+p", "open document"},
	{"ctrl+d", "changes since open"},
	{"m", "toggle raw / highlight"},
	{"ctrl+shift+c", "copy selection"},
	{"ctrl+shift+v", "paste"},
	{"ctrl+v", "paste from system clipboard"},
	{"arrows", "move caret"},
	{"shift+arrows", "extend selection"},
	{"home / end", "line start / end"},
	{"pgup / pgdown", "page scroll"},
	{"ctrl+home / end", "document start / end"},
	{"esc", "clear selection"},
	{"ctrl+c, q", "quit"},
}

// navKeys maps keystrokes to annotator navigation.
var navKeys = map[string]annotator.KeyEvent{
	"left":            {Key: annotator.KeyLeft},
	"right":           {Key: annotator.KeyRight},
	"up":              {Key: annotator.KeyUp},
	"down":            {Key: annotator.KeyDown},
	"home":            {Key: annotator.KeyHome},
	"end":             {Key: annotator.KeyEnd},
	"pgup":            {Key: annotator.KeyPageUp},
	"pgdown":          {Key: annotator.KeyPageDown},
	"ctrl+home":       {Key: annotator.KeyDocStart},
	"ctrl+end":        {Key: annotator.KeyDocEnd},
	"shift+left":      {Key: annotator.KeyLeft, Shift: true},
	"shift+right":     {Key: annotator.KeyRight, Shift: true},
	"shift+up":        {Key: annotator.KeyUp, Shift: true},
	"shift+down":      {Key: annotator.KeyDown, Shift: true},
	"shift+home":      {Key: annotator.KeyHome, Shift: true},
	"shift+end":       {Key: annotator.KeyEnd, Shift: true},
	"shift+pgup":      {Key: annotator.KeyPageUp, Shift: true},
	"shift+pgdown":    {Key: annotator.KeyPageDown, Shift: true},
	"ctrl+shift+home": {Key: annotator.KeyDocStart, Shift: true},
	"ctrl+shift+end":  {Key: annotator.KeyDocEnd, Shift: true},
}

// handleKeyPress processes key events. Returns (model, cmd, true) if handled.
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (Model, tea.Cmd, bool) {
	handler := m.keyPressHandlers()[msg.Keystroke()]
	if handler == nil {
		return Model{}, nil, false
	}
	return handler(m)
}

func (m *Model) keyPressHandlers() map[string]func(*Model) (Model, tea.Cmd, bool) {
	return map[string]func(*Model) (Model, tea.Cmd, bool){
		"ctrl+c":       (*Model).handleQuit,
		"q":            (*Model).handleQuit,
		"ctrl+shift+c": (*Model).handleCopy,
		"ctrl+shift+v": (*Model).handlePaste,
		"ctrl+v":       (*Model).handleSystemPaste,
		"esc":          (*Model).handleEsc,
		"ctrl+f":       (*Model).handleSearch,
		"/":            (*Model).handleSearch,
		"n":            (*Model).handleNextMatch,
		"N":            (*Model).handlePrevMatch,
		"shift+n":      (*Model).handlePrevMatch,
		"ctrl+g":       (*Model).handleGoto,
		"ctrl+t":       (*Model).handleTag,
		"ctrl+r":       (*Model).handleUntag,
		"ctrl+o":       (*Model).handleJump,
		"ctrl+p":       (*Model).handleOpen,
		"ctrl+d":       (*Model).handleDiff,
		"m":            (*Model).handleToggleMode,
		"ctrl+h":       (*Model).handleHelp,
		"?":            (*Model).handleHelp,
	}
}

func (m *Model) handleQuit() (Model, tea.Cmd, bool) {
	return *m, m.flushAndQuit(), true
}

// handleCopy copies the selection through the terminal (OSC 52, works
// over SSH) and the system clipboard.
func (m *Model) handleCopy() (Model, tea.Cmd, bool) {
	sel := m.ann.Selection()
	if sel.Text == "" {
		return *m, m.setStatus("nothing selected"), true
	}
	if err := m.ann.Copy(); err != nil && !errors.Is(err, annotator.ErrNoClipboard) {
		log.Debug().Err(err).Msg("system clipboard unavailable")
	}
	return *m, tea.Batch(tea.SetClipboard(sel.Text), m.setStatus("copied")), true
}

func (m *Model) handlePaste() (Model, tea.Cmd, bool) {
	return *m, tea.ReadClipboard, true
}

func (m *Model) handleSystemPaste() (Model, tea.Cmd, bool) {
	if err := m.ann.RequestPaste(); err != nil {
		return *m, m.setError(err), true
	}
	m.results = nil
	m.updateComponentSizes()
	return *m, nil, true
}

// handleEsc drops the selection, keeping the caret where it was.
func (m *Model) handleEsc() (Model, tea.Cmd, bool) {
	m.ann.ClearSelection()
	return *m, nil, true
}

func (m *Model) handleSearch() (Model, tea.Cmd, bool) {
	return *m, m.openPrompt(promptSearch), true
}

func (m *Model) handleGoto() (Model, tea.Cmd, bool) {
	return *m, m.openPrompt(promptGoto), true
}

func (m *Model) handleNextMatch() (Model, tea.Cmd, bool) {
	return *m, m.stepMatch(true), true
}

func (m *Model) handlePrevMatch() (Model, tea.Cmd, bool) {
	return *m, m.stepMatch(false), true
}

func (m *Model) handleTag() (Model, tea.Cmd, bool) {
	return *m, m.openTagPicker(), true
}

func (m *Model) handleUntag() (Model, tea.Cmd, bool) {
	return *m, m.openUntagPicker(), true
}

func (m *Model) handleJump() (Model, tea.Cmd, bool) {
	return *m, m.openJumpPicker(), true
}

func (m *Model) handleOpen() (Model, tea.Cmd, bool) {
	return *m, m.openDocumentPicker(), true
}

func (m *Model) handleDiff() (Model, tea.Cmd, bool) {
	return *m, m.openDiff(), true
}

func (m *Model) handleHelp() (Model, tea.Cmd, bool) {
	m.openHelp()
	return *m, nil, true
}

func (m *Model) handleToggleMode() (Model, tea.Cmd, bool) {
	next := text.ModeRaw
	if m.ann.Document().Mode() == text.ModeRaw {
		next = text.ModeHighlight
	}
	m.ann.SetMode(next)
	m.results = nil
	m.updateComponentSizes()
	return *m, m.setStatus(next.String() + " mode"), true
}

// persist drains queued saves, then writes the document and scroll
// position synchronously so the last state cannot be dropped.
func (m *Model) persist() error {
	if m.doc.id == "" {
		return nil
	}
	m.store.Flush()
	return m.store.PutDocument(store.Document{
		ID:     m.doc.id,
		Title:  m.doc.title,
		Raw:    m.ann.Text(),
		Scroll: m.ann.Viewport().LineStart,
	})
}

// flushAndQuit persists the document and scroll position, then quits.
func (m *Model) flushAndQuit() tea.Cmd {
	if err := m.persist(); err != nil {
		log.Error().Err(err).Str("doc", m.doc.id).Msg("failed to save document on quit")
	}
	return tea.Quit
}
