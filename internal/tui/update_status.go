package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
)

// statusTTL is how long a status message stays up.
const statusTTL = 4 * time.Second

// setStatus shows an informational message and schedules its removal.
func (m *Model) setStatus(s string) tea.Cmd {
	m.status, m.statusErr = s, false
	return m.statusClearCmd()
}

// setError shows err in the status bar and logs it.
func (m *Model) setError(err error) tea.Cmd {
	log.Warn().Err(err).Str("doc", m.doc.id).Msg("annotator action failed")
	m.status, m.statusErr = err.Error(), true
	return m.statusClearCmd()
}

func (m *Model) statusClearCmd() tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

// handleStatusClear drops the status if no newer one was set.
func (m *Model) handleStatusClear(msg statusClearMsg) {
	if msg.seq == m.statusSeq {
		m.status, m.statusErr = "", false
	}
}
