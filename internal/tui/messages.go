package tui

// ---------------------------------------------------------------------------
// ELM messages
// ---------------------------------------------------------------------------

// statusClearMsg clears the status line unless a newer status replaced it.
type statusClearMsg struct{ seq int }
