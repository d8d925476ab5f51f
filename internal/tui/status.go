package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusKind indicates severity for status messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

const statusTTL = 4 * time.Second

// Canonical short status messages used across the app.
const (
	MsgLoading       = "Loading gallery…"
	MsgSearching     = "Searching…"
	MsgNoResults     = "No results"
	MsgFilterCleared = "Filter cleared"
	MsgNoSearch      = "Search is not available"
	MsgNoItem        = "No item at the top of the view"
	MsgOpening       = "Opening image…"
	MsgOpened        = "Image opened"
)

func MsgResultsCount(query string, n int) string {
	if n == 1 {
		return fmt.Sprintf("1 match for %q", query)
	}
	return fmt.Sprintf("%d matches for %q", n, query)
}

// setStatus shows text in the status line and schedules its removal.
// A ttl of zero keeps it until the next status.
func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.status = text
	a.statusKind = kind
	a.statusSeq++
	if ttl <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func (a *App) clearStatus(seq int) {
	if seq == a.statusSeq {
		a.status = ""
		a.statusKind = StatusInfo
	}
}

func statusStyle(kind StatusKind) func(...string) string {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle.Render
	case StatusWarn:
		return StatusWarnStyle.Render
	case StatusError:
		return StatusErrorStyle.Render
	default:
		return StatusInfoStyle.Render
	}
}
