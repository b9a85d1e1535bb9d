// Package tui provides a terminal user interface for a chat session.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linanwx/aggrechat/conversation"
	"github.com/linanwx/aggrechat/session"
)

// Panel is a composable TUI region with its own state, update logic, and view.
// The root App model orchestrates panels without knowing their internals.
type Panel interface {
	Update(tea.Msg) (Panel, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// LogLineMsg carries the latest log line for the status bar.
type LogLineMsg struct{ Line string }

// TurnsMsg carries a snapshot of the conversation log.
type TurnsMsg struct{ Turns []conversation.Turn }

// SessionMsg carries session flags after a change.
type SessionMsg struct{ Event session.Event }

// InputSubmitMsg is emitted when the user presses Enter in the input panel.
type InputSubmitMsg struct{ Text string }

// inputResetMsg clears the input after the session accepted it.
type inputResetMsg struct{}

// themeMsg switches the render style of the panels.
type themeMsg struct{ Theme session.Theme }

// detailsMsg replaces the diagnostics shown in the details panel.
type detailsMsg struct {
	JSON string
	Set  bool
}
