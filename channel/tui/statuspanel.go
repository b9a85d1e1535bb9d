package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/linanwx/aggrechat/session"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // dim gray
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

// StatusPanel is a one-line bar: a spinner while a request is outstanding,
// otherwise the session state, followed by the latest log line.
type StatusPanel struct {
	spinner spinner.Model
	event   session.Event
	logLine string
	width   int
}

// NewStatusPanel creates a status bar.
func NewStatusPanel() *StatusPanel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return &StatusPanel{spinner: s}
}

func (p *StatusPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case SessionMsg:
		wasBusy := p.event.Busy
		p.event = msg.Event
		if msg.Event.Busy && !wasBusy {
			return p, p.spinner.Tick
		}
		return p, nil
	case LogLineMsg:
		p.logLine = strings.TrimSpace(msg.Line)
		return p, nil
	case spinner.TickMsg:
		if !p.event.Busy {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *StatusPanel) View() string {
	var b strings.Builder
	if p.event.Busy {
		b.WriteString(p.spinner.View())
		b.WriteString(" waiting for answers")
	} else {
		b.WriteString(p.event.State.String())
	}
	if p.logLine != "" {
		b.WriteString(" | ")
		b.WriteString(p.logLine)
	}
	line := b.String()
	if p.width > 0 {
		line = runewidth.Truncate(line, p.width, "…")
	}
	return statusStyle.Render(line)
}

func (p *StatusPanel) SetSize(width, height int) {
	p.width = width
}
