package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linanwx/aggrechat/render"
	"github.com/linanwx/aggrechat/session"
)

const defaultDetailsRatio = 0.35

var separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// Session is the part of the session controller the App drives.
type Session interface {
	Submit(ctx context.Context, text string) bool
	ToggleTheme() session.Theme
	ToggleDetails() bool
	Theme() session.Theme
	DetailsVisible() bool
	Diagnostics() *session.DiagnosticsStore
}

// Options configures the App.
type Options struct {
	WordWrap int
}

// App is the root bubbletea model that orchestrates panels and layout.
type App struct {
	ctx     context.Context
	session Session

	chatPanel    Panel
	detailsPanel Panel
	statusPanel  Panel
	inputPanel   Panel

	showDetails   bool
	width, height int
	detailsRatio  float64
}

// NewApp creates the root TUI model with default panels.
func NewApp(ctx context.Context, s Session, opts Options) *App {
	renderer := render.NewRenderer()
	theme := s.Theme()
	return &App{
		ctx:          ctx,
		session:      s,
		chatPanel:    NewChatPanel(renderer, theme, opts.WordWrap),
		detailsPanel: NewDetailsPanel(renderer, theme),
		statusPanel:  NewStatusPanel(),
		inputPanel:   NewInputPanel("you> "),
		showDetails:  s.DetailsVisible(),
		detailsRatio: defaultDetailsRatio,
	}
}

func (m *App) Init() tea.Cmd {
	return textinput.Blink
}

func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyCtrlD:
			m.session.ToggleDetails()
			return m, nil
		case tea.KeyCtrlT:
			m.session.ToggleTheme()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			cmds = append(cmds, m.updatePanel(&m.chatPanel, msg))
			return m, tea.Batch(cmds...)
		}
		// All other keys go to input panel.
		cmds = append(cmds, m.updatePanel(&m.inputPanel, msg))

	case tea.MouseMsg:
		cmds = append(cmds, m.updatePanel(&m.chatPanel, msg))

	case InputSubmitMsg:
		cmds = append(cmds, m.submit(msg.Text))

	case TurnsMsg:
		cmds = append(cmds, m.updatePanel(&m.chatPanel, msg))
		cmds = append(cmds, m.updatePanel(&m.detailsPanel, m.details()))

	case SessionMsg:
		cmds = append(cmds, m.updatePanel(&m.statusPanel, msg))
		tm := themeMsg{Theme: msg.Event.Theme}
		cmds = append(cmds, m.updatePanel(&m.chatPanel, tm))
		cmds = append(cmds, m.updatePanel(&m.detailsPanel, tm))
		if msg.Event.ShowDetails != m.showDetails {
			m.showDetails = msg.Event.ShowDetails
			m.recalcLayout()
		}

	case LogLineMsg:
		cmds = append(cmds, m.updatePanel(&m.statusPanel, msg))

	default:
		// Spinner ticks go to the status bar; the rest (e.g. cursor blink)
		// to the input panel.
		cmds = append(cmds, m.updatePanel(&m.statusPanel, msg))
		cmds = append(cmds, m.updatePanel(&m.inputPanel, msg))
	}

	return m, tea.Batch(cmds...)
}

// submit handles a line from the input panel. Slash commands are handled
// locally; everything else goes to the session.
func (m *App) submit(text string) tea.Cmd {
	switch strings.TrimSpace(text) {
	case "exit", "quit", "/exit", "/quit":
		return tea.Quit
	case "/details":
		m.session.ToggleDetails()
		return m.updatePanel(&m.inputPanel, inputResetMsg{})
	case "/theme":
		m.session.ToggleTheme()
		return m.updatePanel(&m.inputPanel, inputResetMsg{})
	}
	if !m.session.Submit(m.ctx, text) {
		return nil
	}
	return m.updatePanel(&m.inputPanel, inputResetMsg{})
}

func (m *App) details() detailsMsg {
	diag, ok := m.session.Diagnostics().Get()
	if !ok {
		return detailsMsg{}
	}
	return detailsMsg{JSON: diag.JSON(), Set: true}
}

func (m *App) updatePanel(p *Panel, msg tea.Msg) tea.Cmd {
	next, cmd := (*p).Update(msg)
	*p = next
	return cmd
}

func (m *App) View() string {
	if m.width == 0 || m.height == 0 {
		return "initializing..."
	}

	sep := separatorStyle.Render(strings.Repeat("─", m.width))

	parts := []string{m.chatPanel.View(), sep}
	if m.showDetails {
		parts = append(parts, m.detailsPanel.View(), sep)
	}
	parts = append(parts, m.statusPanel.View(), m.inputPanel.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *App) recalcLayout() {
	const inputH = 1
	const statusH = 1

	seps := 1
	if m.showDetails {
		seps = 2
	}
	usable := max(m.height-inputH-statusH-seps, 2)
	detailsH := 0
	if m.showDetails {
		detailsH = max(int(float64(usable)*m.detailsRatio), 2)
	}
	chatH := max(usable-detailsH, 1)

	m.chatPanel.SetSize(m.width, chatH)
	if m.showDetails {
		m.detailsPanel.SetSize(m.width, detailsH)
	}
	m.statusPanel.SetSize(m.width, statusH)
	m.inputPanel.SetSize(m.width, inputH)
}
