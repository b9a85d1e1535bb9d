package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linanwx/aggrechat/render"
	"github.com/linanwx/aggrechat/session"
)

var detailsTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

const detailsEmpty = "No diagnostics yet."

// DetailsPanel shows the diagnostics of the latest answer.
type DetailsPanel struct {
	viewport viewport.Model
	renderer *render.Renderer
	theme    session.Theme
	json     string
	set      bool
}

// NewDetailsPanel creates a details panel.
func NewDetailsPanel(renderer *render.Renderer, theme session.Theme) *DetailsPanel {
	vp := viewport.New(0, 0)
	p := &DetailsPanel{viewport: vp, renderer: renderer, theme: theme}
	p.refresh()
	return p
}

func (p *DetailsPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case detailsMsg:
		if msg.JSON == p.json && msg.Set == p.set {
			return p, nil
		}
		p.json, p.set = msg.JSON, msg.Set
		p.refresh()
		return p, nil
	case themeMsg:
		p.theme = msg.Theme
		p.refresh()
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *DetailsPanel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		detailsTitleStyle.Render("Details"),
		p.viewport.View(),
	)
}

func (p *DetailsPanel) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = max(height-1, 1)
	p.refresh()
}

func (p *DetailsPanel) refresh() {
	if !p.set {
		p.viewport.SetContent(detailsEmpty)
		return
	}
	p.viewport.SetContent(p.renderer.Render("```json\n"+p.json+"\n```", string(p.theme), p.viewport.Width))
	p.viewport.GotoTop()
}
