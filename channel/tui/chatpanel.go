package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linanwx/aggrechat/conversation"
	"github.com/linanwx/aggrechat/render"
	"github.com/linanwx/aggrechat/session"
)

var userMsgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan

type renderedTurn struct {
	source conversation.Turn
	out    string
}

// ChatPanel displays the conversation in a scrollable viewport. Respondent
// turns are rendered as Markdown; each turn is re-rendered only when its
// content changes.
type ChatPanel struct {
	viewport viewport.Model
	renderer *render.Renderer
	theme    session.Theme
	wordWrap int
	turns    []conversation.Turn
	cache    []renderedTurn
}

// NewChatPanel creates a chat panel. wordWrap 0 wraps at the panel width.
func NewChatPanel(renderer *render.Renderer, theme session.Theme, wordWrap int) *ChatPanel {
	vp := viewport.New(0, 0)
	vp.SetContent("")
	return &ChatPanel{
		viewport: vp,
		renderer: renderer,
		theme:    theme,
		wordWrap: wordWrap,
	}
}

func (p *ChatPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case TurnsMsg:
		p.turns = msg.Turns
		p.refresh()
		return p, nil
	case themeMsg:
		if msg.Theme != p.theme {
			p.theme = msg.Theme
			p.cache = nil
			p.refresh()
		}
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *ChatPanel) View() string {
	return p.viewport.View()
}

func (p *ChatPanel) SetSize(width, height int) {
	if width != p.viewport.Width {
		p.cache = nil
	}
	p.viewport.Width = width
	p.viewport.Height = height
	p.refresh()
}

func (p *ChatPanel) refresh() {
	if len(p.cache) > len(p.turns) {
		p.cache = p.cache[:len(p.turns)]
	}
	blocks := make([]string, len(p.turns))
	for i, turn := range p.turns {
		if i < len(p.cache) && p.cache[i].source == turn {
			blocks[i] = p.cache[i].out
			continue
		}
		out := p.renderTurn(turn)
		if i < len(p.cache) {
			p.cache[i] = renderedTurn{source: turn, out: out}
		} else {
			p.cache = append(p.cache, renderedTurn{source: turn, out: out})
		}
		blocks[i] = out
	}
	p.viewport.SetContent(strings.Join(blocks, "\n\n"))
	p.viewport.GotoBottom()
}

func (p *ChatPanel) renderTurn(turn conversation.Turn) string {
	if turn.Role == conversation.RoleAuthor {
		return userMsgStyle.Render("> " + turn.Content)
	}
	width := p.wordWrap
	if width <= 0 {
		width = p.viewport.Width
	}
	return p.renderer.Render(turn.Content, string(p.theme), width)
}
