package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputPanel provides a single-line text input. It keeps its text after
// Enter until the App confirms the submission was accepted.
type InputPanel struct {
	input         textinput.Model
	width, height int
}

// NewInputPanel creates an input panel with the given prompt.
func NewInputPanel(prompt string) *InputPanel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "Ask anything. ctrl+d details, ctrl+t theme, ctrl+c quit"
	ti.Focus()
	return &InputPanel{input: ti}
}

func (p *InputPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case inputResetMsg:
		p.input.Reset()
		return p, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter {
			text := p.input.Value()
			if strings.TrimSpace(text) == "" {
				return p, nil
			}
			return p, func() tea.Msg { return InputSubmitMsg{Text: text} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// Value returns the current input text.
func (p *InputPanel) Value() string {
	return p.input.Value()
}

func (p *InputPanel) View() string {
	return p.input.View()
}

func (p *InputPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(width-len(p.input.Prompt)-1, 1)
}
