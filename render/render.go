// Package render turns display text (Markdown) into terminal output.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/linanwx/aggrechat/logger"
)

const defaultWordWrap = 80

type rendererKey struct {
	style string
	width int
}

// Renderer renders Markdown with glamour, caching one term renderer per
// style and width.
type Renderer struct {
	mu    sync.Mutex
	cache map[rendererKey]*glamour.TermRenderer
}

// NewRenderer creates an empty renderer cache.
func NewRenderer() *Renderer {
	return &Renderer{cache: make(map[rendererKey]*glamour.TermRenderer)}
}

// Render formats markdown for a terminal using the "dark" or "light" style.
// On any glamour error the input is returned unchanged.
func (r *Renderer) Render(markdown, style string, width int) string {
	if strings.TrimSpace(markdown) == "" {
		return markdown
	}
	tr, err := r.termRenderer(style, width)
	if err != nil {
		logger.Warn("markdown renderer unavailable", "style", style, "err", err)
		return markdown
	}
	out, err := tr.Render(markdown)
	if err != nil {
		logger.Warn("markdown render failed", "err", err)
		return markdown
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) termRenderer(style string, width int) (*glamour.TermRenderer, error) {
	if style != "light" {
		style = "dark"
	}
	if width <= 0 {
		width = defaultWordWrap
	}
	key := rendererKey{style: style, width: width}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tr, ok := r.cache[key]; ok {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.cache[key] = tr
	return tr, nil
}
