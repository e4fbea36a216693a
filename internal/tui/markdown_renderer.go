package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minDescriptionWidth keeps narrow terminals readable.
const minDescriptionWidth = 24

// markdownRenderer renders board descriptions, rebuilding the glamour renderer
// only when the wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

// render returns description as styled terminal text. Renderer failures fall
// back to the raw markdown.
func (r *markdownRenderer) render(description string, width int) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	width = max(width, minDescriptionWidth)
	if r.renderer == nil || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return description
		}
		r.renderer = renderer
		r.width = width
		r.cache = map[string]string{}
	}
	if out, ok := r.cache[description]; ok {
		return out
	}
	out, err := r.renderer.Render(description)
	if err != nil {
		return description
	}
	out = strings.Trim(out, "\n")
	r.cache[description] = out
	return out
}
