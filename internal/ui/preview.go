package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

const defaultGlamourStyle = "dark"

// markdownRenderer caches a glamour renderer per style and wrap width.
type markdownRenderer struct {
	style string
	width int
	term  *glamour.TermRenderer
}

func newMarkdownRenderer(style string) *markdownRenderer {
	style = strings.TrimSpace(style)
	if style == "" {
		style = defaultGlamourStyle
	}
	return &markdownRenderer{style: style}
}

func (r *markdownRenderer) styleOption() glamour.TermRendererOption {
	switch strings.ToLower(r.style) {
	case "dark", "light", "notty", "dracula", "pink", "ascii", "tokyo-night":
		return glamour.WithStylePath(strings.ToLower(r.style))
	}
	if _, err := os.Stat(r.style); err == nil {
		return glamour.WithStylesFromJSONFile(r.style)
	}
	return glamour.WithStylePath(defaultGlamourStyle)
}

// Render renders markdown wrapped to width. Rendering errors fall back to the
// raw text so the preview never goes blank.
func (r *markdownRenderer) Render(markdown string, width int) (string, error) {
	if width < 10 {
		width = 10
	}
	if r.term == nil || r.width != width {
		term, err := glamour.NewTermRenderer(
			r.styleOption(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return markdown, err
		}
		r.term = term
		r.width = width
	}
	out, err := r.term.Render(markdown)
	if err != nil {
		return markdown, err
	}
	return out, nil
}
