package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const defaultWrap = 100

// Renderer turns markdown reports into terminal output.
type Renderer struct {
	term *glamour.TermRenderer
}

// NewRenderer builds a markdown renderer. Styled output is used only for
// terminals; otherwise reports are laid out without colors.
func NewRenderer(styled bool, width int) *Renderer {
	style := "notty"
	if styled {
		style = "dark"
	}
	if width <= 0 || width > defaultWrap {
		width = defaultWrap
	}

	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &Renderer{}
	}
	return &Renderer{term: term}
}

// Render returns md rendered for the terminal, or md itself when rendering
// fails.
func (r *Renderer) Render(md string) string {
	if r == nil || r.term == nil {
		return md
	}
	out, err := r.term.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
