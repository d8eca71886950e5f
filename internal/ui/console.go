package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/research-cli/internal/research"
	"github.com/nhle/research-cli/internal/theme"
)

// Console is a line-oriented research.Observer for pipes, logs and
// terminals where the live view is disabled.
type Console struct {
	out      io.Writer
	renderer *Renderer
	lastDesc string
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer, renderer *Renderer) *Console {
	return &Console{out: out, renderer: renderer}
}

var _ research.Observer = (*Console)(nil)

func (c *Console) Started(kind research.Kind, query, modelName string) {
	fmt.Fprintln(c.out, Banner(kind, query, modelName))
}

// Progress prints the description when it differs from the previous one.
func (c *Console) Progress(desc string) {
	desc = firstLine(desc)
	if desc == "" || desc == c.lastDesc {
		return
	}
	c.lastDesc = desc
	fmt.Fprintln(c.out, theme.HelpStyle.Render("» "+desc))
}

func (c *Console) Thought(text string) {
	fmt.Fprintln(c.out, theme.ThoughtStyle.Render(text))
}

func (c *Console) PollStatus(status string) {
	fmt.Fprintln(c.out, StatusLine(status))
}

func (c *Console) Retrying(err error, wait time.Duration) {
	fmt.Fprintln(c.out, RetryLine(err, wait))
}

func (c *Console) Warn(msg string) {
	fmt.Fprintln(c.out, theme.WarnStyle.Render("Warning: "+msg))
}

func (c *Console) Report(text string) {
	fmt.Fprintln(c.out)
	fmt.Fprint(c.out, c.renderer.Render(text))
}

func (c *Console) Failed(msg string) {
	fmt.Fprintln(c.out, theme.ErrorStyle.Render(msg))
}

func (c *Console) Error(prefix string, err error) {
	fmt.Fprintln(c.out, ErrorLine(prefix, err))
}

// Banner renders the panel shown when a run starts.
func Banner(kind research.Kind, query, modelName string) string {
	title := "Research"
	if kind == research.KindThink {
		title = "Think"
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.HeaderStyle.Render(title)+" "+theme.HelpStyle.Render(modelName),
		query,
	)
	return theme.PanelStyle.Render(body)
}

func StatusLine(status string) string {
	return theme.LabelStyle.Render("Status:") + " " + status
}

func RetryLine(err error, wait time.Duration) string {
	return theme.WarnStyle.Render(fmt.Sprintf(
		"Server error (%v). Retrying in %s...", err, wait.Round(100*time.Millisecond)))
}

func ErrorLine(prefix string, err error) string {
	if err == nil {
		return theme.ErrorStyle.Render(prefix)
	}
	return theme.ErrorStyle.Render(prefix+":") + " " + err.Error()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
