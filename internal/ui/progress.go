package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/nhle/research-cli/internal/keys"
	"github.com/nhle/research-cli/internal/research"
	"github.com/nhle/research-cli/internal/theme"
)

// Messages sent from the run goroutine to the progress view.
type (
	startedMsg struct {
		kind  research.Kind
		query string
		model string
	}
	descriptionMsg string
	thoughtMsg     string
	statusMsg      string
	lineMsg        string
	doneMsg        struct{}
)

// progressModel is the live spinner shown while a run is in flight.
type progressModel struct {
	spinner      spinner.Model
	help         help.Model
	keys         *keys.KeyMap
	cancel       context.CancelFunc
	verbose      bool
	showThoughts bool
	description  string
	status       string
	started      time.Time
	width        int
	cancelling   bool
	done         bool
}

func newProgressModel(cancel context.CancelFunc, verbose bool) progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.SpinnerStyle

	km := keys.DefaultKeyMap()
	km.ToggleThoughts.SetEnabled(verbose)

	return progressModel{
		spinner:      sp,
		help:         help.New(),
		keys:         km,
		cancel:       cancel,
		verbose:      verbose,
		showThoughts: verbose,
		description:  "Starting...",
		started:      time.Now(),
		width:        80,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			if !m.cancelling {
				m.cancelling = true
				m.description = "Cancelling..."
				m.cancel()
			}
			return m, nil
		case key.Matches(msg, m.keys.ToggleThoughts):
			m.showThoughts = !m.showThoughts
			return m, nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startedMsg:
		m.started = time.Now()
		return m, tea.Println(Banner(msg.kind, msg.query, msg.model))

	case descriptionMsg:
		if !m.cancelling {
			if desc := firstLine(string(msg)); desc != "" {
				m.description = desc
			}
		}
		return m, nil

	case thoughtMsg:
		if m.showThoughts {
			return m, tea.Println(theme.ThoughtStyle.Render(string(msg)))
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, tea.Println(StatusLine(string(msg)))

	case lineMsg:
		return m, tea.Println(string(msg))

	case doneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	elapsed := time.Since(m.started).Round(time.Second)
	suffix := fmt.Sprintf(" (%s)", elapsed)
	if m.status != "" {
		suffix = fmt.Sprintf(" [%s %s]", m.status, elapsed)
	}

	avail := m.width - runewidth.StringWidth(suffix) - 4
	if avail < 10 {
		avail = 10
	}
	desc := runewidth.Truncate(m.description, avail, "...")

	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(desc)
	b.WriteString(theme.HelpStyle.Render(suffix))
	b.WriteString("\n")

	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// progressObserver forwards run notifications to the live view. Report,
// failure and error output is deferred until the view has exited so it is
// not interleaved with the spinner.
type progressObserver struct {
	send    func(tea.Msg)
	console *Console

	mu       sync.Mutex
	deferred []func()
}

func (o *progressObserver) Started(kind research.Kind, query, modelName string) {
	o.send(startedMsg{kind: kind, query: query, model: modelName})
}

func (o *progressObserver) Progress(desc string) {
	o.send(descriptionMsg(desc))
}

func (o *progressObserver) Thought(text string) {
	o.send(thoughtMsg(text))
}

func (o *progressObserver) PollStatus(status string) {
	o.send(statusMsg(status))
}

func (o *progressObserver) Retrying(err error, wait time.Duration) {
	o.send(lineMsg(RetryLine(err, wait)))
}

func (o *progressObserver) Warn(msg string) {
	o.send(lineMsg(theme.WarnStyle.Render("Warning: " + msg)))
}

func (o *progressObserver) Report(text string) {
	o.later(func() { o.console.Report(text) })
}

func (o *progressObserver) Failed(msg string) {
	o.later(func() { o.console.Failed(msg) })
}

func (o *progressObserver) Error(prefix string, err error) {
	o.later(func() { o.console.Error(prefix, err) })
}

func (o *progressObserver) later(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deferred = append(o.deferred, fn)
}

func (o *progressObserver) flush() {
	o.mu.Lock()
	fns := o.deferred
	o.deferred = nil
	o.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// RunFunc executes one run against the given observer.
type RunFunc func(ctx context.Context, obs research.Observer) error

// RunWithProgress runs fn behind the live spinner. Pressing ctrl+c cancels
// the context handed to fn; the view stays up until fn returns.
func RunWithProgress(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	renderer *Renderer,
	verbose bool,
	fn RunFunc,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(
		newProgressModel(cancel, verbose),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	obs := &progressObserver{
		send:    program.Send,
		console: NewConsole(out, renderer),
	}

	errCh := make(chan error, 1)
	go func() {
		err := fn(ctx, obs)
		program.Send(doneMsg{})
		errCh <- err
	}()

	_, uiErr := program.Run()
	if uiErr != nil {
		// The view failed; stop the run and still wait for it to unwind.
		cancel()
	}
	err := <-errCh
	obs.flush()

	if err != nil {
		return err
	}
	if uiErr != nil {
		return fmt.Errorf("running progress view: %w", uiErr)
	}
	return nil
}

// RunPlain runs fn with the line-oriented Console.
func RunPlain(ctx context.Context, out io.Writer, renderer *Renderer, fn RunFunc) error {
	return fn(ctx, NewConsole(out, renderer))
}
