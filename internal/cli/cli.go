// Package cli wires configuration, storage, credentials and the research
// agent into the command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/research-cli/internal/credential"
	"github.com/nhle/research-cli/internal/model"
	"github.com/nhle/research-cli/internal/research"
	"github.com/nhle/research-cli/internal/store"
	"github.com/nhle/research-cli/internal/theme"
	"github.com/nhle/research-cli/internal/ui"
)

// thinkBinary is the program name that makes think the default command.
const thinkBinary = "think"

// Deps are the collaborators a command needs. Tests replace them.
type Deps struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive enables the live progress view and prompts.
	Interactive bool
	Width       int

	Getenv    func(string) string
	ConfigDir string

	OpenStore   func(path string) (store.Store, error)
	Credentials func(configDir string) *credential.Store
	NewClients  func(apiKey, baseURL string) research.ClientFactory

	// PromptSecret asks for a secret on the terminal.
	PromptSecret func(title string) (string, error)
}

// DefaultDeps returns the production collaborators bound to the process.
func DefaultDeps() *Deps {
	return &Deps{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: ui.IsTerminal(os.Stdout) && ui.IsTerminal(os.Stdin),
		Width:       ui.Width(os.Stdout, 100),
		Getenv:      os.Getenv,
		ConfigDir:   model.DefaultConfigDir(),
		OpenStore: func(path string) (store.Store, error) {
			return store.NewSQLiteStore(path)
		},
		Credentials:  credential.NewStore,
		NewClients:   research.NewGeminiFactory,
		PromptSecret: promptSecret,
	}
}

// silentError ends the process with a failure exit code after the cause
// has already been shown.
type silentError struct {
	err error
}

func (e *silentError) Error() string { return e.err.Error() }
func (e *silentError) Unwrap() error { return e.err }

// app carries per-invocation state shared by subcommands.
type app struct {
	deps  *Deps
	cfg   *model.AppConfig
	debug bool
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string, deps *Deps) *cobra.Command {
	a := &app{deps: deps}

	cmd := &cobra.Command{
		Use:   "research [query]",
		Short: "Run deep research and thinking queries from the terminal",
		Long: `research submits long-running research and thinking queries to the
Gemini API, streams their progress and keeps a local history of every task.

Running it with a bare query starts a research task. Installed as "think",
a bare query starts a thinking task instead.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return a.runResearch(cmd, queryFrom(args), researchFlags{})
	}

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&deps.ConfigDir, "config-dir", deps.ConfigDir,
		"Directory holding config.yaml, .env and the task history")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		slog.SetDefault(newLogger(deps.Stderr, a.debug))

		cfg, err := model.LoadConfig(deps.ConfigDir)
		if err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}

	cmd.AddCommand(a.newRunCommand())
	cmd.AddCommand(a.newThinkCommand())
	cmd.AddCommand(a.newListCommand())
	cmd.AddCommand(a.newShowCommand())
	cmd.AddCommand(a.newAuthCommand())

	return cmd
}

// newLogger returns the process logger. Diagnostics are only written with
// --debug; user-facing messages go through the observer.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// routeArgs makes think the default subcommand when the binary is invoked
// as "think" with a bare query.
func routeArgs(binary string, args []string) []string {
	if binary != thinkBinary || len(args) == 0 {
		return args
	}

	known := []string{"run", "think", "list", "show", "auth", "help", "completion",
		"-h", "--help", "-v", "--version"}
	if slices.Contains(known, args[0]) {
		return args
	}
	return append([]string{"think"}, args...)
}

// Execute runs the CLI against the process arguments and returns the exit
// code.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := DefaultDeps()
	cmd := NewRootCommand(version, deps)
	cmd.SetArgs(routeArgs(filepath.Base(os.Args[0]), os.Args[1:]))

	if err := cmd.ExecuteContext(ctx); err != nil {
		var silent *silentError
		if !errors.As(err, &silent) {
			fmt.Fprintln(deps.Stderr, theme.ErrorStyle.Render("Error:")+" "+err.Error())
		}
		return 1
	}
	return 0
}
