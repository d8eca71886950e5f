package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/research-cli/internal/credential"
	"github.com/nhle/research-cli/internal/output"
	"github.com/nhle/research-cli/internal/research"
	"github.com/nhle/research-cli/internal/theme"
	"github.com/nhle/research-cli/internal/ui"
)

const msgCancelled = "Cancelled by user."

type researchFlags struct {
	model  string
	parent string
	output string
	force  bool
}

type thinkFlags struct {
	model      string
	apiVersion string
	timeoutSec int
	output     string
	force      bool
}

func (a *app) newRunCommand() *cobra.Command {
	var flags researchFlags

	cmd := &cobra.Command{
		Use:   "run [query]",
		Short: "Start a deep research task",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runResearch(cmd, queryFrom(args), flags)
		},
	}

	cmd.Flags().StringVar(&flags.model, "model", "", "Agent model ID (default from config)")
	cmd.Flags().StringVar(&flags.parent, "parent", "", "Previous interaction ID to continue from")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Save the report to a file in the workspace")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite an existing output file")

	return cmd
}

func (a *app) newThinkCommand() *cobra.Command {
	var flags thinkFlags

	cmd := &cobra.Command{
		Use:   "think [query]",
		Short: "Start a thinking task",
		Long:  "Start a thinking task: a streamed generation with visible thought summaries.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runThink(cmd, queryFrom(args), flags)
		},
	}

	cmd.Flags().StringVar(&flags.model, "model", "", "Model ID (default from config)")
	cmd.Flags().StringVar(&flags.apiVersion, "api-version", "", "API version (default from config)")
	cmd.Flags().IntVar(&flags.timeoutSec, "timeout", 0, "Request timeout in seconds (default from config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Save the result to a file in the workspace")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite an existing output file")

	return cmd
}

func (a *app) runResearch(cmd *cobra.Command, query string, flags researchFlags) error {
	modelName := flags.model
	if modelName == "" {
		modelName = a.cfg.Model
	}

	return a.execute(cmd, flags.output, flags.force, "Report saved to",
		func(ctx context.Context, agent *research.Agent) (*research.Outcome, error) {
			return agent.RunResearch(ctx, research.ResearchRequest{
				Query:    query,
				Model:    modelName,
				ParentID: flags.parent,
			})
		})
}

func (a *app) runThink(cmd *cobra.Command, query string, flags thinkFlags) error {
	modelName := flags.model
	if modelName == "" {
		modelName = a.cfg.ThinkModel
	}
	timeout := flags.timeoutSec
	if timeout <= 0 {
		timeout = a.cfg.TimeoutSec
	}

	return a.execute(cmd, flags.output, flags.force, "Saved to",
		func(ctx context.Context, agent *research.Agent) (*research.Outcome, error) {
			return agent.RunThink(ctx, research.ThinkRequest{
				Query:      query,
				Model:      modelName,
				APIVersion: flags.apiVersion,
				Timeout:    time.Duration(timeout) * time.Second,
			})
		})
}

type runner func(ctx context.Context, agent *research.Agent) (*research.Outcome, error)

// execute resolves credentials, opens the history and runs fn behind the
// progress view. Cancellation is reported and treated as success.
func (a *app) execute(cmd *cobra.Command, outputPath string, force bool, savedPrefix string, fn runner) error {
	d := a.deps

	apiKey, _, err := credential.ResolveAPIKey(d.Credentials(a.cfg.ConfigDir), d.Getenv)
	if err != nil {
		return err
	}

	st, err := d.OpenStore(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening task history: %w", err)
	}
	defer st.Close()

	factory := d.NewClients(apiKey, a.cfg.BaseURL)
	renderer := ui.NewRenderer(d.Interactive, d.Width)

	var outcome *research.Outcome
	run := func(ctx context.Context, obs research.Observer) error {
		agent := research.NewAgent(st, factory, research.ConfigFromApp(a.cfg),
			research.WithObserver(obs))
		var runErr error
		outcome, runErr = fn(ctx, agent)
		return runErr
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if d.Interactive {
		err = ui.RunWithProgress(ctx, d.Stdin, d.Stdout, renderer, a.cfg.Verbose, run)
	} else {
		err = ui.RunPlain(ctx, d.Stdout, renderer, run)
	}

	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(d.Stdout, theme.WarnStyle.Render(msgCancelled))
		return nil
	case research.IsSetupError(err):
		// The observer has already shown the failure.
		return &silentError{err: err}
	case err != nil:
		return err
	}

	if outcome == nil || outcome.Report == "" || outputPath == "" {
		return nil
	}

	path, err := output.SaveReport(a.cfg.Workspace, outputPath, outcome.Report, force)
	if err != nil {
		return err
	}
	fmt.Fprintln(d.Stdout, theme.SuccessStyle.Render(savedPrefix+" "+path))
	return nil
}

// queryFrom joins positional arguments so unquoted multi-word queries work.
func queryFrom(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
