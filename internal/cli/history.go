package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/research-cli/internal/output"
	"github.com/nhle/research-cli/internal/store"
	"github.com/nhle/research-cli/internal/theme"
	"github.com/nhle/research-cli/internal/ui"
)

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent research tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.deps.OpenStore(a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening task history: %w", err)
			}
			defer st.Close()

			tasks, err := st.RecentTasks(cmd.Context(), a.cfg.RecentLimit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, theme.WarnStyle.Render("No research tasks found in history."))
				return nil
			}

			fmt.Fprintln(out, theme.HeaderStyle.Render("Recent Research Tasks"))
			fmt.Fprintln(out, ui.TaskTable(tasks, time.Now()))
			return nil
		},
	}
}

func (a *app) newShowCommand() *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show details of a research task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			st, err := a.deps.OpenStore(a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening task history: %w", err)
			}
			defer st.Close()

			task, err := st.GetTaskByID(cmd.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("task %d not found", id)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.TaskDetail(task, time.Now()))

			report := task.ReportText()
			if report == "" {
				fmt.Fprintln(out, theme.WarnStyle.Render(ui.MsgNoReport))
				return nil
			}

			fmt.Fprintln(out)
			fmt.Fprint(out, ui.NewRenderer(a.deps.Interactive, a.deps.Width).Render(report))

			if outputPath == "" {
				return nil
			}
			path, err := output.SaveReport(a.cfg.Workspace, outputPath, report, force)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, theme.SuccessStyle.Render("Report saved to "+path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Save the report to a file in the workspace")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing output file")

	return cmd
}
