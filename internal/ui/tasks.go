package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/nhle/research-cli/internal/model"
	"github.com/nhle/research-cli/internal/theme"
)

const (
	queryColumnWidth = 50
	ellipsis         = "..."
	emptyCell        = "-"

	// MsgNoReport is shown for tasks without stored report text.
	MsgNoReport = "No report content available for this task."
)

// TruncateQuery flattens q onto one line and cuts it to width display
// columns.
func TruncateQuery(q string, width int) string {
	q = strings.Join(strings.Fields(q), " ")
	return runewidth.Truncate(q, width, ellipsis)
}

// TaskTable renders tasks as a table, newest first as given.
func TaskTable(tasks []model.Task, now time.Time) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			TruncateQuery(t.Query, queryColumnWidth),
			string(t.Status),
			humanize.RelTime(t.CreatedAt, now, "ago", "from now"),
			orDash(t.InteractionIDText()),
		})
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("ID", "Query", "Status", "Created", "Interaction").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(tasks) {
				return theme.StatusStyle(tasks[row].Status).Padding(0, 1)
			}
			return cellStyle
		})

	return t.Render()
}

// TaskDetail renders the metadata panel shown above a task's report.
func TaskDetail(t *model.Task, now time.Time) string {
	parent := ""
	if t.ParentID != nil {
		parent = *t.ParentID
	}

	lines := []string{
		theme.HeaderStyle.Render(fmt.Sprintf("Task %d", t.ID)),
		field("Query", t.Query),
		field("Model", t.Model),
		theme.LabelStyle.Render("Status:") + " " + theme.StatusStyle(t.Status).Render(string(t.Status)),
		field("Created", fmt.Sprintf("%s (%s)",
			t.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			humanize.RelTime(t.CreatedAt, now, "ago", "from now"))),
		field("Interaction", orDash(t.InteractionIDText())),
		field("Parent", orDash(parent)),
	}
	return theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func field(label, value string) string {
	return theme.LabelStyle.Render(label+":") + " " + value
}

func orDash(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}
