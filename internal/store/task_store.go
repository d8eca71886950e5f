package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/research-cli/internal/model"
)

const taskColumns = `id, interaction_id, parent_id, query, model, status, report, created_at`

// CreateTask inserts a new PENDING task and returns its ID.
func (s *SQLiteStore) CreateTask(
	ctx context.Context,
	query, modelName, parentID string,
) (int64, error) {
	var parent *string
	if parentID != "" {
		parent = &parentID
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO research_tasks (query, model, parent_id, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		query, modelName, parent, string(model.StatusPending), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("creating task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading new task id: %w", err)
	}
	return id, nil
}

// UpdateTask applies a partial update. The status moves forward only: a
// task that is already COMPLETED, FAILED or ERROR is left as it is and
// ErrTaskFinal is returned. The interaction id is written only when the
// record does not have one.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, upd TaskUpdate) error {
	if upd.Status == "" {
		return fmt.Errorf("updating task %d: status must not be empty", id)
	}

	sets := []string{"status = ?"}
	args := []interface{}{string(upd.Status)}

	if upd.Report != nil {
		sets = append(sets, "report = ?")
		args = append(args, *upd.Report)
	}
	if upd.InteractionID != nil && *upd.InteractionID != "" {
		sets = append(sets, "interaction_id = COALESCE(interaction_id, ?)")
		args = append(args, *upd.InteractionID)
	}

	terminal := make([]string, 0, len(model.TerminalStatuses))
	for _, st := range model.TerminalStatuses {
		terminal = append(terminal, string(st))
	}
	args = append(args, id, terminal)

	query, args, err := sqlx.In(
		"UPDATE research_tasks SET "+strings.Join(sets, ", ")+
			" WHERE id = ? AND status NOT IN (?)",
		args...,
	)
	if err != nil {
		return fmt.Errorf("building update for task %d: %w", id, err)
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	var exists int
	err = s.db.GetContext(ctx, &exists,
		"SELECT COUNT(*) FROM research_tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("checking task %d: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("updating task %d: %w", id, ErrNotFound)
	}
	return fmt.Errorf("updating task %d to %s: %w", id, upd.Status, ErrTaskFinal)
}

// GetTaskByID retrieves a single task by its ID.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	err := s.db.GetContext(ctx, &task,
		"SELECT "+taskColumns+" FROM research_tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}
	return &task, nil
}

// RecentTasks returns up to limit tasks ordered by creation time, newest
// first.
func (s *SQLiteStore) RecentTasks(ctx context.Context, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = model.DefaultRecentLimit
	}

	var tasks []model.Task
	err := s.db.SelectContext(ctx, &tasks,
		"SELECT "+taskColumns+" FROM research_tasks ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent tasks: %w", err)
	}
	return tasks, nil
}
