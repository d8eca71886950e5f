package store

import (
	"context"
	"errors"

	"github.com/nhle/research-cli/internal/model"
)

var (
	// ErrNotFound is returned when no task has the requested ID.
	ErrNotFound = errors.New("task not found")

	// ErrTaskFinal is returned when an update targets a task that already
	// reached a terminal status. The stored record is left untouched.
	ErrTaskFinal = errors.New("task already in a terminal state")
)

// TaskUpdate is a partial update of a task record. Nil fields are left
// untouched.
type TaskUpdate struct {
	Status model.Status

	// Report replaces the stored report text when set.
	Report *string

	// InteractionID is written only if the record has none yet.
	InteractionID *string
}

// Store defines the persistence interface for research task records.
type Store interface {
	// CreateTask inserts a PENDING record and returns its ID. An empty
	// parentID is stored as NULL.
	CreateTask(ctx context.Context, query, modelName, parentID string) (int64, error)

	// UpdateTask applies upd to the task. Terminal records are never
	// modified.
	UpdateTask(ctx context.Context, id int64, upd TaskUpdate) error

	GetTaskByID(ctx context.Context, id int64) (*model.Task, error)

	// RecentTasks returns up to limit tasks, newest first.
	RecentTasks(ctx context.Context, limit int) ([]model.Task, error)

	Close() error
}
