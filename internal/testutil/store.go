// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/nhle/research-cli/internal/model"
	"github.com/nhle/research-cli/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// MustGetTask loads a task or fails the test.
func MustGetTask(t *testing.T, s store.Store, id int64) *model.Task {
	t.Helper()

	task, err := s.GetTaskByID(context.Background(), id)
	if err != nil {
		t.Fatalf("getting task %d: %v", id, err)
	}
	return task
}
