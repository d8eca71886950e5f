package research

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/research-cli/internal/model"
	"github.com/nhle/research-cli/internal/store"
	"github.com/nhle/research-cli/internal/testutil"
)

func TestBackgroundWritesCollectErrors(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, err := s.CreateTask(ctx, "q", "m", "")
	require.NoError(t, err)

	w := newBackgroundWrites(s, 0)
	iid := "int_1"
	w.Update(ctx, id, store.TaskUpdate{Status: model.StatusInProgress, InteractionID: &iid})
	w.Update(ctx, id+100, store.TaskUpdate{Status: model.StatusInProgress})

	errs := w.Wait()
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], store.ErrNotFound))
	assert.Empty(t, w.Wait(), "errors are reported once")

	task := testutil.MustGetTask(t, s, id)
	assert.Equal(t, model.StatusInProgress, task.Status)
	assert.Equal(t, "int_1", task.InteractionIDText())
}
