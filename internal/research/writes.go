package research

import (
	"context"
	gosync "sync"

	"golang.org/x/sync/errgroup"

	"github.com/nhle/research-cli/internal/store"
)

// defaultWriteWorkers bounds concurrent background store writes per run.
const defaultWriteWorkers = 2

// backgroundWrites runs fire-and-forget store updates on a bounded pool
// and collects their failures. Wait must be called before any write that
// has to land after them.
type backgroundWrites struct {
	store store.Store
	group errgroup.Group

	mu   gosync.Mutex
	errs []error
}

func newBackgroundWrites(s store.Store, workers int) *backgroundWrites {
	if workers <= 0 {
		workers = defaultWriteWorkers
	}
	w := &backgroundWrites{store: s}
	w.group.SetLimit(workers)
	return w
}

// Update schedules an update of task id. Failures are kept for Wait
// instead of aborting other writes.
func (w *backgroundWrites) Update(ctx context.Context, id int64, upd store.TaskUpdate) {
	w.group.Go(func() error {
		if err := w.store.UpdateTask(ctx, id, upd); err != nil {
			w.mu.Lock()
			w.errs = append(w.errs, err)
			w.mu.Unlock()
		}
		return nil
	})
}

// Wait blocks until every scheduled write finished and returns the
// failures collected since the previous Wait.
func (w *backgroundWrites) Wait() []error {
	_ = w.group.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	errs := w.errs
	w.errs = nil
	return errs
}
