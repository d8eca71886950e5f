package research

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/nhle/research-cli/internal/gemini"
	"github.com/nhle/research-cli/internal/model"
	"github.com/nhle/research-cli/internal/store"
)

// eventsOf builds a stream from events and errors. An error ends the
// stream.
func eventsOf(items ...any) iter.Seq2[gemini.Event, error] {
	return func(yield func(gemini.Event, error) bool) {
		for _, item := range items {
			switch v := item.(type) {
			case gemini.Event:
				if !yield(v, nil) {
					return
				}
			case error:
				yield(gemini.Event{}, v)
				return
			}
		}
	}
}

func idEvent(id string) gemini.Event {
	return gemini.Event{Interaction: &gemini.InteractionRef{ID: id}}
}

func thoughtEvent(text string) gemini.Event {
	return gemini.Event{Thought: gemini.Thought(text)}
}

func textEvent(parts ...string) gemini.Event {
	content := &gemini.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, gemini.Part{Text: p})
	}
	return gemini.Event{Content: content}
}

type recordingObserver struct {
	mu        sync.Mutex
	started   []Kind
	progress  []string
	thoughts  []string
	statuses  []string
	retries   []time.Duration
	warnings  []string
	reports   []string
	failures  []string
	errPrefix []string
}

func (o *recordingObserver) Started(kind Kind, _, _ string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, kind)
}

func (o *recordingObserver) Progress(desc string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = append(o.progress, desc)
}

func (o *recordingObserver) Thought(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.thoughts = append(o.thoughts, text)
}

func (o *recordingObserver) PollStatus(status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func (o *recordingObserver) Retrying(_ error, wait time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retries = append(o.retries, wait)
}

func (o *recordingObserver) Warn(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.warnings = append(o.warnings, msg)
}

func (o *recordingObserver) Report(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, text)
}

func (o *recordingObserver) Failed(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, msg)
}

func (o *recordingObserver) Error(prefix string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errPrefix = append(o.errPrefix, prefix)
}

// sleepRecorder returns immediately and remembers every requested wait.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

// countingStore counts IN_PROGRESS updates and can fail them.
type countingStore struct {
	store.Store

	mu           sync.Mutex
	inProgress   int
	failProgress error
}

func (s *countingStore) UpdateTask(ctx context.Context, id int64, upd store.TaskUpdate) error {
	if upd.Status == model.StatusInProgress {
		s.mu.Lock()
		s.inProgress++
		fail := s.failProgress
		s.mu.Unlock()
		if fail != nil {
			return fail
		}
	}
	return s.Store.UpdateTask(ctx, id, upd)
}

func (s *countingStore) InProgressWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inProgress
}

// gatedStore holds IN_PROGRESS updates until release is closed and records
// the order in which updates return or start.
type gatedStore struct {
	store.Store
	release chan struct{}

	mu    sync.Mutex
	calls []string
}

func (s *gatedStore) UpdateTask(ctx context.Context, id int64, upd store.TaskUpdate) error {
	if upd.Status == model.StatusInProgress {
		<-s.release
		err := s.Store.UpdateTask(ctx, id, upd)
		s.record("in_progress returned")
		return err
	}
	s.record(string(upd.Status) + " issued")
	return s.Store.UpdateTask(ctx, id, upd)
}

func (s *gatedStore) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *gatedStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
