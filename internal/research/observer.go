package research

import "time"

// Kind distinguishes the two run flavours.
type Kind string

const (
	KindResearch Kind = "research"
	KindThink    Kind = "think"
)

// Observer receives user-facing progress from a run. All calls are made
// from the goroutine executing the run, in order.
type Observer interface {
	// Started is called once the remote client is ready.
	Started(kind Kind, query, model string)

	// Progress replaces the current one-line progress description.
	Progress(description string)

	// Thought delivers a full thought summary. Only called in verbose mode.
	Thought(text string)

	// PollStatus is called when the polled remote status changes.
	PollStatus(status string)

	// Retrying reports a transient polling failure and the wait before the
	// next attempt.
	Retrying(err error, wait time.Duration)

	// Warn reports a non-fatal problem, such as a failed background write.
	Warn(message string)

	// Report delivers the final report text of a completed run.
	Report(text string)

	// Failed reports a run that ended without content or an error.
	Failed(message string)

	// Error reports the error that ended a run.
	Error(prefix string, err error)
}

// NopObserver discards every notification.
type NopObserver struct{}

func (NopObserver) Started(Kind, string, string) {}
func (NopObserver) Progress(string) {}
func (NopObserver) Thought(string) {}
func (NopObserver) PollStatus(string) {}
func (NopObserver) Retrying(error, time.Duration) {}
func (NopObserver) Warn(string) {}
func (NopObserver) Report(string) {}
func (NopObserver) Failed(string) {}
func (NopObserver) Error(string, error) {}
