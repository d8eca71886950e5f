package research

import (
	"strings"

	"github.com/nhle/research-cli/internal/gemini"
)

// Update describes what a single event contributed.
type Update struct {
	// NewInteractionID is set only on the first event that announces an
	// interaction id.
	NewInteractionID string

	// Thought is the progress summary carried by the event, if any.
	Thought string

	// Fragments is the number of text fragments appended.
	Fragments int
}

// Accumulator folds stream events into report text, the first announced
// interaction id and the latest progress description. It is owned by a
// single run and is not safe for concurrent use.
type Accumulator struct {
	parts         []string
	interactionID string
	description   string
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Apply consumes one event. Absent fields contribute nothing; later
// interaction ids are ignored once one has been recorded.
func (a *Accumulator) Apply(ev gemini.Event) Update {
	var u Update

	if id := ev.InteractionID(); id != "" && a.interactionID == "" {
		a.interactionID = id
		u.NewInteractionID = id
	}

	if thought := strings.TrimSpace(string(ev.Thought)); thought != "" {
		a.description = thought
		u.Thought = thought
	}

	for _, text := range ev.Fragments() {
		a.parts = append(a.parts, text)
		u.Fragments++
	}

	return u
}

// Append adds text recovered outside the stream. Empty text is ignored.
func (a *Accumulator) Append(text string) {
	if text != "" {
		a.parts = append(a.parts, text)
	}
}

// Text returns the fragments concatenated in arrival order.
func (a *Accumulator) Text() string {
	return strings.Join(a.parts, "")
}

// Empty reports whether no text has been accumulated.
func (a *Accumulator) Empty() bool {
	return len(a.parts) == 0
}

func (a *Accumulator) InteractionID() string {
	return a.interactionID
}

// Description returns the most recent thought summary.
func (a *Accumulator) Description() string {
	return a.description
}
