package model

import "time"

// Status is the lifecycle state of a task record.
type Status string

// Task lifecycle states. PENDING moves to IN_PROGRESS once the remote
// interaction is known, then to exactly one of the terminal states.
const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusError      Status = "ERROR"
)

// IsTerminal reports whether s is one of COMPLETED, FAILED or ERROR.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusError:
		return true
	default:
		return false
	}
}

// TerminalStatuses lists the states a task never leaves.
var TerminalStatuses = []Status{StatusCompleted, StatusFailed, StatusError}

// Task is the local audit record for one invocation against the remote service.
type Task struct {
	// ID is assigned by the store on creation and never reused.
	ID int64 `db:"id" json:"id"`

	// InteractionID is the remote-assigned identifier. Empty until the
	// service announces it; written at most once.
	InteractionID *string `db:"interaction_id" json:"interaction_id,omitempty"`

	// ParentID references a previous interaction for conversational
	// continuation.
	ParentID *string `db:"parent_id" json:"parent_id,omitempty"`

	// Query is the original user input.
	Query string `db:"query" json:"query"`

	// Model identifies the remote agent or model that was invoked.
	Model string `db:"model" json:"model"`

	Status Status `db:"status" json:"status"`

	// Report holds the accumulated report text, or a fixed diagnostic
	// message for errored runs.
	Report *string `db:"report" json:"report,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReportText returns the report or an empty string when none was stored.
func (t Task) ReportText() string {
	if t.Report == nil {
		return ""
	}
	return *t.Report
}

// InteractionIDText returns the interaction id or an empty string.
func (t Task) InteractionIDText() string {
	if t.InteractionID == nil {
		return ""
	}
	return *t.InteractionID
}
