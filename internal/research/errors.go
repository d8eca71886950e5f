package research

import (
	"errors"
	"strings"
)

// Diagnostic messages stored as the report of errored tasks.
const (
	MsgClientInit     = "Client initialization failed"
	MsgResearchFailed = "Research execution failed"
	MsgThinkFailed    = "Execution failed"
)

// Error is a setup failure the caller must act on, such as a remote client
// that cannot be constructed. Execution failures are never returned as
// errors; they are recorded on the task instead.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsSetupError reports whether err (or any error in its chain) is an Error.
func IsSetupError(err error) bool {
	var rErr *Error
	return errors.As(err, &rErr)
}

// IsTransient reports whether a polling failure looks like a temporary
// server-side problem worth retrying. The classification matches "500" or
// "503" anywhere in the error text; every retry decision goes through here.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "500") || strings.Contains(msg, "503")
}
