package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError is returned for non-2xx responses. Its message always contains
// the numeric HTTP status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an
// APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// newAPIError builds an APIError from a response body, preferring the
// structured error message when the body has one.
func newAPIError(statusCode int, body []byte) *APIError {
	var apiErr apiErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return &APIError{StatusCode: statusCode, Message: apiErr.Error.Message}
	}
	return &APIError{StatusCode: statusCode, Message: string(body)}
}
