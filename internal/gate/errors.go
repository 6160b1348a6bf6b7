package gate

import (
	"errors"
	"fmt"
)

// FetchError is the only error kind a StatusFetcher reports to the gate.
// Message is shown to the user as-is.
type FetchError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewFetchError wraps cause with a display message. A nil cause is allowed.
func NewFetchError(message string, cause error) *FetchError {
	return &FetchError{Message: message, Cause: cause}
}

// FetchMessage collapses any fetch failure into its display message.
func FetchMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return err.Error()
}
