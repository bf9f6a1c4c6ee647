package chat

import "fmt"

// RejectedError reports a chat message the session refused to send. These
// are surfaced to the submitting UI, not treated as system failures.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

func NewRejectedError(format string, args ...any) *RejectedError {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}
