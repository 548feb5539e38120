package extract

import "fmt"

// Error represents a malformed upstream payload. It is contained to the
// source that produced it and never retried.
type Error struct {
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract error for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("extract error for %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
