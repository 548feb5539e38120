package resilience

import (
	"errors"
	"fmt"
	"time"
)

// BreakerOpenError is returned when a call is rejected because the source's
// circuit breaker is open. It is terminal: the retry policy never retries it.
type BreakerOpenError struct {
	Source   string
	OpenedAt time.Time
	RetryAt  time.Time
}

func (e *BreakerOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for source %s (retry after %s)",
		e.Source, e.RetryAt.Format(time.RFC3339))
}

// IsBreakerOpen reports whether err is (or wraps) a BreakerOpenError.
func IsBreakerOpen(err error) bool {
	var boe *BreakerOpenError
	return errors.As(err, &boe)
}

// Retryable is implemented by errors that can classify themselves as
// transient. fetch.Error implements it; anything else is treated as
// permanent.
type Retryable interface {
	IsRetryable() bool
}

// IsTransient reports whether err is worth retrying: it must classify itself
// as retryable and must not be a breaker-open rejection.
func IsTransient(err error) bool {
	if err == nil || IsBreakerOpen(err) {
		return false
	}
	var r Retryable
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return false
}
