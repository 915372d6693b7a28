package journal

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTooLong rejects a draft longer than MaxDraftLength.
	ErrTooLong = errors.New("journal: draft exceeds maximum length")
	// ErrEmptyInput rejects a submission whose draft is blank.
	ErrEmptyInput = errors.New("journal: draft is empty")
	// ErrInFlight rejects a submission while another one is still running.
	ErrInFlight = errors.New("journal: submission already in flight")
)

// RateLimitedError rejects a submission made too soon after the last
// successful one.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("journal: rate limited, retry in %dms", e.RetryAfterMillis())
}

// RetryAfterMillis is the remaining wait rounded up to whole milliseconds.
func (e *RateLimitedError) RetryAfterMillis() int64 {
	return int64((e.RetryAfter + time.Millisecond - 1) / time.Millisecond)
}

// RetryAfterSeconds is the remaining wait rounded up to whole seconds.
func (e *RateLimitedError) RetryAfterSeconds() int64 {
	return (e.RetryAfterMillis() + 999) / 1000
}

// RequestFailedError reports a non-success status from the analysis service.
type RequestFailedError struct {
	StatusCode int
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("journal: analysis request failed with status %d", e.StatusCode)
}

// UserMessage renders err the way it is shown to the person writing.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var limited *RateLimitedError
	var failed *RequestFailedError
	switch {
	case errors.Is(err, ErrTooLong):
		return fmt.Sprintf("Max %d characters.", MaxDraftLength)
	case errors.Is(err, ErrEmptyInput):
		return "Please write something first."
	case errors.Is(err, ErrInFlight):
		return "Still reflecting on your last entry."
	case errors.As(err, &limited):
		return fmt.Sprintf("Wait %ds before submitting again.", limited.RetryAfterSeconds())
	case errors.As(err, &failed):
		return "Something went wrong with analysis."
	default:
		return err.Error()
	}
}
