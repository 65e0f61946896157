package profile

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNotFound is returned when the requested handle does not exist upstream.
var ErrNotFound = errors.New("github user not found")

const genericRateLimitMessage = "GitHub API rate limit exceeded. Please try again in a few minutes, or configure a GitHub token to raise the limit."

// RateLimitError reports an exhausted data-source quota. ResetAt is zero
// when the upstream did not say when the quota resets.
type RateLimitError struct {
	ResetAt time.Time
	Message string
}

// NewRateLimitError builds a RateLimitError whose message names the wait
// until resetAt, rounded up to whole minutes. A zero or past resetAt yields
// the generic message.
func NewRateLimitError(resetAt, now time.Time) *RateLimitError {
	e := &RateLimitError{ResetAt: resetAt, Message: genericRateLimitMessage}
	if resetAt.IsZero() {
		return e
	}
	wait := resetAt.Sub(now)
	if wait <= 0 {
		return e
	}
	minutes := int(math.Ceil(wait.Minutes()))
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	e.Message = fmt.Sprintf("GitHub API rate limit exceeded. Please try again in %d %s.", minutes, unit)
	return e
}

func (e *RateLimitError) Error() string { return e.Message }

// UpstreamError wraps any other data-source failure.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
