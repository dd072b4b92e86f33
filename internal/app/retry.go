package app

import (
	"errors"
	"time"

	"vidrelay/internal/downloads"
)

// RetryPolicy reports whether a failed download attempt should be retried.
//
// attempt is the 1-based number of the attempt that just failed.
type RetryPolicy func(attempt int, err error) bool

// RetryAll retries every failure until attempts run out.
func RetryAll(int, error) bool {
	return true
}

// RetryUnlessBotDetected stops retrying once the site has asked for a bot check.
func RetryUnlessBotDetected(_ int, err error) bool {
	return !errors.Is(err, downloads.ErrBotDetected)
}

// backoffDelay returns the wait before the retry following a failed attempt: base * 2^attempt.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base << attempt
}
