package authstate

import (
	"math"
	"time"
)

const (
	defaultRetryBase = time.Second
	maxRetryDelay    = 8 * time.Second
)

// nextDelay returns the wait before retry number attempt (zero-based),
// growing by a factor of 1.5 per attempt and capped at maxRetryDelay.
func nextDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = defaultRetryBase
	}
	delay := float64(base) * math.Pow(1.5, float64(attempt))
	if delay > float64(maxRetryDelay) {
		return maxRetryDelay
	}
	return time.Duration(delay)
}
