package retry

import (
	"context"
	"math"
	"net/http"
	"time"
)

// Config holds the configuration for retry logic
type Config struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultConfig returns the backoff used for hosted model APIs
func DefaultConfig() Config {
	return Config{
		MaxRetries:      2,
		BaseDelay:       300 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffMultiple: 2.0,
	}
}

// Func is one attempt. statusCode is 0 when no HTTP response was received.
type Func func(attempt int) (statusCode int, err error)

func (c Config) delay(attempt int) time.Duration {
	d := time.Duration(float64(c.BaseDelay) * math.Pow(c.BackoffMultiple, float64(attempt)))
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// Retryable reports whether a failed attempt is worth repeating:
// transport errors, 429 and 5xx.
func Retryable(statusCode int, err error) bool {
	if err == nil {
		return false
	}
	if statusCode == 0 {
		return true
	}
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned.
func Do(ctx context.Context, cfg Config, fn Func) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.delay(attempt - 1)):
			}
		}

		statusCode, err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !Retryable(statusCode, err) {
			return err
		}
	}
	return lastErr
}
