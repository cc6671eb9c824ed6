// Package retry provides exponential backoff for operations that can fail
// transiently. Wavecache uses it for exactly one thing: when two concurrent
// ingests race to materialize the same columnar cache entry, the loser backs
// off and re-checks completeness instead of surfacing a transient temp-file
// collision as an ingest failure.
package retry

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"Wavecache/internal/logger"
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts including the first attempt
	MaxAttempts int

	// InitialBackoff is the initial backoff duration
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration
	MaxBackoff time.Duration

	// BackoffFactor is the factor by which the backoff increases
	BackoffFactor float64

	// RandomizationFactor is the factor by which the backoff is randomized
	RandomizationFactor float64
}

// WithRetryConfig executes fn, retrying with exponential backoff (plus
// jitter) for at most config.MaxAttempts attempts in total, the first one
// included. operation is used only for log messages.
func WithRetryConfig(operation string, config RetryConfig, fn func() error) error {
	var err error

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		if attempt == config.MaxAttempts {
			logger.Error("Failed %s after %d attempts: %v", operation, attempt, err)
			return err
		}

		backoff := calculateBackoff(attempt, config, r)
		logger.Warn("Retrying %s (attempt %d/%d) after %v: %v",
			operation, attempt, config.MaxAttempts, backoff, err)
		time.Sleep(backoff)
	}

	// Unreachable: the loop above always returns by the last attempt.
	return errors.New("unexpected error in retry logic")
}

// calculateBackoff computes the jittered exponential backoff for a given
// attempt, clamped to config.MaxBackoff.
func calculateBackoff(attempt int, config RetryConfig, r *rand.Rand) time.Duration {
	backoff := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt-1))

	delta := config.RandomizationFactor * backoff
	min := backoff - delta
	max := backoff + delta
	backoff = min + (max-min)*r.Float64()

	if backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}

	return time.Duration(backoff)
}
