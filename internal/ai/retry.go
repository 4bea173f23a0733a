package ai

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"

	"resumescan/internal/errors"
)

const maxBackoff = 30 * time.Second

// retryPolicy retries transient provider failures with exponential backoff
type retryPolicy struct {
	maxRetries  int
	baseDelay   time.Duration
	isRetryable func(error) bool
	logger      *errors.Logger
}

// backoff returns the delay before the given retry attempt (1-based)
func (p retryPolicy) backoff(attempt int) time.Duration {
	base := p.baseDelay
	if base <= 0 {
		base = time.Second
	}
	delay := time.Duration(math.Pow(2, float64(attempt-1))) * base
	if delay <= 0 || delay > maxBackoff {
		return maxBackoff
	}
	// 10% jitter against thundering herds
	if jitterMax := int64(float64(delay) * 0.1); jitterMax > 0 {
		if jitter, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			delay += time.Duration(jitter.Int64())
		}
	}
	return min(delay, maxBackoff)
}

// executeWithRetry executes a provider call with retry logic and exponential backoff
func executeWithRetry[T any](ctx context.Context, p retryPolicy, operation string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", p.maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(p.backoff(attempt)):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				p.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if p.isRetryable == nil || !p.isRetryable(err) {
			p.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	p.logger.LogError(lastErr, "AI operation failed after all retry attempts", "operation", operation)
	return zero, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}
