package retry

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
)

// Policy controls bounded exponential backoff between attempts.
type Policy struct {
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	JitterFraction float64
}

// DefaultPolicy mirrors the provider call policy used everywhere: up to 3
// retries, 1s base delay doubling to a 10s cap, 10% jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		BaseDelay:      time.Second,
		MaxDelay:       10 * time.Second,
		BackoffFactor:  2,
		JitterFraction: 0.1,
	}
}

// Do runs op until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted. Only transient provider errors
// (rate-limited, server, timeout, connection) are retried.
func Do[T any](ctx context.Context, policy Policy, name string, op func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !models.IsRetryable(err) || attempt == policy.MaxRetries {
			return zero, err
		}

		delay := policy.delay(attempt)
		logger.Debug("retrying after transient failure",
			zap.String("op", name),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", policy.MaxRetries+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// delay computes base * factor^attempt capped at MaxDelay, plus up to
// JitterFraction of random jitter.
func (p Policy) delay(attempt int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		d *= p.BackoffFactor
	}
	if max := float64(p.MaxDelay); d > max {
		d = max
	}
	if p.JitterFraction > 0 {
		d += rand.Float64() * p.JitterFraction * d
	}
	return time.Duration(d)
}
