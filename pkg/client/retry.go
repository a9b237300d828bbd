package client

import (
	"context"
	"time"

	"github.com/Sternrassler/fpds-client/pkg/apierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	fpdsRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fpds_retries_total",
		Help: "Total number of retry attempts by error kind",
	}, []string{"kind"})

	fpdsRetryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fpds_retry_backoff_seconds",
		Help:    "Backoff duration before a retry",
		Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32},
	})

	fpdsRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fpds_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error kind",
	}, []string{"kind"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// Attempts is the total number of tries, including the first request.
	Attempts int

	// Delay is the base backoff. Attempt n waits Delay * 2^(n-1).
	Delay time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: 3,
		Delay:    1 * time.Second,
	}
}

// Sleeper pauses between retries. Implementations must return early with
// ctx.Err() when ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d).
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// timerSleeper waits on a real timer.
type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// MaxBackoff caps a single wait between retries.
const MaxBackoff = 5 * time.Minute

// Backoff returns the wait after the given failed attempt (1-based):
// delay * 2^(attempt-1), capped at MaxBackoff.
func Backoff(delay time.Duration, attempt int) time.Duration {
	if delay <= 0 {
		return 0
	}
	if delay >= MaxBackoff {
		return MaxBackoff
	}
	d := delay
	for i := 1; i < attempt; i++ {
		if d > MaxBackoff/2 {
			return MaxBackoff
		}
		d *= 2
	}
	return d
}

// retryWithBackoff runs fn up to cfg.Attempts times, sleeping
// Backoff(cfg.Delay, attempt) between failures. Every error kind is retried.
// After the last failure the last error is returned unchanged.
func retryWithBackoff(ctx context.Context, cfg RetryConfig, sleeper Sleeper, logger zerolog.Logger, fn func(attempt int) error) error {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		kind := string(apierror.KindOf(err))

		// If this was the last attempt, don't wait
		if attempt == attempts {
			break
		}

		backoff := Backoff(cfg.Delay, attempt)
		fpdsRetriesTotal.WithLabelValues(kind).Inc()
		fpdsRetryBackoffSeconds.Observe(backoff.Seconds())

		logger.Warn().
			Err(err).
			Str("error_kind", kind).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Retrying request after backoff")

		if err := sleeper.Sleep(ctx, backoff); err != nil {
			logger.Warn().
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return err
		}
	}

	fpdsRetryExhaustedTotal.WithLabelValues(string(apierror.KindOf(lastErr))).Inc()
	logger.Warn().
		Err(lastErr).
		Int("max_attempts", attempts).
		Msg("Retry attempts exhausted")

	return lastErr
}
