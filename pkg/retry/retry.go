// Package retry provides retry logic with exponential backoff for transient failures
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config holds retry configuration
type Config struct {
	// MaxRetries is the maximum number of retry attempts (0 = no retries)
	MaxRetries int

	// InitialDelay is the initial delay before the first retry
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries
	MaxDelay time.Duration

	// Multiplier is the factor by which the delay increases after each retry
	Multiplier float64

	// Jitter adds randomness to delays to prevent thundering herd
	Jitter bool

	// JitterFactor is the maximum jitter as a fraction of delay (0.0 to 1.0)
	JitterFactor float64

	// RetryIf decides whether an error should be retried.
	// If nil, all errors are retried (up to MaxRetries).
	RetryIf func(error) bool

	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		JitterFactor: 0.3,
	}
}

// Retrier handles retry logic
type Retrier struct {
	config Config
	rng    *rand.Rand
}

// New creates a new Retrier with the given config
func New(config Config) *Retrier {
	return &Retrier{
		config: config,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Do executes the function with retry logic
func (r *Retrier) Do(fn func() error) error {
	return r.DoWithContext(context.Background(), fn)
}

// DoWithContext executes the function with retry logic and context.
// The context is checked before every attempt and while waiting out a
// backoff delay, so cancellation never blocks on a sleeping retry.
func (r *Retrier) DoWithContext(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("cancelled after %d attempts: %w (last error: %v)", attempt, ctx.Err(), lastErr)
			}
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.shouldRetry(err) {
			return err
		}
		if attempt >= r.config.MaxRetries {
			break
		}

		delay := r.calculateDelay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt+1, err, delay)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("cancelled during retry wait: %w (last error: %v)", ctx.Err(), lastErr)
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", r.config.MaxRetries, lastErr)
}

func (r *Retrier) shouldRetry(err error) bool {
	if r.config.RetryIf == nil {
		return true
	}
	return r.config.RetryIf(err)
}

func (r *Retrier) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt))
	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	if r.config.Jitter && r.config.JitterFactor > 0 {
		jitter := delay * r.config.JitterFactor * r.rng.Float64()
		delay += jitter
		if delay > float64(r.config.MaxDelay) {
			delay = float64(r.config.MaxDelay)
		}
	}

	return time.Duration(delay)
}
