package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := New(quickConfig()).Do(func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := New(quickConfig()).Do(func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	boom := errors.New("still broken")
	calls := 0
	err := New(quickConfig()).Do(func() error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, calls, "initial attempt plus MaxRetries")
}

func TestDo_RetryIfStopsImmediately(t *testing.T) {
	fatal := errors.New("not found")
	cfg := quickConfig()
	cfg.RetryIf = func(err error) bool { return !errors.Is(err, fatal) }

	calls := 0
	err := New(cfg).Do(func() error {
		calls++
		return fatal
	})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryObservesAttempts(t *testing.T) {
	var attempts []int
	cfg := quickConfig()
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_ = New(cfg).Do(func() error { return errors.New("x") })
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDoWithContext_CancelDuringWait(t *testing.T) {
	cfg := quickConfig()
	cfg.InitialDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := New(cfg).DoWithContext(ctx, func() error { return errors.New("x") })
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateDelay_CapsAtMax(t *testing.T) {
	cfg := Config{
		InitialDelay: time.Second,
		MaxDelay:     2 * time.Second,
		Multiplier:   10.0,
	}
	r := New(cfg)
	assert.Equal(t, 2*time.Second, r.calculateDelay(5))
}

func TestCalculateDelay_JitterStaysBounded(t *testing.T) {
	cfg := DefaultConfig()
	r := New(cfg)
	for attempt := 0; attempt < 10; attempt++ {
		d := r.calculateDelay(attempt)
		assert.LessOrEqual(t, d, cfg.MaxDelay)
		assert.Positive(t, d)
	}
}
