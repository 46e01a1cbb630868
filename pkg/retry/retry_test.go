package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/progmatch/internal/testutil"
	"github.com/xhad/progmatch/pkg/retry"
)

func TestDo_SucceedsAfterFailures(t *testing.T) {
	timer := testutil.NewTimer()
	calls := 0
	err := retry.Do(context.Background(), retry.Policy{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		Timer:          timer,
	}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, timer.Waits())
}

func TestDo_Exhausted(t *testing.T) {
	timer := testutil.NewTimer()
	var retried []int
	boom := errors.New("embedding service unavailable")

	err := retry.Do(context.Background(), retry.Policy{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		Timer:          timer,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			retried = append(retried, attempt)
		},
	}, func(ctx context.Context) error {
		return boom
	})

	require.Error(t, err)
	var exhausted *retry.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "embedding service unavailable")
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, timer.Waits())
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_BackoffKeepsDoubling(t *testing.T) {
	timer := testutil.NewTimer()
	err := retry.Do(context.Background(), retry.Policy{
		MaxAttempts:    5,
		InitialBackoff: time.Second,
		Timer:          timer,
	}, func(ctx context.Context) error {
		return errors.New("down")
	})

	require.Error(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, timer.Waits())
}

func TestDo_SingleAttempt(t *testing.T) {
	timer := testutil.NewTimer()
	calls := 0
	err := retry.Do(context.Background(), retry.Policy{MaxAttempts: 1, InitialBackoff: time.Second, Timer: timer},
		func(ctx context.Context) error {
			calls++
			return errors.New("down")
		})

	var exhausted *retry.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 1, exhausted.Attempts)
	assert.Equal(t, 1, calls)
	assert.Empty(t, timer.Waits())
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry.Do(ctx, retry.Policy{MaxAttempts: 5, Timer: testutil.NewTimer()}, func(ctx context.Context) error {
		calls++
		cancel()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoValue(t *testing.T) {
	calls := 0
	v, err := retry.DoValue(context.Background(), retry.Policy{MaxAttempts: 2, Timer: testutil.NewTimer()}, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("once")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
