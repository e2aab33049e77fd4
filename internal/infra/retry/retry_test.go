package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestDoBoundedAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{MaxAttempts: 5}, func(int) error {
		calls++
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 5, calls)
}

func TestDoStopsOnSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{MaxAttempts: 5}, func(attempt int) error {
		calls++
		if attempt < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoUnlimitedUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{}, func(attempt int) error {
		calls++
		if attempt < 50 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 50, calls)
}

func TestDoPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{}, func(int) error {
		calls++
		return Permanent(errBoom)
	})
	assert.Equal(t, errBoom, err)
	assert.Equal(t, 1, calls)
}

func TestDoCustomRetryable(t *testing.T) {
	calls := 0
	other := errors.New("other")
	err := Do(context.Background(), Options{
		MaxAttempts: 10,
		Retryable:   func(err error) bool { return errors.Is(err, errBoom) },
	}, func(attempt int) error {
		calls++
		if attempt == 2 {
			return other
		}
		return errBoom
	})
	assert.ErrorIs(t, err, other)
	assert.Equal(t, 2, calls)
}

func TestDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Options{BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}, func(int) error {
		calls++
		if calls == 3 {
			cancel()
		}
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, calls)
}

func TestFullJitterSleepBounds(t *testing.T) {
	assert.Zero(t, FullJitterSleep(3, 0, time.Second))
	for attempt := 0; attempt < 40; attempt++ {
		d := FullJitterSleep(attempt, 10*time.Millisecond, 80*time.Millisecond)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 80*time.Millisecond)
	}
}
