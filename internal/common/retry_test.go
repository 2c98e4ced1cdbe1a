package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryOptions {
	return RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return nil
	}, fastRetry(3))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversFromTransientFailure(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("attempt %d: %w", calls, ErrUnavailable)
		}
		return nil
	}, fastRetry(3))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return ErrUnavailable
	}, fastRetry(3))
	require.ErrorIs(t, err, ErrMaxRetries)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, calls)
}

func TestWithRetryNonRetryableShortCircuits(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return ErrUnauthorized
	}, fastRetry(3))
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 1, calls)
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return ErrUnavailable
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Minute})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", ErrRateLimited, true},
		{"unavailable", ErrUnavailable, true},
		{"wrapped unavailable", fmt.Errorf("call: %w", ErrUnavailable), true},
		{"unauthorized", ErrUnauthorized, false},
		{"validation", ErrValidation, false},
		{"invalid response", ErrInvalidResponse, false},
		{"plain error", errors.New("boom"), false},
		{"explicit retryable", &RetryableError{Err: errors.New("boom"), Retryable: true}, true},
		{"explicit non-retryable", &RetryableError{Err: ErrRateLimited, Retryable: false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
