package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}
}

func TestRetryWithResult_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := RetryWithResult(context.Background(), fastRetry(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("not found")
	cfg := fastRetry()
	cfg.Permanent = []error{permanent}

	calls := 0
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetry_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := fastRetry()
	cfg.InitialDelay = time.Second

	err := Retry(ctx, cfg, func() error { return errors.New("down") })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestProperty_BackoffIsBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("backoff never exceeds max delay", prop.ForAll(
		func(attempt int) bool {
			d := CalculateBackoff(attempt, 10*time.Millisecond, time.Second, 2)
			return d >= 10*time.Millisecond && d <= time.Second
		},
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("2024-03-04 09:30", IndiaLocation)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, IndiaLocation, got.Location())

	got, err = ParseDateTime("2024-03-04", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDateTime("yesterday", time.UTC)
	assert.Error(t, err)
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	assert.Equal(t, IndiaLocation, loc)

	loc, err = LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	_, err = LoadLocation("Mars/Olympus")
	assert.Error(t, err)
}
