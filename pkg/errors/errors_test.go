package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("no Major.Minor.Patch elements found")
	err := VersionParseError("not-a-version", cause)

	assert.Equal(t, ErrCodeVersionParse, err.Code)
	assert.ErrorIs(t, err, New(ErrCodeVersionParse, "anything"))
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "not-a-version")
	assert.Contains(t, err.Error(), "Caused by")
	assert.Equal(t, "not-a-version", err.Context["version"])
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "never happens"))
}

func TestWrapInheritsContext(t *testing.T) {
	inner := New(ErrCodeRemoteAPI, "fetch failed").WithContext("page", 3)
	outer := Wrap(inner, ErrCodeInternal, "pipeline failed")

	assert.Equal(t, 3, outer.Context["page"])
}

func TestRemoteErrorClassification(t *testing.T) {
	err := RemoteError("unexpected status 401 fetching commits", fmt.Errorf("unauthorized"))
	assert.Equal(t, ErrCodeRemoteAuth, err.Code)

	err = RemoteError("unexpected status 429 fetching commits", fmt.Errorf("rate limited"))
	assert.Equal(t, ErrCodeRateLimited, err.Code)
	assert.True(t, IsRecoverable(err))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeGit, GetErrorCode(New(ErrCodeGit, "boom")))
	assert.Equal(t, ErrCodeInternal, GetErrorCode(fmt.Errorf("plain")))
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	config := DefaultRetryConfig()
	config.InitialDelay = time.Millisecond
	config.MaxDelay = 2 * time.Millisecond
	config.Jitter = false

	attempts := 0
	err := Retry(context.Background(), config, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return New(ErrCodeServiceUnavailable, "still down")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	config := DefaultRetryConfig()
	config.InitialDelay = time.Millisecond
	config.Jitter = false

	attempts := 0
	err := Retry(context.Background(), config, func(ctx context.Context) error {
		attempts++
		return New(ErrCodeConfigInvalid, "bad config")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, ErrCodeConfigInvalid, GetErrorCode(err))
}

func TestRetryExhaustion(t *testing.T) {
	config := DefaultRetryConfig()
	config.MaxRetries = 2
	config.InitialDelay = time.Millisecond
	config.MaxDelay = 2 * time.Millisecond
	config.Jitter = false

	var retries []int
	config.OnRetry = func(attempt int, delay time.Duration, err error) {
		retries = append(retries, attempt)
	}

	attempts := 0
	err := Retry(context.Background(), config, func(ctx context.Context) error {
		attempts++
		return New(ErrCodeRateLimited, "slow down").AsRecoverable()
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retries)
	assert.Equal(t, ErrCodeMaxRetriesExceeded, GetErrorCode(err))
}
