package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("should classify timeout keywords", func(t *testing.T) {
		err := Classify(errors.New("request timed out after 60s"))
		assert.Equal(t, ErrTimeout, err.Kind)
	})

	t.Run("should classify context deadline", func(t *testing.T) {
		err := Classify(fmt.Errorf("failed to send request: %w", context.DeadlineExceeded))
		assert.Equal(t, ErrTimeout, err.Kind)
	})

	t.Run("should classify network errors", func(t *testing.T) {
		cases := []string{
			"dial tcp 127.0.0.1:443: connection refused",
			"unexpected EOF",
			"ECONNREFUSED",
		}
		for _, msg := range cases {
			err := Classify(errors.New(msg))
			assert.Equal(t, ErrNetworkError, err.Kind, "message: %s", msg)
		}
	})

	t.Run("should classify rate limiting", func(t *testing.T) {
		err := Classify(errors.New("API request failed with status 429: too many requests"))
		assert.Equal(t, ErrRateLimited, err.Kind)
	})

	t.Run("should classify server errors", func(t *testing.T) {
		err := Classify(errors.New("API request failed with status 503: unavailable"))
		assert.Equal(t, ErrServerError, err.Kind)
	})

	t.Run("should default to generic API error", func(t *testing.T) {
		err := Classify(errors.New("something odd happened"))
		assert.Equal(t, ErrAPIError, err.Kind)
	})

	t.Run("timeout wins over network keywords", func(t *testing.T) {
		err := Classify(errors.New("dial tcp: i/o timeout"))
		assert.Equal(t, ErrTimeout, err.Kind)
	})
}

func TestClassifyIdempotent(t *testing.T) {
	original := NewAIError(ErrRateLimited, errors.New("status 429"))

	reclassified := Classify(original)
	assert.Same(t, original, reclassified)

	wrapped := fmt.Errorf("chat turn failed: %w", original)
	reclassified = Classify(wrapped)
	assert.Equal(t, ErrRateLimited, reclassified.Kind)
}

func TestAIErrorRetryable(t *testing.T) {
	retryable := []ErrorKind{ErrNetworkError, ErrRateLimited, ErrTimeout, ErrServerError}
	for _, kind := range retryable {
		assert.True(t, NewAIError(kind, errors.New("x")).Retryable(), "kind %s", kind)
	}

	terminal := []ErrorKind{ErrAPIKeyMissing, ErrAPIError, ErrInvalidResponse, ErrGenerationFailed}
	for _, kind := range terminal {
		assert.False(t, NewAIError(kind, errors.New("x")).Retryable(), "kind %s", kind)
	}
}

func TestAIErrorUserMessage(t *testing.T) {
	err := NewAIError(ErrNetworkError, errors.New("dial tcp: connection refused"))
	assert.Equal(t, "Connection issue. Please check your internet and try again.", err.UserMessage())

	// Every kind carries a human-readable message.
	kinds := []ErrorKind{
		ErrAPIKeyMissing, ErrAPIError, ErrNetworkError, ErrRateLimited,
		ErrInvalidResponse, ErrGenerationFailed, ErrTimeout, ErrServerError,
	}
	for _, kind := range kinds {
		msg := NewAIError(kind, errors.New("x")).UserMessage()
		require.NotEmpty(t, msg, "kind %s", kind)
	}
}

func TestAIErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying cause")
	err := NewAIError(ErrServerError, cause)

	assert.ErrorIs(t, err, cause)

	var aiErr *AIError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &aiErr)
	assert.Equal(t, ErrServerError, aiErr.Kind)
}
