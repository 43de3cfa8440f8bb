package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeepSeekProvider(t *testing.T) {
	t.Run("should fail without API key", func(t *testing.T) {
		provider, err := NewDeepSeekProvider("", "", 0)
		assert.Nil(t, provider)

		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrAPIKeyMissing, aiErr.Kind)
	})

	t.Run("should create provider with key", func(t *testing.T) {
		provider, err := NewDeepSeekProvider("test-key", "", 0)
		require.NoError(t, err)
		assert.Equal(t, "deepseek", provider.Name())
	})
}

func TestDeepSeekGenerateResponse(t *testing.T) {
	t.Run("should parse envelope reply", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"content\":\"Try a stir fry\",\"quick_replies\":[\"More\"],\"recipes\":[{\"name\":\"Chicken Stir Fry\",\"difficulty\":\"Easy\"}]}"}}]}`)
		}))
		defer ts.Close()

		provider, err := NewDeepSeekProvider("test-key", ts.URL, time.Second)
		require.NoError(t, err)

		result, err := provider.GenerateResponse(context.Background(), "chicken and rice?", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "Try a stir fry", result.Content)
		assert.Equal(t, []string{"More"}, result.QuickReplies)
		require.Len(t, result.RecipeOptions, 1)
		assert.Equal(t, "Chicken Stir Fry", result.RecipeOptions[0].Name)
	})

	t.Run("should classify 429 as rate limited", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer ts.Close()

		provider, err := NewDeepSeekProvider("test-key", ts.URL, time.Second)
		require.NoError(t, err)

		_, err = provider.GenerateResponse(context.Background(), "hi", nil, nil)
		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrRateLimited, aiErr.Kind)
		assert.True(t, aiErr.Retryable())
	})

	t.Run("should classify 500 as server error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		provider, err := NewDeepSeekProvider("test-key", ts.URL, time.Second)
		require.NoError(t, err)

		_, err = provider.GenerateResponse(context.Background(), "hi", nil, nil)
		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrServerError, aiErr.Kind)
	})

	t.Run("should classify 401 as missing key", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer ts.Close()

		provider, err := NewDeepSeekProvider("bad-key", ts.URL, time.Second)
		require.NoError(t, err)

		_, err = provider.GenerateResponse(context.Background(), "hi", nil, nil)
		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrAPIKeyMissing, aiErr.Kind)
		assert.False(t, aiErr.Retryable())
	})

	t.Run("should classify undecodable body as invalid response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "not json at all")
		}))
		defer ts.Close()

		provider, err := NewDeepSeekProvider("test-key", ts.URL, time.Second)
		require.NoError(t, err)

		_, err = provider.GenerateResponse(context.Background(), "hi", nil, nil)
		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrInvalidResponse, aiErr.Kind)
	})

	t.Run("should classify empty choices as invalid response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices":[]}`)
		}))
		defer ts.Close()

		provider, err := NewDeepSeekProvider("test-key", ts.URL, time.Second)
		require.NoError(t, err)

		_, err = provider.GenerateResponse(context.Background(), "hi", nil, nil)
		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrInvalidResponse, aiErr.Kind)
	})

	t.Run("should classify content filter as generation failed", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices":[{"message":{"content":""},"finish_reason":"content_filter"}]}`)
		}))
		defer ts.Close()

		provider, err := NewDeepSeekProvider("test-key", ts.URL, time.Second)
		require.NoError(t, err)

		_, err = provider.GenerateResponse(context.Background(), "hi", nil, nil)
		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrGenerationFailed, aiErr.Kind)
	})

	t.Run("should classify slow provider as timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer ts.Close()

		provider, err := NewDeepSeekProvider("test-key", ts.URL, 50*time.Millisecond)
		require.NoError(t, err)

		_, err = provider.GenerateResponse(context.Background(), "hi", nil, nil)
		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrTimeout, aiErr.Kind)
	})

	t.Run("should classify unreachable host as network error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		ts.Close() // nothing listening anymore

		provider, err := NewDeepSeekProvider("test-key", ts.URL, time.Second)
		require.NoError(t, err)

		_, err = provider.GenerateResponse(context.Background(), "hi", nil, nil)
		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrNetworkError, aiErr.Kind)
	})
}

func TestOpenAIProvider(t *testing.T) {
	t.Run("should fail without API key", func(t *testing.T) {
		provider, err := NewOpenAIProvider("", "", 0)
		assert.Nil(t, provider)

		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrAPIKeyMissing, aiErr.Kind)
	})

	t.Run("should generate from chat completions", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices":[{"message":{"content":"Just answer text"}}]}`)
		}))
		defer ts.Close()

		provider, err := NewOpenAIProvider("test-key", ts.URL, time.Second)
		require.NoError(t, err)
		assert.Equal(t, "openai", provider.Name())

		result, err := provider.GenerateResponse(context.Background(), "hi", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "Just answer text", result.Content)
		assert.Empty(t, result.RecipeOptions)
	})
}

func TestModelsURL(t *testing.T) {
	assert.Equal(t, "https://api.deepseek.com/v1/models", modelsURL("https://api.deepseek.com/v1/chat/completions"))
	assert.Equal(t, "http://localhost:9999/models", modelsURL("http://localhost:9999/"))
}
