package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImageService(t *testing.T, apiURL string, cache ContentCache) *ImageService {
	t.Helper()
	svc, err := NewImageService("test-key", apiURL, nil, cache, NewMediaRateLimiter(10, time.Minute))
	require.NoError(t, err)
	return svc
}

func TestNewImageService(t *testing.T) {
	t.Run("should fail without API key", func(t *testing.T) {
		svc, err := NewImageService("", "", nil, NewMemoryContentCache(), NewMediaRateLimiter(1, time.Minute))
		assert.Nil(t, svc)

		var aiErr *AIError
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ErrAPIKeyMissing, aiErr.Kind)
	})
}

func TestGenerateRecipeImage(t *testing.T) {
	t.Run("should generate and cache the URL", func(t *testing.T) {
		var calls int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			fmt.Fprint(w, `{"created":1,"data":[{"url":"https://img.example/pad-thai.png"}]}`)
		}))
		defer ts.Close()

		svc := newTestImageService(t, ts.URL, NewMemoryContentCache())

		url, err := svc.GenerateRecipeImage(context.Background(), "Pad Thai", "Thai noodles")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/pad-thai.png", url)

		// Second request for the same content hits the cache.
		url, err = svc.GenerateRecipeImage(context.Background(), "Pad Thai", "Thai noodles")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/pad-thai.png", url)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("different content misses the cache", func(t *testing.T) {
		var calls int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			fmt.Fprint(w, `{"created":1,"data":[{"url":"https://img.example/x.png"}]}`)
		}))
		defer ts.Close()

		svc := newTestImageService(t, ts.URL, NewMemoryContentCache())

		_, err := svc.GenerateRecipeImage(context.Background(), "Pad Thai", "Thai noodles")
		require.NoError(t, err)
		_, err = svc.GenerateRecipeImage(context.Background(), "Pad See Ew", "Thai noodles")
		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("generation failure falls back to placeholder", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		svc := newTestImageService(t, ts.URL, NewMemoryContentCache())

		url, err := svc.GenerateRecipeImage(context.Background(), "Pad Thai", "Thai noodles")
		require.NoError(t, err, "the image path never hard-fails")
		assert.Equal(t, defaultPlaceholderURL, url)
	})

	t.Run("generation failure prefers the last known image", func(t *testing.T) {
		healthy := true
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !healthy {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{"created":1,"data":[{"url":"https://img.example/known.png"}]}`)
		}))
		defer ts.Close()

		cache := NewMemoryContentCache()
		svc := newTestImageService(t, ts.URL, cache)

		url, err := svc.GenerateRecipeImage(context.Background(), "Pad Thai", "Thai noodles")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/known.png", url)

		// Expire the short-TTL entry; the long-TTL last-known entry stays.
		key := CacheKey("Pad Thai", "Thai noodles")
		require.NoError(t, cache.Set(context.Background(), key, "stale", time.Nanosecond))
		time.Sleep(5 * time.Millisecond)
		_, err = cache.Get(context.Background(), key)
		require.ErrorIs(t, err, ErrCacheMiss)

		healthy = false
		url, err = svc.GenerateRecipeImage(context.Background(), "Pad Thai", "Thai noodles")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/known.png", url)
	})

	t.Run("empty response data is a fallback, not an error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"created":1,"data":[]}`)
		}))
		defer ts.Close()

		svc := newTestImageService(t, ts.URL, NewMemoryContentCache())

		url, err := svc.GenerateRecipeImage(context.Background(), "Pad Thai", "")
		require.NoError(t, err)
		assert.Equal(t, defaultPlaceholderURL, url)
	})
}

func TestBuildRecipeImagePrompt(t *testing.T) {
	t.Run("includes name and description", func(t *testing.T) {
		prompt := buildRecipeImagePrompt("Pad Thai", "Thai noodles")
		assert.Contains(t, prompt, "Pad Thai")
		assert.Contains(t, prompt, "Thai noodles")
		assert.Contains(t, prompt, "food photography")
	})

	t.Run("caps prompt length", func(t *testing.T) {
		long := make([]byte, 2000)
		for i := range long {
			long[i] = 'a'
		}
		prompt := buildRecipeImagePrompt(string(long), "")
		assert.LessOrEqual(t, len(prompt), 900)
	})
}
