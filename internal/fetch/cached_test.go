package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCachedFetcherConfig(t *testing.T) {
	config := DefaultCachedFetcherConfig()
	assert.Equal(t, DefaultCacheTTL, config.CacheTTL)
	assert.False(t, config.SkipCache)
	assert.NotNil(t, config.Options)
}

func TestNewCachedFetcher_NilConfig(t *testing.T) {
	f := NewCachedFetcher(nil)
	assert.Equal(t, DefaultCacheTTL, f.cacheTTL)
	assert.NotNil(t, f.options)
}

func TestNewCachedFetcher_EmptyConfig(t *testing.T) {
	f := NewCachedFetcher(&CachedFetcherConfig{})
	assert.Equal(t, DefaultCacheTTL, f.cacheTTL)
	assert.NotNil(t, f.options)
}

func TestCachedFetcher_SecondFetchHitsCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><main>cached page</main></body></html>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(nil)

	first, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Contains(t, first.Text, "cached page")

	second, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedFetcher_SkipCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body>fresh</body></html>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(&CachedFetcherConfig{SkipCache: true})
	for i := 0; i < 3; i++ {
		result, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.False(t, result.FromCache)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestCachedFetcher_TTLExpiry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body>page</body></html>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(&CachedFetcherConfig{CacheTTL: 10 * time.Millisecond})

	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedFetcher_Invalidate(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body>page</body></html>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(nil)
	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	f.InvalidateCache(server.URL)

	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int32(2), hits.Load())
}
