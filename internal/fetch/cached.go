// Package fetch - cached.go provides URL fetching with in-memory caching.
package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a fetched page stays fresh.
const DefaultCacheTTL = 15 * time.Minute

// CachedFetcher wraps URL fetching with an in-memory TTL cache. Research
// fan-outs hit the same source endpoints repeatedly within a run, so a
// short-lived process cache avoids refetching between queries.
type CachedFetcher struct {
	options   *Options
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh fetches

	mu    sync.Mutex
	pages map[string]cachedPage
}

type cachedPage struct {
	result    Result
	fetchedAt time.Time
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  DefaultCacheTTL,
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher.
func NewCachedFetcher(config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	return &CachedFetcher{
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
		pages:     make(map[string]cachedPage),
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool // Whether this result came from cache
}

// Fetch retrieves a URL, using cache if available and fresh.
// Returns cached content if within TTL, otherwise fetches fresh content and caches it.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if !f.skipCache {
		f.mu.Lock()
		page, ok := f.pages[urlStr]
		f.mu.Unlock()
		if ok && time.Since(page.fetchedAt) < f.cacheTTL {
			result := page.result
			return &CachedResult{Result: &result, FromCache: true}, nil
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	text, _ := ExtractMainText(result.HTML, DefaultTextSelectors())
	result.Text = text

	f.mu.Lock()
	f.pages[urlStr] = cachedPage{result: *result, fetchedAt: time.Now()}
	f.mu.Unlock()

	return &CachedResult{Result: result, FromCache: false}, nil
}

// FetchMultiple fetches multiple URLs with caching.
// Returns results in the same order as input URLs. Failed fetches are nil in the result slice.
func (f *CachedFetcher) FetchMultiple(ctx context.Context, urls []string) ([]*CachedResult, []error) {
	results := make([]*CachedResult, len(urls))
	errors := make([]error, len(urls))

	for i, url := range urls {
		result, err := f.Fetch(ctx, url)
		if err != nil {
			errors[i] = err
		} else {
			results[i] = result
		}
	}

	return results, errors
}

// InvalidateCache drops a cached page, forcing a re-fetch on next request.
func (f *CachedFetcher) InvalidateCache(urlStr string) {
	f.mu.Lock()
	delete(f.pages, urlStr)
	f.mu.Unlock()
}
