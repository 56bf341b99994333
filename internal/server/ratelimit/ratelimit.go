// Package ratelimit provides per-subject request limiting using fixed time windows.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// window tracks request counts for one (subject, endpoint) pair inside the
// current fixed window. When the window expires the count starts over.
type window struct {
	count   int
	resetAt time.Time
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages fixed-window rate limiting for multiple subjects.
// A subject is whatever identity the caller keys on (user id, client IP).
type Limiter struct {
	windows map[string]*window
	mu      sync.Mutex
	config  *Config

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once

	now func() time.Time
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    120,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	limiter := &Limiter{
		windows: make(map[string]*window),
		config:  config,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// Allow checks if a request from the given subject is allowed for the endpoint.
// The limiter fails open: a disabled limiter, an unlimited endpoint, or a nil
// config all admit the request.
func (l *Limiter) Allow(subject string, endpoint string, method string) (bool, Info) {
	if l.config == nil || !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	if l.config.Whitelist[subject] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[subject] {
		return false, Info{Allowed: false}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	}

	// Unlimited endpoint (e.g., health check)
	if endpointConfig.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	key := fmt.Sprintf("%s:%s:%s:%s", subject, endpoint, method, endpointConfig.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		// First request in a fresh window
		w = &window{count: 0, resetAt: now.Add(endpointConfig.Window)}
		l.windows[key] = w
	}

	if w.count >= endpointConfig.Limit {
		retryAfter := w.resetAt.Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, Info{
			Allowed:    false,
			Limit:      endpointConfig.Limit,
			Remaining:  0,
			ResetTime:  w.resetAt,
			RetryAfter: retryAfter,
		}
	}

	w.count++
	return true, Info{
		Allowed:   true,
		Limit:     endpointConfig.Limit,
		Remaining: endpointConfig.Limit - w.count,
		ResetTime: w.resetAt,
	}
}

// cleanup periodically drops expired windows so the map stays bounded.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupWindows()
		case <-l.cleanupStop:
			return
		}
	}
}

func (l *Limiter) cleanupWindows() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
