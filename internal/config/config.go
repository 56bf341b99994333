// Package config provides environment-based configuration for the pipeline service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all tunables consumed by the pipeline core.
// Values are loaded once at startup; there is no runtime reload.
type Config struct {
	// Server
	Port        int
	DatabaseURL string

	// LLM provider
	APIKey         string
	LLMRateLimit   float64       // generate calls per second across the process
	LLMBurst       int           // burst capacity for the generate throttle
	LLMCallTimeout time.Duration // per-call deadline for generation requests

	// Research engine
	RelevanceThreshold float64       // results at or below this score are discarded
	MinDistinctSources int           // quorum over distinct source types
	MaxResults         int           // persisted results cap per run
	SourceFanout       int           // source types queried per run
	PerSourceLimit     int           // candidates requested from each source
	SourceQueryTimeout time.Duration // per-source query deadline

	// Research sources
	ResearchProvider string            // "simulated" or "http"
	SourceEndpoints  map[string]string // source type -> search URL template with a %s topic slot

	// Interview engine
	CompletionThreshold int // coverage sum at which the interview may complete

	// Orchestrator sessions
	SessionTimeout time.Duration // idle time before a session is reset
	HistoryCap     int           // conversation turns retained per session

	// Ownership middleware
	JWTSecret string

	// Governance
	TraceMaxAge        time.Duration // spans older than this are swept
	MetricsWindow      time.Duration // trailing window for percentile reads
	SweepInterval      time.Duration // background sweep cadence for governance state
	RateLimitEnabled   bool
	DefaultRateLimit   int
	DefaultRateWindow  time.Duration
}

// Load reads configuration from the environment, applying defaults for
// anything unset. It fails only on values that cannot be defaulted.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		APIKey:         os.Getenv("GEMINI_API_KEY"),
		LLMRateLimit:   getEnvFloat("LLM_RATE_LIMIT", 2.0),
		LLMBurst:       getEnvInt("LLM_BURST", 4),
		LLMCallTimeout: getEnvDuration("LLM_CALL_TIMEOUT", 60*time.Second),

		RelevanceThreshold: getEnvFloat("RESEARCH_RELEVANCE_THRESHOLD", 0.6),
		MinDistinctSources: getEnvInt("RESEARCH_MIN_SOURCES", 5),
		MaxResults:         getEnvInt("RESEARCH_MAX_RESULTS", 20),
		SourceFanout:       getEnvInt("RESEARCH_SOURCE_FANOUT", 5),
		PerSourceLimit:     getEnvInt("RESEARCH_PER_SOURCE_LIMIT", 4),
		SourceQueryTimeout: getEnvDuration("RESEARCH_QUERY_TIMEOUT", 15*time.Second),

		ResearchProvider: getEnvString("RESEARCH_PROVIDER", "simulated"),
		SourceEndpoints:  loadSourceEndpoints(),

		CompletionThreshold: getEnvInt("INTERVIEW_COMPLETION_THRESHOLD", 95),

		SessionTimeout: getEnvDuration("SESSION_TIMEOUT", 30*time.Minute),
		HistoryCap:     getEnvInt("SESSION_HISTORY_CAP", 20),

		JWTSecret: os.Getenv("JWT_SECRET"),

		TraceMaxAge:       getEnvDuration("TRACE_MAX_AGE", time.Hour),
		MetricsWindow:     getEnvDuration("METRICS_WINDOW", time.Hour),
		SweepInterval:     getEnvDuration("GOVERNANCE_SWEEP_INTERVAL", 5*time.Minute),
		RateLimitEnabled:  getEnvBool("RATE_LIMIT_ENABLED", true),
		DefaultRateLimit:  getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 100),
		DefaultRateWindow: getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that loaded values are internally consistent.
func (c *Config) Validate() error {
	if c.RelevanceThreshold < 0 || c.RelevanceThreshold >= 1 {
		return fmt.Errorf("config error: RESEARCH_RELEVANCE_THRESHOLD must be in [0,1), got %v", c.RelevanceThreshold)
	}
	if c.MinDistinctSources < 1 {
		return fmt.Errorf("config error: RESEARCH_MIN_SOURCES must be positive, got %d", c.MinDistinctSources)
	}
	if c.MaxResults < c.MinDistinctSources {
		return fmt.Errorf("config error: RESEARCH_MAX_RESULTS (%d) below RESEARCH_MIN_SOURCES (%d)", c.MaxResults, c.MinDistinctSources)
	}
	if c.CompletionThreshold < 1 || c.CompletionThreshold > 100 {
		return fmt.Errorf("config error: INTERVIEW_COMPLETION_THRESHOLD must be in [1,100], got %d", c.CompletionThreshold)
	}
	if c.HistoryCap < 2 {
		return fmt.Errorf("config error: SESSION_HISTORY_CAP must be at least 2, got %d", c.HistoryCap)
	}
	if c.ResearchProvider != "simulated" && c.ResearchProvider != "http" {
		return fmt.Errorf("config error: RESEARCH_PROVIDER must be simulated or http, got %q", c.ResearchProvider)
	}
	if c.ResearchProvider == "http" && len(c.SourceEndpoints) == 0 {
		return fmt.Errorf("config error: RESEARCH_PROVIDER=http requires at least one SOURCE_ENDPOINT_* variable")
	}
	return nil
}

// sourceEndpointVars maps the per-source endpoint env vars to source type
// names. Each value is a search URL template with a %s topic slot.
var sourceEndpointVars = map[string]string{
	"SOURCE_ENDPOINT_LINKEDIN":      "linkedin",
	"SOURCE_ENDPOINT_MEDIUM":        "medium",
	"SOURCE_ENDPOINT_SUBSTACK":      "substack",
	"SOURCE_ENDPOINT_REDDIT":        "reddit",
	"SOURCE_ENDPOINT_GITHUB":        "github",
	"SOURCE_ENDPOINT_STACKOVERFLOW": "stackoverflow",
	"SOURCE_ENDPOINT_YOUTUBE":       "youtube",
	"SOURCE_ENDPOINT_NEWS":          "news",
}

// loadSourceEndpoints collects the endpoint templates that are actually set.
func loadSourceEndpoints() map[string]string {
	endpoints := make(map[string]string)
	for envVar, sourceType := range sourceEndpointVars {
		if value := os.Getenv(envVar); value != "" {
			endpoints[sourceType] = value
		}
	}
	return endpoints
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an int with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat gets an environment variable as a float64 with a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a bool with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a time.Duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
