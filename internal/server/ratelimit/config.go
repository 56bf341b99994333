package ratelimit

import (
	"os"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Fixed window length
}

// LoadConfig builds the limiter configuration. The kill switch, default
// limit, and default window come from the service config so they are read in
// exactly one place; the allow/deny lists and cleanup cadence are this
// package's own environment variables.
func LoadConfig(enabled bool, defaultLimit int, defaultWindow time.Duration) *Config {
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	cleanupInterval := getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)

	whitelist := parseSubjectList(getEnvString("RATE_LIMIT_WHITELIST", ""))
	blacklist := parseSubjectList(getEnvString("RATE_LIMIT_BLACKLIST", ""))

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    defaultLimit,
		DefaultWindow:   defaultWindow,
		CleanupInterval: cleanupInterval,
		Whitelist:       whitelist,
		Blacklist:       blacklist,
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: model-backed operations (strictest limits)
		{Path: "/v1/chat", Method: "POST", Limit: 10, Window: time.Minute},
		{Path: "/v1/chat/stream", Method: "POST", Limit: 10, Window: time.Minute},
		{Path: "/v1/artifacts/", Method: "POST", Limit: 30, Window: time.Minute},

		// Tier 2: plain write operations
		{Path: "/v1/artifacts", Method: "POST", Limit: 60, Window: time.Minute},
		{Path: "/v1/artifacts/", Method: "PATCH", Limit: 60, Window: time.Minute},
		{Path: "/v1/artifacts/", Method: "DELETE", Limit: 60, Window: time.Minute},

		// Tier 3: reads fall through to the default limit
		// Tier 4: health check is unlimited via the matcher special case
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseSubjectList parses a comma-separated list of subjects into a map.
func parseSubjectList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, subject := range strings.Split(list, ",") {
		subject = strings.TrimSpace(subject)
		if subject != "" {
			result[subject] = true
		}
	}

	return result
}
