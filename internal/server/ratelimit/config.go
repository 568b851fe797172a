package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method; empty matches any method
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
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

// LoadConfig loads rate limiting configuration from environment variables:
//
//	RATE_LIMIT_ENABLED           default true
//	RATE_LIMIT_DEFAULT_LIMIT     default 1000
//	RATE_LIMIT_DEFAULT_WINDOW    default 1m
//	RATE_LIMIT_GENERATION_LIMIT  default 20 per hour
//	RATE_LIMIT_CLEANUP_INTERVAL  default 5m
//	RATE_LIMIT_WHITELIST         comma separated client IPs
//	RATE_LIMIT_BLACKLIST         comma separated client IPs
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: endpointConfigs(getEnvInt("RATE_LIMIT_GENERATION_LIMIT", generationLimit)),
	}
}

const (
	generationLimit = 20
	generationBurst = 5
	authLimit       = 30
	authBurst       = 10
)

// generationPaths are the endpoints that call the LLM.
var generationPaths = []string{
	"/api/career-guidance",
	"/api/mock-interview",
	"/api/mock-interview/", // answers
	"/api/job-suggestions",
	"/api/career-discovery",
	"/api/career-stories",
	"/api/career-stories/", // regenerate
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return endpointConfigs(generationLimit)
}

func endpointConfigs(genLimit int) []EndpointConfig {
	burst := min(generationBurst, genLimit)
	configs := make([]EndpointConfig, 0, len(generationPaths)+2)

	// LLM calls: strictest limits
	for _, path := range generationPaths {
		configs = append(configs, EndpointConfig{
			Path: path, Method: "POST", Limit: genLimit, Window: time.Hour, Burst: burst,
		})
	}

	// Credential endpoints
	configs = append(configs,
		EndpointConfig{Path: "/api/auth/", Method: "POST", Limit: authLimit, Window: time.Minute, Burst: authBurst},
		EndpointConfig{Path: "/api/auth/", Method: "PUT", Limit: authLimit, Window: time.Minute, Burst: authBurst},
	)

	// Reads use the default limit; /health is unlimited (see MatchEndpoint).
	return configs
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
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

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
