package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all client configuration
type Config struct {
	APIBaseURL     string        // REST backend base URL
	RequestTimeout time.Duration // per-request upper bound on the transport
	StateDBPath    string        // sqlite file for durable client state (auth token, drafts)
	RefreshEvery   time.Duration // dashboard batch refresh interval, 0 disables

	// Requests-per-second throttle for the HTTP client, 0 disables
	RateLimit float64
}

// Load loads configuration from environment variables with defaults.
// RITUALS_API_URL is the one recognized base-URL override; when unset the
// client targets the local development backend.
func Load() *Config {
	return &Config{
		APIBaseURL:     getEnv("RITUALS_API_URL", "http://localhost:3000/api"),
		RequestTimeout: getDurationEnv("RITUALS_REQUEST_TIMEOUT", 30*time.Second),
		StateDBPath:    getEnv("RITUALS_STATE_DB", "rituals.db"),
		RefreshEvery:   getDurationEnv("RITUALS_REFRESH_INTERVAL", 0),
		RateLimit:      getFloatEnv("RITUALS_RATE_LIMIT", 0),
	}
}

// ServerConfig holds stub backend configuration
type ServerConfig struct {
	Port      string
	JWTSecret string
	SeedFile  string // optional YAML catalog of plans and sessions
}

// LoadServer loads stub backend configuration from environment variables.
func LoadServer() *ServerConfig {
	return &ServerConfig{
		Port:      getEnv("PORT", "3000"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-do-not-use-in-prod"),
		SeedFile:  getEnv("SEED_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
