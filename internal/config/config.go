package config

import (
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	Env        string
	LogLevel   string
	LogFormat  string
	APIBaseURL string
	APITimeout time.Duration

	// Locale drives collation for table sorting (BCP 47 tag).
	Locale string

	// Mock upstream settings (cmd/mockapi and the --demo console mode).
	MockPort    string
	MockLatency time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		APIBaseURL:  getEnv("CLINIC_API_BASE_URL", "http://localhost:8080"),
		APITimeout:  getEnvAsDuration("CLINIC_API_TIMEOUT", 30*time.Second),
		Locale:      getEnv("LOCALE", "en"),
		MockPort:    getEnv("MOCK_API_PORT", "8080"),
		MockLatency: getEnvAsDuration("MOCK_API_LATENCY", 0),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
