package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	IdentitySecret string // Required: shared secret for verifying identity tokens
	Issuer         string // Optional: expected issuer claim on identity tokens

	UpbankBaseURL string // Optional: external banking API base URL (default: https://api.up.com.au)

	DatabaseFile  string // Optional: path to SQLite database file (default: ./upgate.db)
	MasterKeyPath string // Optional: path to master key file for sealing stored secrets

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	MetricsEnabled      bool          // Expose /metrics (default: true)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		IdentitySecret:      os.Getenv("GATEWAY_IDENTITY_SECRET"),
		Issuer:              os.Getenv("GATEWAY_ISSUER"),
		UpbankBaseURL:       getEnvOrDefault("UPBANK_BASE_URL", "https://api.up.com.au"),
		DatabaseFile:        getEnvOrDefault("GATEWAY_DATABASE_FILE", "upgate.db"),
		MasterKeyPath:       os.Getenv("GATEWAY_MASTER_KEY_PATH"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		MetricsEnabled:      getEnvOrDefault("GATEWAY_METRICS", "true") != "false",
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
