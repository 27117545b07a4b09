package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the runtime configuration for the forecasting service.
type Config struct {
	Port         string
	LogLevel     string
	FitWorkers   int
	FitQueueSize int
	FitTimeout   time.Duration
	MaxBodyBytes int64
}

// Load reads configuration from the environment, applying defaults for
// anything unset or unparseable.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		FitWorkers:   getEnvInt("FIT_WORKERS", 4),
		FitQueueSize: getEnvInt("FIT_QUEUE_SIZE", 16),
		FitTimeout:   getEnvDuration("FIT_TIMEOUT", 30*time.Second),
		MaxBodyBytes: getEnvInt64("MAX_BODY_BYTES", 10<<20),
	}
}

// Validate checks the configuration and reports every violation found.
func (c *Config) Validate() error {
	var problems []string

	if _, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("PORT %q is not a number", c.Port))
	}
	if c.FitWorkers < 1 {
		problems = append(problems, "FIT_WORKERS must be at least 1")
	}
	if c.FitQueueSize < 0 {
		problems = append(problems, "FIT_QUEUE_SIZE must not be negative")
	}
	if c.FitTimeout <= 0 {
		problems = append(problems, "FIT_TIMEOUT must be positive")
	}
	if c.MaxBodyBytes < 1 {
		problems = append(problems, "MAX_BODY_BYTES must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
