package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment
// variables. All fields are validated at startup to ensure fail-fast
// behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Chain parameters applied when the ledger is constructed
	Difficulty float64
	Reward     float64
	Fee        float64

	// Pagination limit for the HTTP API
	MaxPageSize int
}

// Load reads configuration from environment variables and validates all
// fields. Returns an error listing every invalid value rather than stopping
// at the first.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	difficulty, err := parseFloat("CHAIN_DIFFICULTY", 2.0)
	switch {
	case err != nil:
		errs = append(errs, err)
	case difficulty <= 0:
		errs = append(errs, fmt.Errorf("CHAIN_DIFFICULTY must be positive, got %v", difficulty))
	default:
		cfg.Difficulty = difficulty
	}

	reward, err := parseFloat("CHAIN_REWARD", 100.0)
	switch {
	case err != nil:
		errs = append(errs, err)
	case reward < 0:
		errs = append(errs, fmt.Errorf("CHAIN_REWARD cannot be negative, got %v", reward))
	default:
		cfg.Reward = reward
	}

	fee, err := parseFloat("CHAIN_FEE", 0.01)
	switch {
	case err != nil:
		errs = append(errs, err)
	case fee <= 0:
		errs = append(errs, fmt.Errorf("CHAIN_FEE must be positive, got %v", fee))
	default:
		cfg.Fee = fee
	}

	maxPageSize, err := parseInt("MAX_PAGE_SIZE", 100)
	switch {
	case err != nil:
		errs = append(errs, err)
	case maxPageSize < 1:
		errs = append(errs, fmt.Errorf("MAX_PAGE_SIZE must be at least 1, got %d", maxPageSize))
	default:
		cfg.MaxPageSize = maxPageSize
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseFloat parses a float from an environment variable or uses a default.
func parseFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q: %w", key, value, err)
	}
	return result, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
