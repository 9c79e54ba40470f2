package config

import (
	"os"
	"strconv"

	"taguchi/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
	Metrics  MetricsConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings. An empty URL disables
// persistence.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database is configured
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// AnalysisConfig holds the process-wide DOE defaults and the strength search
// ceiling
type AnalysisConfig struct {
	PoolingThreshold   float64
	EnablePooling      bool
	MinUnpooledFactors int
	ConfidenceLevel    float64
	MaxStrengthCheck   int
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Analysis: *loadAnalysisConfig(),
		Metrics:  MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		PoolingThreshold:   getEnvFloatOrDefault("DOE_POOLING_THRESHOLD", 2.0),
		EnablePooling:      getEnvBoolOrDefault("DOE_ENABLE_POOLING", true),
		MinUnpooledFactors: getEnvIntOrDefault("DOE_MIN_UNPOOLED_FACTORS", 1),
		ConfidenceLevel:    getEnvFloatOrDefault("DOE_CONFIDENCE_LEVEL", 0.95),
		MaxStrengthCheck:   getEnvIntOrDefault("MAX_STRENGTH_CHECK", 4),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	a := config.Analysis
	if a.PoolingThreshold < 0 {
		return errors.ConfigInvalid("DOE_POOLING_THRESHOLD must not be negative")
	}
	if a.MinUnpooledFactors < 0 {
		return errors.ConfigInvalid("DOE_MIN_UNPOOLED_FACTORS must not be negative")
	}
	if a.ConfidenceLevel <= 0 || a.ConfidenceLevel >= 1 {
		return errors.ConfigInvalid("DOE_CONFIDENCE_LEVEL must be between 0 and 1")
	}
	if a.MaxStrengthCheck < 1 {
		return errors.ConfigInvalid("MAX_STRENGTH_CHECK must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
