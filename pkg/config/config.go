package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/platinummonkey/protodetect/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Detection defaults applied when flags do not override them
	Detection DetectionConfig

	// Loader configuration
	Loader LoaderConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// DetectionConfig holds defaults for detection runs
type DetectionConfig struct {
	// PackagePrefixes limits comparison to matching proto packages
	PackagePrefixes []string

	// OutputJSONPath is where findings are written when JSON output is on
	OutputJSONPath string
}

// LoaderConfig holds proto compilation settings
type LoaderConfig struct {
	// ImportPaths are extra directories to resolve imports against
	ImportPaths []string

	// CacheSize bounds the compiled descriptor cache
	CacheSize int
}

// ObservabilityConfig holds logging settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Detection:     loadDetectionConfig(),
		Loader:        loadLoaderConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDetectionConfig loads detection defaults from environment
func loadDetectionConfig() DetectionConfig {
	return DetectionConfig{
		PackagePrefixes: getEnvList("PROTODETECT_PACKAGE_PREFIXES"),
		OutputJSONPath:  getEnv("PROTODETECT_OUTPUT_JSON_PATH", ""),
	}
}

// loadLoaderConfig loads proto compilation settings from environment
func loadLoaderConfig() LoaderConfig {
	return LoaderConfig{
		ImportPaths: getEnvList("PROTODETECT_IMPORT_PATHS"),
		CacheSize:   getEnvInt("PROTODETECT_CACHE_SIZE", 32),
	}
}

// loadObservabilityConfig loads logging configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel: observability.ParseLogLevel(getEnv("PROTODETECT_LOG_LEVEL", "info")),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Loader.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.Loader.CacheSize)
	}

	for _, dir := range c.Loader.ImportPaths {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("import path %q: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("import path %q is not a directory", dir)
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable as a slice
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
