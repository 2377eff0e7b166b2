// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Detection settings:
//
//	PROTODETECT_PACKAGE_PREFIXES="google.cloud,google.example"
//	PROTODETECT_OUTPUT_JSON_PATH="/tmp/findings.json"
//
// Loader settings:
//
//	PROTODETECT_IMPORT_PATHS="/opt/protos/common,/opt/protos/deps"
//	PROTODETECT_CACHE_SIZE="32"
//
// Observability settings:
//
//	PROTODETECT_LOG_LEVEL="info"  # debug, info, warn, error
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/loader: Uses loader configuration
//   - pkg/observability: Uses observability configuration
package config
