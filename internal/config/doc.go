// Package config provides configuration management for the Asia Cup analytics
// service.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A .env file in the working directory
//	3. A YAML configuration file
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ASIACUP_<SECTION>_<FIELD>:
//
//	ASIACUP_SERVER_PORT=8080
//	ASIACUP_DATASET_PATH=data/asiacup_cleaned.csv
//	ASIACUP_LOGGING_LEVEL=debug
//	ASIACUP_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,https://example.com
//	ASIACUP_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Paths
//
// Relative file paths are resolved against a base directory with Paths, which
// also creates the export and log directories before the server starts:
//
//	paths, err := cfg.ResolvePaths("")
//	if err != nil {
//	    return err
//	}
//	if err := paths.EnsureDirectories(); err != nil {
//	    return err
//	}
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, Default returns a valid configuration that needs no files or
// environment variables.
package config
