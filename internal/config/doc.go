// Package config provides centralized configuration management for the
// market share analysis system. It covers two layers:
//
//   - Application configuration (server, logging, paths) loaded from
//     environment variables and an optional YAML file.
//   - Analysis settings (working days per year, analyzer column
//     mappings, test prices) persisted as settings.json and editable
//     at runtime through the settings API.
//
// # Configuration Sources
//
// Application configuration is loaded in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. config.yaml next to the executable
//	3. Built-in defaults
//
// All environment variables use the MSA_ prefix:
//
//	MSA_SERVER_PORT=8080
//	MSA_LOGGING_LEVEL=info
//	MSA_PATHS_DATA_DIR=data
//
// # Analysis Settings
//
// Analysis settings live in settings.json and follow merge-over-default
// semantics: a missing file yields the built-in defaults, a partial
// file overrides only the keys it names.
package config
