// Package config provides environment-based configuration.
//
// Loads from environment variables with sensible defaults and validates
// required fields at startup.
package config
