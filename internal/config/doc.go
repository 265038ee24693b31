// Package config provides application configuration loaded from environment
// variables (PETRO_ prefix) with optional YAML file overrides. Environment
// values take precedence over file values; defaults cover local development.
package config
