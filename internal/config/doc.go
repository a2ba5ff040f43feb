// Package config loads, normalizes, and validates storyboard configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies STORYBOARD_* environment overrides.
// The Config type centralizes the application-scoped locations the project
// store needs (recent-projects file, log directory) plus thumbnail and server
// settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
