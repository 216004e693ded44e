// Package config loads, normalizes, and validates fantamorto configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads .env files, and honours environment
// fallbacks such as WEBHOOK_URL or REFRESH_TOKEN. Missing required settings
// fail fast with services.ErrConfigurationMissing before any network call.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a clamped Wikipedia batch size, and clear validation errors.
package config
