// Package config loads, normalizes, and validates titlemark configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TITLEMARK_LOG_LEVEL environment
// override. The Config type centralizes every knob the CLI needs so state and
// log directories, worker counts and disabled marker kinds are resolved in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
