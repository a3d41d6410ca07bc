// Package config loads, normalizes, and validates FONarchive configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FONARCHIVE_OUTPUT_DIR. The Config type centralizes every knob the CLI and the
// archive pipeline need so source, output, and log locations are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
