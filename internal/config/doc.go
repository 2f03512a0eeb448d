// Package config loads, normalizes, and validates fitbit-convert
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FITBIT_CONVERT_EXPORT_DIR. The Config type centralizes every knob the CLI
// needs so the export directory, oximetry tuning, and log settings are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
