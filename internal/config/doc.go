// Package config loads, normalizes, and validates shoebox configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SHOEBOX_SOURCE_DIR and
// SHOEBOX_TARGET_DIR environment overrides. The Config type centralizes every
// knob the CLI needs so source, target, and state directories are discovered
// in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
