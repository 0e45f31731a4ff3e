// Package config loads, normalizes, and validates plutoiptv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PLUTOIPTV_OUTPUT_DIR and CHANNEL_START_NUMBER. The Config type centralizes
// every knob the pipeline, daemon, and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
