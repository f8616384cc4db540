// Package config loads, normalizes, and validates tscribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays TSCRIBE_* environment variables
// on top of the file. The Config type centralizes every knob the CLI needs:
// the backend base URL and transport timeout, cache lifecycle tuning, the
// drafts database, download directory, notification sinks, logging, and
// tracing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
