// Package config loads, normalizes, and validates coursecaptions configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GOOGLE_TRANSLATE_API_KEY and OPENROUTER_API_KEY. The Config type centralizes
// every knob the CLI and the translation workflow need, so the work directory,
// caption source, and provider credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language codes, and clear validation errors.
package config
