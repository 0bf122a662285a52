// Package config loads, normalizes, and validates axon configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the https_proxy environment
// fallback. The Config type centralizes every knob the CLI needs, allowing
// launch arguments, interpreter paths, and patch locations to be discovered
// in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
