// Package config loads, normalizes, and validates hopper's TOML
// configuration. A Config is immutable after Load; every path field is
// absolute once normalization has run.
package config
