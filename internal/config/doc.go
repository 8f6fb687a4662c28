// Package config loads, normalizes, and validates the TOML configuration
// for the pipeline: data/cache directories, merge scoring parameters, the
// forced-alignment engine, the entity services, and logging.
package config
