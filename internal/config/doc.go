// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Values are resolved in order: defaults, an optional config.yaml in the
// working directory, then CLINIC_-prefixed environment variables.
package config
