// Package config loads the server configuration from environment
// variables, command-line flags, and an optional JSON file, merges the
// sources with earlier-wins semantics, and validates the result before
// the application starts.
package config
