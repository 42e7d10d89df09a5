package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAuthConfigs indicates invalid authentication settings
	// (for example, a missing token signing key).
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration: token sign key is required")
	// ErrInvalidStorageConfigs indicates that no storage backend was
	// configured: either a database DSN or a JSON file path is required.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration: no backend configured")
	// ErrAmbiguousStorageConfigs indicates that both storage backends were
	// configured at once; exactly one must be chosen.
	ErrAmbiguousStorageConfigs = errors.New("invalid storage configuration: both db and file backends configured")
)
