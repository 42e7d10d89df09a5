package config

import "time"

// defaultTokenDuration is how long an issued token stays valid when no
// duration is configured.
const defaultTokenDuration = 24 * time.Hour

const defaultTokenIssuer = "ship-track"

const defaultHTTPAddress = "0.0.0.0:8080"

// applyDefaults fills zero-valued optional fields of the merged config with
// their documented defaults. Required fields are left untouched so that
// validate can flag them.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Auth.TokenDuration == 0 {
		cfg.Auth.TokenDuration = defaultTokenDuration
	}

	if cfg.Auth.TokenIssuer == "" {
		cfg.Auth.TokenIssuer = defaultTokenIssuer
	}

	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = defaultHTTPAddress
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Auth.TokenSignKey == "" {
		return ErrInvalidAuthConfigs
	}

	if cfg.Storage.DB.DSN == "" && cfg.Storage.File.Path == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.DB.DSN != "" && cfg.Storage.File.Path != "" {
		return ErrAmbiguousStorageConfigs
	}

	return nil
}
