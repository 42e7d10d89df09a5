package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_PopulatesNestedFields(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SIGN_KEY", "supersecret")
	t.Setenv("AUTH_TOKEN_ISSUER", "test-issuer")
	t.Setenv("AUTH_TOKEN_DURATION", "12h")
	t.Setenv("STORAGE_DB_DATABASE_URI", "postgres://localhost:5432/shiptrack")
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9999")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "supersecret", cfg.Auth.TokenSignKey)
	assert.Equal(t, "test-issuer", cfg.Auth.TokenIssuer)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, "postgres://localhost:5432/shiptrack", cfg.Storage.DB.DSN)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.HTTPAddress)
}

func TestParseEnv_EmptyEnvironmentLeavesZeroValues(t *testing.T) {
	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Zero(t, cfg.Auth.TokenDuration)
	assert.Empty(t, cfg.Storage.File.Path)
}

func TestParseEnv_FileStorePath(t *testing.T) {
	t.Setenv("STORAGE_FILE_PATH", "/var/lib/shiptrack/db.json")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "/var/lib/shiptrack/db.json", cfg.Storage.File.Path)
}
