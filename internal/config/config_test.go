package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "data/auth.db", cfg.Database.Path)
	assert.Equal(t, "demo-auth", cfg.Auth.Issuer)
	assert.Equal(t, 86400, cfg.Auth.TokenTTLSeconds)
	assert.Empty(t, cfg.Auth.Secret)
	assert.Empty(t, cfg.Auth.AdminPassword)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AUTH_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("AUTH_AUTH_SECRET", "secret-for-signing-jwt-tokens")
	t.Setenv("AUTH_AUTH_TOKENTTLSECONDS", "3600")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "secret-for-signing-jwt-tokens", cfg.Auth.Secret)
	assert.Equal(t, 3600, cfg.Auth.TokenTTLSeconds)
}

func TestLoadSecretsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth_auth_secret"), []byte("from-secrets-file\n"), 0o600))

	t.Setenv("AUTH_AUTH_SECRET", "") // ensure restore after test
	os.Unsetenv("AUTH_AUTH_SECRET")

	loadSecretsDir(dir)
	assert.Equal(t, "from-secrets-file", os.Getenv("AUTH_AUTH_SECRET"))
}

func TestLoadSecretsDirDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth_auth_secret"), []byte("from-secrets-file"), 0o600))

	t.Setenv("AUTH_AUTH_SECRET", "from-env")
	loadSecretsDir(dir)
	assert.Equal(t, "from-env", os.Getenv("AUTH_AUTH_SECRET"))
}
