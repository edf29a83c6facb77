package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("CATALOG_AUTH_API_KEY", "k")
	t.Setenv("CATALOG_AUTH_JWT_SECRET_KEY", "s")
	t.Setenv("CATALOG_RATELIMIT_DEFAULT", "10/minute")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "k", cfg.Auth.APIKey)
	assert.Equal(t, 5, cfg.Enrichment.MaxConcurrency)
	assert.Equal(t, "memory://", cfg.RateLimit.StorageURI)

	q, err := cfg.RateLimit.DefaultQuota()
	require.NoError(t, err)
	assert.Equal(t, 10, q.Limit)

	expiry, err := cfg.Auth.JWT.Expiry()
	require.NoError(t, err)
	assert.Zero(t, expiry)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
auth:
  api_key: file-key
  jwt:
    secret_key: file-secret
    access_token_expiry: 1h
  users:
    - username: alice
      password: pw
      roles: [admin, editor]
catalog:
  path: /data/movies.csv
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-config.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Len(t, cfg.Auth.Users, 1)
	assert.Equal(t, []string{"admin", "editor"}, cfg.Auth.Users[0].Roles)
	assert.Equal(t, "/data/movies.csv", cfg.Catalog.Path)

	expiry, err := cfg.Auth.JWT.Expiry()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, expiry)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.api_key")
	assert.Contains(t, err.Error(), "auth.jwt.secret_key")
}

func TestValidateRejectsBadQuota(t *testing.T) {
	cfg := Config{
		Auth:      AuthConfig{APIKey: "k", JWT: JWTConfig{SecretKey: "s"}},
		RateLimit: RateLimitConfig{Default: "lots", Login: "6 per minute"},
	}
	assert.ErrorContains(t, cfg.Validate(), "ratelimit.default")
}

func TestCatalogPathExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := CatalogConfig{Path: "~/catalog.json"}.CatalogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "catalog.json"), p)
}
