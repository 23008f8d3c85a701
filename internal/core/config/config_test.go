package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: article-api
  env: local
  http:
    port: 9090
jwt:
  issuer: test
  access:
    secret: access-secret-0123456789
    ttl: 15m
  refresh:
    secret: refresh-secret-0123456789
    ttl: 7d
  reset:
    secret: reset-secret-0123456789
    ttl: 10m
auth:
  bcryptcost: 10
  resetlink: http://localhost:3000/reset
db:
  driver: postgres
  dsn: host=localhost
mail:
  provider: log
  from: test@example.com
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_ReadsYAMLAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.HTTP.Port)
	assert.Equal(t, "15m", cfg.JWT.Access.TTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "mock", cfg.Summary.Provider)
	assert.Equal(t, 8081, cfg.App.Admin.Port)
	assert.False(t, cfg.Auth.BindResetToken)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_JWT_ACCESS_SECRET", "overridden-access-secret")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "overridden-access-secret", cfg.JWT.Access.Secret)
}

func TestLoad_RejectsSharedSecrets(t *testing.T) {
	t.Setenv("APP_JWT_RESET_SECRET", "access-secret-0123456789")

	_, err := Load(writeConfig(t, sampleYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "distinct")
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	t.Setenv("APP_JWT_REFRESH_SECRET", "short")

	_, err := Load(writeConfig(t, sampleYAML))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
