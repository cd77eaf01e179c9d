package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "Funny Backend API", cfg.App.Name)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 120, cfg.JWT.AccessTokenExpireMinutes)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 120, cfg.OpenAI.TimeoutSeconds)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins())
	assert.Equal(t, "postgres", cfg.Database().Driver)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  environment: staging
jwt:
  secret_key: from-file
  access_token_expire_minutes: 30
openai:
  model: gpt-4o
cors:
  allow_origins: "http://a.test, http://b.test"
metrics:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, "from-file", cfg.JWT.SecretKey)
	assert.Equal(t, 30, cfg.JWT.AccessTokenExpireMinutes)
	assert.Equal(t, "gpt-4.1-mini", cfg.OpenAI.Model)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}

func TestLoadConfigLegacyNames(t *testing.T) {
	t.Setenv("SECRET_KEY", "legacy")
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/funny")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.JWT.SecretKey)
	assert.Equal(t, "postgres://u:p@h:5432/funny", cfg.Database().DSN)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret_key")

	cfg.JWT.SecretKey = "x"
	cfg.JWT.Algorithm = "RS256"
	cfg.DB.Driver = "mysql"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RS256")
	assert.Contains(t, err.Error(), "mysql")

	cfg.JWT.Algorithm = "HS256"
	cfg.DB.Driver = "sqlite"
	assert.NoError(t, cfg.Validate())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "jwt.secret_key", envKey("JWT_SECRET_KEY"))
	assert.Equal(t, "server.read_timeout_seconds", envKey("SERVER_READ_TIMEOUT_SECONDS"))
	assert.Equal(t, "", envKey("PATH"))
	assert.Equal(t, "", envKey("HOME_DIR"))
}
