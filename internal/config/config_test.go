package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Session.Lifetime)
	assert.False(t, cfg.Auth.Discord.Enabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
database:
  driver: postgres
  dsn: postgres://localhost/brackets
server:
  port: 9000
  cors_origins: ["https://a.example"]
session:
  lifetime: 2h
auth:
  google:
    key: file-key
    secret: file-secret
log_level: warn
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://b.example, https://c.example,")
	t.Setenv("GOOGLE_SECRET", "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/brackets", cfg.Database.DSN)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"https://b.example", "https://c.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Session.Lifetime)
	assert.Equal(t, "file-key", cfg.Auth.Google.Key)
	assert.Equal(t, "env-secret", cfg.Auth.Google.Secret)
	assert.True(t, cfg.Auth.Google.Enabled())

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "port not a number", env: map[string]string{"SERVER_PORT": "http"}},
		{name: "port out of range", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "bad lifetime", env: map[string]string{"SESSION_LIFETIME": "forever"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "chatty"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeFile(t, "server: [port"))
	assert.Error(t, err)
}
