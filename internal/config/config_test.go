package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Applies defaults", func(t *testing.T) {
		// Given: a config file that only sets the port
		path := writeConfig(t, "http-port: \"8080\"\n")

		// When: the config is loaded
		conf, err := Load(path)

		// Then: every other field carries its default
		require.NoError(t, err)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, 2*time.Second, conf.ComputerDelay)
		assert.Equal(t, BackendSQLite, conf.Score.Backend)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Reads nested sections", func(t *testing.T) {
		path := writeConfig(t, `
log-level: debug
computer-delay: 500ms
score:
  backend: redis
  timeout: 1s
redis:
  host: cache
  port: "6380"
  db: 2
`)

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, 500*time.Millisecond, conf.ComputerDelay)
		assert.Equal(t, BackendRedis, conf.Score.Backend)
		assert.Equal(t, time.Second, conf.Score.Timeout)
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, 2, conf.Redis.DB)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		t.Setenv("SCORE_BACKEND", "postgres")
		t.Setenv("POSTGRES_DSN", "postgres://localhost/tictactoe")
		path := writeConfig(t, "score:\n  backend: sqlite\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, BackendPostgres, conf.Score.Backend)
		assert.Equal(t, "postgres://localhost/tictactoe", conf.Postgres.DSN)
	})

	t.Run("Rejects unknown backend", func(t *testing.T) {
		path := writeConfig(t, "score:\n  backend: etcd\n")

		_, err := Load(path)

		require.ErrorIs(t, err, ErrUnknownBackend)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		require.Error(t, err)
	})
}
