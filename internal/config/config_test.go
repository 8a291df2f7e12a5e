package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := Load(viper.New(), home)
	require.NoError(t, err)

	assert.Empty(t, cfg.Telegram.Token)
	assert.Equal(t, 2, cfg.Browser.MaxSessions)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 6*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Login.PendingTTL)
	assert.Equal(t, 10*time.Minute, cfg.Collector.ListBudget)
	assert.Equal(t, 3*time.Second, cfg.Browser.ActionTimeout)
	assert.Equal(t, filepath.Join(home, DirName), cfg.Storage.Dir)
	assert.Equal(t, filepath.Join(home, DirName, "artifacts"), cfg.Storage.ArtifactsDir())
	assert.Equal(t, filepath.Join(home, DirName, "secrets"), cfg.Storage.SecretsDir())
	assert.Equal(t, SecretBackendPass, cfg.Storage.SecretBackend)
	assert.Equal(t, "followcheck/telegram-token", cfg.Telegram.TokenSecret)
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, DirName)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[telegram]
token = "from-file"
allowed_users = [11, 22]

[browser]
max_sessions = 4
headless = false

[session]
ttl = "30m"
`), 0o600))

	t.Setenv("FOLLOWCHECK_TELEGRAM_TOKEN", "from-env")
	t.Setenv("FOLLOWCHECK_COLLECTOR_STABLE_ITERATIONS", "9")

	cfg, err := Load(viper.New(), home)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, []int64{11, 22}, cfg.Telegram.AllowedUsers)
	assert.Equal(t, 4, cfg.Browser.MaxSessions)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 9, cfg.Collector.StableIterations)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("FOLLOWCHECK_BROWSER_MAX_SESSIONS", "0")
	t.Setenv("FOLLOWCHECK_TELEGRAM_ALLOWED_USERS", "12,abc")

	_, err := Load(viper.New(), t.TempDir())
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "abc")

	t.Setenv("FOLLOWCHECK_TELEGRAM_ALLOWED_USERS", "12, 13")
	_, err = Load(viper.New(), t.TempDir())
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), KeyBrowserMaxSessions)

	t.Setenv("FOLLOWCHECK_BROWSER_MAX_SESSIONS", "2")
	t.Setenv("FOLLOWCHECK_STORAGE_SECRET_BACKEND", "vault")
	_, err = Load(viper.New(), t.TempDir())
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), KeyStorageSecretBackend)

	t.Setenv("FOLLOWCHECK_STORAGE_SECRET_BACKEND", "file")
	t.Setenv("FOLLOWCHECK_BROWSER_ACTION_TIMEOUT", "0s")
	_, err = Load(viper.New(), t.TempDir())
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), KeyBrowserActionTimeout)
}

func TestParseUserIDs(t *testing.T) {
	ids, err := parseUserIDs([]string{"1,2", "3 4", "5"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}
