package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_API_TOKEN", "token")
	t.Setenv("DATABASE_URL", "")

	cfg, err := load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "token", cfg.TelegramAPIToken)
	assert.Equal(t, "assets/lessons", cfg.LessonsDir)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, 10*time.Second, cfg.Review.SaveTimeout)
	assert.Equal(t, "0 * * * *", cfg.Review.ReminderSchedule)
	assert.InDelta(t, 25.0, cfg.Review.RemindersPerSecond, 1e-9)
	assert.NoError(t, cfg.RequireToken())
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_API_TOKEN", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/flashcards")

	dir := t.TempDir()
	yaml := `
env: production
lessons_dir: /srv/lessons
storage:
  driver: postgres
  max_connections: 5
  max_conn_lifetime: 1m
review:
  save_timeout: 0s
  reminder_schedule: "@daily"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := load(dir)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "/srv/lessons", cfg.LessonsDir)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Storage.MaxConnections)
	assert.Equal(t, time.Minute, cfg.Storage.MaxConnLifetime)
	assert.Zero(t, cfg.Review.SaveTimeout)
	assert.Equal(t, "@daily", cfg.Review.ReminderSchedule)

	dsn, err := cfg.Storage.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/flashcards", dsn)

	assert.ErrorIs(t, cfg.RequireToken(), ErrMissingEnvironmentVariables)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LessonsDir: "lessons",
			Storage:    Storage{Driver: DriverFile, Dir: "data"},
			Review:     Review{SaveTimeout: time.Second, RemindersPerSecond: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, ErrUnknownStorageDriver},
		{"postgres without url", func(c *Config) { c.Storage.Driver = DriverPostgres }, ErrMissingEnvironmentVariables},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = DriverSQLite }, ErrInvalidConfig},
		{"empty file dir", func(c *Config) { c.Storage.Dir = "" }, ErrInvalidConfig},
		{"no lessons dir", func(c *Config) { c.LessonsDir = "" }, ErrInvalidConfig},
		{"negative timeout", func(c *Config) { c.Review.SaveTimeout = -time.Second }, ErrInvalidConfig},
		{"zero rate", func(c *Config) { c.Review.RemindersPerSecond = 0 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
