package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoadOptions{LookupEnv: env(nil)})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, "discussionComments", cfg.CommentsKey)
	assert.Equal(t, "discussionFormData", cfg.DraftKey)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_YAMLFile(t *testing.T) {
	cfg, err := Load(LoadOptions{File: "testdata/threadboard.yaml", LookupEnv: env(nil)})
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/threadboard/board.db", cfg.DBPath)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 5242880, cfg.QuotaBytes)
	assert.Equal(t, "digest", cfg.Staleness)
	assert.False(t, cfg.SeedWelcome)
	assert.True(t, cfg.WatchFile, "unset keys keep their defaults")
}

func TestLoad_YAMLRejectsUnknownKeys(t *testing.T) {
	_, err := Load(LoadOptions{File: "testdata/unknown.yaml", LookupEnv: env(nil)})

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "testdata/unknown.yaml", cerr.Source)
	assert.Contains(t, err.Error(), "poll_every")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "nope.yaml"), LookupEnv: env(nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read file")
}

func TestLoad_Precedence(t *testing.T) {
	cfg, err := Load(LoadOptions{
		File:    "testdata/threadboard.yaml",
		EnvFile: "testdata/test.env",
		LookupEnv: env(map[string]string{
			"THREADBOARD_DB_PATH":       "from-env.db",
			"THREADBOARD_POLL_INTERVAL": "750ms",
			"THREADBOARD_WATCH_FILE":    "false",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.DBPath, "environment beats .env and YAML")
	assert.Equal(t, "debug", cfg.LogLevel, ".env beats defaults")
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 750*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "digest", cfg.Staleness, "YAML beats defaults")
	assert.False(t, cfg.WatchFile)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	cfg, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), ".env"), LookupEnv: env(nil)})
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
}

func TestLoad_BadEnvValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"duration", "THREADBOARD_POLL_INTERVAL", "soon"},
		{"integer", "THREADBOARD_QUOTA_BYTES", "lots"},
		{"boolean", "THREADBOARD_SEED_WELCOME", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(LoadOptions{LookupEnv: env(map[string]string{tt.key: tt.val})})

			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.key, cerr.Source)
		})
	}
}

func TestValidate_Schema(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty db path", func(c *Config) { c.DBPath = "" }, "db_path"},
		{"bad staleness", func(c *Config) { c.Staleness = "merge" }, "staleness"},
		{"poll too fast", func(c *Config) { c.PollInterval = time.Millisecond }, "poll_interval"},
		{"negative quota", func(c *Config) { c.QuotaBytes = -1 }, "quota_bytes"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"key with spaces", func(c *Config) { c.CommentsKey = "my comments" }, "comments_key"},
		{"shared keys", func(c *Config) { c.DraftKey = c.CommentsKey }, "draft_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()

			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "schema", cerr.Source)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_AcceptsUppercaseLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "WARN"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, slog.LevelWarn, cfg.Level())
}
