package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 20, cfg.History.Depth)
	assert.True(t, cfg.History.Resume)
	assert.Equal(t, time.Second, cfg.Editor.DefaultDuration)
	assert.Equal(t, 5*time.Second, cfg.Script.Timeout)
	assert.Equal(t, snapshot.DriverNone, cfg.Driver())
}

func TestLoad_NoFiles(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().History, cfg.History)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "twick.toml", `
[logging]
level = "debug"
format = "json"

[history]
depth = 5

[editor]
default_duration = "2500ms"
strict_schema = true

[persistence]
driver = "sqlite"
path = "twick.db"
key = "project-1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 5, cfg.History.Depth)
	assert.True(t, cfg.History.Resume, "unset keys keep their defaults")
	assert.Equal(t, 2500*time.Millisecond, cfg.Editor.DefaultDuration)
	assert.True(t, cfg.Editor.StrictSchema)
	assert.Equal(t, snapshot.DriverSQLite, cfg.Driver())
	assert.Equal(t, "project-1", cfg.Persistence.Key)
}

func TestLoad_YAMLOverridesTOML(t *testing.T) {
	base := writeFile(t, "base.toml", `
[history]
depth = 5
resume = false
`)
	override := writeFile(t, "local.yaml", `
history:
  depth: 7
persistence:
  driver: redis
  redis:
    addr: localhost:6380
    ttl: 1h
`)

	cfg, err := Load(base, override)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.History.Depth)
	assert.False(t, cfg.History.Resume)
	assert.Equal(t, snapshot.DriverRedis, cfg.Driver())
	assert.Equal(t, "localhost:6380", cfg.Persistence.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Persistence.Redis.TTL)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	path := writeFile(t, "twick.toml", "[history]\ndepth = 5\n")
	t.Setenv("TWICK_HISTORY_DEPTH", "9")
	t.Setenv("TWICK_SCRIPT_TIMEOUT", "750ms")
	t.Setenv("TWICK_LOG_LEVEL", "warn")
	t.Setenv("TWICK_PERSISTENCE_S3_BUCKET", "snaps")
	t.Setenv("TWICK_PERSISTENCE_DRIVER", "s3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.History.Depth)
	assert.Equal(t, 750*time.Millisecond, cfg.Script.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "snaps", cfg.Persistence.S3.Bucket)
	assert.Equal(t, snapshot.DriverS3, cfg.Driver())
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("TWICK_HISTORY_DEPTH", "lots")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, "twick.toml", "[history]\ndepht = 5\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depht")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "twick.json", "{}")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"depth", func(c *Config) { c.History.Depth = 0 }, "history.depth"},
		{"duration", func(c *Config) { c.Editor.DefaultDuration = 0 }, "editor.default_duration"},
		{"cache", func(c *Config) { c.Probe.CacheSize = -1 }, "probe.cache_size"},
		{"timeout", func(c *Config) { c.Script.Timeout = -time.Second }, "script.timeout"},
		{"driver", func(c *Config) { c.Persistence.Driver = "floppy" }, "persistence.driver"},
		{"path", func(c *Config) { c.Persistence.Driver = "bolt" }, "persistence.path"},
		{"dsn", func(c *Config) { c.Persistence.Driver = "postgres" }, "persistence.dsn"},
		{"bucket", func(c *Config) { c.Persistence.Driver = "s3" }, "persistence.s3.bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.History.Depth = 0
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history.depth")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	_, err = ParseLevel("verbose")
	require.Error(t, err)
}
