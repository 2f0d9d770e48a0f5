package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/ncounterspecialist/twick-sub001/internal/config/loader"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/history"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TWICK_"

// Config is the full runtime configuration.
type Config struct {
	Logging     Logging     `yaml:"logging" envPrefix:"LOG_"`
	History     History     `yaml:"history" envPrefix:"HISTORY_"`
	Editor      Editor      `yaml:"editor" envPrefix:"EDITOR_"`
	Probe       Probe       `yaml:"probe" envPrefix:"PROBE_"`
	Script      Script      `yaml:"script" envPrefix:"SCRIPT_"`
	Persistence Persistence `yaml:"persistence" envPrefix:"PERSISTENCE_"`
	Metrics     Metrics     `yaml:"metrics" envPrefix:"METRICS_"`
}

// Logging configures the slog handler.
type Logging struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is text or json.
	Format string `yaml:"format" env:"FORMAT"`
}

// History configures undo depth and snapshot resume.
type History struct {
	Depth  int  `yaml:"depth" env:"DEPTH"`
	Resume bool `yaml:"resume" env:"RESUME"`
}

// Editor configures element defaults and document decoding.
type Editor struct {
	DefaultDuration time.Duration `yaml:"default_duration" env:"DEFAULT_DURATION"`
	StrictSchema    bool          `yaml:"strict_schema" env:"STRICT_SCHEMA"`
}

// Probe configures media metadata lookup.
type Probe struct {
	// Manifest is a JSON file of source -> metadata.
	Manifest  string `yaml:"manifest" env:"MANIFEST"`
	CacheSize int    `yaml:"cache_size" env:"CACHE_SIZE"`
}

// Script configures the Lua runner.
type Script struct {
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// Persistence selects the snapshot backend.
type Persistence struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	// Key namespaces snapshot keys as "<key>:<context>". The bare context
	// id is used when empty.
	Key   string `yaml:"key" env:"KEY"`
	Path  string `yaml:"path" env:"PATH"`
	DSN   string `yaml:"dsn" env:"DSN"`
	Redis Redis  `yaml:"redis" envPrefix:"REDIS_"`
	S3    S3     `yaml:"s3" envPrefix:"S3_"`
}

// Redis configures the redis snapshot backend.
type Redis struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// S3 configures the S3 snapshot backend.
type S3 struct {
	Region          string `yaml:"region" env:"REGION"`
	Bucket          string `yaml:"bucket" env:"BUCKET"`
	Prefix          string `yaml:"prefix" env:"PREFIX"`
	Endpoint        string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"SECRET_ACCESS_KEY"`
	PathStyle       bool   `yaml:"path_style" env:"PATH_STYLE"`
}

// Metrics configures the Prometheus endpoint. An empty Addr disables it.
type Metrics struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: Logging{Level: "info", Format: "text"},
		History: History{Depth: history.DefaultMaxEntries, Resume: true},
		Editor:  Editor{DefaultDuration: time.Second},
		Probe:   Probe{CacheSize: 256},
		Script:  Script{Timeout: 5 * time.Second},
		Persistence: Persistence{
			Driver: string(snapshot.DriverNone),
		},
	}
}

// Load builds a Config from defaults, the given files and the environment.
// Missing files are skipped.
func Load(paths ...string) (*Config, error) {
	return LoadFS(loader.DefaultFS(), paths...)
}

// LoadFS is Load over an explicit file system.
func LoadFS(fsys loader.FileSystem, paths ...string) (*Config, error) {
	cfg := Default()

	raw, err := loader.LoadFiles(fsys, paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.apply(raw); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply overlays a merged file map onto c. Unknown keys are rejected.
func (c *Config) apply(raw map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// ApplyEnv overlays TWICK_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks every section and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, invalid("logging.level", "%v", err))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, invalid("logging.format", "must be text or json, got %q", c.Logging.Format))
	}

	if c.History.Depth < 1 {
		errs = append(errs, invalid("history.depth", "must be at least 1, got %d", c.History.Depth))
	}
	if c.Editor.DefaultDuration <= 0 {
		errs = append(errs, invalid("editor.default_duration", "must be positive"))
	}
	if c.Probe.CacheSize < 0 {
		errs = append(errs, invalid("probe.cache_size", "must not be negative"))
	}
	if c.Script.Timeout < 0 {
		errs = append(errs, invalid("script.timeout", "must not be negative"))
	}

	driver, err := snapshot.ParseDriver(c.Persistence.Driver)
	if err != nil {
		errs = append(errs, invalid("persistence.driver", "%v", err))
	}
	switch driver {
	case snapshot.DriverFile, snapshot.DriverSQLite, snapshot.DriverBolt:
		if c.Persistence.Path == "" {
			errs = append(errs, invalid("persistence.path", "required for the %s driver", driver))
		}
	case snapshot.DriverPostgres:
		if c.Persistence.DSN == "" {
			errs = append(errs, invalid("persistence.dsn", "required for the postgres driver"))
		}
	case snapshot.DriverS3:
		if c.Persistence.S3.Bucket == "" {
			errs = append(errs, invalid("persistence.s3.bucket", "required for the s3 driver"))
		}
	}
	if c.Persistence.Redis.TTL < 0 {
		errs = append(errs, invalid("persistence.redis.ttl", "must not be negative"))
	}

	return errors.Join(errs...)
}

// Driver returns the parsed snapshot driver. Call Validate first.
func (c *Config) Driver() snapshot.Driver {
	d, err := snapshot.ParseDriver(c.Persistence.Driver)
	if err != nil {
		return snapshot.DriverNone
	}
	return d
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}
