// Package daemon manages the LifeXP runtime lifecycle and configuration.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lifexp-app/lifexp/internal/infra/scheduler"
)

// ConfigFile is the config file name inside the LifeXP home.
const ConfigFile = "config.toml"

// Config holds all daemon configuration.
type Config struct {
	API         APIConfig         `toml:"api"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Quests      QuestsConfig      `toml:"quests"`
	Progression ProgressionConfig `toml:"progression"`
	Cache       CacheConfig       `toml:"cache"`
	Telemetry   TelemetryConfig   `toml:"telemetry"`
	CLI         CLIConfig         `toml:"cli"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig selects the backing store.
type StorageConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `toml:"driver"`
	// DSN is the postgres connection string. When empty the DB_* environment
	// variables are used. Ignored for sqlite.
	DSN string `toml:"dsn"`
	// Dir holds the sqlite database. Defaults to the LifeXP home.
	Dir string `toml:"dir"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// QuestsConfig controls daily quest generation.
type QuestsConfig struct {
	DailyCount      int    `toml:"daily_count"`
	Schedule        string `toml:"schedule"`
	TimezoneDefault string `toml:"timezone_default"`
}

// ProgressionConfig controls the optimistic write loop.
type ProgressionConfig struct {
	MaxWriteRetries int `toml:"max_write_retries"`
}

// CacheConfig controls the profile cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	TTL     string `toml:"ttl"`
}

// TelemetryConfig controls metrics and health checks.
type TelemetryConfig struct {
	Metrics        bool   `toml:"metrics"`
	HealthInterval string `toml:"health_interval"`
}

// CLIConfig holds defaults for the command-line client.
type CLIConfig struct {
	// User is the acting user for CLI commands when --user is not given.
	User string `toml:"user"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8787,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Driver: "sqlite",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Quests: QuestsConfig{
			DailyCount:      3,
			Schedule:        scheduler.DefaultConfig().Schedule,
			TimezoneDefault: "UTC",
		},
		Progression: ProgressionConfig{
			MaxWriteRetries: 5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     "30s",
		},
		Telemetry: TelemetryConfig{
			Metrics:        true,
			HealthInterval: "60s",
		},
	}
}

// LoadConfig reads config from ~/.lifexp/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	return LoadConfigFile(ConfigPath())
}

// LoadConfigFile decodes path over the defaults. A missing file is not an error.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("parse config: unknown keys %s", strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.lifexp/config.toml.
func SaveConfig(cfg Config) error {
	return SaveConfigFile(ConfigPath(), cfg)
}

// SaveConfigFile writes cfg to path, creating the parent directory.
func SaveConfigFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(field, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %s", field, fmt.Sprintf(format, args...)))
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		bad("api.port", "must be between 1 and 65535, got %d", c.API.Port)
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		bad("storage.driver", "must be sqlite or postgres, got %q", c.Storage.Driver)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		bad("logging.level", "unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		bad("logging.format", "must be text or json, got %q", c.Logging.Format)
	}
	if c.Quests.DailyCount < 1 {
		bad("quests.daily_count", "must be at least 1, got %d", c.Quests.DailyCount)
	}
	if err := scheduler.ValidateSchedule(c.Quests.Schedule); err != nil {
		bad("quests.schedule", "%v", err)
	}
	if _, err := time.LoadLocation(c.Quests.TimezoneDefault); err != nil {
		bad("quests.timezone_default", "%v", err)
	}
	if c.Progression.MaxWriteRetries < 1 {
		bad("progression.max_write_retries", "must be at least 1, got %d", c.Progression.MaxWriteRetries)
	}
	if _, err := time.ParseDuration(c.Cache.TTL); c.Cache.TTL != "" && err != nil {
		bad("cache.ttl", "%v", err)
	}
	if _, err := time.ParseDuration(c.Telemetry.HealthInterval); c.Telemetry.HealthInterval != "" && err != nil {
		bad("telemetry.health_interval", "%v", err)
	}

	return errors.Join(errs...)
}

// lifexpHome returns the LifeXP data directory.
func lifexpHome() string {
	if env := os.Getenv("LIFEXP_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lifexp")
}

// LifexpHome is exported for use by other packages.
func LifexpHome() string {
	return lifexpHome()
}

// ConfigPath is the location of the config file.
func ConfigPath() string {
	return filepath.Join(lifexpHome(), ConfigFile)
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
