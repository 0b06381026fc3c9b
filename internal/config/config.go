// Package config loads avwizard settings.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file,
// AVWIZARD_* environment variables, command-line flags.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AVWIZARD_"

const maxConfigFileSize = 1024 * 1024

// Config is the full application configuration.
type Config struct {
	Store  StoreConfig  `koanf:"store"`
	Log    LogConfig    `koanf:"log"`
	Seed   SeedConfig   `koanf:"seed"`
	Launch LaunchConfig `koanf:"launch"`
}

// StoreConfig locates the local database.
type StoreConfig struct {
	Path        string `koanf:"path"`
	BusyTimeout int    `koanf:"busy_timeout"` // milliseconds
}

// LogConfig controls diagnostic logging to stderr.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // console or json
}

// SeedConfig tunes demo data generation.
type SeedConfig struct {
	// RandomSeed fixes the jitter source when non-zero.
	RandomSeed   uint64 `koanf:"random_seed"`
	SingleFlight bool   `koanf:"single_flight"`
}

// LaunchConfig tunes the simulated workers.
type LaunchConfig struct {
	Heartbeat   time.Duration `koanf:"heartbeat"`
	PersistLogs bool          `koanf:"persist_logs"`
	Duration    time.Duration `koanf:"duration"` // how long `avwizard launch` runs; 0 until interrupted
}

// Load reads defaults, then path (if non-empty and present), then the
// environment, then overrides. Override keys use dotted paths such as
// "store.path". The result is validated.
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Store.Path == "" {
		p, err := DefaultStorePath()
		if err != nil {
			return nil, err
		}
		cfg.Store.Path = p
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envKey maps AVWIZARD_LAUNCH_PERSIST_LOGS to launch.persist_logs:
// the first segment is the section, the rest is the field name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// readConfigFile returns nil content when the file does not exist.
func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config file %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}

// DefaultConfigPath is config.yaml under the user config directory.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "avwizard", "config.yaml"), nil
}

// DefaultStorePath is av_ai_ops.db under $XDG_DATA_HOME/avwizard, which
// defaults to ~/.local/share.
func DefaultStorePath() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate data dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "avwizard", "av_ai_ops.db"), nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	var errs []error
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if c.Store.BusyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("store.busy_timeout must be positive, got %d", c.Store.BusyTimeout))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	if c.Launch.Heartbeat <= 0 {
		errs = append(errs, fmt.Errorf("launch.heartbeat must be positive, got %s", c.Launch.Heartbeat))
	}
	if c.Launch.Duration < 0 {
		errs = append(errs, fmt.Errorf("launch.duration must not be negative, got %s", c.Launch.Duration))
	}
	return errors.Join(errs...)
}
