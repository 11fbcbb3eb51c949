package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/henribesnard/ragkit/internal/logger"
)

// Mode selects how the backend process is launched. It is fixed for the
// lifetime of the supervisor; there is no runtime switching.
type Mode string

const (
	// ModeDevelopment spawns the backend through a system-resolved
	// Python interpreter. Its output is not captured.
	ModeDevelopment Mode = "development"
	// ModeProduction spawns the interpreter bundled under the resource
	// directory and captures its output stream.
	ModeProduction Mode = "production"
)

// Backend launch defaults, mirroring the desktop shell's behavior.
const (
	DefaultInterpreter = "python3"
	DefaultEntrypoint  = "ragkit.desktop.main"

	DefaultPortRangeStart = 8100
	DefaultPortRangeEnd   = 8200 // exclusive
)

// DevelopmentConfig configures the development launch strategy.
type DevelopmentConfig struct {
	Interpreter string `mapstructure:"interpreter"`
	Entrypoint  string `mapstructure:"entrypoint"`
}

// SidecarConfig configures the production launch strategy. ResourceDir
// is the application resource directory containing the bundled runtime.
type SidecarConfig struct {
	ResourceDir string `mapstructure:"resource_dir"`
	Entrypoint  string `mapstructure:"entrypoint"`
}

// PortsConfig bounds the port scan. End is exclusive.
type PortsConfig struct {
	Start int `mapstructure:"start"`
	End   int `mapstructure:"end"`
}

// ReadinessConfig controls the startup health probe loop.
type ReadinessConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	Interval       time.Duration `mapstructure:"interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ShutdownConfig controls the graceful-then-forced stop protocol.
type ShutdownConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Grace          time.Duration `mapstructure:"grace"`
}

// HistoryConfig enables recording of backend lifecycle events.
// DSN selects the sink backend (sqlite file path or postgres URL).
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// Config is the top-level supervisor configuration.
type Config struct {
	Mode        Mode              `mapstructure:"mode"`
	Development DevelopmentConfig `mapstructure:"development"`
	Sidecar     SidecarConfig     `mapstructure:"sidecar"`
	Ports       PortsConfig       `mapstructure:"ports"`
	Readiness   ReadinessConfig   `mapstructure:"readiness"`
	Shutdown    ShutdownConfig    `mapstructure:"shutdown"`
	Log         logger.Config     `mapstructure:"log"`
	History     HistoryConfig     `mapstructure:"history"`
}

// Default returns the configuration used when no file is present. The
// timing constants are the backend contract: 30s readiness deadline,
// 250ms probe interval, 2s per-probe timeout, 500ms shutdown grace.
func Default() Config {
	return Config{
		Mode: ModeDevelopment,
		Development: DevelopmentConfig{
			Interpreter: DefaultInterpreter,
			Entrypoint:  DefaultEntrypoint,
		},
		Sidecar: SidecarConfig{
			Entrypoint: DefaultEntrypoint,
		},
		Ports: PortsConfig{Start: DefaultPortRangeStart, End: DefaultPortRangeEnd},
		Readiness: ReadinessConfig{
			Timeout:        30 * time.Second,
			Interval:       250 * time.Millisecond,
			RequestTimeout: 2 * time.Second,
		},
		Shutdown: ShutdownConfig{
			RequestTimeout: 5 * time.Second,
			Grace:          500 * time.Millisecond,
		},
	}
}

// DefaultPath returns the config file location under the user profile.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".ragkit", "desktop.toml")
}

// Load reads a TOML config file and merges it over Default.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads the config file when it exists and falls back to
// Default when it does not. Any other read error is reported.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate rejects configurations the supervisor cannot act on.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeDevelopment, ModeProduction:
	default:
		return fmt.Errorf("invalid mode %q (want %q or %q)", c.Mode, ModeDevelopment, ModeProduction)
	}
	if c.Ports.Start <= 0 || c.Ports.End <= c.Ports.Start {
		return fmt.Errorf("invalid port range [%d, %d)", c.Ports.Start, c.Ports.End)
	}
	if c.Mode == ModeProduction && c.Sidecar.ResourceDir == "" {
		return fmt.Errorf("production mode requires sidecar.resource_dir")
	}
	if c.Readiness.Timeout <= 0 || c.Readiness.Interval <= 0 || c.Readiness.RequestTimeout <= 0 {
		return fmt.Errorf("readiness timings must be positive")
	}
	return nil
}
