package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters, lumberjack semantics.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
	DefaultFilename   = "desktop.log"
)

// Config describes where the supervisor writes its own logs.
// If Dir is empty the default is ~/.ragkit/logs, matching where the
// desktop shell expects to find them. Console output is optional and
// meant for running from a terminal in development.
type Config struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultDir returns the log directory used when none is configured.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".ragkit", "logs")
}

// FileWriter returns the rotating writer for the configured log file,
// creating the directory if needed.
func (c Config) FileWriter() (io.WriteCloser, error) {
	dir := c.Dir
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	name := c.Filename
	if name == "" {
		name = DefaultFilename
	}
	return &lj.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}, nil
}

// New builds the application logger: a text handler over the rotating
// file, optionally teed to a colored console handler on stderr.
func New(c Config) (*slog.Logger, io.Closer, error) {
	w, err := c.FileWriter()
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if c.Console {
		h = newTeeHandler(h, NewColorTextHandler(os.Stderr, opts))
	}
	return slog.New(h), w, nil
}

// SlogLevel maps the configured level string to a slog.Level.
// Unknown or empty values fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
