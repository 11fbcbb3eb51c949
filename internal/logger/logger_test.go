package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	log, closer, err := New(Config{Dir: dir, Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Info("backend ready", "port", 8100)
	log.Debug("probe attempt", "n", 3)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, DefaultFilename)) // #nosec G304
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "backend ready") || !strings.Contains(out, "port=8100") {
		t.Fatalf("log output missing entry: %q", out)
	}
	if !strings.Contains(out, "probe attempt") {
		t.Fatalf("debug entry not written at debug level: %q", out)
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	_, closer, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = closer.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir not created: %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := (Config{Level: in}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInfoNotWrittenBelowLevel(t *testing.T) {
	dir := t.TempDir()
	log, closer, err := New(Config{Dir: dir, Level: "error"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("should be filtered")
	_ = closer.Close()

	data, err := os.ReadFile(filepath.Join(dir, DefaultFilename)) // #nosec G304
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "should be filtered") {
		t.Fatal("info entry written at error level")
	}
}
