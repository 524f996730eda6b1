package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"stint/internal/platform/config"
)

func TestNewUsesDefaultsWhenFileAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, "stint.db") {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Fatalf("expected default max attempts 3, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay != time.Second {
		t.Fatalf("expected default base delay 1s, got %v", cfg.Retry.BaseDelay)
	}
	if cfg.Retry.MaxDelay != 5*time.Minute {
		t.Fatalf("expected default max delay 5m, got %v", cfg.Retry.MaxDelay)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("expected default http timeout 30s, got %v", cfg.HTTPTimeout)
	}
	if cfg.HistoryLimit != 100 {
		t.Fatalf("expected default history limit 100, got %d", cfg.HistoryLimit)
	}
}

func TestNewAppliesFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	body := "log_level: debug\nhttp_timeout: 10s\nretry:\n  max_attempts: 5\n  base_delay: 2s\n  max_delay: 1m\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level debug, got %q", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("expected http timeout 10s, got %v", cfg.HTTPTimeout)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.BaseDelay != 2*time.Second || cfg.Retry.MaxDelay != time.Minute {
		t.Fatalf("unexpected retry config %+v", cfg.Retry)
	}
}

func TestNewRejectsMalformedDurations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("http_timeout: soon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := config.New(dir); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}

func TestNewRejectsNonPositiveDurations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("retry:\n  base_delay: -1s\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := config.New(dir); err == nil {
		t.Fatal("expected error for negative duration")
	}
}
