package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the resolved data directory paths and the tunables read
// from <data-dir>/config.yaml. Missing file or missing keys fall back to
// defaults; a present but malformed file is an error.
type Config struct {
	DataDir          string
	DBPath           string
	IntegrationsPath string
	PluginsPath      string

	LogLevel     string
	HistoryLimit int
	HTTPTimeout  time.Duration
	Retry        Retry
}

// Retry holds the delivery retry defaults applied to webhooks that do not
// override them.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

type fileConfig struct {
	LogLevel     string `yaml:"log_level"`
	HistoryLimit int    `yaml:"history_limit"`
	HTTPTimeout  string `yaml:"http_timeout"`
	Retry        struct {
		MaxAttempts int    `yaml:"max_attempts"`
		BaseDelay   string `yaml:"base_delay"`
		MaxDelay    string `yaml:"max_delay"`
	} `yaml:"retry"`
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".stint")
	}
	cfg := Config{
		DataDir:          dataDir,
		DBPath:           filepath.Join(dataDir, "stint.db"),
		IntegrationsPath: filepath.Join(dataDir, "integrations.yaml"),
		PluginsPath:      filepath.Join(dataDir, "plugins.json"),
		LogLevel:         "warn",
		HistoryLimit:     100,
		HTTPTimeout:      30 * time.Second,
		Retry: Retry{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    5 * time.Minute,
		},
	}
	if err := cfg.applyFile(filepath.Join(dataDir, "config.yaml")); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.HistoryLimit > 0 {
		c.HistoryLimit = fc.HistoryLimit
	}
	if err := overrideDuration(&c.HTTPTimeout, fc.HTTPTimeout, "http_timeout"); err != nil {
		return err
	}
	if fc.Retry.MaxAttempts > 0 {
		c.Retry.MaxAttempts = fc.Retry.MaxAttempts
	}
	if err := overrideDuration(&c.Retry.BaseDelay, fc.Retry.BaseDelay, "retry.base_delay"); err != nil {
		return err
	}
	if err := overrideDuration(&c.Retry.MaxDelay, fc.Retry.MaxDelay, "retry.max_delay"); err != nil {
		return err
	}
	return nil
}

func overrideDuration(dst *time.Duration, raw, key string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("config %s must be positive", key)
	}
	*dst = d
	return nil
}
