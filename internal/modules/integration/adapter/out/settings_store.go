package out

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stint/internal/modules/integration/domain"
	integrationout "stint/internal/modules/integration/port/out"
)

type fileSettings struct {
	Enabled  *bool           `yaml:"enabled"`
	Handlers map[string]bool `yaml:"handlers,omitempty"`
}

// YAMLSettingsStore persists enablement flags as a small YAML document.
// A missing file means the defaults: everything enabled.
type YAMLSettingsStore struct {
	path string
}

func NewYAMLSettingsStore(path string) integrationout.SettingsStore {
	return &YAMLSettingsStore{path: path}
}

func (s *YAMLSettingsStore) Load(_ context.Context) (domain.Settings, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read integration settings: %w", err)
	}
	var fs fileSettings
	if err := yaml.Unmarshal(raw, &fs); err != nil {
		return domain.Settings{}, fmt.Errorf("parse integration settings: %w", err)
	}
	settings := domain.DefaultSettings()
	if fs.Enabled != nil {
		settings.Enabled = *fs.Enabled
	}
	for name, enabled := range fs.Handlers {
		settings.Handlers[name] = enabled
	}
	return settings, nil
}

func (s *YAMLSettingsStore) Save(_ context.Context, settings domain.Settings) error {
	enabled := settings.Enabled
	raw, err := yaml.Marshal(fileSettings{Enabled: &enabled, Handlers: settings.Handlers})
	if err != nil {
		return fmt.Errorf("encode integration settings: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write integration settings: %w", err)
	}
	return nil
}
