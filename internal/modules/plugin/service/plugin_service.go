package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	integrationdomain "stint/internal/modules/integration/domain"
	"stint/internal/modules/plugin/domain"
	"stint/internal/modules/plugin/dto"
	pluginout "stint/internal/modules/plugin/port/out"
	apperrors "stint/internal/platform/errors"
)

// PluginService loads manifests fresh on every call so edits to the
// manifest file take effect without a restart. Binaries are checksummed
// before each spawn.
type PluginService struct {
	store pluginout.ManifestStore
	host  pluginout.Host
}

func NewPluginService(store pluginout.ManifestStore, host pluginout.Host) *PluginService {
	return &PluginService{store: store, host: host}
}

func (s *PluginService) List(ctx context.Context) ([]dto.PluginInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PluginInfo, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, dto.PluginInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Events: m.Events})
	}
	return out, nil
}

func (s *PluginService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *PluginService) Describe(ctx context.Context, name string) (dto.MetadataOutput, error) {
	manifest, err := s.getRunnableManifest(ctx, name)
	if err != nil {
		return dto.MetadataOutput{}, err
	}
	meta, err := s.host.GetMetadata(ctx, manifest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return dto.MetadataOutput{}, fmt.Errorf("%w: %s", domain.ErrPluginTimeout, name)
		}
		return dto.MetadataOutput{}, err
	}
	return dto.MetadataOutput{Name: meta.Name, Version: meta.Version, Events: meta.Events}, nil
}

// HandleEvent fans the event out to every enabled plugin subscribed to its
// kind. One failing plugin does not stop the others; all failures come back
// joined alongside the names that did deliver.
func (s *PluginService) HandleEvent(ctx context.Context, event integrationdomain.Event) ([]string, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	delivered := make([]string, 0, len(manifests))
	var errs []error
	for _, m := range manifests {
		if !m.Enabled || !m.Subscribed(event.Kind) {
			continue
		}
		if err := checksumMatches(m.Binary, m.SHA256); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", m.Name, err))
			continue
		}
		if err := s.host.Deliver(ctx, m, event); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", m.Name, err))
			continue
		}
		delivered = append(delivered, m.Name)
	}
	return delivered, errors.Join(errs...)
}

func (s *PluginService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate plugin name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func (s *PluginService) getRunnableManifest(ctx context.Context, pluginName string) (domain.Manifest, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	manifest := domain.Manifest{}
	found := false
	for _, item := range manifests {
		if item.Name == pluginName {
			manifest = item
			found = true
			break
		}
	}
	if !found {
		return domain.Manifest{}, fmt.Errorf("plugin %q: %w", pluginName, apperrors.ErrNotFound)
	}
	if !manifest.Enabled {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrPluginDisabled, pluginName)
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return domain.Manifest{}, err
	}
	return manifest, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
