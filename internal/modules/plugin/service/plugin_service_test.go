package service_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pluginout "stint/internal/modules/plugin/adapter/out"
	"stint/internal/modules/plugin/domain"
	"stint/internal/modules/plugin/service"
)

func TestDoctorDetectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	binPath := filepath.Join(tmp, "dummy-plugin")
	if err := os.WriteFile(binPath, []byte("not-a-real-plugin"), 0o755); err != nil {
		t.Fatalf("write plugin binary: %v", err)
	}
	manifests := []domain.Manifest{{
		Name:    "demo",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  strings.Repeat("0", 64),
		Enabled: true,
	}}
	raw, _ := json.Marshal(manifests)
	manifestPath := filepath.Join(tmp, "plugins.json")
	if err := os.WriteFile(manifestPath, raw, 0o644); err != nil {
		t.Fatalf("write plugins.json: %v", err)
	}

	svc := service.NewPluginService(pluginout.NewFileManifestStore(manifestPath), nil)
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].ChecksumValid {
		t.Fatalf("expected checksum mismatch")
	}
	if !results[0].BinaryReachable {
		t.Fatalf("expected binary to be reachable")
	}
	if results[0].Error != "checksum mismatch" {
		t.Fatalf("unexpected error text: %q", results[0].Error)
	}
}

func TestDoctorReportsMissingBinary(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	manifests := []domain.Manifest{{
		Name:    "ghost",
		Version: "1.0.0",
		Binary:  filepath.Join(tmp, "does-not-exist"),
		SHA256:  strings.Repeat("a", 64),
		Enabled: true,
	}}
	raw, _ := json.Marshal(manifests)
	manifestPath := filepath.Join(tmp, "plugins.json")
	if err := os.WriteFile(manifestPath, raw, 0o644); err != nil {
		t.Fatalf("write plugins.json: %v", err)
	}

	svc := service.NewPluginService(pluginout.NewFileManifestStore(manifestPath), nil)
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].BinaryReachable {
		t.Fatalf("expected unreachable binary")
	}
	if results[0].Error == "" {
		t.Fatalf("expected an error message naming the missing binary")
	}
}
