package out

import (
	"context"

	integrationdomain "stint/internal/modules/integration/domain"
	"stint/internal/modules/plugin/domain"
)

// ManifestStore loads the installed plugin manifests.
type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Host talks to a plugin binary over its wire protocol.
type Host interface {
	// CheckLifecycle verifies the plugin can be started and spoken to.
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	// GetMetadata asks a running plugin to describe itself.
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	// Deliver hands one event to the plugin.
	Deliver(ctx context.Context, manifest domain.Manifest, event integrationdomain.Event) error
}
