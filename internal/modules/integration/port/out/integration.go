package out

import (
	"context"

	"stint/internal/modules/integration/domain"
)

// Handler consumes published events. Implementations bridge the bus to the
// webhook and plugin modules.
type Handler interface {
	Name() string
	Handle(ctx context.Context, event domain.Event) error
}

// SettingsStore persists the enablement flags. Load returns
// DefaultSettings when nothing has been saved yet.
type SettingsStore interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}
