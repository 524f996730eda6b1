package out

import (
	"context"

	"stint/internal/modules/integration/domain"
	integrationout "stint/internal/modules/integration/port/out"
	plugindto "stint/internal/modules/plugin/dto"
	pluginin "stint/internal/modules/plugin/port/in"
)

// PluginHandler bridges the bus to the plugin module. The plugin usecase
// isolates per-plugin failures itself and returns them joined.
type PluginHandler struct {
	plugins pluginin.Usecase
}

func NewPluginHandler(plugins pluginin.Usecase) integrationout.Handler {
	return &PluginHandler{plugins: plugins}
}

func (h *PluginHandler) Name() string { return "plugins" }

func (h *PluginHandler) Handle(ctx context.Context, event domain.Event) error {
	_, err := h.plugins.HandleEvent(ctx, plugindto.EventInput{
		EventID:    event.ID,
		Kind:       event.Kind,
		OccurredAt: event.OccurredAt,
		Payload:    event.Payload,
	})
	return err
}
