package in

import (
	"context"

	"stint/internal/modules/plugin/dto"
)

// Usecase lists installed notifier plugins, probes their health, and fans
// events out to the ones subscribed to them.
type Usecase interface {
	List(ctx context.Context) ([]dto.PluginInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Describe(ctx context.Context, name string) (dto.MetadataOutput, error)
	HandleEvent(ctx context.Context, input dto.EventInput) (dto.HandleOutput, error)
}
