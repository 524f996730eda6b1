package in

import (
	"context"

	"stint/internal/modules/integration/dto"
)

// Publisher is the narrow port event emitters depend on.
type Publisher interface {
	Publish(ctx context.Context, input dto.PublishInput) (dto.PublishOutput, error)
}

type Usecase interface {
	Publisher
	Status(ctx context.Context) (dto.StatusOutput, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
	SetEnabled(ctx context.Context, input dto.SetEnabledInput) (dto.SetEnabledOutput, error)
	ProcessRetries(ctx context.Context) (dto.RetryOutput, error)
}
