package in

import (
	"context"

	"stint/internal/modules/webhook/dto"
)

// Dispatcher is the narrow surface the event bus needs: deliver one event
// to every matching webhook.
type Dispatcher interface {
	Dispatch(ctx context.Context, input dto.DispatchInput) (dto.DispatchOutput, error)
}

type Usecase interface {
	Dispatcher

	Add(ctx context.Context, input dto.AddInput) (dto.WebhookOutput, error)
	List(ctx context.Context) (dto.ListOutput, error)
	Remove(ctx context.Context, name string) error
	Enable(ctx context.Context, name string) (dto.WebhookOutput, error)
	Disable(ctx context.Context, name string) (dto.WebhookOutput, error)
	Test(ctx context.Context, name string) (dto.DeliveryOutput, error)
	History(ctx context.Context, input dto.HistoryInput) (dto.HistoryOutput, error)
	ProcessRetries(ctx context.Context) (dto.RetryOutput, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
}
