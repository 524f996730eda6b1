package in

import (
	"context"

	webhookdto "stint/internal/modules/webhook/dto"
	webhookin "stint/internal/modules/webhook/port/in"
)

type CLIHandler struct {
	usecase webhookin.Usecase
}

func NewCLIHandler(usecase webhookin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Add(ctx context.Context, input webhookdto.AddInput) (webhookdto.WebhookOutput, error) {
	return h.usecase.Add(ctx, input)
}

func (h CLIHandler) List(ctx context.Context) (webhookdto.ListOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Remove(ctx context.Context, name string) error {
	return h.usecase.Remove(ctx, name)
}

func (h CLIHandler) Enable(ctx context.Context, name string) (webhookdto.WebhookOutput, error) {
	return h.usecase.Enable(ctx, name)
}

func (h CLIHandler) Disable(ctx context.Context, name string) (webhookdto.WebhookOutput, error) {
	return h.usecase.Disable(ctx, name)
}

func (h CLIHandler) Test(ctx context.Context, name string) (webhookdto.DeliveryOutput, error) {
	return h.usecase.Test(ctx, name)
}

func (h CLIHandler) History(ctx context.Context, input webhookdto.HistoryInput) (webhookdto.HistoryOutput, error) {
	return h.usecase.History(ctx, input)
}
