package usecase

import (
	"context"

	integrationdomain "stint/internal/modules/integration/domain"
	"stint/internal/modules/plugin/dto"
	pluginin "stint/internal/modules/plugin/port/in"
	"stint/internal/modules/plugin/service"
)

type Interactor struct {
	svc *service.PluginService
}

func NewInteractor(svc *service.PluginService) pluginin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Describe(ctx context.Context, name string) (dto.MetadataOutput, error) {
	return i.svc.Describe(ctx, name)
}

func (i *Interactor) HandleEvent(ctx context.Context, input dto.EventInput) (dto.HandleOutput, error) {
	delivered, err := i.svc.HandleEvent(ctx, integrationdomain.Event{
		ID:         input.EventID,
		Kind:       input.Kind,
		OccurredAt: input.OccurredAt,
		Payload:    input.Payload,
	})
	return dto.HandleOutput{Delivered: delivered}, err
}
