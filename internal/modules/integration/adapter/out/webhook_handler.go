package out

import (
	"context"

	"stint/internal/modules/integration/domain"
	integrationout "stint/internal/modules/integration/port/out"
	webhookdto "stint/internal/modules/webhook/dto"
	webhookin "stint/internal/modules/webhook/port/in"
)

// WebhookHandler bridges the bus to the webhook module. Individual webhook
// failures are already recorded in the delivery ledger, so Handle only
// fails when the dispatch itself could not run.
type WebhookHandler struct {
	dispatcher webhookin.Dispatcher
}

func NewWebhookHandler(dispatcher webhookin.Dispatcher) integrationout.Handler {
	return &WebhookHandler{dispatcher: dispatcher}
}

func (h *WebhookHandler) Name() string { return "webhooks" }

func (h *WebhookHandler) Handle(ctx context.Context, event domain.Event) error {
	_, err := h.dispatcher.Dispatch(ctx, webhookdto.DispatchInput{
		EventID:    event.ID,
		Kind:       event.Kind,
		OccurredAt: event.OccurredAt,
		Payload:    event.Payload,
	})
	return err
}
