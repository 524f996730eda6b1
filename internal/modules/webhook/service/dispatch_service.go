package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	integrationdomain "stint/internal/modules/integration/domain"
	"stint/internal/modules/webhook/domain"
	webhookout "stint/internal/modules/webhook/port/out"
	"stint/internal/platform/clock"
	apperrors "stint/internal/platform/errors"
	"stint/internal/platform/id"
)

// DispatchService owns webhook configuration and the delivery pipeline:
// match, render, send, record. Every attempt lands in the ledger whatever
// its outcome.
type DispatchService struct {
	clock  clock.Clock
	idGen  id.Generator
	store  webhookout.ConfigStore
	ledger webhookout.Ledger
	sender webhookout.Sender
	log    *slog.Logger
}

func NewDispatchService(
	clock clock.Clock,
	idGen id.Generator,
	store webhookout.ConfigStore,
	ledger webhookout.Ledger,
	sender webhookout.Sender,
	log *slog.Logger,
) *DispatchService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &DispatchService{clock: clock, idGen: idGen, store: store, ledger: ledger, sender: sender, log: log}
}

// Add assigns identity and timestamps, validates and persists a webhook.
func (s *DispatchService) Add(ctx context.Context, webhook domain.Webhook) (domain.Webhook, error) {
	webhook.ID = s.idGen.New()
	now := s.clock.Now()
	webhook.CreatedAt = now
	webhook.UpdatedAt = now
	if err := webhook.Validate(integrationdomain.Kinds()); err != nil {
		return domain.Webhook{}, err
	}
	if err := s.store.Create(ctx, webhook); err != nil {
		return domain.Webhook{}, err
	}
	return webhook, nil
}

func (s *DispatchService) Get(ctx context.Context, name string) (domain.Webhook, error) {
	return s.store.GetByName(ctx, name)
}

func (s *DispatchService) List(ctx context.Context) ([]domain.Webhook, error) {
	return s.store.List(ctx)
}

func (s *DispatchService) Remove(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

// SetEnabled flips a webhook on or off, leaving the rest of its
// configuration untouched.
func (s *DispatchService) SetEnabled(ctx context.Context, name string, enabled bool) (domain.Webhook, error) {
	webhook, err := s.store.GetByName(ctx, name)
	if err != nil {
		return domain.Webhook{}, err
	}
	if webhook.Enabled == enabled {
		return webhook, nil
	}
	webhook.Enabled = enabled
	webhook.UpdatedAt = s.clock.Now()
	if err := s.store.Update(ctx, webhook); err != nil {
		return domain.Webhook{}, err
	}
	return webhook, nil
}

// Dispatch delivers an event to every enabled webhook that subscribes to
// its kind and whose filter accepts the payload. One webhook's failure
// never blocks another's delivery; failures surface in the attempt rows.
func (s *DispatchService) Dispatch(ctx context.Context, event integrationdomain.Event) ([]domain.DeliveryAttempt, error) {
	webhooks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var attempts []domain.DeliveryAttempt
	for _, webhook := range webhooks {
		if !webhook.Enabled || !webhook.Subscribed(event.Kind) || !webhook.Filter.Matches(event.Payload) {
			continue
		}
		body, err := domain.RenderBody(webhook.Template, event)
		if err != nil {
			s.log.Warn("render webhook payload", "webhook", webhook.Name, "error", err)
			continue
		}
		attempts = append(attempts, s.deliver(ctx, webhook, event.ID, event.Kind, body, 1))
	}
	return attempts, nil
}

// ProcessRetries redelivers every due failed attempt. Attempts whose
// webhook has since been removed or disabled are skipped, not rescheduled.
func (s *DispatchService) ProcessRetries(ctx context.Context) ([]domain.DeliveryAttempt, error) {
	pending, err := s.ledger.PendingRetries(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	var attempts []domain.DeliveryAttempt
	for _, prev := range pending {
		webhook, err := s.store.GetByName(ctx, prev.WebhookName)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return attempts, err
		}
		if !webhook.Enabled {
			continue
		}
		attempts = append(attempts, s.deliver(ctx, webhook, prev.EventID, prev.EventKind, []byte(prev.RequestBody), prev.Attempt+1))
	}
	return attempts, nil
}

// Test sends a synthetic event to one webhook, bypassing its subscriptions
// and filter. Disabled webhooks can be tested too.
func (s *DispatchService) Test(ctx context.Context, name string) (domain.DeliveryAttempt, error) {
	webhook, err := s.store.GetByName(ctx, name)
	if err != nil {
		return domain.DeliveryAttempt{}, err
	}
	event := integrationdomain.Event{
		ID:         s.idGen.New(),
		Kind:       integrationdomain.KindWebhookTest,
		OccurredAt: s.clock.Now(),
		Payload: map[string]any{
			"test":    true,
			"message": fmt.Sprintf("Test delivery for webhook %q", webhook.Name),
		},
	}
	body, err := domain.RenderBody(webhook.Template, event)
	if err != nil {
		return domain.DeliveryAttempt{}, err
	}
	return s.deliver(ctx, webhook, event.ID, event.Kind, body, 1), nil
}

func (s *DispatchService) History(ctx context.Context, name string, limit int) ([]domain.DeliveryAttempt, error) {
	return s.ledger.History(ctx, name, limit)
}

func (s *DispatchService) Counts(ctx context.Context) (map[string]domain.DeliveryCounts, error) {
	return s.ledger.Counts(ctx)
}

func (s *DispatchService) Stats(ctx context.Context) (domain.LedgerStats, int, int, error) {
	stats, err := s.ledger.Stats(ctx, s.clock.Now())
	if err != nil {
		return domain.LedgerStats{}, 0, 0, err
	}
	webhooks, err := s.store.List(ctx)
	if err != nil {
		return domain.LedgerStats{}, 0, 0, err
	}
	enabled := 0
	for _, webhook := range webhooks {
		if webhook.Enabled {
			enabled++
		}
	}
	return stats, len(webhooks), enabled, nil
}

// deliver performs one attempt and records it. A failed attempt with
// attempts left gets a retry time; the final failure does not.
func (s *DispatchService) deliver(ctx context.Context, webhook domain.Webhook, eventID, kind string, body []byte, attemptNo int) domain.DeliveryAttempt {
	started := s.clock.Now()
	result := s.sender.Send(ctx, domain.DeliveryRequest{
		URL:     webhook.URL,
		Body:    body,
		Headers: deliveryHeaders(webhook, kind, eventID),
		Timeout: webhook.Timeout,
	})
	attempt := domain.DeliveryAttempt{
		ID:          s.idGen.New(),
		WebhookID:   webhook.ID,
		WebhookName: webhook.Name,
		EventID:     eventID,
		EventKind:   kind,
		URL:         webhook.URL,
		RequestBody: string(body),
		Attempt:     attemptNo,
		Status:      result.Status,
		StatusCode:  result.StatusCode,
		Error:       result.Error,
		StartedAt:   started,
		CompletedAt: s.clock.Now(),
	}
	if !attempt.Succeeded() && attemptNo < webhook.Retry.MaxAttempts {
		next := attempt.CompletedAt.Add(webhook.Retry.Delay(attemptNo))
		attempt.NextRetryAt = &next
	}
	if err := s.ledger.Append(ctx, attempt); err != nil {
		s.log.Warn("record delivery attempt", "webhook", webhook.Name, "event", eventID, "error", err)
	}
	if attempt.Succeeded() {
		s.log.Debug("webhook delivered",
			"webhook", webhook.Name, "event", eventID, "kind", kind, "attempt", attemptNo, "status_code", attempt.StatusCode)
	} else {
		s.log.Warn("webhook delivery failed",
			"webhook", webhook.Name, "event", eventID, "kind", kind, "attempt", attemptNo,
			"status", attempt.Status, "status_code", attempt.StatusCode, "error", attempt.Error)
	}
	return attempt
}

func deliveryHeaders(webhook domain.Webhook, kind, eventID string) map[string]string {
	headers := map[string]string{
		"Content-Type":     "application/json",
		"User-Agent":       "stint-webhook/1.0",
		"X-Stint-Event":    kind,
		"X-Stint-Event-ID": eventID,
	}
	for k, v := range webhook.Headers {
		headers[k] = v
	}
	return headers
}
