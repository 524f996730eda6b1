package usecase

import (
	"context"
	"strings"
	"time"

	integrationdomain "stint/internal/modules/integration/domain"
	"stint/internal/modules/webhook/domain"
	webhookdto "stint/internal/modules/webhook/dto"
	webhookin "stint/internal/modules/webhook/port/in"
	"stint/internal/modules/webhook/service"
	"stint/internal/platform/config"
)

// Defaults fill the optional knobs of a new webhook and bound history
// queries.
type Defaults struct {
	Timeout      time.Duration
	Retry        domain.RetryPolicy
	HistoryLimit int
}

// DefaultsFromConfig lifts the configured delivery tunables.
func DefaultsFromConfig(cfg config.Config) Defaults {
	return Defaults{
		Timeout: cfg.HTTPTimeout,
		Retry: domain.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
		},
		HistoryLimit: cfg.HistoryLimit,
	}
}

// Interactor maps the CLI-facing contract onto the dispatch service.
type Interactor struct {
	svc      *service.DispatchService
	defaults Defaults
}

func NewInteractor(svc *service.DispatchService, defaults Defaults) webhookin.Usecase {
	if defaults.HistoryLimit <= 0 {
		defaults.HistoryLimit = 100
	}
	return &Interactor{svc: svc, defaults: defaults}
}

func (i *Interactor) Add(ctx context.Context, input webhookdto.AddInput) (webhookdto.WebhookOutput, error) {
	filter, err := domain.ParseFilter(input.Filter)
	if err != nil {
		return webhookdto.WebhookOutput{}, err
	}
	webhook := domain.Webhook{
		Name:        strings.TrimSpace(input.Name),
		URL:         strings.TrimSpace(input.URL),
		Description: strings.TrimSpace(input.Description),
		Events:      input.Events,
		Filter:      filter,
		Template:    input.Template,
		Headers:     input.Headers,
		Timeout:     input.Timeout,
		Retry: domain.RetryPolicy{
			MaxAttempts: input.MaxAttempts,
			BaseDelay:   input.BaseDelay,
			MaxDelay:    input.MaxDelay,
		},
		Enabled: true,
	}
	if webhook.Template == "" {
		webhook.Template = domain.DefaultTemplate
	}
	if webhook.Timeout == 0 {
		webhook.Timeout = i.defaults.Timeout
	}
	if webhook.Retry.MaxAttempts == 0 {
		webhook.Retry.MaxAttempts = i.defaults.Retry.MaxAttempts
	}
	if webhook.Retry.BaseDelay == 0 {
		webhook.Retry.BaseDelay = i.defaults.Retry.BaseDelay
	}
	if webhook.Retry.MaxDelay == 0 {
		webhook.Retry.MaxDelay = i.defaults.Retry.MaxDelay
	}
	created, err := i.svc.Add(ctx, webhook)
	if err != nil {
		return webhookdto.WebhookOutput{}, err
	}
	return toWebhookOutput(created), nil
}

func (i *Interactor) List(ctx context.Context) (webhookdto.ListOutput, error) {
	webhooks, err := i.svc.List(ctx)
	if err != nil {
		return webhookdto.ListOutput{}, err
	}
	counts, err := i.svc.Counts(ctx)
	if err != nil {
		return webhookdto.ListOutput{}, err
	}
	out := webhookdto.ListOutput{Webhooks: make([]webhookdto.WebhookOutput, 0, len(webhooks))}
	for _, webhook := range webhooks {
		item := toWebhookOutput(webhook)
		c := counts[webhook.ID]
		item.Attempts = c.Attempts
		item.Successes = c.Successes
		item.Failures = c.Failures
		out.Webhooks = append(out.Webhooks, item)
	}
	return out, nil
}

func (i *Interactor) Remove(ctx context.Context, name string) error {
	return i.svc.Remove(ctx, strings.TrimSpace(name))
}

func (i *Interactor) Enable(ctx context.Context, name string) (webhookdto.WebhookOutput, error) {
	webhook, err := i.svc.SetEnabled(ctx, strings.TrimSpace(name), true)
	if err != nil {
		return webhookdto.WebhookOutput{}, err
	}
	return toWebhookOutput(webhook), nil
}

func (i *Interactor) Disable(ctx context.Context, name string) (webhookdto.WebhookOutput, error) {
	webhook, err := i.svc.SetEnabled(ctx, strings.TrimSpace(name), false)
	if err != nil {
		return webhookdto.WebhookOutput{}, err
	}
	return toWebhookOutput(webhook), nil
}

func (i *Interactor) Test(ctx context.Context, name string) (webhookdto.DeliveryOutput, error) {
	attempt, err := i.svc.Test(ctx, strings.TrimSpace(name))
	if err != nil {
		return webhookdto.DeliveryOutput{}, err
	}
	return toDeliveryOutput(attempt), nil
}

func (i *Interactor) History(ctx context.Context, input webhookdto.HistoryInput) (webhookdto.HistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = i.defaults.HistoryLimit
	}
	attempts, err := i.svc.History(ctx, strings.TrimSpace(input.Name), limit)
	if err != nil {
		return webhookdto.HistoryOutput{}, err
	}
	return webhookdto.HistoryOutput{Attempts: toDeliveryOutputs(attempts)}, nil
}

func (i *Interactor) Dispatch(ctx context.Context, input webhookdto.DispatchInput) (webhookdto.DispatchOutput, error) {
	attempts, err := i.svc.Dispatch(ctx, integrationdomain.Event{
		ID:         input.EventID,
		Kind:       input.Kind,
		OccurredAt: input.OccurredAt,
		Payload:    input.Payload,
	})
	if err != nil {
		return webhookdto.DispatchOutput{}, err
	}
	return webhookdto.DispatchOutput{Attempts: toDeliveryOutputs(attempts)}, nil
}

func (i *Interactor) ProcessRetries(ctx context.Context) (webhookdto.RetryOutput, error) {
	attempts, err := i.svc.ProcessRetries(ctx)
	if err != nil {
		return webhookdto.RetryOutput{}, err
	}
	return webhookdto.RetryOutput{Attempts: toDeliveryOutputs(attempts)}, nil
}

func (i *Interactor) Stats(ctx context.Context) (webhookdto.StatsOutput, error) {
	stats, total, enabled, err := i.svc.Stats(ctx)
	if err != nil {
		return webhookdto.StatsOutput{}, err
	}
	return webhookdto.StatsOutput{
		Webhooks:       total,
		Enabled:        enabled,
		Attempts:       stats.Attempts,
		Successes:      stats.Successes,
		Failures:       stats.Failures,
		PendingRetries: stats.PendingRetries,
	}, nil
}

func toWebhookOutput(webhook domain.Webhook) webhookdto.WebhookOutput {
	return webhookdto.WebhookOutput{
		ID:          webhook.ID,
		Name:        webhook.Name,
		URL:         webhook.URL,
		Description: webhook.Description,
		Events:      webhook.Events,
		Filter:      webhook.Filter.Raw(),
		Template:    webhook.Template,
		Headers:     webhook.Headers,
		Timeout:     webhook.Timeout,
		MaxAttempts: webhook.Retry.MaxAttempts,
		BaseDelay:   webhook.Retry.BaseDelay,
		MaxDelay:    webhook.Retry.MaxDelay,
		Enabled:     webhook.Enabled,
		CreatedAt:   webhook.CreatedAt,
	}
}

func toDeliveryOutputs(attempts []domain.DeliveryAttempt) []webhookdto.DeliveryOutput {
	out := make([]webhookdto.DeliveryOutput, 0, len(attempts))
	for _, attempt := range attempts {
		out = append(out, toDeliveryOutput(attempt))
	}
	return out
}

func toDeliveryOutput(attempt domain.DeliveryAttempt) webhookdto.DeliveryOutput {
	return webhookdto.DeliveryOutput{
		AttemptID:   attempt.ID,
		WebhookName: attempt.WebhookName,
		EventID:     attempt.EventID,
		EventKind:   attempt.EventKind,
		URL:         attempt.URL,
		Attempt:     attempt.Attempt,
		Status:      attempt.Status,
		StatusCode:  attempt.StatusCode,
		Error:       attempt.Error,
		StartedAt:   attempt.StartedAt,
		CompletedAt: attempt.CompletedAt,
		Duration:    attempt.Duration(),
		NextRetryAt: attempt.NextRetryAt,
	}
}
