package usecase

import (
	"context"
	"fmt"
	"strings"

	"stint/internal/modules/integration/domain"
	"stint/internal/modules/integration/dto"
	integrationin "stint/internal/modules/integration/port/in"
	integrationout "stint/internal/modules/integration/port/out"
	"stint/internal/modules/integration/service"
	pluginin "stint/internal/modules/plugin/port/in"
	webhookdomain "stint/internal/modules/webhook/domain"
	webhookin "stint/internal/modules/webhook/port/in"
	"stint/internal/platform/clock"
	apperrors "stint/internal/platform/errors"
	"stint/internal/platform/id"
)

type Interactor struct {
	bus      *service.Bus
	settings integrationout.SettingsStore
	webhooks webhookin.Usecase
	plugins  pluginin.Usecase
	clock    clock.Clock
	idGen    id.Generator
}

func NewInteractor(
	bus *service.Bus,
	settings integrationout.SettingsStore,
	webhooks webhookin.Usecase,
	plugins pluginin.Usecase,
	clk clock.Clock,
	idGen id.Generator,
) integrationin.Usecase {
	return &Interactor{
		bus:      bus,
		settings: settings,
		webhooks: webhooks,
		plugins:  plugins,
		clock:    clk,
		idGen:    idGen,
	}
}

// Publish mints the event and fans it out. When integrations are globally
// disabled no event exists and no handler runs.
func (i *Interactor) Publish(ctx context.Context, input dto.PublishInput) (dto.PublishOutput, error) {
	if !domain.ValidKind(input.Kind) {
		return dto.PublishOutput{}, fmt.Errorf("%w: unknown event kind %q", apperrors.ErrInvalidInput, input.Kind)
	}
	settings, err := i.settings.Load(ctx)
	if err != nil {
		return dto.PublishOutput{}, err
	}
	if !settings.Enabled {
		return dto.PublishOutput{Delivered: false}, nil
	}
	event := domain.Event{
		ID:         i.idGen.New(),
		Kind:       input.Kind,
		OccurredAt: i.clock.Now(),
		Payload:    input.Payload,
	}
	failures := i.bus.Publish(ctx, event, settings)
	out := dto.PublishOutput{EventID: event.ID, Delivered: true}
	for _, f := range failures {
		out.Failures = append(out.Failures, dto.HandlerFailure{Handler: f.Handler, Message: f.Err.Error()})
	}
	return out, nil
}

func (i *Interactor) Status(ctx context.Context) (dto.StatusOutput, error) {
	settings, err := i.settings.Load(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	out := dto.StatusOutput{Enabled: settings.Enabled}
	for _, reg := range i.bus.Registrations(settings) {
		out.Handlers = append(out.Handlers, dto.HandlerStatus{
			Name:     reg.Name,
			Priority: reg.Priority,
			Enabled:  reg.Enabled,
		})
	}
	webhooks, err := i.webhooks.List(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	out.Webhooks = len(webhooks.Webhooks)
	plugins, err := i.plugins.List(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	out.Plugins = len(plugins)
	return out, nil
}

func (i *Interactor) Stats(ctx context.Context) (dto.StatsOutput, error) {
	settings, err := i.settings.Load(ctx)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	webhookStats, err := i.webhooks.Stats(ctx)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	plugins, err := i.plugins.List(ctx)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	enabledPlugins := 0
	for _, p := range plugins {
		if p.Enabled {
			enabledPlugins++
		}
	}
	out := dto.StatsOutput{
		Enabled:         settings.Enabled,
		Webhooks:        webhookStats.Webhooks,
		EnabledWebhooks: webhookStats.Enabled,
		Attempts:        webhookStats.Attempts,
		Successes:       webhookStats.Successes,
		Failures:        webhookStats.Failures,
		PendingRetries:  webhookStats.PendingRetries,
		Plugins:         len(plugins),
		EnabledPlugins:  enabledPlugins,
	}
	if webhookStats.Attempts > 0 {
		out.SuccessRate = float64(webhookStats.Successes) / float64(webhookStats.Attempts) * 100
	}
	return out, nil
}

func (i *Interactor) SetEnabled(ctx context.Context, input dto.SetEnabledInput) (dto.SetEnabledOutput, error) {
	settings, err := i.settings.Load(ctx)
	if err != nil {
		return dto.SetEnabledOutput{}, err
	}
	handler := strings.TrimSpace(input.Handler)
	if handler == "" {
		settings.Enabled = input.Enabled
	} else {
		if !i.knownHandler(settings, handler) {
			return dto.SetEnabledOutput{}, fmt.Errorf("handler %q: %w", handler, apperrors.ErrNotFound)
		}
		settings = settings.SetHandler(handler, input.Enabled)
	}
	if err := i.settings.Save(ctx, settings); err != nil {
		return dto.SetEnabledOutput{}, err
	}
	return dto.SetEnabledOutput{Handler: handler, Enabled: input.Enabled}, nil
}

func (i *Interactor) ProcessRetries(ctx context.Context) (dto.RetryOutput, error) {
	retried, err := i.webhooks.ProcessRetries(ctx)
	if err != nil {
		return dto.RetryOutput{}, err
	}
	out := dto.RetryOutput{Processed: len(retried.Attempts)}
	for _, attempt := range retried.Attempts {
		result := dto.RetryResult{
			WebhookName: attempt.WebhookName,
			EventID:     attempt.EventID,
			Attempt:     attempt.Attempt,
			Detail:      attempt.Error,
		}
		if attempt.Status == webhookdomain.StatusSuccess {
			result.Succeeded = true
			out.Succeeded++
		} else {
			out.Failed++
		}
		out.Results = append(out.Results, result)
	}
	return out, nil
}

func (i *Interactor) knownHandler(settings domain.Settings, name string) bool {
	for _, reg := range i.bus.Registrations(settings) {
		if reg.Name == name {
			return true
		}
	}
	return false
}
