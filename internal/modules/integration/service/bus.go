package service

import (
	"context"
	"log/slog"
	"sort"

	"stint/internal/modules/integration/domain"
	integrationout "stint/internal/modules/integration/port/out"
)

type registration struct {
	priority int
	handler  integrationout.Handler
}

// Bus fans published events out to its handlers in ascending priority
// order, synchronously. A failing handler is recorded and the remaining
// handlers still run; the publish itself never fails on handler errors.
type Bus struct {
	entries []registration
	log     *slog.Logger
}

func NewBus(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Bus{log: log}
}

// Register attaches a handler. Lower priority runs first; equal priorities
// keep registration order.
func (b *Bus) Register(priority int, handler integrationout.Handler) {
	b.entries = append(b.entries, registration{priority: priority, handler: handler})
	sort.SliceStable(b.entries, func(i, j int) bool {
		return b.entries[i].priority < b.entries[j].priority
	})
}

// Publish delivers the event to every handler group enabled under
// settings and returns the failures it collected.
func (b *Bus) Publish(ctx context.Context, event domain.Event, settings domain.Settings) []domain.HandlerFailure {
	var failures []domain.HandlerFailure
	for _, entry := range b.entries {
		name := entry.handler.Name()
		if !settings.HandlerEnabled(name) {
			b.log.Debug("handler disabled, skipping", "handler", name, "kind", event.Kind)
			continue
		}
		if err := entry.handler.Handle(ctx, event); err != nil {
			b.log.Warn("handler failed", "handler", name, "kind", event.Kind, "error", err)
			failures = append(failures, domain.HandlerFailure{Handler: name, Err: err})
			continue
		}
		b.log.Debug("handler finished", "handler", name, "kind", event.Kind)
	}
	return failures
}

// Registrations lists the attached handlers with their effective
// enablement under settings, in invocation order.
func (b *Bus) Registrations(settings domain.Settings) []domain.Registration {
	out := make([]domain.Registration, 0, len(b.entries))
	for _, entry := range b.entries {
		name := entry.handler.Name()
		out = append(out, domain.Registration{
			Name:     name,
			Priority: entry.priority,
			Enabled:  settings.HandlerEnabled(name),
		})
	}
	return out
}
