package out

import (
	"context"
	"time"

	"stint/internal/modules/webhook/domain"
)

// ConfigStore persists webhook configurations.
type ConfigStore interface {
	// Create adds a webhook. A taken name yields domain.ErrDuplicateName.
	Create(ctx context.Context, webhook domain.Webhook) error
	// GetByName returns the webhook or apperrors.ErrNotFound.
	GetByName(ctx context.Context, name string) (domain.Webhook, error)
	// Update replaces a stored webhook, apperrors.ErrNotFound if missing.
	Update(ctx context.Context, webhook domain.Webhook) error
	// Delete removes a webhook, apperrors.ErrNotFound if missing.
	Delete(ctx context.Context, name string) error
	// List returns every webhook ordered by name.
	List(ctx context.Context) ([]domain.Webhook, error)
}

// Ledger is the append-only record of delivery attempts.
type Ledger interface {
	Append(ctx context.Context, attempt domain.DeliveryAttempt) error
	// History returns attempts newest first, for one webhook or for
	// all of them when webhookName is empty.
	History(ctx context.Context, webhookName string, limit int) ([]domain.DeliveryAttempt, error)
	// PendingRetries returns the latest failed attempt per (webhook, event)
	// whose retry time has come and that no newer attempt supersedes.
	PendingRetries(ctx context.Context, now time.Time) ([]domain.DeliveryAttempt, error)
	Stats(ctx context.Context, now time.Time) (domain.LedgerStats, error)
	// Counts totals attempts per webhook id.
	Counts(ctx context.Context) (map[string]domain.DeliveryCounts, error)
}

// Sender performs one HTTP delivery and classifies the outcome.
type Sender interface {
	Send(ctx context.Context, req domain.DeliveryRequest) domain.DeliveryResult
}
