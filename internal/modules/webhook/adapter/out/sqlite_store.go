package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stint/internal/modules/webhook/domain"
	apperrors "stint/internal/platform/errors"
	"stint/internal/platform/tx"
)

// timeLayout keeps a fixed fractional width so lexicographic order of the
// stored strings is chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const webhooksDDL = `
CREATE TABLE IF NOT EXISTS webhooks (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	url TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	events TEXT NOT NULL DEFAULT '[]',
	filter TEXT NOT NULL DEFAULT '',
	template TEXT NOT NULL,
	headers TEXT NOT NULL DEFAULT '{}',
	timeout_ms INTEGER NOT NULL,
	max_attempts INTEGER NOT NULL,
	base_delay_ms INTEGER NOT NULL,
	max_delay_ms INTEGER NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

const webhookColumns = "id, name, url, description, events, filter, template, headers, " +
	"timeout_ms, max_attempts, base_delay_ms, max_delay_ms, enabled, created_at, updated_at"

// SQLiteStore persists webhook configurations in the shared database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if _, err := db.ExecContext(context.Background(), webhooksDDL); err != nil {
		return nil, fmt.Errorf("ensure webhooks schema: %w", err)
	}
	return s, nil
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) q(ctx context.Context) queryer {
	if txn := tx.From(ctx); txn != nil {
		return txn
	}
	return s.db
}

func (s *SQLiteStore) Create(ctx context.Context, webhook domain.Webhook) error {
	var exists int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM webhooks WHERE name = ?`, webhook.Name,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check webhook name: %w", err)
	}
	if exists > 0 {
		return domain.ErrDuplicateName
	}

	events, headers, err := encodeWebhookLists(webhook)
	if err != nil {
		return err
	}
	_, err = s.q(ctx).ExecContext(ctx,
		`INSERT INTO webhooks (`+webhookColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		webhook.ID,
		webhook.Name,
		webhook.URL,
		webhook.Description,
		events,
		webhook.Filter.Raw(),
		webhook.Template,
		headers,
		webhook.Timeout.Milliseconds(),
		webhook.Retry.MaxAttempts,
		webhook.Retry.BaseDelay.Milliseconds(),
		webhook.Retry.MaxDelay.Milliseconds(),
		boolToInt(webhook.Enabled),
		webhook.CreatedAt.UTC().Format(timeLayout),
		webhook.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert webhook: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetByName(ctx context.Context, name string) (domain.Webhook, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+webhookColumns+` FROM webhooks WHERE name = ?`, name,
	)
	webhook, err := scanWebhook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Webhook{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Webhook{}, fmt.Errorf("load webhook %s: %w", name, err)
	}
	return webhook, nil
}

// Update rewrites every mutable column. The name and creation time stay as
// written by Create.
func (s *SQLiteStore) Update(ctx context.Context, webhook domain.Webhook) error {
	events, headers, err := encodeWebhookLists(webhook)
	if err != nil {
		return err
	}
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE webhooks SET url = ?, description = ?, events = ?, filter = ?, template = ?, headers = ?,
			timeout_ms = ?, max_attempts = ?, base_delay_ms = ?, max_delay_ms = ?, enabled = ?, updated_at = ?
		WHERE id = ?`,
		webhook.URL,
		webhook.Description,
		events,
		webhook.Filter.Raw(),
		webhook.Template,
		headers,
		webhook.Timeout.Milliseconds(),
		webhook.Retry.MaxAttempts,
		webhook.Retry.BaseDelay.Milliseconds(),
		webhook.Retry.MaxDelay.Milliseconds(),
		boolToInt(webhook.Enabled),
		webhook.UpdatedAt.UTC().Format(timeLayout),
		webhook.ID,
	)
	if err != nil {
		return fmt.Errorf("update webhook: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update webhook: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM webhooks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]domain.Webhook, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+webhookColumns+` FROM webhooks ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []domain.Webhook
	for rows.Next() {
		webhook, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		webhooks = append(webhooks, webhook)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhooks: %w", err)
	}
	return webhooks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebhook(r rowScanner) (domain.Webhook, error) {
	var (
		webhook    domain.Webhook
		eventsRaw  string
		filterRaw  string
		headersRaw string
		timeoutMS  int64
		baseMS     int64
		maxMS      int64
		enabled    int
		createdRaw string
		updatedRaw string
	)
	err := r.Scan(
		&webhook.ID,
		&webhook.Name,
		&webhook.URL,
		&webhook.Description,
		&eventsRaw,
		&filterRaw,
		&webhook.Template,
		&headersRaw,
		&timeoutMS,
		&webhook.Retry.MaxAttempts,
		&baseMS,
		&maxMS,
		&enabled,
		&createdRaw,
		&updatedRaw,
	)
	if err != nil {
		return domain.Webhook{}, err
	}
	if err := json.Unmarshal([]byte(eventsRaw), &webhook.Events); err != nil {
		return domain.Webhook{}, fmt.Errorf("decode events: %w", err)
	}
	if err := json.Unmarshal([]byte(headersRaw), &webhook.Headers); err != nil {
		return domain.Webhook{}, fmt.Errorf("decode headers: %w", err)
	}
	filter, err := domain.ParseFilter(filterRaw)
	if err != nil {
		return domain.Webhook{}, fmt.Errorf("decode filter: %w", err)
	}
	webhook.Filter = filter
	webhook.Timeout = time.Duration(timeoutMS) * time.Millisecond
	webhook.Retry.BaseDelay = time.Duration(baseMS) * time.Millisecond
	webhook.Retry.MaxDelay = time.Duration(maxMS) * time.Millisecond
	webhook.Enabled = enabled != 0
	if webhook.CreatedAt, err = time.Parse(timeLayout, createdRaw); err != nil {
		return domain.Webhook{}, fmt.Errorf("parse created_at: %w", err)
	}
	if webhook.UpdatedAt, err = time.Parse(timeLayout, updatedRaw); err != nil {
		return domain.Webhook{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return webhook, nil
}

func encodeWebhookLists(webhook domain.Webhook) (events, headers string, err error) {
	eventsRaw, err := json.Marshal(webhook.Events)
	if err != nil {
		return "", "", fmt.Errorf("encode events: %w", err)
	}
	headersRaw, err := json.Marshal(webhook.Headers)
	if err != nil {
		return "", "", fmt.Errorf("encode headers: %w", err)
	}
	return string(eventsRaw), string(headersRaw), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
