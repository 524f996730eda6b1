package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stint/internal/modules/webhook/domain"
	"stint/internal/platform/tx"
)

const deliveriesDDL = `
CREATE TABLE IF NOT EXISTS deliveries (
	id TEXT PRIMARY KEY,
	webhook_id TEXT NOT NULL,
	webhook_name TEXT NOT NULL,
	event_id TEXT NOT NULL,
	event_kind TEXT NOT NULL,
	url TEXT NOT NULL,
	request_body TEXT NOT NULL,
	attempt INTEGER NOT NULL,
	status TEXT NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	completed_at TEXT NOT NULL,
	next_retry_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_deliveries_name ON deliveries(webhook_name, completed_at);
CREATE INDEX IF NOT EXISTS idx_deliveries_retry ON deliveries(next_retry_at);
CREATE INDEX IF NOT EXISTS idx_deliveries_event ON deliveries(webhook_id, event_id, attempt);
`

const deliveryColumns = "id, webhook_id, webhook_name, event_id, event_kind, url, request_body, " +
	"attempt, status, status_code, error, started_at, completed_at, next_retry_at"

// notSuperseded keeps only the newest attempt per (webhook, event) pair.
const notSuperseded = `NOT EXISTS (
	SELECT 1 FROM deliveries n
	WHERE n.webhook_id = d.webhook_id AND n.event_id = d.event_id AND n.attempt > d.attempt
)`

// SQLiteLedger is the append-only delivery record in the shared database.
// Rows are never updated; a retry appends a new row with a higher attempt
// number, which supersedes the previous one.
type SQLiteLedger struct {
	db *sql.DB
}

func NewSQLiteLedger(db *sql.DB) (*SQLiteLedger, error) {
	l := &SQLiteLedger{db: db}
	if _, err := db.ExecContext(context.Background(), deliveriesDDL); err != nil {
		return nil, fmt.Errorf("ensure deliveries schema: %w", err)
	}
	return l, nil
}

func (l *SQLiteLedger) q(ctx context.Context) queryer {
	if txn := tx.From(ctx); txn != nil {
		return txn
	}
	return l.db
}

func (l *SQLiteLedger) Append(ctx context.Context, attempt domain.DeliveryAttempt) error {
	_, err := l.q(ctx).ExecContext(ctx,
		`INSERT INTO deliveries (`+deliveryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID,
		attempt.WebhookID,
		attempt.WebhookName,
		attempt.EventID,
		attempt.EventKind,
		attempt.URL,
		attempt.RequestBody,
		attempt.Attempt,
		attempt.Status,
		attempt.StatusCode,
		attempt.Error,
		attempt.StartedAt.UTC().Format(timeLayout),
		attempt.CompletedAt.UTC().Format(timeLayout),
		encodeRetryAt(attempt.NextRetryAt),
	)
	if err != nil {
		return fmt.Errorf("append delivery attempt: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) History(ctx context.Context, webhookName string, limit int) ([]domain.DeliveryAttempt, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.q(ctx).QueryContext(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries
		WHERE (? = '' OR webhook_name = ?)
		ORDER BY completed_at DESC, attempt DESC
		LIMIT ?`,
		webhookName, webhookName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load delivery history: %w", err)
	}
	return collectAttempts(rows)
}

func (l *SQLiteLedger) PendingRetries(ctx context.Context, now time.Time) ([]domain.DeliveryAttempt, error) {
	rows, err := l.q(ctx).QueryContext(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries d
		WHERE d.next_retry_at IS NOT NULL AND d.next_retry_at <= ? AND `+notSuperseded+`
		ORDER BY d.next_retry_at ASC`,
		now.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("load pending retries: %w", err)
	}
	return collectAttempts(rows)
}

func (l *SQLiteLedger) Stats(ctx context.Context, now time.Time) (domain.LedgerStats, error) {
	var stats domain.LedgerStats
	err := l.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) FROM deliveries`,
		domain.StatusSuccess,
	).Scan(&stats.Attempts, &stats.Successes)
	if err != nil {
		return domain.LedgerStats{}, fmt.Errorf("count deliveries: %w", err)
	}
	stats.Failures = stats.Attempts - stats.Successes

	err = l.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM deliveries d
		WHERE d.next_retry_at IS NOT NULL AND d.next_retry_at <= ? AND `+notSuperseded,
		now.UTC().Format(timeLayout),
	).Scan(&stats.PendingRetries)
	if err != nil {
		return domain.LedgerStats{}, fmt.Errorf("count pending retries: %w", err)
	}
	return stats, nil
}

func (l *SQLiteLedger) Counts(ctx context.Context) (map[string]domain.DeliveryCounts, error) {
	rows, err := l.q(ctx).QueryContext(ctx,
		`SELECT webhook_id, COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM deliveries GROUP BY webhook_id`,
		domain.StatusSuccess,
	)
	if err != nil {
		return nil, fmt.Errorf("count deliveries per webhook: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]domain.DeliveryCounts)
	for rows.Next() {
		var id string
		var c domain.DeliveryCounts
		if err := rows.Scan(&id, &c.Attempts, &c.Successes); err != nil {
			return nil, fmt.Errorf("scan delivery counts: %w", err)
		}
		c.Failures = c.Attempts - c.Successes
		counts[id] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery counts: %w", err)
	}
	return counts, nil
}

func collectAttempts(rows *sql.Rows) ([]domain.DeliveryAttempt, error) {
	defer rows.Close()
	var attempts []domain.DeliveryAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery attempts: %w", err)
	}
	return attempts, nil
}

func scanAttempt(r rowScanner) (domain.DeliveryAttempt, error) {
	var (
		attempt      domain.DeliveryAttempt
		startedRaw   string
		completedRaw string
		retryRaw     sql.NullString
	)
	err := r.Scan(
		&attempt.ID,
		&attempt.WebhookID,
		&attempt.WebhookName,
		&attempt.EventID,
		&attempt.EventKind,
		&attempt.URL,
		&attempt.RequestBody,
		&attempt.Attempt,
		&attempt.Status,
		&attempt.StatusCode,
		&attempt.Error,
		&startedRaw,
		&completedRaw,
		&retryRaw,
	)
	if err != nil {
		return domain.DeliveryAttempt{}, err
	}
	if attempt.StartedAt, err = time.Parse(timeLayout, startedRaw); err != nil {
		return domain.DeliveryAttempt{}, fmt.Errorf("parse started_at: %w", err)
	}
	if attempt.CompletedAt, err = time.Parse(timeLayout, completedRaw); err != nil {
		return domain.DeliveryAttempt{}, fmt.Errorf("parse completed_at: %w", err)
	}
	if retryRaw.Valid {
		retryAt, err := time.Parse(timeLayout, retryRaw.String)
		if err != nil {
			return domain.DeliveryAttempt{}, fmt.Errorf("parse next_retry_at: %w", err)
		}
		attempt.NextRetryAt = &retryAt
	}
	return attempt, nil
}

func encodeRetryAt(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}
