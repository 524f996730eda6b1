package out_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	out "stint/internal/modules/webhook/adapter/out"
	"stint/internal/modules/webhook/domain"
	"stint/internal/platform/db"
)

func openLedger(t *testing.T) *out.SQLiteLedger {
	t.Helper()
	handle, err := db.Open(filepath.Join(t.TempDir(), "data", "stint.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = handle.Close() })
	ledger, err := out.NewSQLiteLedger(handle)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return ledger
}

func attemptRow(id string, attempt int, status string, completedAt time.Time, nextRetryAt *time.Time) domain.DeliveryAttempt {
	return domain.DeliveryAttempt{
		ID:          id,
		WebhookID:   "wh-1",
		WebhookName: "notify",
		EventID:     "ev-1",
		EventKind:   "session_stopped",
		URL:         "https://example.com/hook",
		RequestBody: `{"event":"session_stopped"}`,
		Attempt:     attempt,
		Status:      status,
		StatusCode:  500,
		Error:       "HTTP 500",
		StartedAt:   completedAt.Add(-50 * time.Millisecond),
		CompletedAt: completedAt,
		NextRetryAt: nextRetryAt,
	}
}

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	t.Parallel()

	ledger := openLedger(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		row := attemptRow(fmt.Sprintf("a-%d", i), 1, domain.StatusSuccess, epoch.Add(time.Duration(i)*time.Minute), nil)
		row.EventID = fmt.Sprintf("ev-%d", i)
		if err := ledger.Append(ctx, row); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	other := attemptRow("b-1", 1, domain.StatusSuccess, epoch.Add(10*time.Minute), nil)
	other.WebhookName = "someone-else"
	if err := ledger.Append(ctx, other); err != nil {
		t.Fatalf("Append: %v", err)
	}

	attempts, err := ledger.History(ctx, "notify", 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("len = %d, want 3", len(attempts))
	}
	for i, want := range []string{"a-4", "a-3", "a-2"} {
		if attempts[i].ID != want {
			t.Errorf("attempts[%d] = %s, want %s", i, attempts[i].ID, want)
		}
	}
	if attempts[0].Error != "HTTP 500" || attempts[0].StatusCode != 500 {
		t.Errorf("row fields lost: %+v", attempts[0])
	}

	all, err := ledger.History(ctx, "", 0)
	if err != nil {
		t.Fatalf("History all: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("len(all) = %d, want 6", len(all))
	}
	if all[0].ID != "b-1" {
		t.Errorf("all[0] = %s, want b-1 (newest overall)", all[0].ID)
	}
}

func TestPendingRetriesDueOnly(t *testing.T) {
	t.Parallel()

	ledger := openLedger(t)
	ctx := context.Background()
	now := epoch.Add(time.Hour)

	due := now.Add(-time.Minute)
	notYet := now.Add(time.Minute)
	if err := ledger.Append(ctx, attemptRow("a-due", 1, domain.StatusFailed, epoch, &due)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	future := attemptRow("a-future", 1, domain.StatusFailed, epoch, &notYet)
	future.EventID = "ev-2"
	if err := ledger.Append(ctx, future); err != nil {
		t.Fatalf("Append: %v", err)
	}
	exhausted := attemptRow("a-final", 1, domain.StatusFailed, epoch, nil)
	exhausted.EventID = "ev-3"
	if err := ledger.Append(ctx, exhausted); err != nil {
		t.Fatalf("Append: %v", err)
	}

	pending, err := ledger.PendingRetries(ctx, now)
	if err != nil {
		t.Fatalf("PendingRetries: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "a-due" {
		t.Fatalf("pending = %+v, want only a-due", pending)
	}
	if pending[0].NextRetryAt == nil || !pending[0].NextRetryAt.Equal(due) {
		t.Errorf("NextRetryAt = %v, want %s", pending[0].NextRetryAt, due)
	}
}

func TestPendingRetriesSkipsSupersededAttempts(t *testing.T) {
	t.Parallel()

	ledger := openLedger(t)
	ctx := context.Background()
	now := epoch.Add(time.Hour)

	firstRetry := epoch.Add(time.Second)
	if err := ledger.Append(ctx, attemptRow("a-1", 1, domain.StatusFailed, epoch, &firstRetry)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// The second attempt supersedes the first even though the first's
	// retry time is still in the past.
	secondRetry := epoch.Add(3 * time.Second)
	if err := ledger.Append(ctx, attemptRow("a-2", 2, domain.StatusFailed, epoch.Add(time.Second), &secondRetry)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	pending, err := ledger.PendingRetries(ctx, now)
	if err != nil {
		t.Fatalf("PendingRetries: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "a-2" {
		t.Fatalf("pending = %+v, want only the newest attempt", pending)
	}

	success := attemptRow("a-3", 3, domain.StatusSuccess, epoch.Add(3*time.Second), nil)
	if err := ledger.Append(ctx, success); err != nil {
		t.Fatalf("Append: %v", err)
	}
	pending, err = ledger.PendingRetries(ctx, now)
	if err != nil {
		t.Fatalf("PendingRetries: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after success = %+v, want none", pending)
	}
}

func TestLedgerStats(t *testing.T) {
	t.Parallel()

	ledger := openLedger(t)
	ctx := context.Background()
	now := epoch.Add(time.Hour)

	ok := attemptRow("a-ok", 1, domain.StatusSuccess, epoch, nil)
	ok.StatusCode = 200
	ok.Error = ""
	if err := ledger.Append(ctx, ok); err != nil {
		t.Fatalf("Append: %v", err)
	}
	due := epoch.Add(time.Second)
	failed := attemptRow("a-fail", 1, domain.StatusFailed, epoch, &due)
	failed.EventID = "ev-2"
	if err := ledger.Append(ctx, failed); err != nil {
		t.Fatalf("Append: %v", err)
	}
	timedOut := attemptRow("a-slow", 1, domain.StatusTimeout, epoch, nil)
	timedOut.EventID = "ev-3"
	if err := ledger.Append(ctx, timedOut); err != nil {
		t.Fatalf("Append: %v", err)
	}

	stats, err := ledger.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := domain.LedgerStats{Attempts: 3, Successes: 1, Failures: 2, PendingRetries: 1}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestCountsPerWebhook(t *testing.T) {
	t.Parallel()

	ledger := openLedger(t)
	ctx := context.Background()

	ok := attemptRow("a-1", 1, domain.StatusSuccess, epoch, nil)
	ok.StatusCode = 200
	ok.Error = ""
	if err := ledger.Append(ctx, ok); err != nil {
		t.Fatalf("Append: %v", err)
	}
	failed := attemptRow("a-2", 1, domain.StatusFailed, epoch.Add(time.Minute), nil)
	failed.EventID = "ev-2"
	if err := ledger.Append(ctx, failed); err != nil {
		t.Fatalf("Append: %v", err)
	}
	other := attemptRow("b-1", 1, domain.StatusSuccess, epoch.Add(2*time.Minute), nil)
	other.WebhookID = "wh-2"
	other.WebhookName = "someone-else"
	if err := ledger.Append(ctx, other); err != nil {
		t.Fatalf("Append: %v", err)
	}

	counts, err := ledger.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if got := counts["wh-1"]; got != (domain.DeliveryCounts{Attempts: 2, Successes: 1, Failures: 1}) {
		t.Errorf("wh-1 counts = %+v", got)
	}
	if got := counts["wh-2"]; got != (domain.DeliveryCounts{Attempts: 1, Successes: 1}) {
		t.Errorf("wh-2 counts = %+v", got)
	}
}
