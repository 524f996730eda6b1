package domain

import "time"

// Delivery status values recorded in the ledger.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
)

// DeliveryRequest is one HTTP POST handed to the sender.
type DeliveryRequest struct {
	URL     string
	Body    []byte
	Headers map[string]string
	Timeout time.Duration
}

// DeliveryResult is the sender's verdict on a single request. The sender
// never fails outright; every outcome maps to a status.
type DeliveryResult struct {
	Status     string
	StatusCode int
	Error      string
}

// DeliveryAttempt is one appended ledger row. The webhook name, URL and
// request body are denormalized so history survives webhook edits and
// removals, and so retries resend exactly what was sent before.
type DeliveryAttempt struct {
	ID          string
	WebhookID   string
	WebhookName string
	EventID     string
	EventKind   string
	URL         string
	RequestBody string
	Attempt     int
	Status      string
	StatusCode  int
	Error       string
	StartedAt   time.Time
	CompletedAt time.Time
	NextRetryAt *time.Time
}

// Succeeded reports whether the attempt got a 2xx response.
func (a DeliveryAttempt) Succeeded() bool { return a.Status == StatusSuccess }

// Duration is the wall time the attempt took.
func (a DeliveryAttempt) Duration() time.Duration { return a.CompletedAt.Sub(a.StartedAt) }

// LedgerStats aggregates the ledger for status reporting.
type LedgerStats struct {
	Attempts       int
	Successes      int
	Failures       int
	PendingRetries int
}

// DeliveryCounts totals the ledger for a single webhook.
type DeliveryCounts struct {
	Attempts  int
	Successes int
	Failures  int
}
