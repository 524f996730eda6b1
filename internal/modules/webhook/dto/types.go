package dto

import "time"

type AddInput struct {
	Name        string
	URL         string
	Description string
	Events      []string
	Filter      string
	Template    string
	Headers     map[string]string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

type WebhookOutput struct {
	ID          string
	Name        string
	URL         string
	Description string
	Events      []string
	Filter      string
	Template    string
	Headers     map[string]string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Enabled     bool
	CreatedAt   time.Time

	// Ledger totals, filled by List.
	Attempts  int
	Successes int
	Failures  int
}

type ListOutput struct {
	Webhooks []WebhookOutput
}

type DispatchInput struct {
	EventID    string
	Kind       string
	OccurredAt time.Time
	Payload    map[string]any
}

type DeliveryOutput struct {
	AttemptID   string
	WebhookName string
	EventID     string
	EventKind   string
	URL         string
	Attempt     int
	Status      string
	StatusCode  int
	Error       string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	NextRetryAt *time.Time
}

type DispatchOutput struct {
	Attempts []DeliveryOutput
}

type HistoryInput struct {
	Name  string
	Limit int
}

type HistoryOutput struct {
	Attempts []DeliveryOutput
}

type RetryOutput struct {
	Attempts []DeliveryOutput
}

type StatsOutput struct {
	Webhooks       int
	Enabled        int
	Attempts       int
	Successes      int
	Failures       int
	PendingRetries int
}
