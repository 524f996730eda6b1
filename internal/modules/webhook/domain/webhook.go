package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrInvalidConfig marks webhook configuration rejected at creation
	// time. Nothing invalid ever reaches the delivery path.
	ErrInvalidConfig = errors.New("invalid webhook configuration")
	// ErrDuplicateName rejects a second webhook with an existing name.
	ErrDuplicateName = errors.New("webhook name already exists")
)

const (
	DefaultTemplate = TemplateGeneric

	MinTimeout = time.Second
	MaxTimeout = 5 * time.Minute

	MaxAttemptsLimit = 10
)

// RetryPolicy schedules redelivery after failed attempts.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Delay is the wait after the n-th failed attempt: the base delay doubled
// per prior attempt, capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay << (attempt - 1)
	if d <= 0 || d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Webhook is one configured HTTP destination for events.
type Webhook struct {
	ID          string
	Name        string
	URL         string
	Description string
	Events      []string
	Filter      Filter
	Template    string
	Headers     map[string]string
	Timeout     time.Duration
	Retry       RetryPolicy
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Subscribed reports whether the webhook wants events of kind. An empty
// subscription list subscribes to every kind.
func (w Webhook) Subscribed(kind string) bool {
	if len(w.Events) == 0 {
		return true
	}
	for _, k := range w.Events {
		if k == kind {
			return true
		}
	}
	return false
}

// Validate checks everything that would otherwise only surface as a broken
// delivery. knownKinds is the set of event kinds the system can emit.
func (w Webhook) Validate(knownKinds []string) error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	u, err := url.Parse(w.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url must be absolute http or https", ErrInvalidConfig)
	}
	for _, kind := range w.Events {
		if !containsKind(knownKinds, kind) {
			return fmt.Errorf("%w: unknown event kind %q", ErrInvalidConfig, kind)
		}
	}
	if !KnownTemplate(w.Template) {
		return fmt.Errorf("%w: unknown template %q", ErrInvalidConfig, w.Template)
	}
	if w.Timeout < MinTimeout || w.Timeout > MaxTimeout {
		return fmt.Errorf("%w: timeout must be between %s and %s", ErrInvalidConfig, MinTimeout, MaxTimeout)
	}
	if w.Retry.MaxAttempts < 1 || w.Retry.MaxAttempts > MaxAttemptsLimit {
		return fmt.Errorf("%w: max attempts must be between 1 and %d", ErrInvalidConfig, MaxAttemptsLimit)
	}
	if w.Retry.BaseDelay <= 0 {
		return fmt.Errorf("%w: base delay must be positive", ErrInvalidConfig)
	}
	if w.Retry.MaxDelay < w.Retry.BaseDelay {
		return fmt.Errorf("%w: max delay must not be below base delay", ErrInvalidConfig)
	}
	return nil
}

func containsKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
