package dto

type PublishInput struct {
	Kind    string
	Payload map[string]any
}

type HandlerFailure struct {
	Handler string
	Message string
}

// PublishOutput reports one fan-out. Delivered is false when integrations
// are globally disabled and no handler ran.
type PublishOutput struct {
	EventID   string
	Delivered bool
	Failures  []HandlerFailure
}

type HandlerStatus struct {
	Name     string
	Priority int
	Enabled  bool
}

type StatusOutput struct {
	Enabled  bool
	Handlers []HandlerStatus
	Webhooks int
	Plugins  int
}

type StatsOutput struct {
	Enabled         bool
	Webhooks        int
	EnabledWebhooks int
	Attempts        int
	Successes       int
	Failures        int
	SuccessRate     float64
	PendingRetries  int
	Plugins         int
	EnabledPlugins  int
}

// SetEnabledInput toggles the global flag when Handler is empty, otherwise
// the named handler group.
type SetEnabledInput struct {
	Handler string
	Enabled bool
}

type SetEnabledOutput struct {
	Handler string
	Enabled bool
}

type RetryResult struct {
	WebhookName string
	EventID     string
	Attempt     int
	Succeeded   bool
	Detail      string
}

type RetryOutput struct {
	Processed int
	Succeeded int
	Failed    int
	Results   []RetryResult
}
