package domain

import (
	"fmt"
	"time"
)

// Event kinds observable by integrations.
const (
	KindSessionStarted  = "session_started"
	KindSessionPaused   = "session_paused"
	KindSessionResumed  = "session_resumed"
	KindSessionStopped  = "session_stopped"
	KindExportCompleted = "export_completed"
	KindWebhookTest     = "webhook_test"
)

// Kinds lists every event kind in a stable order.
func Kinds() []string {
	return []string{
		KindSessionStarted,
		KindSessionPaused,
		KindSessionResumed,
		KindSessionStopped,
		KindExportCompleted,
		KindWebhookTest,
	}
}

func ValidKind(kind string) bool {
	for _, k := range Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Event is one observable state change. It is published only after the
// change it describes is durable, so consumers never see rolled-back state.
type Event struct {
	ID         string
	Kind       string
	OccurredAt time.Time
	Payload    map[string]any
}

// HandlerFailure records one handler that failed during a publish. Failures
// are collected and reported; they never fail the operation that emitted
// the event.
type HandlerFailure struct {
	Handler string
	Err     error
}

func (f HandlerFailure) Error() string {
	return fmt.Sprintf("handler %s: %v", f.Handler, f.Err)
}

func (f HandlerFailure) Unwrap() error {
	return f.Err
}
