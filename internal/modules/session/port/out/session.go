package out

import (
	"context"
	"time"

	"stint/internal/modules/session/domain"
)

// Store persists sessions. GetActive returns apperrors.ErrNoActiveSession
// when no session is running or paused; GetByID and Update return
// apperrors.ErrNotFound for unknown ids. List returns sessions in
// chronological order of StartedAt.
type Store interface {
	Create(ctx context.Context, session domain.Session) error
	GetActive(ctx context.Context) (domain.Session, error)
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Update(ctx context.Context, session domain.Session) error
	List(ctx context.Context, filter domain.Filter) ([]domain.Session, error)
}

// ExportWriter renders sessions to a file and reports how many records it
// wrote. Durations are evaluated at now.
type ExportWriter interface {
	Write(ctx context.Context, path, format string, sessions []domain.Session, now time.Time) (int, error)
}
