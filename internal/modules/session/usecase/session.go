package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	integrationdomain "stint/internal/modules/integration/domain"
	integrationdto "stint/internal/modules/integration/dto"
	integrationin "stint/internal/modules/integration/port/in"
	"stint/internal/modules/session/domain"
	sessiondto "stint/internal/modules/session/dto"
	sessionin "stint/internal/modules/session/port/in"
	sessionout "stint/internal/modules/session/port/out"
	"stint/internal/modules/session/service"
	apperrors "stint/internal/platform/errors"
	"stint/internal/platform/slug"
	"stint/internal/platform/tx"
)

// Interactor drives the session lifecycle. State checks and the writes
// depending on them share one transaction; events go out only after that
// transaction commits, and handler failures never fail the command.
type Interactor struct {
	svc       *service.SessionService
	txm       tx.Manager
	publisher integrationin.Publisher
	exporter  sessionout.ExportWriter
	log       *slog.Logger
}

func NewInteractor(svc *service.SessionService, txm tx.Manager, publisher integrationin.Publisher, exporter sessionout.ExportWriter, log *slog.Logger) sessionin.Usecase {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Interactor{svc: svc, txm: txm, publisher: publisher, exporter: exporter, log: log}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StartOutput, error) {
	var session domain.Session
	err := i.txm.Within(ctx, func(ctx context.Context) error {
		_, err := i.svc.Active(ctx)
		if err == nil {
			return apperrors.ErrActiveSessionExists
		}
		if !errors.Is(err, apperrors.ErrNoActiveSession) {
			return err
		}
		session, err = i.svc.Start(ctx, input.Description, input.Tags, input.Project)
		return err
	})
	if err != nil {
		return sessiondto.StartOutput{}, err
	}

	payload := basePayload(session)
	payload["started_at"] = stamp(session.StartedAt)
	i.publish(ctx, integrationdomain.KindSessionStarted, payload)

	return sessiondto.StartOutput{
		SessionID:   session.ID,
		Description: session.Description,
		Tags:        session.Tags,
		Project:     session.Project,
		StartedAt:   session.StartedAt,
	}, nil
}

func (i *Interactor) Pause(ctx context.Context) (sessiondto.PauseOutput, error) {
	var session domain.Session
	err := i.txm.Within(ctx, func(ctx context.Context) error {
		active, err := i.svc.Active(ctx)
		if err != nil {
			return err
		}
		session, err = i.svc.Pause(ctx, active)
		return err
	})
	if err != nil {
		return sessiondto.PauseOutput{}, err
	}

	pausedAt, _ := session.OpenPauseAt()
	duration := session.DurationAt(pausedAt)
	payload := basePayload(session)
	payload["paused_at"] = stamp(pausedAt)
	payload["duration_seconds"] = seconds(duration)
	i.publish(ctx, integrationdomain.KindSessionPaused, payload)

	return sessiondto.PauseOutput{
		SessionID:   session.ID,
		Description: session.Description,
		PausedAt:    pausedAt,
		Duration:    duration,
	}, nil
}

func (i *Interactor) Resume(ctx context.Context) (sessiondto.ResumeOutput, error) {
	var session domain.Session
	err := i.txm.Within(ctx, func(ctx context.Context) error {
		active, err := i.svc.Active(ctx)
		if err != nil {
			return err
		}
		session, err = i.svc.Resume(ctx, active)
		return err
	})
	if err != nil {
		return sessiondto.ResumeOutput{}, err
	}

	last := session.Pauses[len(session.Pauses)-1]
	resumedAt := *last.ResumedAt
	pausedFor := resumedAt.Sub(last.PausedAt)
	duration := session.DurationAt(resumedAt)
	payload := basePayload(session)
	payload["resumed_at"] = stamp(resumedAt)
	payload["pause_seconds"] = seconds(pausedFor)
	payload["duration_seconds"] = seconds(duration)
	i.publish(ctx, integrationdomain.KindSessionResumed, payload)

	return sessiondto.ResumeOutput{
		SessionID:   session.ID,
		Description: session.Description,
		ResumedAt:   resumedAt,
		PausedFor:   pausedFor,
		Duration:    duration,
	}, nil
}

func (i *Interactor) Stop(ctx context.Context) (sessiondto.StopOutput, error) {
	var session domain.Session
	err := i.txm.Within(ctx, func(ctx context.Context) error {
		active, err := i.svc.Active(ctx)
		if err != nil {
			return err
		}
		session, err = i.svc.Stop(ctx, active)
		return err
	})
	if err != nil {
		return sessiondto.StopOutput{}, err
	}

	stoppedAt := *session.StoppedAt
	duration := session.DurationAt(stoppedAt)
	paused := session.PausedFor(stoppedAt)
	payload := basePayload(session)
	payload["started_at"] = stamp(session.StartedAt)
	payload["stopped_at"] = stamp(stoppedAt)
	payload["duration_seconds"] = seconds(duration)
	payload["pause_seconds"] = seconds(paused)
	i.publish(ctx, integrationdomain.KindSessionStopped, payload)

	return sessiondto.StopOutput{
		SessionID:   session.ID,
		Description: session.Description,
		Tags:        session.Tags,
		Project:     session.Project,
		StartedAt:   session.StartedAt,
		StoppedAt:   stoppedAt,
		Duration:    duration,
		Paused:      paused,
	}, nil
}

func (i *Interactor) Status(ctx context.Context) (sessiondto.StatusOutput, error) {
	active, err := i.svc.Active(ctx)
	if err != nil {
		return sessiondto.StatusOutput{}, err
	}
	now := i.svc.Now()
	return sessiondto.StatusOutput{
		SessionID:   active.ID,
		Description: active.Description,
		Tags:        active.Tags,
		Project:     active.Project,
		State:       string(active.State),
		StartedAt:   active.StartedAt,
		Duration:    active.DurationAt(now),
		Paused:      active.PausedFor(now),
		PauseCount:  len(active.Pauses),
	}, nil
}

func (i *Interactor) Log(ctx context.Context, filter sessiondto.LogFilter) (sessiondto.LogOutput, error) {
	sessions, err := i.svc.List(ctx, toDomainFilter(filter))
	if err != nil {
		return sessiondto.LogOutput{}, err
	}
	now := i.svc.Now()
	rows := make([]sessiondto.SessionRow, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, sessiondto.SessionRow{
			SessionID:   s.ID,
			Description: s.Description,
			Tags:        s.Tags,
			Project:     s.Project,
			State:       string(s.State),
			StartedAt:   s.StartedAt,
			StoppedAt:   s.StoppedAt,
			Duration:    s.DurationAt(now),
			Paused:      s.PausedFor(now),
		})
	}
	return sessiondto.LogOutput{Sessions: rows}, nil
}

func (i *Interactor) Export(ctx context.Context, input sessiondto.ExportInput) (sessiondto.ExportOutput, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		return sessiondto.ExportOutput{}, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrInvalidInput, input.Format)
	}
	if i.exporter == nil {
		return sessiondto.ExportOutput{}, fmt.Errorf("export writer is not configured")
	}

	sessions, err := i.svc.List(ctx, toDomainFilter(input.Filter))
	if err != nil {
		return sessiondto.ExportOutput{}, err
	}
	now := i.svc.Now()
	path := input.Path
	if path == "" {
		path = defaultExportPath(input.Filter.Project, format, now)
	}
	records, err := i.exporter.Write(ctx, path, format, sessions, now)
	if err != nil {
		return sessiondto.ExportOutput{}, err
	}

	i.publish(ctx, integrationdomain.KindExportCompleted, map[string]any{
		"format":       format,
		"path":         path,
		"record_count": records,
	})

	return sessiondto.ExportOutput{Path: path, Format: format, Records: records}, nil
}

func (i *Interactor) publish(ctx context.Context, kind string, payload map[string]any) {
	if i.publisher == nil {
		return
	}
	out, err := i.publisher.Publish(ctx, integrationdto.PublishInput{Kind: kind, Payload: payload})
	if err != nil {
		i.log.Warn("event publish failed", "kind", kind, "error", err)
		return
	}
	for _, f := range out.Failures {
		i.log.Warn("integration handler failed", "kind", kind, "handler", f.Handler, "error", f.Message)
	}
}

func basePayload(s domain.Session) map[string]any {
	return map[string]any{
		"session_id":  s.ID,
		"description": s.Description,
		"tags":        s.Tags,
		"project":     s.Project,
	}
}

func toDomainFilter(f sessiondto.LogFilter) domain.Filter {
	return domain.Filter{
		From:        f.From,
		To:          f.To,
		Tags:        f.Tags,
		Project:     f.Project,
		MinDuration: f.MinDuration,
		MaxDuration: f.MaxDuration,
		Limit:       f.Limit,
	}
}

func defaultExportPath(project, format string, now time.Time) string {
	base := "stint-export"
	if project != "" {
		base += "-" + slug.Make(project)
	}
	return fmt.Sprintf("%s-%s.%s", base, now.Format("20060102-150405"), format)
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
