package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	integrationdto "stint/internal/modules/integration/dto"
	integrationin "stint/internal/modules/integration/port/in"
	"stint/internal/modules/session/domain"
	sessiondto "stint/internal/modules/session/dto"
	sessionin "stint/internal/modules/session/port/in"
	sessionout "stint/internal/modules/session/port/out"
	"stint/internal/modules/session/service"
	"stint/internal/modules/session/usecase"
	apperrors "stint/internal/platform/errors"
	"stint/internal/platform/tx"
)

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type fakeIDs struct{ n int }

func (f *fakeIDs) New() string {
	f.n++
	return fmt.Sprintf("sess-%d", f.n)
}

type memStore struct {
	sessions map[string]domain.Session
	order    []string
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]domain.Session{}}
}

func (m *memStore) Create(_ context.Context, s domain.Session) error {
	m.sessions[s.ID] = s
	m.order = append(m.order, s.ID)
	return nil
}

func (m *memStore) GetActive(_ context.Context) (domain.Session, error) {
	for _, id := range m.order {
		if s := m.sessions[id]; s.Active() {
			return s, nil
		}
	}
	return domain.Session{}, apperrors.ErrNoActiveSession
}

func (m *memStore) GetByID(_ context.Context, id string) (domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, apperrors.ErrNotFound
	}
	return s, nil
}

func (m *memStore) Update(_ context.Context, s domain.Session) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) List(_ context.Context, f domain.Filter) ([]domain.Session, error) {
	out := []domain.Session{}
	for _, id := range m.order {
		if s := m.sessions[id]; f.Matches(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].StartedAt.Before(out[b].StartedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

type recordingPublisher struct {
	events   []integrationdto.PublishInput
	failures []integrationdto.HandlerFailure
}

func (p *recordingPublisher) Publish(_ context.Context, input integrationdto.PublishInput) (integrationdto.PublishOutput, error) {
	p.events = append(p.events, input)
	return integrationdto.PublishOutput{EventID: "evt", Delivered: true, Failures: p.failures}, nil
}

type fakeExporter struct {
	path   string
	format string
	err    error
}

func (f *fakeExporter) Write(_ context.Context, path, format string, sessions []domain.Session, _ time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.path = path
	f.format = format
	return len(sessions), nil
}

func newInteractor(clk *fakeClock, store sessionout.Store, pub integrationin.Publisher, exp sessionout.ExportWriter) sessionin.Usecase {
	svc := service.NewSessionService(clk, &fakeIDs{}, store)
	return usecase.NewInteractor(svc, tx.Passthrough{}, pub, exp, nil)
}

func TestStartCreatesRunningSessionAndPublishes(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	uc := newInteractor(&fakeClock{values: []time.Time{epoch}}, newMemStore(), pub, nil)

	out, err := uc.Start(context.Background(), sessiondto.StartInput{
		Description: "fix parser",
		Tags:        []string{"Deep", "deep"},
		Project:     "compiler",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if out.SessionID == "" || !out.StartedAt.Equal(epoch) {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(out.Tags) != 1 || out.Tags[0] != "deep" {
		t.Fatalf("expected normalized tags, got %v", out.Tags)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.Kind != "session_started" {
		t.Fatalf("unexpected kind %q", evt.Kind)
	}
	if evt.Payload["session_id"] != out.SessionID || evt.Payload["description"] != "fix parser" {
		t.Fatalf("unexpected payload %v", evt.Payload)
	}
	if evt.Payload["started_at"] != epoch.Format(time.RFC3339) {
		t.Fatalf("unexpected started_at %v", evt.Payload["started_at"])
	}
}

func TestStartFailsWhenSessionAlreadyActive(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	uc := newInteractor(&fakeClock{values: []time.Time{epoch}}, newMemStore(), pub, nil)

	if _, err := uc.Start(context.Background(), sessiondto.StartInput{Description: "one"}); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	_, err := uc.Start(context.Background(), sessiondto.StartInput{Description: "two"})
	if !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("rejected start must not publish, got %d events", len(pub.events))
	}

	// A paused session still owns the active slot.
	if _, err := uc.Pause(context.Background()); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	_, err = uc.Start(context.Background(), sessiondto.StartInput{Description: "three"})
	if !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists while paused, got %v", err)
	}
}

func TestPauseResumeStopComputesDurations(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{values: []time.Time{
		epoch,
		epoch.Add(3 * time.Second),
		epoch.Add(5 * time.Second),
		epoch.Add(10 * time.Second),
	}}
	pub := &recordingPublisher{}
	uc := newInteractor(clk, newMemStore(), pub, nil)
	ctx := context.Background()

	if _, err := uc.Start(ctx, sessiondto.StartInput{Description: "fix parser"}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	paused, err := uc.Pause(ctx)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if paused.Duration != 3*time.Second {
		t.Fatalf("expected 3s worked at pause, got %v", paused.Duration)
	}

	resumed, err := uc.Resume(ctx)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resumed.PausedFor != 2*time.Second || resumed.Duration != 3*time.Second {
		t.Fatalf("unexpected resume output %+v", resumed)
	}

	stopped, err := uc.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if stopped.Duration != 8*time.Second {
		t.Fatalf("10s wall minus 2s pause should be 8s, got %v", stopped.Duration)
	}
	if stopped.Paused != 2*time.Second {
		t.Fatalf("expected 2s paused, got %v", stopped.Paused)
	}

	kinds := make([]string, 0, len(pub.events))
	for _, e := range pub.events {
		kinds = append(kinds, e.Kind)
	}
	want := []string{"session_started", "session_paused", "session_resumed", "session_stopped"}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, kinds)
		}
	}
	final := pub.events[3].Payload
	if final["duration_seconds"] != int64(8) || final["pause_seconds"] != int64(2) {
		t.Fatalf("unexpected stop payload %v", final)
	}
}

func TestStatusReportsPausedSession(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{values: []time.Time{
		epoch,
		epoch.Add(3 * time.Second),
		epoch.Add(9 * time.Second),
	}}
	uc := newInteractor(clk, newMemStore(), &recordingPublisher{}, nil)
	ctx := context.Background()

	if _, err := uc.Start(ctx, sessiondto.StartInput{Description: "fix parser"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := uc.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	status, err := uc.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.State != "paused" || status.PauseCount != 1 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Duration != 3*time.Second {
		t.Fatalf("duration must freeze while paused, got %v", status.Duration)
	}
	if status.Paused != 6*time.Second {
		t.Fatalf("expected 6s paused so far, got %v", status.Paused)
	}
}

func TestStatusEmitsNothing(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	uc := newInteractor(&fakeClock{values: []time.Time{epoch}}, newMemStore(), pub, nil)
	ctx := context.Background()

	if _, err := uc.Start(ctx, sessiondto.StartInput{Description: "fix parser"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := uc.Status(ctx); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("status must not publish, got %d events", len(pub.events))
	}
}

func TestLogFiltersAndOrdersSessions(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	clk := &fakeClock{values: []time.Time{
		epoch,
		epoch.Add(100 * time.Second),
		epoch.Add(200 * time.Second),
		epoch.Add(600 * time.Second),
		epoch.Add(time.Hour),
	}}
	uc := newInteractor(clk, store, &recordingPublisher{}, nil)
	ctx := context.Background()

	if _, err := uc.Start(ctx, sessiondto.StartInput{Description: "short", Tags: []string{"a"}}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := uc.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := uc.Start(ctx, sessiondto.StartInput{Description: "long", Tags: []string{"a", "b"}}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := uc.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	all, err := uc.Log(ctx, sessiondto.LogFilter{})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(all.Sessions) != 2 || all.Sessions[0].Description != "short" {
		t.Fatalf("expected chronological order, got %+v", all.Sessions)
	}

	min := 300 * time.Second
	longOnly, err := uc.Log(ctx, sessiondto.LogFilter{MinDuration: &min})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(longOnly.Sessions) != 1 || longOnly.Sessions[0].Description != "long" {
		t.Fatalf("min duration filter failed: %+v", longOnly.Sessions)
	}

	tagged, err := uc.Log(ctx, sessiondto.LogFilter{Tags: []string{"b"}})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(tagged.Sessions) != 1 || tagged.Sessions[0].Description != "long" {
		t.Fatalf("tag filter failed: %+v", tagged.Sessions)
	}
}

func TestExportWritesAndPublishes(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{values: []time.Time{
		epoch,
		epoch.Add(100 * time.Second),
		epoch.Add(time.Hour),
	}}
	pub := &recordingPublisher{}
	exp := &fakeExporter{}
	uc := newInteractor(clk, newMemStore(), pub, exp)
	ctx := context.Background()

	if _, err := uc.Start(ctx, sessiondto.StartInput{Description: "fix parser", Project: "Compiler Work"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := uc.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	out, err := uc.Export(ctx, sessiondto.ExportInput{Format: "json", Filter: sessiondto.LogFilter{Project: "Compiler Work"}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out.Records != 1 || out.Format != "json" {
		t.Fatalf("unexpected export output %+v", out)
	}
	if !strings.HasPrefix(out.Path, "stint-export-compiler-work-") || !strings.HasSuffix(out.Path, ".json") {
		t.Fatalf("unexpected default path %q", out.Path)
	}
	if exp.format != "json" || exp.path != out.Path {
		t.Fatalf("exporter saw %q %q", exp.format, exp.path)
	}

	last := pub.events[len(pub.events)-1]
	if last.Kind != "export_completed" {
		t.Fatalf("expected export_completed, got %q", last.Kind)
	}
	if last.Payload["record_count"] != 1 || last.Payload["path"] != out.Path {
		t.Fatalf("unexpected payload %v", last.Payload)
	}
}

func TestHandlerFailuresDoNotFailCommands(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{failures: []integrationdto.HandlerFailure{{Handler: "webhooks", Message: "boom"}}}
	uc := newInteractor(&fakeClock{values: []time.Time{epoch}}, newMemStore(), pub, nil)

	if _, err := uc.Start(context.Background(), sessiondto.StartInput{Description: "fix parser"}); err != nil {
		t.Fatalf("Start must succeed despite handler failures: %v", err)
	}
}
