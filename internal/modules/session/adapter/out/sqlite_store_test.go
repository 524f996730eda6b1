package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	out "stint/internal/modules/session/adapter/out"
	"stint/internal/modules/session/domain"
	"stint/internal/platform/db"
	apperrors "stint/internal/platform/errors"
)

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *out.SQLiteStore {
	t.Helper()
	handle, err := db.Open(filepath.Join(t.TempDir(), "data", "stint.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = handle.Close() })
	store, err := out.NewSQLiteStore(handle)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func mustSession(t *testing.T, id, description string, tags []string, project string, startedAt time.Time) domain.Session {
	t.Helper()
	s, err := domain.NewSession(id, description, tags, project, startedAt)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestCreateAndGetByIDRoundTrips(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	s := mustSession(t, "s1", "fix parser", []string{"deep", "work"}, "compiler", epoch.Add(1500*time.Millisecond))
	if err := s.Pause(epoch.Add(3 * time.Second)); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := s.Resume(epoch.Add(4500 * time.Millisecond)); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if err := s.Pause(epoch.Add(6 * time.Second)); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.StartedAt.Equal(s.StartedAt) {
		t.Fatalf("started_at drifted: %v vs %v", got.StartedAt, s.StartedAt)
	}
	if got.Description != "fix parser" || got.Project != "compiler" || got.State != domain.StatePaused {
		t.Fatalf("unexpected session %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "deep" || got.Tags[1] != "work" {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
	if len(got.Pauses) != 2 {
		t.Fatalf("expected 2 pause intervals, got %d", len(got.Pauses))
	}
	if got.Pauses[0].ResumedAt == nil || !got.Pauses[0].ResumedAt.Equal(epoch.Add(4500*time.Millisecond)) {
		t.Fatalf("first pause lost its resume: %+v", got.Pauses[0])
	}
	if got.Pauses[1].ResumedAt != nil {
		t.Fatalf("open pause must stay open, got %+v", got.Pauses[1])
	}
	if got.StoppedAt != nil {
		t.Fatalf("unexpected stopped_at %v", got.StoppedAt)
	}
}

func TestGetByIDUnknown(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	if _, err := store.GetByID(context.Background(), "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetActiveLifecycle(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	if _, err := store.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}

	s := mustSession(t, "s1", "work", nil, "", epoch)
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	active, err := store.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if active.ID != "s1" {
		t.Fatalf("unexpected active session %q", active.ID)
	}

	// A paused session still holds the slot.
	if err := s.Pause(epoch.Add(time.Second)); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := store.Update(ctx, s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := store.GetActive(ctx); err != nil {
		t.Fatalf("paused session should be active: %v", err)
	}

	if err := s.Stop(epoch.Add(2 * time.Second)); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := store.Update(ctx, s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := store.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession after stop, got %v", err)
	}
}

func TestUpdateUnknownSession(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	s := mustSession(t, "ghost", "work", nil, "", epoch)
	if err := store.Update(context.Background(), s); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCannotMoveStartedAt(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	s := mustSession(t, "s1", "work", nil, "", epoch)
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s.StartedAt = epoch.Add(time.Hour)
	if err := store.Update(ctx, s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.StartedAt.Equal(epoch) {
		t.Fatalf("started_at must be immutable, got %v", got.StartedAt)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	mk := func(id string, start time.Time, stop time.Time, tags []string, project string) {
		t.Helper()
		s := mustSession(t, id, "work "+id, tags, project, start)
		if err := s.Stop(stop); err != nil {
			t.Fatalf("Stop: %v", err)
		}
		if err := store.Create(ctx, s); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	// Insert out of chronological order on purpose.
	mk("b", epoch.Add(time.Hour), epoch.Add(time.Hour+400*time.Second), []string{"go"}, "compiler")
	mk("a", epoch, epoch.Add(200*time.Second), []string{"go", "review"}, "compiler")
	mk("c", epoch.Add(2*time.Hour), epoch.Add(2*time.Hour+50*time.Second), nil, "ops")

	now := epoch.Add(24 * time.Hour)

	all, err := store.List(ctx, domain.Filter{Now: now})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "a" || all[1].ID != "b" || all[2].ID != "c" {
		t.Fatalf("expected chronological order a,b,c got %v", ids(all))
	}

	from := epoch.Add(30 * time.Minute)
	to := epoch.Add(90 * time.Minute)
	ranged, err := store.List(ctx, domain.Filter{From: &from, To: &to, Now: now})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ranged) != 1 || ranged[0].ID != "b" {
		t.Fatalf("range filter failed: %v", ids(ranged))
	}

	byProject, err := store.List(ctx, domain.Filter{Project: "ops", Now: now})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byProject) != 1 || byProject[0].ID != "c" {
		t.Fatalf("project filter failed: %v", ids(byProject))
	}

	byTags, err := store.List(ctx, domain.Filter{Tags: []string{"go", "review"}, Now: now})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byTags) != 1 || byTags[0].ID != "a" {
		t.Fatalf("tag filter failed: %v", ids(byTags))
	}

	min := 300 * time.Second
	long, err := store.List(ctx, domain.Filter{MinDuration: &min, Now: now})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(long) != 1 || long[0].ID != "b" {
		t.Fatalf("min duration filter failed: %v", ids(long))
	}

	limited, err := store.List(ctx, domain.Filter{Limit: 2, Now: now})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "a" || limited[1].ID != "b" {
		t.Fatalf("limit failed: %v", ids(limited))
	}
}

func ids(sessions []domain.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}
