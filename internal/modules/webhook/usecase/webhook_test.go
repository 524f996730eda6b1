package usecase_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	integrationdomain "stint/internal/modules/integration/domain"
	"stint/internal/modules/webhook/domain"
	webhookdto "stint/internal/modules/webhook/dto"
	webhookin "stint/internal/modules/webhook/port/in"
	"stint/internal/modules/webhook/service"
	"stint/internal/modules/webhook/usecase"
	apperrors "stint/internal/platform/errors"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct {
	n int
}

func (g *seqIDs) New() string {
	g.n++
	return "id-" + strconv.Itoa(g.n)
}

type mapStore struct {
	webhooks map[string]domain.Webhook
}

func (s *mapStore) Create(_ context.Context, w domain.Webhook) error {
	if _, ok := s.webhooks[w.Name]; ok {
		return domain.ErrDuplicateName
	}
	s.webhooks[w.Name] = w
	return nil
}

func (s *mapStore) GetByName(_ context.Context, name string) (domain.Webhook, error) {
	w, ok := s.webhooks[name]
	if !ok {
		return domain.Webhook{}, apperrors.ErrNotFound
	}
	return w, nil
}

func (s *mapStore) Update(_ context.Context, w domain.Webhook) error {
	if _, ok := s.webhooks[w.Name]; !ok {
		return apperrors.ErrNotFound
	}
	s.webhooks[w.Name] = w
	return nil
}

func (s *mapStore) Delete(_ context.Context, name string) error {
	if _, ok := s.webhooks[name]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.webhooks, name)
	return nil
}

func (s *mapStore) List(_ context.Context) ([]domain.Webhook, error) {
	out := make([]domain.Webhook, 0, len(s.webhooks))
	for _, w := range s.webhooks {
		out = append(out, w)
	}
	return out, nil
}

type limitLedger struct {
	lastLimit int
	counts    map[string]domain.DeliveryCounts
}

func (l *limitLedger) Append(context.Context, domain.DeliveryAttempt) error { return nil }

func (l *limitLedger) History(_ context.Context, _ string, limit int) ([]domain.DeliveryAttempt, error) {
	l.lastLimit = limit
	return nil, nil
}

func (l *limitLedger) PendingRetries(context.Context, time.Time) ([]domain.DeliveryAttempt, error) {
	return nil, nil
}

func (l *limitLedger) Stats(context.Context, time.Time) (domain.LedgerStats, error) {
	return domain.LedgerStats{Attempts: 7, Successes: 5, Failures: 2, PendingRetries: 1}, nil
}

func (l *limitLedger) Counts(context.Context) (map[string]domain.DeliveryCounts, error) {
	return l.counts, nil
}

type okSender struct{}

func (okSender) Send(context.Context, domain.DeliveryRequest) domain.DeliveryResult {
	return domain.DeliveryResult{Status: domain.StatusSuccess, StatusCode: 200}
}

func newUsecase(t *testing.T) (webhookin.Usecase, *mapStore, *limitLedger) {
	t.Helper()
	store := &mapStore{webhooks: map[string]domain.Webhook{}}
	ledger := &limitLedger{}
	svc := service.NewDispatchService(
		fixedClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
		&seqIDs{},
		store,
		ledger,
		okSender{},
		nil,
	)
	uc := usecase.NewInteractor(svc, usecase.Defaults{
		Timeout:      30 * time.Second,
		Retry:        domain.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 5 * time.Minute},
		HistoryLimit: 100,
	})
	return uc, store, ledger
}

func TestAddFillsDefaults(t *testing.T) {
	t.Parallel()

	uc, store, _ := newUsecase(t)
	out, err := uc.Add(context.Background(), webhookdto.AddInput{
		Name: "  notify  ",
		URL:  "https://example.com/hook",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if out.Name != "notify" {
		t.Errorf("name = %q, want trimmed", out.Name)
	}
	if out.Template != domain.TemplateGeneric {
		t.Errorf("template = %q, want generic default", out.Template)
	}
	if out.Timeout != 30*time.Second {
		t.Errorf("timeout = %s, want configured default", out.Timeout)
	}
	if out.MaxAttempts != 3 || out.BaseDelay != time.Second || out.MaxDelay != 5*time.Minute {
		t.Errorf("retry = %d/%s/%s, want configured defaults", out.MaxAttempts, out.BaseDelay, out.MaxDelay)
	}
	if !out.Enabled {
		t.Error("new webhooks start enabled")
	}
	if _, ok := store.webhooks["notify"]; !ok {
		t.Error("webhook not persisted")
	}
}

func TestAddKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	uc, _, _ := newUsecase(t)
	out, err := uc.Add(context.Background(), webhookdto.AddInput{
		Name:        "custom",
		URL:         "https://example.com/hook",
		Events:      []string{integrationdomain.KindSessionStopped},
		Filter:      `{"project": "writing"}`,
		Template:    domain.TemplateSlack,
		Timeout:     10 * time.Second,
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    time.Minute,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if out.Template != domain.TemplateSlack || out.Timeout != 10*time.Second {
		t.Errorf("explicit values overridden: %+v", out)
	}
	if out.MaxAttempts != 5 || out.BaseDelay != 2*time.Second || out.MaxDelay != time.Minute {
		t.Errorf("explicit retry overridden: %+v", out)
	}
	if out.Filter != `{"project": "writing"}` {
		t.Errorf("filter = %q", out.Filter)
	}
}

func TestAddRejectsBadFilterAndDuplicates(t *testing.T) {
	t.Parallel()

	uc, _, _ := newUsecase(t)
	_, err := uc.Add(context.Background(), webhookdto.AddInput{
		Name:   "broken",
		URL:    "https://example.com/hook",
		Filter: `{"duration_seconds": {"gte": 300}}`,
	})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("Add(bad filter) = %v, want ErrInvalidConfig", err)
	}

	if _, err := uc.Add(context.Background(), webhookdto.AddInput{Name: "twice", URL: "https://example.com/a"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err = uc.Add(context.Background(), webhookdto.AddInput{Name: "twice", URL: "https://example.com/b"})
	if !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("Add(duplicate) = %v, want ErrDuplicateName", err)
	}
}

func TestEnableDisableRoundTrip(t *testing.T) {
	t.Parallel()

	uc, _, _ := newUsecase(t)
	if _, err := uc.Add(context.Background(), webhookdto.AddInput{Name: "switch", URL: "https://example.com/hook"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	out, err := uc.Disable(context.Background(), "switch")
	if err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if out.Enabled {
		t.Error("Disable left the webhook enabled")
	}

	out, err = uc.Enable(context.Background(), "switch")
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if !out.Enabled {
		t.Error("Enable left the webhook disabled")
	}

	if _, err := uc.Enable(context.Background(), "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("Enable(ghost) = %v, want ErrNotFound", err)
	}
}

func TestListMergesDeliveryCounts(t *testing.T) {
	t.Parallel()

	uc, _, ledger := newUsecase(t)
	if _, err := uc.Add(context.Background(), webhookdto.AddInput{Name: "notify", URL: "https://example.com/hook"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	ledger.counts = map[string]domain.DeliveryCounts{
		"id-1": {Attempts: 4, Successes: 3, Failures: 1},
	}

	out, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out.Webhooks) != 1 {
		t.Fatalf("len(webhooks) = %d, want 1", len(out.Webhooks))
	}
	wh := out.Webhooks[0]
	if wh.Attempts != 4 || wh.Successes != 3 || wh.Failures != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/3/1", wh.Attempts, wh.Successes, wh.Failures)
	}
}

func TestHistoryAppliesDefaultLimit(t *testing.T) {
	t.Parallel()

	uc, _, ledger := newUsecase(t)
	if _, err := uc.History(context.Background(), webhookdto.HistoryInput{Name: "notify"}); err != nil {
		t.Fatalf("History: %v", err)
	}
	if ledger.lastLimit != 100 {
		t.Errorf("limit = %d, want default 100", ledger.lastLimit)
	}

	if _, err := uc.History(context.Background(), webhookdto.HistoryInput{Name: "notify", Limit: 5}); err != nil {
		t.Fatalf("History: %v", err)
	}
	if ledger.lastLimit != 5 {
		t.Errorf("limit = %d, want explicit 5", ledger.lastLimit)
	}
}

func TestStatsMapsCounters(t *testing.T) {
	t.Parallel()

	uc, _, _ := newUsecase(t)
	if _, err := uc.Add(context.Background(), webhookdto.AddInput{Name: "one", URL: "https://example.com/1"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := uc.Add(context.Background(), webhookdto.AddInput{Name: "two", URL: "https://example.com/2"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := uc.Disable(context.Background(), "two"); err != nil {
		t.Fatalf("Disable: %v", err)
	}

	stats, err := uc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := webhookdto.StatsOutput{
		Webhooks: 2, Enabled: 1,
		Attempts: 7, Successes: 5, Failures: 2, PendingRetries: 1,
	}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
