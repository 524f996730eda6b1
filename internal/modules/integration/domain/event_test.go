package domain_test

import (
	"errors"
	"testing"

	"stint/internal/modules/integration/domain"
)

func TestValidKind(t *testing.T) {
	t.Parallel()

	for _, kind := range domain.Kinds() {
		if !domain.ValidKind(kind) {
			t.Errorf("ValidKind(%q) = false", kind)
		}
	}
	if domain.ValidKind("session_exploded") {
		t.Error("ValidKind accepted an unknown kind")
	}
	if domain.ValidKind("") {
		t.Error("ValidKind accepted the empty string")
	}
}

func TestHandlerFailureUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	failure := domain.HandlerFailure{Handler: "webhooks", Err: cause}
	if !errors.Is(failure, cause) {
		t.Fatal("expected failure to unwrap to its cause")
	}
	if failure.Error() != "handler webhooks: connection refused" {
		t.Fatalf("unexpected message %q", failure.Error())
	}
}

func TestSettingsHandlerEnabledDefaultsTrue(t *testing.T) {
	t.Parallel()

	s := domain.DefaultSettings()
	if !s.HandlerEnabled("webhooks") {
		t.Fatal("unknown handler should default to enabled")
	}
	s = s.SetHandler("webhooks", false)
	if s.HandlerEnabled("webhooks") {
		t.Fatal("disabled handler reported enabled")
	}
	if !s.HandlerEnabled("plugins") {
		t.Fatal("toggling one handler must not affect others")
	}
}
