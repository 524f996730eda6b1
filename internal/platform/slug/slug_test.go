package slug_test

import (
	"testing"

	"stint/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Client Work", "client-work"},
		{"  API v2 / Billing  ", "api-v2-billing"},
		{"already-a-slug", "already-a-slug"},
		{"###", "untagged"},
		{"", "untagged"},
	}
	for _, tc := range cases {
		if got := slug.Make(tc.in); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
