// Package slug turns free-form labels into filesystem-safe tokens for
// generated file names.
package slug

import (
	"regexp"
	"strings"
)

var separatorRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases input and collapses every non-alphanumeric run into a
// single dash. Input with nothing usable comes back as "untagged".
func Make(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = separatorRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untagged"
	}
	return s
}
