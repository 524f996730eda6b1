// Package clock isolates wall time behind an interface so session
// arithmetic stays deterministic under test.
package clock

import "time"

// Clock supplies the current instant. Persisted timestamps are always
// UTC, which keeps elapsed math stable across timezone changes.
type Clock interface {
	Now() time.Time
}

// UTC reads the system clock and normalizes the result to UTC.
type UTC struct{}

func (UTC) Now() time.Time {
	return time.Now().UTC()
}
