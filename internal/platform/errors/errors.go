// Package apperrors holds the sentinels usecases return and adapters
// translate into user-facing messages.
package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
	ErrSessionNotPaused    = errors.New("session is not paused")
)
