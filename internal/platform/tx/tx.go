// Package tx draws the transactional boundary around session state
// transitions, so the active-session check and the write that follows
// it land atomically.
package tx

import "context"

// Manager runs fn within one transaction. Implementations commit when fn
// returns nil and roll back otherwise.
type Manager interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

// Passthrough runs fn directly with no transaction. Wiring tests use it
// where a real database would be noise.
type Passthrough struct{}

func (Passthrough) Within(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
