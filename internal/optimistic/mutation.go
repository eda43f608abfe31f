// Package optimistic implements the apply-then-confirm mutation pattern:
// local state changes and is broadcast before the network call resolves,
// and is rolled back to the captured snapshot if the call fails.
package optimistic

import "context"

// Mutation is one optimistic update cycle over a value of type T. The
// capture/apply/rollback discipline is enforced structurally: Run captures
// the previous value itself, so a call site cannot forget to roll back.
type Mutation[T any] struct {
	// Get reads the current value. Called once, at the start of Run.
	Get func() T
	// Set applies a value to local state and emits it on the owning bus.
	// Called with next, then possibly with the canonical or previous value.
	Set func(T)
	// Commit performs the remote call. A returned canonical value with
	// supersede=true replaces next after success (e.g. a server-assigned
	// URL); supersede=false keeps next as-is.
	Commit func(ctx context.Context, next T) (canonical T, supersede bool, err error)
}

// Run executes one cycle: capture previous, apply next, commit remotely.
// On failure the value captured at the start of this call is restored and
// re-emitted, and the error is returned for the caller to surface.
//
// Concurrent runs over the same field are not coalesced; each cycle rolls
// back to its own captured previous, giving last-writer-wins semantics
// under sequential user actions.
func (m Mutation[T]) Run(ctx context.Context, next T) error {
	previous := m.Get()
	m.Set(next)

	canonical, supersede, err := m.Commit(ctx, next)
	if err != nil {
		m.Set(previous)
		return err
	}
	if supersede {
		m.Set(canonical)
	}
	return nil
}
