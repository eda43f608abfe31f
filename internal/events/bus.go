// Package events implements the in-process publish/subscribe channels that
// keep independently-rendered screens consistent with the remote state.
// Buses hold only their current subscribers: nothing is buffered, and a
// subscriber registered after an emission never receives it.
package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// Bus is a typed publish/subscribe channel. Emission is synchronous and
// delivers to subscribers in registration order. A panicking subscriber is
// logged and does not prevent delivery to the remaining subscribers.
type Bus[T any] struct {
	mu   sync.Mutex
	name string
	log  zerolog.Logger
	next int
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// NewBus creates an empty bus. The name appears in log output only.
func NewBus[T any](name string, log zerolog.Logger) *Bus[T] {
	return &Bus[T]{name: name, log: log}
}

// Subscribe registers fn and returns its removal function. The removal
// function is idempotent: calling it more than once is a no-op.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs = append(b.subs, subscriber[T]{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers v to every subscriber registered at the time of the call,
// in registration order. The subscriber list is snapshotted first, so a
// callback may subscribe or unsubscribe without affecting this delivery.
func (b *Bus[T]) Emit(v T) {
	b.mu.Lock()
	snapshot := make([]subscriber[T], len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		b.deliver(s, v)
	}
}

func (b *Bus[T]) deliver(s subscriber[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("bus", b.name).
				Int("subscriber", s.id).
				Interface("panic", r).
				Msg("subscriber panicked during emit")
		}
	}()
	s.fn(v)
}

// Len returns the current subscriber count.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Reset drops all subscribers. Used for test isolation; the bus itself
// lives for the process lifetime.
func (b *Bus[T]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = nil
}

// Signal is a payloadless companion channel, used to broadcast events that
// carry no data (e.g. "discard all locally held recipes" on sign-out).
type Signal struct {
	bus *Bus[struct{}]
}

// NewSignal creates an empty signal channel.
func NewSignal(name string, log zerolog.Logger) *Signal {
	return &Signal{bus: NewBus[struct{}](name, log)}
}

// Subscribe registers fn; the returned removal function is idempotent.
func (s *Signal) Subscribe(fn func()) (unsubscribe func()) {
	return s.bus.Subscribe(func(struct{}) { fn() })
}

// Emit notifies every current subscriber, in registration order.
func (s *Signal) Emit() { s.bus.Emit(struct{}{}) }

// Len returns the current subscriber count.
func (s *Signal) Len() int { return s.bus.Len() }

// Reset drops all subscribers.
func (s *Signal) Reset() { s.bus.Reset() }
