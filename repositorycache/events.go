package repositorycache

import (
	"context"
	"sync"

	"github.com/uptrace/bun"
)

// EventKind names a repository lifecycle event.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event is dispatched after a write succeeded. Records holds the records
// returned by the write; criteria based deletes carry no records.
//
// Tx is the transaction a Tx variant wrote through. It is nil for plain
// writes and for events deferred by RunInTx, which are dispatched after commit.
type Event[T any] struct {
	Kind    EventKind
	Records []T
	Tx      bun.IDB
}

// Listener reacts to a lifecycle event. A non-nil error stops the dispatch
// and is returned to the caller of the write.
type Listener[T any] func(ctx context.Context, e Event[T]) error

// Events holds the listeners registered for a model type. The zero value is
// ready to use.
type Events[T any] struct {
	mu        sync.RWMutex
	listeners map[EventKind][]Listener[T]
}

// NewEvents returns an empty listener registry.
func NewEvents[T any]() *Events[T] {
	return &Events[T]{listeners: make(map[EventKind][]Listener[T])}
}

// On registers l for kind. Listeners run in registration order.
func (e *Events[T]) On(kind EventKind, l Listener[T]) {
	if l == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[EventKind][]Listener[T])
	}
	e.listeners[kind] = append(e.listeners[kind], l)
}

// Len returns the number of listeners registered for kind.
func (e *Events[T]) Len(kind EventKind) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[kind])
}

// Dispatch runs the listeners registered for ev.Kind synchronously.
func (e *Events[T]) Dispatch(ctx context.Context, ev Event[T]) error {
	e.mu.RLock()
	listeners := append([]Listener[T](nil), e.listeners[ev.Kind]...)
	e.mu.RUnlock()

	for _, l := range listeners {
		if err := l(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
