// Package identity carries authentication events from the identity gateway
// to the components that react to them (profile provisioning, auditing).
package identity

import (
	"context"
	"sync"
)

// EventKind names an auth state change.
type EventKind string

const (
	SignedIn  EventKind = "SIGNED_IN"
	SignedOut EventKind = "SIGNED_OUT"
)

// Identity is what subscribers learn about the signed-in user.
type Identity struct {
	ID               string
	Email            string
	MetadataUsername string
}

type Event struct {
	Kind     EventKind
	Identity Identity
}

// Handler must not block for long; it runs on the publisher's goroutine.
type Handler func(ctx context.Context, e Event)

// Bus is a synchronous fan-out of auth events.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Publish delivers e to every subscriber before returning.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ctx, e)
	}
}
