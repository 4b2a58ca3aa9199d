package comm

import (
	"context"
	"sync"
)

// Handler is called when a frame with the registered identifier is received.
// It runs on the receive path of the link and must not block: slow work
// must be handed off to another goroutine.
type Handler interface {
	HandleFrame(ctx context.Context, payload []byte)
}

// HandlerFunc is func type of Handler.
type HandlerFunc func(context.Context, []byte)

// HandleFrame implements Handler.
func (f HandlerFunc) HandleFrame(ctx context.Context, payload []byte) {
	f(ctx, payload)
}

// Dispatcher maps identifiers to handlers for one role.
type Dispatcher struct {
	Role   Role
	Events EventSink

	handlers [256]Handler
	lock     sync.RWMutex
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(role Role, events EventSink) *Dispatcher {
	return &Dispatcher{Role: role, Events: events}
}

// Register installs the handler for the identifier.
// A previous handler is replaced, which is reported as ErrOverrideCommandListener.
func (d *Dispatcher) Register(id Identifier, h Handler) (replaced bool) {
	d.lock.Lock()
	replaced = d.handlers[id] != nil
	d.handlers[id] = h
	d.lock.Unlock()
	if replaced {
		report(d.Events, &Error{Code: ErrOverrideCommandListener, Role: d.Role, Identifier: id})
	}
	return
}

// Unregister removes the handler for the identifier.
func (d *Dispatcher) Unregister(id Identifier) {
	d.lock.Lock()
	d.handlers[id] = nil
	d.lock.Unlock()
}

// Handler gets the handler for the identifier.
func (d *Dispatcher) Handler(id Identifier) Handler {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.handlers[id]
}

// Dispatch invokes the handler for the identifier synchronously.
// Without a handler, ErrMissingCallback is reported and the payload dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, id Identifier, payload []byte) bool {
	h := d.Handler(id)
	if h == nil {
		report(d.Events, &Error{Code: ErrMissingCallback, Role: d.Role, Identifier: id})
		return false
	}
	h.HandleFrame(ctx, payload)
	return true
}
