package core

import (
	"context"
	"fmt"
)

// Handler is a unit of the workflow that consumes conversation state and
// produces new state plus a routing directive.
//
// Implementations must:
//   - append at least one message to the history; never remove or reorder
//     existing entries
//   - set NextDirective to a registered handler id or the terminate sentinel
//     (leaving it unset is treated as termination by the router)
//   - propagate metadata unchanged unless they are the designated writer of a
//     specific key
//   - convert external-service failures into a terminating, user-visible
//     message rather than returning an error
//
// Process is a single attempt; retry policy belongs to the external service
// client. ShouldHandle is an advisory eligibility predicate used for
// capability gating and diagnostics; the router's directive is authoritative
// for transition selection.
type Handler interface {
	ID() HandlerID
	Process(ctx context.Context, state *ConversationState) (*ConversationState, error)
	ShouldHandle(state *ConversationState) bool
}

// Registry is an immutable mapping of handler ids to handlers, built once at
// startup and shared read-only across concurrent runs.
type Registry struct {
	handlers map[HandlerID]Handler
	ids      []HandlerID
}

// NewRegistry builds a registry from the given handlers. Duplicate ids are an
// error: the routing table must be unambiguous.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[HandlerID]Handler, len(handlers))}
	for _, h := range handlers {
		if _, exists := r.handlers[h.ID()]; exists {
			return nil, fmt.Errorf("handler %q registered twice", h.ID())
		}
		r.handlers[h.ID()] = h
		r.ids = append(r.ids, h.ID())
	}
	return r, nil
}

// Get returns the handler registered under id.
func (r *Registry) Get(id HandlerID) (Handler, bool) {
	h, ok := r.handlers[id]
	return h, ok
}

// Has reports whether a handler is registered under id.
func (r *Registry) Has(id HandlerID) bool {
	_, ok := r.handlers[id]
	return ok
}

// IDs returns the registered handler ids in registration order. The slice is
// a copy safe for caller mutation.
func (r *Registry) IDs() []HandlerID {
	ids := make([]HandlerID, len(r.ids))
	copy(ids, r.ids)
	return ids
}
