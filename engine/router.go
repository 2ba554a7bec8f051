package engine

import (
	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
)

// Router resolves a state's routing directive into the next handler or
// termination. It is pure: the same state always yields the same decision.
//
// Fail-safe defaults:
//   - unset directive -> terminate (prevents undefined continuation)
//   - terminate sentinel -> terminate
//   - directive naming an unregistered handler -> terminate with a logged
//     warning (the directive is driven by upstream handler output which might
//     carry a typo'd identifier, so this is not a hard failure)
type Router struct {
	registry *core.Registry
	logger   logging.Logger
}

// NewRouter creates a router over an immutable handler registry.
func NewRouter(registry *core.Registry, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Router{registry: registry, logger: logger}
}

// Next returns the next handler id and true, or false to terminate the
// workflow.
func (r *Router) Next(state *core.ConversationState) (core.HandlerID, bool) {
	directive := state.NextDirective

	if directive.IsUnset() {
		r.logger.Debug("no next handler specified, ending workflow")
		return "", false
	}
	if directive.IsTerminate() {
		return "", false
	}

	id, _ := directive.HandlerID()
	if !r.registry.Has(id) {
		r.logger.Warn("directive names unregistered handler, ending workflow", "handler", string(id))
		return "", false
	}

	return id, true
}
