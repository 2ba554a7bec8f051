package handler

import (
	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
)

// BaseHandler bundles the identity and logging plumbing shared by the
// concrete handlers. Embed it and supply Process/ShouldHandle to satisfy
// core.Handler.
type BaseHandler struct {
	id     core.HandlerID
	logger logging.Logger
}

// NewBaseHandler constructs a BaseHandler with a non-nil logger.
func NewBaseHandler(id core.HandlerID, logger logging.Logger) BaseHandler {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return BaseHandler{id: id, logger: logger}
}

// ID returns the handler's registry identifier.
func (b *BaseHandler) ID() core.HandlerID { return b.id }

// Logger returns the handler's logger.
func (b *BaseHandler) Logger() logging.Logger { return b.logger }

// terminate appends a final assistant message and sets the terminate
// directive. Used for both regular terminal responses and absorbed
// external-service failures.
func (b *BaseHandler) terminate(state *core.ConversationState, content string) *core.ConversationState {
	state.Append(core.NewAssistantMessage(content))
	state.NextDirective = core.DirectiveTerminate
	return state
}

// apologize converts an external-service failure into a terminating,
// user-visible apology carrying the failure reason. The workflow completes
// rather than aborting.
func (b *BaseHandler) apologize(state *core.ConversationState, err error) *core.ConversationState {
	b.logger.Error("external service call failed", "handler", string(b.id), "error", err.Error())
	return b.terminate(state, "I'm sorry, something went wrong while handling your request: "+err.Error())
}
