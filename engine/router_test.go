package engine

import (
	"context"
	"testing"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedHandler struct {
	id      core.HandlerID
	process func(ctx context.Context, state *core.ConversationState) (*core.ConversationState, error)
}

func (s *scriptedHandler) ID() core.HandlerID { return s.id }

func (s *scriptedHandler) Process(ctx context.Context, state *core.ConversationState) (*core.ConversationState, error) {
	return s.process(ctx, state)
}

func (s *scriptedHandler) ShouldHandle(*core.ConversationState) bool { return true }

func newTestRegistry(t *testing.T, ids ...core.HandlerID) *core.Registry {
	t.Helper()
	handlers := make([]core.Handler, 0, len(ids))
	for _, id := range ids {
		id := id
		handlers = append(handlers, &scriptedHandler{
			id: id,
			process: func(_ context.Context, state *core.ConversationState) (*core.ConversationState, error) {
				state.Append(core.NewAssistantMessage("noop"))
				state.NextDirective = core.DirectiveTerminate
				return state, nil
			},
		})
	}
	reg, err := core.NewRegistry(handlers...)
	require.NoError(t, err)
	return reg
}

func TestRouter_UnsetDirectiveTerminates(t *testing.T) {
	router := NewRouter(newTestRegistry(t, core.HandlerLanguageDetection), logging.NoOpLogger{})
	state := core.NewConversationState("hi", core.HandlerLanguageDetection, nil)

	_, ok := router.Next(state)

	assert.False(t, ok)
}

func TestRouter_TerminateSentinel(t *testing.T) {
	router := NewRouter(newTestRegistry(t, core.HandlerLanguageDetection), logging.NoOpLogger{})
	state := core.NewConversationState("hi", core.HandlerLanguageDetection, nil)
	state.NextDirective = core.DirectiveTerminate

	_, ok := router.Next(state)

	assert.False(t, ok)
}

func TestRouter_UnknownHandlerTerminates(t *testing.T) {
	router := NewRouter(newTestRegistry(t, core.HandlerLanguageDetection), logging.NoOpLogger{})
	state := core.NewConversationState("hi", core.HandlerLanguageDetection, nil)
	state.NextDirective = core.Directive("sentiment_analysis")

	_, ok := router.Next(state)

	assert.False(t, ok)
}

func TestRouter_RegisteredHandlerPassthrough(t *testing.T) {
	router := NewRouter(
		newTestRegistry(t, core.HandlerLanguageDetection, core.HandlerClassification),
		logging.NoOpLogger{},
	)
	state := core.NewConversationState("hi", core.HandlerLanguageDetection, nil)
	state.NextDirective = core.DirectiveFor(core.HandlerClassification)

	id, ok := router.Next(state)

	require.True(t, ok)
	assert.Equal(t, core.HandlerClassification, id)
}

// Same input always yields the same output.
func TestRouter_Pure(t *testing.T) {
	router := NewRouter(
		newTestRegistry(t, core.HandlerLanguageDetection, core.HandlerImageReview),
		logging.NoOpLogger{},
	)

	for _, directive := range []core.Directive{
		core.DirectiveNone,
		core.DirectiveTerminate,
		core.DirectiveFor(core.HandlerImageReview),
		core.Directive("nope"),
	} {
		state := core.NewConversationState("hi", core.HandlerLanguageDetection, nil)
		state.NextDirective = directive

		id1, ok1 := router.Next(state)
		id2, ok2 := router.Next(state)

		assert.Equal(t, id1, id2)
		assert.Equal(t, ok1, ok2)
	}
}
