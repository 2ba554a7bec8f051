package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct{ id HandlerID }

func (s stubHandler) ID() HandlerID { return s.id }

func (s stubHandler) Process(_ context.Context, state *ConversationState) (*ConversationState, error) {
	return state, nil
}

func (s stubHandler) ShouldHandle(*ConversationState) bool { return true }

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(
		stubHandler{HandlerLanguageDetection},
		stubHandler{HandlerClassification},
	)
	require.NoError(t, err)

	h, ok := reg.Get(HandlerLanguageDetection)
	assert.True(t, ok)
	assert.Equal(t, HandlerLanguageDetection, h.ID())

	assert.True(t, reg.Has(HandlerClassification))
	assert.False(t, reg.Has(HandlerImageReview))

	assert.Equal(t, []HandlerID{HandlerLanguageDetection, HandlerClassification}, reg.IDs())
}

func TestNewRegistry_DuplicateID(t *testing.T) {
	_, err := NewRegistry(
		stubHandler{HandlerClassification},
		stubHandler{HandlerClassification},
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "registered twice")
}

func TestRegistry_IDsIsACopy(t *testing.T) {
	reg, err := NewRegistry(stubHandler{HandlerLanguageDetection})
	require.NoError(t, err)

	ids := reg.IDs()
	ids[0] = HandlerImageReview

	assert.Equal(t, []HandlerID{HandlerLanguageDetection}, reg.IDs())
}
