package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationState(t *testing.T) {
	state := NewConversationState("my order is missing", HandlerLanguageDetection, map[string]any{"order_id": "42"})

	require.Len(t, state.History, 1)
	assert.Equal(t, NewHumanMessage("my order is missing"), state.History[0])
	assert.Equal(t, HandlerLanguageDetection, state.ActiveHandler)
	assert.Equal(t, DirectiveNone, state.NextDirective)

	v, ok := state.Meta("order_id")
	assert.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestNewConversationState_NilMetadata(t *testing.T) {
	state := NewConversationState("hi", HandlerLanguageDetection, nil)

	state.SetMeta("k", "v") // must not panic
	_, ok := state.Meta("k")
	assert.True(t, ok)
}

func TestConversationState_OriginalMessageStable(t *testing.T) {
	state := NewConversationState("the original complaint", HandlerLanguageDetection, nil)

	state.Append(NewAssistantMessage("detected English"))
	state.Append(NewAssistantMessage("classified as packaging_spillage"))

	assert.Equal(t, "the original complaint", state.OriginalMessage().Content)
	assert.Equal(t, RoleHuman, state.OriginalMessage().Role)
}

func TestConversationState_LastMessage(t *testing.T) {
	state := NewConversationState("hello", HandlerLanguageDetection, nil)

	last, ok := state.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "hello", last.Content)

	state.Append(NewAssistantMessage("hi"))
	last, ok = state.LastMessage()
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, last.Role)
}

func TestConversationState_MetaString(t *testing.T) {
	state := NewConversationState("hi", HandlerLanguageDetection, map[string]any{
		MetaImageURL: "/tmp/box.jpg",
		"count":      3,
	})

	url, ok := state.MetaString(MetaImageURL)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/box.jpg", url)

	_, ok = state.MetaString("count")
	assert.False(t, ok, "non-string values behave like a missing key")

	_, ok = state.MetaString("absent")
	assert.False(t, ok)
}

func TestConversationState_Clone(t *testing.T) {
	state := NewConversationState("hi", HandlerLanguageDetection, map[string]any{"a": 1})
	state.NextDirective = DirectiveFor(HandlerClassification)

	clone := state.Clone()
	clone.Append(NewAssistantMessage("extra"))
	clone.SetMeta("a", 2)
	clone.NextDirective = DirectiveTerminate

	assert.Len(t, state.History, 1)
	v, _ := state.Meta("a")
	assert.Equal(t, 1, v)
	assert.Equal(t, DirectiveFor(HandlerClassification), state.NextDirective)
	assert.Equal(t, state.OriginalMessage(), clone.OriginalMessage())
}

func TestDirective_HandlerID(t *testing.T) {
	id, ok := DirectiveFor(HandlerImageReview).HandlerID()
	assert.True(t, ok)
	assert.Equal(t, HandlerImageReview, id)

	_, ok = DirectiveNone.HandlerID()
	assert.False(t, ok)

	_, ok = DirectiveTerminate.HandlerID()
	assert.False(t, ok)

	assert.True(t, DirectiveNone.IsUnset())
	assert.True(t, DirectiveTerminate.IsTerminate())
	assert.False(t, DirectiveFor(HandlerClassification).IsTerminate())
}
