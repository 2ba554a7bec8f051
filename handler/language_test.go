package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/inference"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ core.Handler = (*LanguageDetection)(nil)

func TestLanguageDetection_Process(t *testing.T) {
	classifier := inference.NewMockClassifier("en")
	h := NewLanguageDetection(classifier, logging.NoOpLogger{})
	state := core.NewConversationState("My food was spilled", core.HandlerLanguageDetection, nil)

	result, err := h.Process(context.Background(), state)

	require.NoError(t, err)
	require.Len(t, result.History, 2)
	assert.Equal(t, core.RoleAssistant, result.History[1].Role)
	assert.Equal(t, "I detected that your message is in en.", result.History[1].Content)
	assert.Equal(t, core.DirectiveFor(core.HandlerClassification), result.NextDirective)
}

func TestLanguageDetection_ReadsMostRecentMessage(t *testing.T) {
	classifier := inference.NewMockClassifier("en")
	classifier.AddResponse("una queja nueva", inference.Classification{Label: "es", Confidence: 0.97})
	h := NewLanguageDetection(classifier, logging.NoOpLogger{})
	state := core.NewConversationState("old message", core.HandlerLanguageDetection, nil)
	state.Append(core.NewHumanMessage("una queja nueva"))

	result, err := h.Process(context.Background(), state)

	require.NoError(t, err)
	last, _ := result.LastMessage()
	assert.Contains(t, last.Content, "es")
}

func TestLanguageDetection_ServiceFailureBecomesApology(t *testing.T) {
	classifier := inference.NewMockClassifier("en")
	classifier.Fail(errors.New("model endpoint unavailable"))
	h := NewLanguageDetection(classifier, logging.NoOpLogger{})
	state := core.NewConversationState("hello", core.HandlerLanguageDetection, nil)

	result, err := h.Process(context.Background(), state)

	require.NoError(t, err, "external failures must not propagate as faults")
	last, _ := result.LastMessage()
	assert.Equal(t, core.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "model endpoint unavailable")
	assert.True(t, result.NextDirective.IsTerminate())
}

func TestLanguageDetection_ShouldHandle(t *testing.T) {
	h := NewLanguageDetection(inference.NewMockClassifier("en"), logging.NoOpLogger{})

	state := core.NewConversationState("hello", core.HandlerLanguageDetection, nil)
	assert.True(t, h.ShouldHandle(state))

	assert.False(t, h.ShouldHandle(&core.ConversationState{}))
}
