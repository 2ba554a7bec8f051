package handler

import (
	"context"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/inference"
	"github.com/hupe1980/supportmesh/logging"
)

// LanguageInstructions is the classification prompt used when building a
// classifier for this handler.
const LanguageInstructions = "You are a language detection expert. " +
	"Detect the language of the following text and respond with the ISO 639-1 language code."

// LanguageDetection identifies the language of the most recent customer
// message and unconditionally directs to issue classification.
type LanguageDetection struct {
	BaseHandler
	classifier inference.TextClassifier
}

// NewLanguageDetection creates the language identification handler.
func NewLanguageDetection(classifier inference.TextClassifier, logger logging.Logger) *LanguageDetection {
	return &LanguageDetection{
		BaseHandler: NewBaseHandler(core.HandlerLanguageDetection, logger),
		classifier:  classifier,
	}
}

// Process implements core.Handler.
func (h *LanguageDetection) Process(ctx context.Context, state *core.ConversationState) (*core.ConversationState, error) {
	last, ok := state.LastMessage()
	if !ok {
		// The engine asserts a non-empty history before every call; this is
		// unreachable through the orchestrated path.
		return nil, core.AssertWellFormed(nil, "language detection input")
	}

	result, err := h.classifier.ClassifyText(ctx, last.Content)
	if err != nil {
		return h.apologize(state, err), nil
	}

	h.Logger().Debug("language detected", "label", result.Label, "confidence", result.Confidence)

	state.Append(core.NewAssistantMessage("I detected that your message is in " + result.Label + "."))
	state.NextDirective = core.DirectiveFor(core.HandlerClassification)
	return state, nil
}

// ShouldHandle implements core.Handler. Language identification applies to
// any state carrying at least one message.
func (h *LanguageDetection) ShouldHandle(state *core.ConversationState) bool {
	return len(state.History) > 0
}
