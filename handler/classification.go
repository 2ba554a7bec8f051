package handler

import (
	"context"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/inference"
	"github.com/hupe1980/supportmesh/logging"
)

// ClassificationInstructions is the classification prompt used when building
// a classifier for this handler.
const ClassificationInstructions = `You are an expert at classifying food delivery issues.
Classify the issue into one of these categories:
- packaging_spillage
- missing_incorrect_item
- food_quality
- refund_cancellation
- rider_vendor_issue
Respond with just the category name.`

// Classification assigns the customer's issue to a category and
// unconditionally directs to image review. It classifies the originating
// message captured at workflow start, not a positional history entry, so the
// result is unaffected by how many messages earlier handlers appended.
type Classification struct {
	BaseHandler
	classifier inference.TextClassifier
}

// NewClassification creates the issue classification handler.
func NewClassification(classifier inference.TextClassifier, logger logging.Logger) *Classification {
	return &Classification{
		BaseHandler: NewBaseHandler(core.HandlerClassification, logger),
		classifier:  classifier,
	}
}

// Process implements core.Handler.
func (h *Classification) Process(ctx context.Context, state *core.ConversationState) (*core.ConversationState, error) {
	original := state.OriginalMessage()

	result, err := h.classifier.ClassifyText(ctx, original.Content)
	if err != nil {
		return h.apologize(state, err), nil
	}

	h.Logger().Debug("issue classified", "category", result.Label, "confidence", result.Confidence)

	state.SetMeta(core.MetaCategory, result.Label)
	state.Append(core.NewAssistantMessage("I've classified your issue as: " + result.Label))
	state.NextDirective = core.DirectiveFor(core.HandlerImageReview)
	return state, nil
}

// ShouldHandle implements core.Handler.
func (h *Classification) ShouldHandle(state *core.ConversationState) bool {
	return len(state.History) > 0
}
