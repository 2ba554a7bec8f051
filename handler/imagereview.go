package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/inference"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/storage"
)

// DefaultConfidenceThreshold filters low-confidence vision labels out of the
// summary.
const DefaultConfidenceThreshold = 0.7

// foodKeywords marks labels that describe the food itself rather than a
// packaging or quality problem.
var foodKeywords = []string{"food", "meal", "dish", "meat", "vegetable", "fruit", "dairy", "grain", "dessert"}

// ImageReviewOptions configure the image review handler.
type ImageReviewOptions struct {
	// ConfidenceThreshold excludes labels below it. Zero means
	// DefaultConfidenceThreshold.
	ConfidenceThreshold float64
	Logger              logging.Logger
}

// ImageReview inspects the state for an uploaded image reference. Without one
// it asks the customer for an image and terminates. With one it uploads the
// asset, runs vision analysis, appends a structured summary of the findings
// and terminates. External failures become a user-visible apology; the run
// always ends with an assistant message.
type ImageReview struct {
	BaseHandler
	uploader  storage.Uploader
	vision    inference.VisionAnalyzer
	threshold float64
}

// NewImageReview creates the image review handler.
func NewImageReview(uploader storage.Uploader, vision inference.VisionAnalyzer, optFns ...func(o *ImageReviewOptions)) *ImageReview {
	opts := ImageReviewOptions{ConfidenceThreshold: DefaultConfidenceThreshold}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	return &ImageReview{
		BaseHandler: NewBaseHandler(core.HandlerImageReview, opts.Logger),
		uploader:    uploader,
		vision:      vision,
		threshold:   opts.ConfidenceThreshold,
	}
}

// Process implements core.Handler.
func (h *ImageReview) Process(ctx context.Context, state *core.ConversationState) (*core.ConversationState, error) {
	imagePath, ok := state.MetaString(core.MetaImageURL)
	if !ok || imagePath == "" {
		return h.terminate(state,
			"I've reviewed your request. Since no image was provided, I can't analyze it. "+
				"Please provide an image URL if you'd like me to review it."), nil
	}

	ticketID, _ := state.MetaString("ticket_id")

	ref, err := h.uploader.Upload(ctx, ticketID, imagePath)
	if err != nil {
		return h.apologize(state, err), nil
	}

	analysis, err := h.vision.AnalyzeImage(ctx, ref)
	if err != nil {
		return h.apologize(state, err), nil
	}

	if analysis.IssuesDetected {
		state.SetMeta(core.MetaRequiresHuman, true)
	}

	return h.terminate(state, h.summarize(analysis)), nil
}

// ShouldHandle implements core.Handler. The handler requires image metadata;
// state lacking it is declined (advisory only, the router's directive stays
// authoritative and Process handles the missing-image case itself).
func (h *ImageReview) ShouldHandle(state *core.ConversationState) bool {
	_, ok := state.MetaString(core.MetaImageURL)
	return ok
}

// summarize builds the customer-facing summary from labels above the
// confidence threshold, separating detected issues from food observations.
func (h *ImageReview) summarize(analysis inference.ImageAnalysis) string {
	var issues, food []string
	for _, label := range analysis.Labels {
		if label.Confidence < h.threshold {
			continue
		}
		line := fmt.Sprintf("- %s (confidence: %.2f)", label.Description, label.Confidence)
		if isFoodLabel(label.Description) {
			food = append(food, line)
		} else {
			issues = append(issues, line)
		}
	}

	var b strings.Builder
	b.WriteString("I've analyzed your image.")
	if len(issues) > 0 {
		b.WriteString("\nIssues detected:\n")
		b.WriteString(strings.Join(issues, "\n"))
	} else {
		b.WriteString("\nNo significant issues detected.")
	}
	if len(food) > 0 {
		b.WriteString("\nFood items observed:\n")
		b.WriteString(strings.Join(food, "\n"))
	}
	if analysis.IssuesDetected {
		b.WriteString("\nI've flagged this ticket for follow-up by our support team.")
	}
	return b.String()
}

func isFoodLabel(description string) bool {
	desc := strings.ToLower(description)
	for _, kw := range foodKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}
