// Package openai implements the inference boundary interfaces using the
// OpenAI Chat Completions API. The classifier sends the configured
// instructions as a system message; the vision analyzer sends the image
// reference as an image content part and expects a compact JSON verdict.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/supportmesh/inference"
	"github.com/openai/openai-go"
)

// ClassifierOptions configure the OpenAI classifier adapter.
type ClassifierOptions struct {
	Model               string
	Instructions        string
	Temperature         float64
	MaxCompletionTokens int64
}

// Classifier wraps the Chat Completions API behind inference.TextClassifier.
type Classifier struct {
	client *openai.Client
	opts   ClassifierOptions
}

// NewClassifier creates a classifier using a client built from the
// environment (OPENAI_API_KEY).
func NewClassifier(optFns ...func(o *ClassifierOptions)) *Classifier {
	client := openai.NewClient()
	return NewClassifierFromClient(&client, optFns...)
}

// NewClassifierFromClient creates a classifier from an existing client.
func NewClassifierFromClient(client *openai.Client, optFns ...func(o *ClassifierOptions)) *Classifier {
	opts := ClassifierOptions{
		Model:               openai.ChatModelGPT4oMini,
		Instructions:        "Classify the following text and respond with just the label.",
		Temperature:         0.0,
		MaxCompletionTokens: 64,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{client: client, opts: opts}
}

// ClassifyText implements inference.TextClassifier. The API does not expose a
// calibrated confidence for free-form completions, so the confidence is fixed
// at 1.0 and downstream thresholds apply to vision labels only.
func (c *Classifier) ClassifyText(ctx context.Context, text string) (inference.Classification, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.opts.Instructions),
			openai.UserMessage(text),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return inference.Classification{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return inference.Classification{}, fmt.Errorf("no choices returned")
	}

	label := strings.TrimSpace(resp.Choices[0].Message.Content)
	if label == "" {
		return inference.Classification{}, fmt.Errorf("empty classification label")
	}

	return inference.Classification{Label: label, Confidence: 1.0}, nil
}

// VisionOptions configure the OpenAI vision adapter.
type VisionOptions struct {
	Model               string
	Instructions        string
	MaxCompletionTokens int64
}

// Vision wraps the Chat Completions API (image content parts) behind
// inference.VisionAnalyzer.
type Vision struct {
	client *openai.Client
	opts   VisionOptions
}

// NewVision creates a vision analyzer using a client built from the
// environment.
func NewVision(optFns ...func(o *VisionOptions)) *Vision {
	client := openai.NewClient()
	return NewVisionFromClient(&client, optFns...)
}

// NewVisionFromClient creates a vision analyzer from an existing client.
func NewVisionFromClient(client *openai.Client, optFns ...func(o *VisionOptions)) *Vision {
	opts := VisionOptions{
		Model: openai.ChatModelGPT4o,
		Instructions: "You are an expert at analyzing food delivery packaging issues. " +
			"Inspect the image for packaging damage, spillage and food quality problems. " +
			`Respond with JSON only: {"labels":[{"description":string,"confidence":number}],"issues_detected":bool}.`,
		MaxCompletionTokens: 512,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Vision{client: client, opts: opts}
}

// AnalyzeImage implements inference.VisionAnalyzer.
func (v *Vision) AnalyzeImage(ctx context.Context, ref string) (inference.ImageAnalysis, error) {
	params := openai.ChatCompletionNewParams{
		Model: v.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(v.opts.Instructions),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart("Please analyze this image."),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: ref}),
			}),
		},
		MaxCompletionTokens: openai.Int(v.opts.MaxCompletionTokens),
	}

	resp, err := v.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return inference.ImageAnalysis{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return inference.ImageAnalysis{}, fmt.Errorf("no choices returned")
	}

	return parseAnalysis(resp.Choices[0].Message.Content)
}

// parseAnalysis decodes the model's JSON verdict, tolerating a fenced code
// block around the payload.
func parseAnalysis(content string) (inference.ImageAnalysis, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var analysis inference.ImageAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return inference.ImageAnalysis{}, fmt.Errorf("malformed analysis payload: %w", err)
	}
	return analysis, nil
}
